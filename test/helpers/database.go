package helpers

import (
	"testing"

	"gorm.io/gorm"

	"github.com/alessandroavenali/fuel-logistics-go/internal/infrastructure/database"
)

// NewTestDB creates a fresh in-memory SQLite database with all migrations
// applied. The connection is closed when the test finishes.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewTestConnection()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
