package driver

import (
	"time"

	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/shared"
)

// Category ranks drivers by engagement priority.
// Residents are engaged first, then on-call, then emergency.
type Category string

const (
	CategoryResident  Category = "resident"
	CategoryOnCall    Category = "on_call"
	CategoryEmergency Category = "emergency"
)

// Priority returns the sort rank of a category (lower engages first)
func (c Category) Priority() int {
	switch c {
	case CategoryResident:
		return 0
	case CategoryOnCall:
		return 1
	case CategoryEmergency:
		return 2
	default:
		return 3
	}
}

// Driver is a snapshot record of an ADR-licensed driver
type Driver struct {
	ID             string
	Name           string
	HomeBaseID     string
	Category       Category
	Phone          string
	HourlyCost     *float64
	ADRExpiry      *time.Time
	LicenceExpiry  *time.Time
	Active         bool
	UsedExtensions int
}

// NewDriver creates a driver snapshot record
func NewDriver(id, name, homeBaseID string, category Category) (*Driver, error) {
	if id == "" {
		return nil, shared.NewValidationError("id", "cannot be empty")
	}
	if homeBaseID == "" {
		return nil, shared.NewValidationError("homeBaseID", "cannot be empty")
	}
	switch category {
	case CategoryResident, CategoryOnCall, CategoryEmergency:
	default:
		return nil, shared.NewValidationError("category", "must be resident, on_call or emergency")
	}
	return &Driver{
		ID:         id,
		Name:       name,
		HomeBaseID: homeBaseID,
		Category:   category,
		Active:     true,
	}, nil
}

// LicenceValidOn reports whether both the driving licence and the ADR
// certificate cover the given date. A missing expiry means no known limit.
func (d *Driver) LicenceValidOn(date time.Time) bool {
	if d.ADRExpiry != nil && date.After(*d.ADRExpiry) {
		return false
	}
	if d.LicenceExpiry != nil && date.After(*d.LicenceExpiry) {
		return false
	}
	return true
}

// Availability maps driver IDs to the set of dates each may work.
// An empty inner set means the driver is unavailable for the whole horizon.
type Availability map[string]map[string]bool

// IsAvailable reports whether the driver may work on the given date key.
// When the map carries no entry for the driver, only residents work by default.
func (a Availability) IsAvailable(d *Driver, dateKey string) bool {
	if a == nil {
		return d.Category == CategoryResident
	}
	days, ok := a[d.ID]
	if !ok {
		return d.Category == CategoryResident
	}
	return days[dateKey]
}
