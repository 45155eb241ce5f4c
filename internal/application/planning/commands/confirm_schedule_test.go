package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/alessandroavenali/fuel-logistics-go/internal/adapters/persistence"
	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning/commands"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/schedule"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/tasks"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/trip"
	"github.com/alessandroavenali/fuel-logistics-go/test/helpers"
)

var monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

// seedStore loads a minimal planning world into the test database
func seedStore(t *testing.T, db *gorm.DB) {
	t.Helper()

	models := []any{
		&persistence.LocationModel{ID: "milano", Name: "Milano", Role: "source"},
		&persistence.LocationModel{ID: "tirano", Name: "Tirano", Role: "parking"},
		&persistence.LocationModel{ID: "livigno", Name: "Livigno", Role: "destination"},
		&persistence.RouteModel{FromID: "tirano", ToID: "milano", DurationMinutes: 150},
		&persistence.RouteModel{FromID: "milano", ToID: "tirano", DurationMinutes: 150},
		&persistence.RouteModel{FromID: "tirano", ToID: "livigno", DurationMinutes: 105},
		&persistence.RouteModel{FromID: "livigno", ToID: "tirano", DurationMinutes: 105},
		&persistence.DriverModel{ID: "P1", Name: "P1", HomeBaseID: "tirano", Category: "resident", Active: true},
		&persistence.VehicleModel{ID: "TC00", BaseID: "tirano", TankLiters: 17500, LocationID: "tirano"},
		&persistence.TrailerModel{ID: "TR00", BaseID: "tirano", Liters: 17500, LocationID: "tirano", Full: true},
	}
	for _, m := range models {
		require.NoError(t, db.Create(m).Error)
	}
}

func handler(db *gorm.DB) *commands.ConfirmScheduleHandler {
	return commands.NewConfirmScheduleHandler(
		persistence.NewGormSnapshotRepository(db),
		persistence.NewGormScheduleRepository(db),
		persistence.NewGormTripRepository(db),
		tasks.DefaultGrid(), tasks.DefaultLimits(),
	)
}

func saveSchedule(t *testing.T, db *gorm.DB) *schedule.Schedule {
	t.Helper()
	s, err := schedule.NewSchedule("SCHED-1", "horizon", monday, monday, 17500)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormScheduleRepository(db).Save(context.Background(), s))
	return s
}

func TestConfirm_RejectedWithoutPlan(t *testing.T) {
	db := helpers.NewTestDB(t)
	seedStore(t, db)
	saveSchedule(t, db)

	_, err := handler(db).Handle(context.Background(),
		&commands.ConfirmScheduleCommand{ScheduleID: "SCHED-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no persisted plan")
}

func TestConfirm_CleanPlanTransitionsToConfirmed(t *testing.T) {
	db := helpers.NewTestDB(t)
	seedStore(t, db)
	saveSchedule(t, db)

	tr, err := trip.NewTrip("T1", "SCHED-1", "P1", "TC00", monday,
		400, 640, trip.TypeShuttleLivigno, nil)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormTripRepository(db).
		ReplacePlan(context.Background(), "SCHED-1", []*trip.Trip{tr}))

	resp, err := handler(db).Handle(context.Background(),
		&commands.ConfirmScheduleCommand{ScheduleID: "SCHED-1"})
	require.NoError(t, err)

	result := resp.(*commands.ConfirmScheduleResponse)
	assert.Equal(t, schedule.StatusConfirmed, result.Status)
	assert.True(t, result.Report.Clean())

	stored, err := persistence.NewGormScheduleRepository(db).FindByID(context.Background(), "SCHED-1")
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusConfirmed, stored.Status)
}

func TestConfirm_BlockedByViolations(t *testing.T) {
	db := helpers.NewTestDB(t)
	seedStore(t, db)
	saveSchedule(t, db)

	// Three shuttles on one day: 630 driving minutes, a hard violation
	var trips []*trip.Trip
	for i, departure := range []int{400, 650, 900} {
		tr, err := trip.NewTrip("T"+string(rune('1'+i)), "SCHED-1", "P1", "TC00", monday,
			departure, departure+240, trip.TypeShuttleLivigno, nil)
		require.NoError(t, err)
		trips = append(trips, tr)
	}
	require.NoError(t, persistence.NewGormTripRepository(db).
		ReplacePlan(context.Background(), "SCHED-1", trips))

	resp, err := handler(db).Handle(context.Background(),
		&commands.ConfirmScheduleCommand{ScheduleID: "SCHED-1"})
	require.Error(t, err)
	require.NotNil(t, resp)

	result := resp.(*commands.ConfirmScheduleResponse)
	assert.Equal(t, schedule.StatusDraft, result.Status)
	assert.False(t, result.Report.Clean())

	stored, err := persistence.NewGormScheduleRepository(db).FindByID(context.Background(), "SCHED-1")
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusDraft, stored.Status)

	// ADR findings alone never invalidate the plan itself
	assert.NotEmpty(t, result.Report.Violations)
}
