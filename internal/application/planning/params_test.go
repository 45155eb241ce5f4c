package planning_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/driver"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/location"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/shared"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/tasks"
	"github.com/alessandroavenali/fuel-logistics-go/test/helpers"
)

func TestResolveParameters_CountsAndPools(t *testing.T) {
	snap := helpers.NewSnapshot(t).
		WithDriver("L1", helpers.DestinationID, driver.CategoryResident).
		WithDriver("P1", helpers.ParkingID, driver.CategoryResident).
		WithDriver("OC1", helpers.ParkingID, driver.CategoryOnCall).
		WithTractors(1, helpers.DestinationID, false).
		WithTractors(2, helpers.ParkingID, false).
		WithTrailers(3, true).
		WithTrailers(1, false).
		Build()

	params, err := planning.ResolveParameters(snap, helpers.NewSchedule(t, 2, 0), nil,
		tasks.DefaultGrid(), tasks.DefaultLimits())
	require.NoError(t, err)

	assert.Equal(t, 3, params.InitialFullTrailers)
	assert.Equal(t, 1, params.InitialEmptyTrailers)
	assert.Equal(t, 0, params.InitialFullTanks)
	assert.Equal(t, 2, params.InitialEmptyTanks)
	assert.Equal(t, 1, params.TractorsAtDestination)
	assert.Equal(t, 4, params.TotalTrailers)
	assert.Equal(t, 3, params.TotalTractors)

	// Nil availability admits residents only
	require.Len(t, params.ParkingDrivers, 2)
	require.Len(t, params.ParkingDrivers[0], 1)
	assert.Equal(t, "P1", params.ParkingDrivers[0][0].ID)
	require.Len(t, params.DestinationDrivers[0], 1)
	assert.Equal(t, "L1", params.DestinationDrivers[0][0].ID)
}

func TestResolveParameters_PoolsSortedByCategoryThenID(t *testing.T) {
	snap := helpers.NewSnapshot(t).
		WithDriver("PZ", helpers.ParkingID, driver.CategoryResident).
		WithDriver("PA", helpers.ParkingID, driver.CategoryResident).
		WithDriver("OC1", helpers.ParkingID, driver.CategoryOnCall).
		WithTractors(1, helpers.ParkingID, false).
		WithTrailers(1, true).
		Build()

	day1 := shared.DateKey(helpers.Monday)
	avail := driver.Availability{
		"PA":  {day1: true},
		"PZ":  {day1: true},
		"OC1": {day1: true},
	}
	params, err := planning.ResolveParameters(snap, helpers.NewSchedule(t, 1, 0), avail,
		tasks.DefaultGrid(), tasks.DefaultLimits())
	require.NoError(t, err)

	require.Len(t, params.ParkingDrivers[0], 3)
	assert.Equal(t, "PA", params.ParkingDrivers[0][0].ID)
	assert.Equal(t, "PZ", params.ParkingDrivers[0][1].ID)
	assert.Equal(t, "OC1", params.ParkingDrivers[0][2].ID)
}

func TestResolveParameters_ScheduleInitialStateOverrides(t *testing.T) {
	snap := helpers.NewSnapshot(t).
		WithDriver("P1", helpers.ParkingID, driver.CategoryResident).
		WithTractors(1, helpers.ParkingID, false).
		WithTrailers(2, false).
		Build()

	sched := helpers.NewSchedule(t, 1, 0)
	sched.InitialTrailerFull = map[string]bool{"TR00": true}
	sched.InitialTankFull = map[string]bool{"TC00": true}

	params, err := planning.ResolveParameters(snap, sched, nil,
		tasks.DefaultGrid(), tasks.DefaultLimits())
	require.NoError(t, err)

	assert.Equal(t, 1, params.InitialFullTrailers)
	assert.Equal(t, 1, params.InitialEmptyTrailers)
	assert.Equal(t, 1, params.InitialFullTanks)
	assert.Equal(t, 0, params.InitialEmptyTanks)
}

func TestResolveParameters_FailureConditions(t *testing.T) {
	base := func() *helpers.SnapshotBuilder {
		return helpers.NewSnapshot(t).
			WithDriver("P1", helpers.ParkingID, driver.CategoryResident).
			WithTractors(1, helpers.ParkingID, false).
			WithTrailers(1, true)
	}
	grid := tasks.DefaultGrid()
	limits := tasks.DefaultLimits()

	t.Run("missing role location", func(t *testing.T) {
		snap := base().Build()
		var kept []*location.Location
		for _, l := range snap.Locations {
			if l.Role != location.RoleSource {
				kept = append(kept, l)
			}
		}
		snap.Locations = kept

		_, err := planning.ResolveParameters(snap, helpers.NewSchedule(t, 1, 0), nil, grid, limits)
		assertInvalidInput(t, err)
	})

	t.Run("missing route", func(t *testing.T) {
		snap := base().Build()
		snap.Routes = snap.Routes[:2]

		_, err := planning.ResolveParameters(snap, helpers.NewSchedule(t, 1, 0), nil, grid, limits)
		assertInvalidInput(t, err)
	})

	t.Run("no active drivers", func(t *testing.T) {
		snap := base().Build()
		for _, d := range snap.Drivers {
			d.Active = false
		}

		_, err := planning.ResolveParameters(snap, helpers.NewSchedule(t, 1, 0), nil, grid, limits)
		assertInvalidInput(t, err)
	})

	t.Run("no vehicles", func(t *testing.T) {
		snap := base().Build()
		snap.Tractors = nil

		_, err := planning.ResolveParameters(snap, helpers.NewSchedule(t, 1, 0), nil, grid, limits)
		assertInvalidInput(t, err)
	})

	t.Run("no trailers", func(t *testing.T) {
		snap := base().Build()
		snap.Trailers = nil

		_, err := planning.ResolveParameters(snap, helpers.NewSchedule(t, 1, 0), nil, grid, limits)
		assertInvalidInput(t, err)
	})

	t.Run("weekend-only horizon has no working days", func(t *testing.T) {
		snap := base().Build()
		sched := helpers.NewSchedule(t, 1, 0)
		saturday := helpers.Monday.AddDate(0, 0, 5)
		sched.StartDate = saturday
		sched.EndDate = saturday.AddDate(0, 0, 1)

		_, err := planning.ResolveParameters(snap, sched, nil, grid, limits)
		assertInvalidInput(t, err)
	})

	t.Run("schedule not found", func(t *testing.T) {
		snap := base().Build()
		_, err := planning.ResolveParameters(snap, nil, nil, grid, limits)
		assertInvalidInput(t, err)
	})
}

func assertInvalidInput(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var invalid *shared.InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestSolverInput_WireFields(t *testing.T) {
	snap := helpers.NewSnapshot(t).
		WithDriver("L1", helpers.DestinationID, driver.CategoryResident).
		WithDriver("P1", helpers.ParkingID, driver.CategoryResident).
		WithTractors(1, helpers.DestinationID, false).
		WithTractors(1, helpers.ParkingID, true).
		WithTrailers(2, true).
		Build()

	params, err := planning.ResolveParameters(snap, helpers.NewSchedule(t, 2, 0), nil,
		tasks.DefaultGrid(), tasks.DefaultLimits())
	require.NoError(t, err)

	in := params.SolverInput(60, 1, 42)
	require.NoError(t, in.Validate())

	assert.Equal(t, "2025-03-03", in.StartDate)
	assert.Equal(t, "2025-03-04", in.EndDate)
	assert.Equal(t, []int{1, 1}, in.ParkingDrivers)
	assert.Equal(t, []int{1, 1}, in.DestinationDrivers)
	assert.Equal(t, 2, in.InitialState.FullTrailers)
	assert.Equal(t, 1, in.InitialState.FullTanks)
	assert.Equal(t, 17500, in.LitersPerUnit)
	assert.Equal(t, 720, in.ShiftMinutes)
	assert.Equal(t, 15, in.SlotMinutes)
	assert.Equal(t, 540, in.DriveMinutesDaily)
	assert.Equal(t, 600, in.DriveMinutesExtended)
	assert.Equal(t, 2, in.MaxExtendedDaysPerWeek)
	assert.Equal(t, 3360, in.WeeklyDriveLimitMinutes)
	assert.Equal(t, 5400, in.BiweeklyDriveLimit)
	assert.Equal(t, 120, in.EntryStartMinutes)
	assert.Equal(t, 750, in.EntryEndMinutes)
	assert.Equal(t, 60, in.TimeLimitSeconds)
	assert.Equal(t, 1, in.NumSearchWorkers)
	assert.Equal(t, int64(42), in.Seed)
}
