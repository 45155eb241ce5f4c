package planning_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/driver"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/tasks"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/trip"
	"github.com/alessandroavenali/fuel-logistics-go/test/helpers"
)

func newValidator() *planning.Validator {
	return planning.NewValidator(tasks.NewCatalog(tasks.DefaultDurations()), tasks.DefaultLimits())
}

func makeTypedTrip(t *testing.T, id, driverID string, date time.Time, departure int, tripType trip.Type) *trip.Trip {
	t.Helper()
	catalog := tasks.NewCatalog(tasks.DefaultDurations())
	code, ok := tasks.CodeForTripType(tripType)
	require.True(t, ok)
	ret := departure + catalog.MustSpec(code).TotalMinutes
	tr, err := trip.NewTrip(id, "SCHED-1", driverID, "TC00", date, departure, ret, tripType, nil)
	require.NoError(t, err)
	return tr
}

func hasKind(violations []planning.Violation, kind planning.ViolationKind) bool {
	for _, v := range violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

func TestValidate_CleanGreedyPlanPasses(t *testing.T) {
	snap := helpers.NewSnapshot(t).
		WithDriver("L1", helpers.DestinationID, driver.CategoryResident).
		WithDriver("P1", helpers.ParkingID, driver.CategoryResident).
		WithDriver("P2", helpers.ParkingID, driver.CategoryResident).
		WithTractors(1, helpers.DestinationID, false).
		WithTractors(2, helpers.ParkingID, false).
		WithTrailers(4, true).
		Build()
	params := resolve(t, snap, 1, nil)

	plan, err := planning.NewGreedyPlanner(nil).Plan(params, 0)
	require.NoError(t, err)
	trips, err := planning.NewMaterializer(params, sequentialIDs(), nil).
		Materialize(plan.ToOutput(params), "SCHED-1")
	require.NoError(t, err)

	report := planning.NewValidator(params.Catalog, params.Limits).
		Validate(trips, snap.Drivers, params.LogBook)
	assert.True(t, report.Clean(), "violations: %v", report.Violations)
}

func TestValidate_DailyLimitViolation(t *testing.T) {
	// Three integrated-tank shuttles: 630 driving minutes in one day
	date := helpers.Monday
	trips := []*trip.Trip{
		makeTypedTrip(t, "T1", "P1", date, 400, trip.TypeShuttleLivigno),
		makeTypedTrip(t, "T2", "P1", date, 650, trip.TypeShuttleLivigno),
		makeTypedTrip(t, "T3", "P1", date, 900, trip.TypeShuttleLivigno),
	}

	report := newValidator().Validate(trips, nil, nil)
	assert.True(t, hasKind(report.Violations, planning.ViolationDailyLimit))
}

func TestValidate_ExtendedDayOveruse(t *testing.T) {
	// Two supply runs a day are 600 driving minutes: an extended day.
	// Three such days in one ISO week overdraw the two-per-week budget.
	var trips []*trip.Trip
	for i := 0; i < 3; i++ {
		date := helpers.Monday.AddDate(0, 0, i)
		trips = append(trips,
			makeTypedTrip(t, "S1-"+date.Format("02"), "P1", date, 400, trip.TypeSupplyMilano),
			makeTypedTrip(t, "S2-"+date.Format("02"), "P1", date, 800, trip.TypeSupplyMilano),
		)
	}

	report := newValidator().Validate(trips, nil, nil)
	assert.True(t, hasKind(report.Violations, planning.ViolationExtendedDayOveruse))
	// Each day individually stays under the extended ceiling
	assert.False(t, hasKind(report.Violations, planning.ViolationDailyLimit))
}

func TestValidate_MissingBreak(t *testing.T) {
	// With ten-minute service stops, two back-to-back shuttles accumulate
	// 315 driving minutes without ever totalling a 45-minute pause.
	durations := tasks.DefaultDurations()
	durations.UnloadMinutes = 10
	catalog := tasks.NewCatalog(durations)
	validator := planning.NewValidator(catalog, tasks.DefaultLimits())

	u := catalog.MustSpec(tasks.CodeShuttle).TotalMinutes
	trips := []*trip.Trip{}
	for i, departure := range []int{400, 400 + u} {
		tr, err := trip.NewTrip(
			"T"+string(rune('1'+i)), "SCHED-1", "P1", "TC00",
			helpers.Monday, departure, departure+u, trip.TypeShuttleLivigno, nil)
		require.NoError(t, err)
		trips = append(trips, tr)
	}

	report := validator.Validate(trips, nil, nil)
	assert.True(t, hasKind(report.Violations, planning.ViolationMissingBreak))
}

func TestValidate_BreakSatisfiedByAccumulatedPauses(t *testing.T) {
	// The first shuttle's unload stop plus the idle gap total 45 pause
	// minutes, resetting the driving counter before it passes 4h30.
	date := helpers.Monday
	trips := []*trip.Trip{
		makeTypedTrip(t, "T1", "P1", date, 400, trip.TypeShuttleLivigno),
		makeTypedTrip(t, "T2", "P1", date, 655, trip.TypeShuttleLivigno),
	}

	report := newValidator().Validate(trips, nil, nil)
	assert.False(t, hasKind(report.Violations, planning.ViolationMissingBreak))
}

func TestValidate_WeeklyLimitWithWorkLogs(t *testing.T) {
	// 3 000 logged minutes earlier in the week plus 420 planned cross 3 360
	snap := helpers.NewSnapshot(t).
		WithDriver("P1", helpers.ParkingID, driver.CategoryResident).
		WithWorkLog("P1", helpers.Monday, 540).
		WithWorkLog("P1", helpers.Monday.AddDate(0, 0, 1), 540).
		WithWorkLog("P1", helpers.Monday.AddDate(0, 0, 2), 540).
		WithWorkLog("P1", helpers.Monday.AddDate(0, 0, 3), 540).
		WithWorkLog("P1", helpers.Monday.AddDate(0, 0, 4), 540).
		WithWorkLog("P1", helpers.Monday.AddDate(0, 0, 5), 300).
		Build()
	book := driver.NewLogBook(snap.WorkLogs)

	sunday := helpers.Monday.AddDate(0, 0, 6)
	trips := []*trip.Trip{
		makeTypedTrip(t, "T1", "P1", sunday, 400, trip.TypeShuttleLivigno),
		makeTypedTrip(t, "T2", "P1", sunday, 700, trip.TypeShuttleLivigno),
	}

	report := newValidator().Validate(trips, snap.Drivers, book)
	assert.True(t, hasKind(report.Violations, planning.ViolationWeeklyLimit))
}

func TestValidate_LicenceExpired(t *testing.T) {
	snap := helpers.NewSnapshot(t).
		WithDriver("P1", helpers.ParkingID, driver.CategoryResident).
		Build()
	expiry := helpers.Monday.AddDate(0, 0, -1)
	snap.Drivers[0].ADRExpiry = &expiry

	trips := []*trip.Trip{
		makeTypedTrip(t, "T1", "P1", helpers.Monday, 400, trip.TypeShuttleLivigno),
	}

	report := newValidator().Validate(trips, snap.Drivers, nil)
	assert.True(t, hasKind(report.Violations, planning.ViolationLicenceExpired))
}

func TestValidate_SoftWarningNearDailyLimit(t *testing.T) {
	// 510 of 540 minutes is 94%: a warning, not a violation
	date := helpers.Monday
	trips := []*trip.Trip{
		makeTypedTrip(t, "T1", "P1", date, 400, trip.TypeSupplyMilano),
		makeTypedTrip(t, "T2", "P1", date, 800, trip.TypeShuttleLivigno),
	}

	report := newValidator().Validate(trips, nil, nil)
	assert.True(t, report.Clean())
	assert.True(t, hasKind(report.Warnings, planning.ViolationDailyLimit))
}

func TestValidate_CancelledTripsIgnored(t *testing.T) {
	date := helpers.Monday
	cancelled := makeTypedTrip(t, "T1", "P1", date, 400, trip.TypeShuttleLivigno)
	cancelled.Status = trip.StatusCancelled
	trips := []*trip.Trip{
		cancelled,
		makeTypedTrip(t, "T2", "P1", date, 650, trip.TypeShuttleLivigno),
		makeTypedTrip(t, "T3", "P1", date, 900, trip.TypeShuttleLivigno),
	}

	// Two live shuttles only: 420 minutes, no violation
	report := newValidator().Validate(trips, nil, nil)
	assert.False(t, hasKind(report.Violations, planning.ViolationDailyLimit))
}
