package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alessandroavenali/fuel-logistics-go/internal/adapters/persistence"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/trip"
	"github.com/alessandroavenali/fuel-logistics-go/test/helpers"
)

var planDay = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func plannedTrip(t *testing.T, id string, departure int) *trip.Trip {
	t.Helper()
	tr, err := trip.NewTrip(id, "SCHED-1", "P1", "TC00", planDay,
		departure, departure+240, trip.TypeShuttleLivigno,
		[]trip.TrailerBinding{{TrailerID: "TR00", LitersLoaded: 17500, DropOffLocationID: "tirano", IsPickup: true}})
	require.NoError(t, err)
	return tr
}

func TestTripRepository_ReplacePlanAndLoad(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormTripRepository(db)

	first := []*trip.Trip{plannedTrip(t, "T1", 400), plannedTrip(t, "T2", 700)}

	// Act
	err := repo.ReplacePlan(context.Background(), "SCHED-1", first)

	// Assert
	require.NoError(t, err)

	loaded, err := repo.FindBySchedule(context.Background(), "SCHED-1")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "T1", loaded[0].ID)
	assert.Equal(t, trip.TypeShuttleLivigno, loaded[0].Type)
	assert.Equal(t, trip.StatusPlanned, loaded[0].Status)
	require.Len(t, loaded[0].Trailers, 1)
	assert.Equal(t, "TR00", loaded[0].Trailers[0].TrailerID)
	assert.Equal(t, 17500, loaded[0].Trailers[0].LitersLoaded)
}

func TestTripRepository_ReplacePlanDropsPriorPlan(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormTripRepository(db)
	require.NoError(t, repo.ReplacePlan(context.Background(), "SCHED-1",
		[]*trip.Trip{plannedTrip(t, "OLD-1", 400), plannedTrip(t, "OLD-2", 700)}))

	// Act
	err := repo.ReplacePlan(context.Background(), "SCHED-1",
		[]*trip.Trip{plannedTrip(t, "NEW-1", 500)})

	// Assert
	require.NoError(t, err)
	loaded, err := repo.FindBySchedule(context.Background(), "SCHED-1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "NEW-1", loaded[0].ID)
}

func TestTripRepository_FindOrderedByDateAndDeparture(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormTripRepository(db)

	later := plannedTrip(t, "LATER", 700)
	earlier := plannedTrip(t, "EARLIER", 400)
	nextDay, err := trip.NewTrip("NEXT-DAY", "SCHED-1", "P1", "TC00",
		planDay.AddDate(0, 0, 1), 400, 640, trip.TypeShuttleLivigno, nil)
	require.NoError(t, err)

	require.NoError(t, repo.ReplacePlan(context.Background(), "SCHED-1",
		[]*trip.Trip{nextDay, later, earlier}))

	loaded, err := repo.FindBySchedule(context.Background(), "SCHED-1")
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, "EARLIER", loaded[0].ID)
	assert.Equal(t, "LATER", loaded[1].ID)
	assert.Equal(t, "NEXT-DAY", loaded[2].ID)
}

func TestTripRepository_DeleteSingleTrip(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormTripRepository(db)
	require.NoError(t, repo.ReplacePlan(context.Background(), "SCHED-1",
		[]*trip.Trip{plannedTrip(t, "T1", 400)}))

	require.NoError(t, repo.Delete(context.Background(), "T1"))
	assert.Error(t, repo.Delete(context.Background(), "T1"))

	loaded, err := repo.FindBySchedule(context.Background(), "SCHED-1")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
