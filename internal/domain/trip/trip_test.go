package trip_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/trip"
)

var day = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func mustTrip(t *testing.T, id string, departure, ret int) *trip.Trip {
	t.Helper()
	tr, err := trip.NewTrip(id, "S1", "D1", "V1", day, departure, ret, trip.TypeShuttleLivigno, nil)
	require.NoError(t, err)
	return tr
}

func TestNewTrip_WindowInvariants(t *testing.T) {
	// 05:00 departure precedes the working day
	_, err := trip.NewTrip("T1", "S1", "D1", "V1", day, 300, 500, trip.TypeShuttleLivigno, nil)
	assert.Error(t, err)

	// Return past 22:00
	_, err = trip.NewTrip("T1", "S1", "D1", "V1", day, 1200, 1350, trip.TypeShuttleLivigno, nil)
	assert.Error(t, err)

	// Return not after departure
	_, err = trip.NewTrip("T1", "S1", "D1", "V1", day, 600, 600, trip.TypeShuttleLivigno, nil)
	assert.Error(t, err)

	_, err = trip.NewTrip("T1", "S1", "D1", "V1", day, 360, 600, trip.TypeShuttleLivigno, nil)
	assert.NoError(t, err)
}

func TestTrip_Overlaps(t *testing.T) {
	a := mustTrip(t, "A", 360, 600)
	b := mustTrip(t, "B", 600, 840)
	c := mustTrip(t, "C", 500, 700)

	// Half-open intervals: touching trips do not overlap
	assert.False(t, a.Overlaps(b))
	assert.True(t, a.Overlaps(c))
	assert.True(t, c.Overlaps(b))

	otherDay, err := trip.NewTrip("D", "S1", "D1", "V1", day.AddDate(0, 0, 1), 500, 700, trip.TypeShuttleLivigno, nil)
	require.NoError(t, err)
	assert.False(t, a.Overlaps(otherDay))
}

func TestType_DeliveryLiters(t *testing.T) {
	assert.Equal(t, 17500, trip.TypeShuttleLivigno.DeliveryLiters())
	assert.Equal(t, 17500, trip.TypeShuttleFromLivigno.DeliveryLiters())
	assert.Equal(t, 17500, trip.TypeSupplyFromLivigno.DeliveryLiters())
	assert.Equal(t, 17500, trip.TypeFullRound.DeliveryLiters())
	assert.Equal(t, 0, trip.TypeSupplyMilano.DeliveryLiters())
	assert.Equal(t, 0, trip.TypeTransferTirano.DeliveryLiters())
}

func TestType_VisitsDestination(t *testing.T) {
	assert.True(t, trip.TypeShuttleLivigno.VisitsDestination())
	assert.False(t, trip.TypeSupplyMilano.VisitsDestination())
	assert.False(t, trip.TypeTransferTirano.VisitsDestination())
}
