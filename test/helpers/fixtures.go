package helpers

import (
	"fmt"
	"testing"
	"time"

	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/driver"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/fleet"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/location"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/schedule"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/tasks"
)

// Location IDs shared by planning fixtures
const (
	SourceID      = "milano"
	ParkingID     = "tirano"
	DestinationID = "livigno"
)

// Monday is a fixed horizon start used across planning tests
var Monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

// SnapshotBuilder assembles planning snapshots for tests
type SnapshotBuilder struct {
	t    *testing.T
	snap *planning.Snapshot
}

// NewSnapshot creates a builder pre-loaded with the three role locations
// and the four stock route legs.
func NewSnapshot(t *testing.T) *SnapshotBuilder {
	t.Helper()

	b := &SnapshotBuilder{t: t, snap: &planning.Snapshot{}}
	for id, role := range map[string]location.Role{
		SourceID:      location.RoleSource,
		ParkingID:     location.RoleParking,
		DestinationID: location.RoleDestination,
	} {
		loc, err := location.NewLocation(id, id, role)
		if err != nil {
			t.Fatalf("fixture location: %v", err)
		}
		b.snap.Locations = append(b.snap.Locations, loc)
	}

	d := tasks.DefaultDurations()
	for _, leg := range []struct {
		from, to string
		minutes  int
	}{
		{ParkingID, SourceID, d.ParkingToSource},
		{SourceID, ParkingID, d.SourceToParking},
		{ParkingID, DestinationID, d.ParkingToDestination},
		{DestinationID, ParkingID, d.DestinationToParking},
	} {
		route, err := location.NewRoute(leg.from, leg.to, leg.minutes)
		if err != nil {
			t.Fatalf("fixture route: %v", err)
		}
		b.snap.Routes = append(b.snap.Routes, route)
	}
	return b
}

// WithDriver adds a driver based at the given location
func (b *SnapshotBuilder) WithDriver(id, baseID string, category driver.Category) *SnapshotBuilder {
	d, err := driver.NewDriver(id, "Driver "+id, baseID, category)
	if err != nil {
		b.t.Fatalf("fixture driver: %v", err)
	}
	b.snap.Drivers = append(b.snap.Drivers, d)
	return b
}

// WithTractors adds n tractors at the location; full tanks when tankFull
func (b *SnapshotBuilder) WithTractors(n int, locationID string, tankFull bool) *SnapshotBuilder {
	base := len(b.snap.Tractors)
	for i := 0; i < n; i++ {
		tc, err := fleet.NewTractor(fmt.Sprintf("TC%02d", base+i), "", ParkingID)
		if err != nil {
			b.t.Fatalf("fixture tractor: %v", err)
		}
		tc.LocationID = locationID
		tc.TankFull = tankFull
		b.snap.Tractors = append(b.snap.Tractors, tc)
	}
	return b
}

// WithTrailers adds n trailers at the parking yard, full when full
func (b *SnapshotBuilder) WithTrailers(n int, full bool) *SnapshotBuilder {
	base := len(b.snap.Trailers)
	for i := 0; i < n; i++ {
		tr, err := fleet.NewTrailer(fmt.Sprintf("TR%02d", base+i), "", ParkingID)
		if err != nil {
			b.t.Fatalf("fixture trailer: %v", err)
		}
		tr.LocationID = ParkingID
		tr.Full = full
		b.snap.Trailers = append(b.snap.Trailers, tr)
	}
	return b
}

// WithWorkLog adds an existing work-log entry
func (b *SnapshotBuilder) WithWorkLog(driverID string, date time.Time, minutes int) *SnapshotBuilder {
	log, err := driver.NewWorkLog(driverID, date, minutes)
	if err != nil {
		b.t.Fatalf("fixture work log: %v", err)
	}
	b.snap.WorkLogs = append(b.snap.WorkLogs, log)
	return b
}

// Build returns the snapshot
func (b *SnapshotBuilder) Build() *planning.Snapshot {
	return b.snap
}

// NewSchedule creates a draft schedule of the given number of days starting
// on the fixed Monday.
func NewSchedule(t *testing.T, days int, requiredLiters int) *schedule.Schedule {
	t.Helper()

	s, err := schedule.NewSchedule("SCHED-1", "test horizon",
		Monday, Monday.AddDate(0, 0, days-1), requiredLiters)
	if err != nil {
		t.Fatalf("fixture schedule: %v", err)
	}
	return s
}
