package planning

import (
	"context"

	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/driver"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/fleet"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/location"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/schedule"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/trip"
)

// Snapshot is the read-only entity state a planning run works from.
// The store is touched once to read it and once to write trips back.
type Snapshot struct {
	Locations []*location.Location
	Routes    []*location.Route
	Drivers   []*driver.Driver
	Tractors  []*fleet.Tractor
	Trailers  []*fleet.Trailer
	WorkLogs  []*driver.WorkLog
}

// SnapshotRepository loads the entity snapshot a run plans against
type SnapshotRepository interface {
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
}

// ScheduleRepository persists schedules
type ScheduleRepository interface {
	FindByID(ctx context.Context, id string) (*schedule.Schedule, error)
	Save(ctx context.Context, s *schedule.Schedule) error
}

// TripRepository persists planned trips. ReplacePlan must be atomic:
// either the whole prior plan of the schedule is replaced or nothing is.
type TripRepository interface {
	ReplacePlan(ctx context.Context, scheduleID string, trips []*trip.Trip) error
	FindBySchedule(ctx context.Context, scheduleID string) ([]*trip.Trip, error)
	Save(ctx context.Context, t *trip.Trip) error
	Delete(ctx context.Context, tripID string) error
}
