package jobs_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning"
	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning/jobs"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/driver"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/schedule"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/tasks"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/trip"
	"github.com/alessandroavenali/fuel-logistics-go/test/helpers"
)

// memoryStore fakes the snapshot, schedule and trip repositories
type memoryStore struct {
	mu        sync.Mutex
	snapshot  *planning.Snapshot
	schedules map[string]*schedule.Schedule
	plans     map[string][]*trip.Trip
}

func newMemoryStore(snap *planning.Snapshot, scheds ...*schedule.Schedule) *memoryStore {
	store := &memoryStore{
		snapshot:  snap,
		schedules: make(map[string]*schedule.Schedule),
		plans:     make(map[string][]*trip.Trip),
	}
	for _, s := range scheds {
		store.schedules[s.ID] = s
	}
	return store
}

func (s *memoryStore) LoadSnapshot(ctx context.Context) (*planning.Snapshot, error) {
	return s.snapshot, nil
}

func (s *memoryStore) FindByID(ctx context.Context, id string) (*schedule.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedules[id], nil
}

func (s *memoryStore) Save(ctx context.Context, sched *schedule.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[sched.ID] = sched
	return nil
}

func (s *memoryStore) ReplacePlan(ctx context.Context, scheduleID string, trips []*trip.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[scheduleID] = trips
	return nil
}

func (s *memoryStore) FindBySchedule(ctx context.Context, scheduleID string) ([]*trip.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plans[scheduleID], nil
}

func (s *memoryStore) SaveTrip(ctx context.Context, t *trip.Trip) error { return nil }

func (s *memoryStore) Delete(ctx context.Context, tripID string) error { return nil }

// tripRepo adapts memoryStore to the TripRepository port
type tripRepo struct{ *memoryStore }

func (r tripRepo) Save(ctx context.Context, t *trip.Trip) error { return r.SaveTrip(ctx, t) }

func testManager(t *testing.T, store *memoryStore) *jobs.Manager {
	t.Helper()
	return jobs.NewManager(
		store, store, tripRepo{store}, nil,
		tasks.DefaultGrid(), tasks.DefaultLimits(),
		jobs.Options{}, nil, nil,
	)
}

func testSnapshot(t *testing.T) *planning.Snapshot {
	return helpers.NewSnapshot(t).
		WithDriver("L1", helpers.DestinationID, driver.CategoryResident).
		WithDriver("P1", helpers.ParkingID, driver.CategoryResident).
		WithDriver("P2", helpers.ParkingID, driver.CategoryResident).
		WithTractors(1, helpers.DestinationID, false).
		WithTractors(2, helpers.ParkingID, false).
		WithTrailers(4, true).
		Build()
}

func waitForTerminal(t *testing.T, manager *jobs.Manager, jobID string) *jobs.Job {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		job, err := manager.Get(jobID)
		require.NoError(t, err)
		switch job.Status() {
		case jobs.StatusCompleted, jobs.StatusFailed, jobs.StatusCancelled:
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not reach a terminal state")
	return nil
}

func TestManager_OptimizePersistsPlan(t *testing.T) {
	store := newMemoryStore(testSnapshot(t), helpers.NewSchedule(t, 1, 0))
	manager := testManager(t, store)

	jobID, err := manager.Start(jobs.StartRequest{ScheduleID: "SCHED-1", Kind: jobs.KindOptimize})
	require.NoError(t, err)

	job := waitForTerminal(t, manager, jobID)
	require.Equal(t, jobs.StatusCompleted, job.Status(), "error: %v", job.Err())

	result := job.Result()
	require.NotNil(t, result)
	assert.True(t, result.Persisted)
	assert.GreaterOrEqual(t, result.TotalLiters, 70000)

	persisted, err := store.FindBySchedule(context.Background(), "SCHED-1")
	require.NoError(t, err)
	assert.Len(t, persisted, len(result.Trips))
	assert.NotEmpty(t, persisted)
}

func TestManager_EstimateDoesNotPersist(t *testing.T) {
	store := newMemoryStore(testSnapshot(t), helpers.NewSchedule(t, 1, 0))
	manager := testManager(t, store)

	jobID, err := manager.Start(jobs.StartRequest{ScheduleID: "SCHED-1", Kind: jobs.KindEstimate})
	require.NoError(t, err)

	job := waitForTerminal(t, manager, jobID)
	require.Equal(t, jobs.StatusCompleted, job.Status(), "error: %v", job.Err())

	result := job.Result()
	require.NotNil(t, result)
	assert.False(t, result.Persisted)
	assert.GreaterOrEqual(t, result.MaxLiters, 70000)

	persisted, err := store.FindBySchedule(context.Background(), "SCHED-1")
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestManager_RejectsSecondJobOnBusySchedule(t *testing.T) {
	store := newMemoryStore(testSnapshot(t), helpers.NewSchedule(t, 1, 0))
	manager := testManager(t, store)

	first, err := manager.Start(jobs.StartRequest{ScheduleID: "SCHED-1", Kind: jobs.KindOptimize})
	require.NoError(t, err)

	// The first job may or may not still be running; only assert the
	// rejection when it is.
	if job, err := manager.Get(first); err == nil && !isTerminal(job.Status()) {
		_, err := manager.Start(jobs.StartRequest{ScheduleID: "SCHED-1", Kind: jobs.KindOptimize})
		assert.ErrorIs(t, err, jobs.ErrScheduleBusy)
	}

	waitForTerminal(t, manager, first)

	// Once finished, a new job is accepted
	second, err := manager.Start(jobs.StartRequest{ScheduleID: "SCHED-1", Kind: jobs.KindOptimize})
	require.NoError(t, err)
	waitForTerminal(t, manager, second)
}

func isTerminal(s jobs.Status) bool {
	return s == jobs.StatusCompleted || s == jobs.StatusFailed || s == jobs.StatusCancelled
}

func TestManager_UnknownScheduleFails(t *testing.T) {
	store := newMemoryStore(testSnapshot(t))
	manager := testManager(t, store)

	jobID, err := manager.Start(jobs.StartRequest{ScheduleID: "NOPE", Kind: jobs.KindOptimize})
	require.NoError(t, err)

	job := waitForTerminal(t, manager, jobID)
	assert.Equal(t, jobs.StatusFailed, job.Status())
	assert.Error(t, job.Err())
}

func TestManager_RejectsUnknownKindAndExcessiveLimit(t *testing.T) {
	store := newMemoryStore(testSnapshot(t), helpers.NewSchedule(t, 1, 0))
	manager := testManager(t, store)

	_, err := manager.Start(jobs.StartRequest{ScheduleID: "SCHED-1", Kind: jobs.Kind("nope")})
	assert.Error(t, err)

	_, err = manager.Start(jobs.StartRequest{
		ScheduleID:       "SCHED-1",
		Kind:             jobs.KindOptimize,
		TimeLimitSeconds: 20000,
	})
	assert.Error(t, err)
}

func TestManager_ResultOnlyWhenCompleted(t *testing.T) {
	store := newMemoryStore(testSnapshot(t), helpers.NewSchedule(t, 1, 0))
	manager := testManager(t, store)

	_, err := manager.Result("missing")
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)

	jobID, err := manager.Start(jobs.StartRequest{ScheduleID: "SCHED-1", Kind: jobs.KindOptimize})
	require.NoError(t, err)
	waitForTerminal(t, manager, jobID)

	result, err := manager.Result(jobID)
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestJob_StatusMapping(t *testing.T) {
	store := newMemoryStore(testSnapshot(t), helpers.NewSchedule(t, 1, 0))
	manager := testManager(t, store)

	jobID, err := manager.Start(jobs.StartRequest{ScheduleID: "SCHED-1", Kind: jobs.KindEstimate})
	require.NoError(t, err)

	job := waitForTerminal(t, manager, jobID)
	assert.Equal(t, jobs.StatusCompleted, job.Status())
	assert.Equal(t, jobs.KindEstimate, job.Kind())
	assert.Equal(t, "SCHED-1", job.ScheduleID())
	assert.NotEmpty(t, job.ID())
}
