package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/driver"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/schedule"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/shared"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/tasks"
	"github.com/alessandroavenali/fuel-logistics-go/internal/solver"
)

// ErrScheduleBusy is returned when a second job is started on a schedule
// that already has one running and queueing is disabled.
var ErrScheduleBusy = fmt.Errorf("a planning job is already running for this schedule")

// ErrJobNotFound is returned for unknown job identities
var ErrJobNotFound = fmt.Errorf("job not found")

// overallPollCap bounds a job's total wall-clock life
const overallPollCap = 4 * time.Hour

// Options tunes the manager
type Options struct {
	// QueueJobs queues a second start request on a busy schedule instead
	// of rejecting it
	QueueJobs bool

	// DefaultTimeLimitSeconds applies when a request carries none
	DefaultTimeLimitSeconds int

	// NumSearchWorkers is passed to the solver. One worker keeps the
	// search deterministic, which materialisation depends on: alternate
	// optima would bind different concrete tractors and trailers and break
	// the litres round-trip against the solver objective.
	NumSearchWorkers int

	Seed int64
}

// StartRequest describes one job
type StartRequest struct {
	ScheduleID       string
	Kind             Kind
	Availability     driver.Availability
	TimeLimitSeconds int
}

// Manager runs planning jobs in the background: one goroutine per job,
// cooperative cancellation via the job's stop channel, at most one job per
// schedule at any time.
type Manager struct {
	snapshots planning.SnapshotRepository
	schedules planning.ScheduleRepository
	trips     planning.TripRepository
	runner    *solver.Runner // nil when no solver child is configured
	greedy    *planning.GreedyPlanner

	grid   tasks.Grid
	limits tasks.Limits
	opts   Options
	clock  shared.Clock
	logger *zap.SugaredLogger

	mu         sync.Mutex
	jobs       map[string]*Job
	bySchedule map[string]*Job
	slots      map[string]chan struct{}
}

// NewManager creates a job manager. runner may be nil; planning then falls
// back to the greedy simulator.
func NewManager(
	snapshots planning.SnapshotRepository,
	schedules planning.ScheduleRepository,
	trips planning.TripRepository,
	runner *solver.Runner,
	grid tasks.Grid,
	limits tasks.Limits,
	opts Options,
	clock shared.Clock,
	logger *zap.SugaredLogger,
) *Manager {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if opts.DefaultTimeLimitSeconds == 0 {
		opts.DefaultTimeLimitSeconds = solver.DefaultTimeLimitSeconds
	}
	if opts.NumSearchWorkers == 0 {
		opts.NumSearchWorkers = 1
	}
	return &Manager{
		snapshots:  snapshots,
		schedules:  schedules,
		trips:      trips,
		runner:     runner,
		greedy:     planning.NewGreedyPlanner(logger),
		grid:       grid,
		limits:     limits,
		opts:       opts,
		clock:      clock,
		logger:     logger,
		jobs:       make(map[string]*Job),
		bySchedule: make(map[string]*Job),
		slots:      make(map[string]chan struct{}),
	}
}

// Start launches a job and returns its identity
func (m *Manager) Start(req StartRequest) (string, error) {
	if req.ScheduleID == "" {
		return "", shared.NewValidationError("scheduleId", "cannot be empty")
	}
	switch req.Kind {
	case KindOptimize, KindEstimate:
	default:
		return "", shared.NewValidationError("kind", fmt.Sprintf("unknown job kind %q", req.Kind))
	}
	if req.TimeLimitSeconds <= 0 {
		req.TimeLimitSeconds = m.opts.DefaultTimeLimitSeconds
	}
	if req.TimeLimitSeconds > solver.MaxTimeLimitSeconds {
		return "", shared.NewValidationError("timeLimitSeconds",
			fmt.Sprintf("must not exceed %d", solver.MaxTimeLimitSeconds))
	}

	m.mu.Lock()
	if existing, ok := m.bySchedule[req.ScheduleID]; ok && !isFinished(existing.Status()) {
		if !m.opts.QueueJobs {
			m.mu.Unlock()
			return "", ErrScheduleBusy
		}
	}
	job := newJob(uuid.New().String(), req.ScheduleID, req.Kind, m.clock)
	m.jobs[job.ID()] = job
	m.bySchedule[req.ScheduleID] = job
	slot := m.slotLocked(req.ScheduleID)
	m.mu.Unlock()

	m.logger.Infow("job accepted", "jobId", job.ID(), "scheduleId", req.ScheduleID, "kind", req.Kind)
	go m.run(job, req, slot)
	return job.ID(), nil
}

func (m *Manager) slotLocked(scheduleID string) chan struct{} {
	slot, ok := m.slots[scheduleID]
	if !ok {
		slot = make(chan struct{}, 1)
		m.slots[scheduleID] = slot
	}
	return slot
}

func isFinished(s Status) bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Get returns a job by identity
func (m *Manager) Get(jobID string) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// Stop requests cooperative cancellation. The job returns the best plan
// seen so far if one exists, otherwise ends cancelled.
func (m *Manager) Stop(jobID string) error {
	job, err := m.Get(jobID)
	if err != nil {
		return err
	}
	job.RequestStop()
	m.logger.Infow("job stop requested", "jobId", jobID)
	return nil
}

// Result returns the finished plan of a completed job
func (m *Manager) Result(jobID string) (*PlanResult, error) {
	job, err := m.Get(jobID)
	if err != nil {
		return nil, err
	}
	if job.Status() != StatusCompleted {
		return nil, fmt.Errorf("job %s is %s, not completed", jobID, job.Status())
	}
	return job.Result(), nil
}

// run executes the whole pipeline of one job in its own goroutine
func (m *Manager) run(job *Job, req StartRequest, slot chan struct{}) {
	// One job per schedule: wait for the schedule's slot, abandoning the
	// queue position if the job is stopped first.
	select {
	case slot <- struct{}{}:
		defer func() { <-slot }()
	case <-job.stop:
		job.cancel()
		return
	}

	if err := job.start(); err != nil {
		job.fail(err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), overallPollCap)
	defer cancel()

	if err := m.execute(ctx, job, req); err != nil {
		m.logger.Warnw("job failed", "jobId", job.ID(), "error", err)
		job.fail(err)
	}
}

func (m *Manager) execute(ctx context.Context, job *Job, req StartRequest) error {
	snap, err := m.snapshots.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	sched, err := m.schedules.FindByID(ctx, req.ScheduleID)
	if err != nil {
		return fmt.Errorf("failed to load schedule: %w", err)
	}
	if sched == nil {
		return shared.NewInvalidInputError("schedule not found")
	}

	if req.Kind == KindEstimate {
		return m.executeEstimate(job, snap, sched, req)
	}
	return m.executeOptimize(ctx, job, snap, sched, req)
}

func (m *Manager) executeEstimate(job *Job, snap *planning.Snapshot, sched *schedule.Schedule, req StartRequest) error {
	plan, _, err := m.greedy.EstimateMax(snap, sched, req.Availability, m.grid, m.limits)
	if err != nil {
		return err
	}
	job.setProgress(Progress{
		Solutions:  1,
		Deliveries: plan.Deliveries,
		Liters:     plan.TotalLiters,
	})
	job.complete(&PlanResult{
		SolverStatus: solver.StatusFeasible,
		Deliveries:   plan.Deliveries,
		TotalLiters:  plan.TotalLiters,
		MaxLiters:    plan.TotalLiters,
	})
	return nil
}

func (m *Manager) executeOptimize(ctx context.Context, job *Job, snap *planning.Snapshot, sched *schedule.Schedule, req StartRequest) error {
	params, err := planning.ResolveParameters(snap, sched, req.Availability, m.grid, m.limits)
	if err != nil {
		return err
	}

	out := m.solve(ctx, job, params, req)
	if out == nil {
		plan, err := m.greedy.Plan(params, sched.RequiredLiters)
		if err != nil {
			return err
		}
		out = plan.ToOutput(params)
		job.setProgress(Progress{Solutions: 1, Deliveries: plan.Deliveries, Liters: plan.TotalLiters})
	}

	if !out.Status.HasPlan() {
		// Timeout without a plan or a proven-infeasible model: record the
		// status, persist nothing.
		result := &PlanResult{SolverStatus: out.Status}
		if job.StopRequested() {
			job.cancel()
			return nil
		}
		job.complete(result)
		return nil
	}

	materializer := planning.NewMaterializer(params, func() string { return uuid.New().String() }, m.logger)
	trips, err := materializer.Materialize(out, sched.ID)
	if err != nil {
		return err
	}

	// Persistence is transactional and ignores stop requests until done
	if err := m.trips.ReplacePlan(ctx, sched.ID, trips); err != nil {
		return fmt.Errorf("failed to persist plan: %w", err)
	}

	job.complete(&PlanResult{
		SolverStatus: out.Status,
		Deliveries:   out.ObjectiveDeliveries,
		TotalLiters:  out.ObjectiveLiters,
		Trips:        trips,
		Persisted:    true,
	})
	return nil
}

// solve runs the solver child when one is configured. A nil return means
// the greedy fallback should plan instead.
func (m *Manager) solve(ctx context.Context, job *Job, params *planning.Parameters, req StartRequest) *solver.Output {
	if m.runner == nil {
		return nil
	}

	in := params.SolverInput(req.TimeLimitSeconds, m.opts.NumSearchWorkers, m.opts.Seed)
	started := m.clock.Now()
	res, err := m.runner.Solve(ctx, in, solver.SolveOptions{
		Stop: job.stop,
		OnProgress: func(p solver.Progress) {
			job.setProgress(Progress{
				Solutions:      p.Solutions,
				Deliveries:     p.ObjectiveDeliveries,
				Liters:         p.ObjectiveLiters,
				ElapsedSeconds: m.clock.Now().Sub(started).Seconds(),
			})
		},
	})
	if err != nil {
		job.addWarnings(fmt.Sprintf("solver unavailable, falling back to greedy planner: %v", err))
		return nil
	}
	job.addWarnings(res.Warnings...)
	if res.Output == nil {
		return nil
	}
	return res.Output
}
