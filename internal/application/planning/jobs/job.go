package jobs

import (
	"sync"
	"time"

	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/shared"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/trip"
	"github.com/alessandroavenali/fuel-logistics-go/internal/solver"
)

// Kind selects what a job computes
type Kind string

const (
	// KindOptimize plans the schedule and persists the trips
	KindOptimize Kind = "optimize"

	// KindEstimate computes the maximum deliverable litres without
	// persisting anything
	KindEstimate Kind = "calculate_max"
)

// Status is the observable job state
type Status string

const (
	StatusQueued     Status = "queued"
	StatusRunning    Status = "running"
	StatusCancelling Status = "cancelling"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Progress is the polling payload, refreshed at least every two seconds
// while the job runs.
type Progress struct {
	Solutions      int     `json:"solutions"`
	Deliveries     int     `json:"objective_deliveries"`
	Liters         int     `json:"objective_liters"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// PlanResult is what a finished job exposes
type PlanResult struct {
	SolverStatus solver.Status `json:"solverStatus"`
	Deliveries   int           `json:"deliveries"`
	TotalLiters  int           `json:"totalLiters"`
	MaxLiters    int           `json:"maxLiters,omitempty"`
	Trips        []*trip.Trip  `json:"trips,omitempty"`
	Persisted    bool          `json:"persisted"`
}

// Job is one long-running planning run. State transitions ride on the
// shared lifecycle machine; the cancelling flag adds the cooperative-stop
// intermediate state the machine does not know about.
type Job struct {
	id         string
	scheduleID string
	kind       Kind

	mu         sync.RWMutex
	lifecycle  *shared.LifecycleStateMachine
	cancelling bool
	progress   Progress
	result     *PlanResult
	warnings   []string
	clock      shared.Clock

	stopOnce sync.Once
	stop     chan struct{}
}

func newJob(id, scheduleID string, kind Kind, clock shared.Clock) *Job {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Job{
		id:         id,
		scheduleID: scheduleID,
		kind:       kind,
		lifecycle:  shared.NewLifecycleStateMachine(clock),
		clock:      clock,
		stop:       make(chan struct{}),
	}
}

// ID returns the job identity
func (j *Job) ID() string { return j.id }

// ScheduleID returns the schedule the job plans
func (j *Job) ScheduleID() string { return j.scheduleID }

// Kind returns what the job computes
func (j *Job) Kind() Kind { return j.kind }

// Status maps the lifecycle state plus the cancelling flag onto the
// observable vocabulary.
func (j *Job) Status() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.statusLocked()
}

func (j *Job) statusLocked() Status {
	if j.cancelling && !j.lifecycle.IsFinished() {
		return StatusCancelling
	}
	switch j.lifecycle.Status() {
	case shared.LifecycleStatusPending:
		return StatusQueued
	case shared.LifecycleStatusRunning:
		return StatusRunning
	case shared.LifecycleStatusCompleted:
		return StatusCompleted
	case shared.LifecycleStatusFailed:
		return StatusFailed
	case shared.LifecycleStatusStopped:
		return StatusCancelled
	default:
		return StatusQueued
	}
}

// Progress returns the latest progress snapshot with live elapsed seconds
func (j *Job) Progress() Progress {
	j.mu.RLock()
	defer j.mu.RUnlock()
	p := j.progress
	if started := j.lifecycle.StartedAt(); started != nil && !j.lifecycle.IsFinished() {
		p.ElapsedSeconds = j.clock.Now().Sub(*started).Seconds()
	}
	return p
}

// Result returns the finished plan, nil until completion
func (j *Job) Result() *PlanResult {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.result
}

// Warnings returns the warnings the run aggregated
func (j *Job) Warnings() []string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return append([]string(nil), j.warnings...)
}

// Err returns the failure error, nil unless the job failed
func (j *Job) Err() error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.lifecycle.LastError()
}

// RequestStop flips the job into cancelling and signals the solver child.
// Stops during materialisation or persistence are honoured only after the
// transaction completes.
func (j *Job) RequestStop() {
	j.mu.Lock()
	if !j.lifecycle.IsFinished() {
		j.cancelling = true
	}
	j.mu.Unlock()
	j.stopOnce.Do(func() { close(j.stop) })
}

// StopRequested reports whether a cooperative stop was delivered
func (j *Job) StopRequested() bool {
	select {
	case <-j.stop:
		return true
	default:
		return false
	}
}

func (j *Job) setProgress(p Progress) {
	j.mu.Lock()
	j.progress = p
	j.mu.Unlock()
}

func (j *Job) addWarnings(warnings ...string) {
	if len(warnings) == 0 {
		return
	}
	j.mu.Lock()
	j.warnings = append(j.warnings, warnings...)
	j.mu.Unlock()
}

func (j *Job) start() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lifecycle.Start()
}

func (j *Job) complete(result *PlanResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = result
	j.cancelling = false
	_ = j.lifecycle.Complete()
}

func (j *Job) fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cancelling = false
	_ = j.lifecycle.Fail(err)
}

func (j *Job) cancel() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cancelling = false
	_ = j.lifecycle.Stop()
}

// StartedAt exposes when the run began (nil while queued)
func (j *Job) StartedAt() *time.Time {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.lifecycle.StartedAt()
}
