package commands

import (
	"context"
	"fmt"

	"github.com/alessandroavenali/fuel-logistics-go/internal/application/common"
	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning/jobs"
)

// GetJobQuery polls a job's observable state
type GetJobQuery struct {
	JobID string
}

// StopJobCommand requests cooperative cancellation
type StopJobCommand struct {
	JobID string
}

// JobResultQuery fetches the plan of a completed job
type JobResultQuery struct {
	JobID string
}

// JobStatusResponse is the polling payload
type JobStatusResponse struct {
	JobID    string           `json:"jobId"`
	Status   jobs.Status      `json:"status"`
	Progress *jobs.Progress   `json:"progress,omitempty"`
	Result   *jobs.PlanResult `json:"result,omitempty"`
	Error    string           `json:"error,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
}

// JobStatusHandler serves job polling, stopping and result retrieval
type JobStatusHandler struct {
	manager *jobs.Manager
}

// NewJobStatusHandler creates the handler
func NewJobStatusHandler(manager *jobs.Manager) *JobStatusHandler {
	return &JobStatusHandler{manager: manager}
}

// Handle dispatches on the concrete request type
func (h *JobStatusHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	switch q := request.(type) {
	case *GetJobQuery:
		return h.get(q.JobID)
	case *StopJobCommand:
		if err := h.manager.Stop(q.JobID); err != nil {
			return nil, err
		}
		return h.get(q.JobID)
	case *JobResultQuery:
		return h.manager.Result(q.JobID)
	default:
		return nil, fmt.Errorf("invalid request type")
	}
}

func (h *JobStatusHandler) get(jobID string) (*JobStatusResponse, error) {
	job, err := h.manager.Get(jobID)
	if err != nil {
		return nil, err
	}

	resp := &JobStatusResponse{
		JobID:    job.ID(),
		Status:   job.Status(),
		Warnings: job.Warnings(),
	}
	switch job.Status() {
	case jobs.StatusRunning, jobs.StatusCancelling:
		p := job.Progress()
		resp.Progress = &p
	case jobs.StatusCompleted:
		resp.Result = job.Result()
	case jobs.StatusFailed:
		if err := job.Err(); err != nil {
			resp.Error = err.Error()
		}
	}
	return resp, nil
}
