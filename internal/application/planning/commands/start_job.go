package commands

import (
	"context"
	"fmt"

	"github.com/alessandroavenali/fuel-logistics-go/internal/application/common"
	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning/jobs"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/driver"
)

// OptimizeScheduleCommand starts a background optimisation job
type OptimizeScheduleCommand struct {
	ScheduleID       string
	Availability     driver.Availability
	TimeLimitSeconds int
}

// EstimateCapacityCommand starts a background capacity-estimation job
type EstimateCapacityCommand struct {
	ScheduleID   string
	Availability driver.Availability
}

// StartJobResponse carries the new job identity
type StartJobResponse struct {
	JobID string
}

// StartJobHandler starts planning jobs of either kind
type StartJobHandler struct {
	manager *jobs.Manager
}

// NewStartJobHandler creates the handler
func NewStartJobHandler(manager *jobs.Manager) *StartJobHandler {
	return &StartJobHandler{manager: manager}
}

// Handle starts the requested job
func (h *StartJobHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	var req jobs.StartRequest
	switch cmd := request.(type) {
	case *OptimizeScheduleCommand:
		req = jobs.StartRequest{
			ScheduleID:       cmd.ScheduleID,
			Kind:             jobs.KindOptimize,
			Availability:     cmd.Availability,
			TimeLimitSeconds: cmd.TimeLimitSeconds,
		}
	case *EstimateCapacityCommand:
		req = jobs.StartRequest{
			ScheduleID:   cmd.ScheduleID,
			Kind:         jobs.KindEstimate,
			Availability: cmd.Availability,
		}
	default:
		return nil, fmt.Errorf("invalid request type")
	}

	jobID, err := h.manager.Start(req)
	if err != nil {
		return nil, err
	}
	return &StartJobResponse{JobID: jobID}, nil
}
