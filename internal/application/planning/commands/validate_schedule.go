package commands

import (
	"context"
	"fmt"

	"github.com/alessandroavenali/fuel-logistics-go/internal/application/common"
	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/shared"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/tasks"
)

// ValidateScheduleCommand runs ADR validation over the schedule's
// persisted plan and the existing work logs.
type ValidateScheduleCommand struct {
	ScheduleID string
}

// ValidateScheduleHandler loads the plan and reports ADR findings
type ValidateScheduleHandler struct {
	snapshots planning.SnapshotRepository
	schedules planning.ScheduleRepository
	trips     planning.TripRepository
	grid      tasks.Grid
	limits    tasks.Limits
}

// NewValidateScheduleHandler creates the handler
func NewValidateScheduleHandler(
	snapshots planning.SnapshotRepository,
	schedules planning.ScheduleRepository,
	trips planning.TripRepository,
	grid tasks.Grid,
	limits tasks.Limits,
) *ValidateScheduleHandler {
	return &ValidateScheduleHandler{
		snapshots: snapshots,
		schedules: schedules,
		trips:     trips,
		grid:      grid,
		limits:    limits,
	}
}

// Handle runs the validation
func (h *ValidateScheduleHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ValidateScheduleCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	report, _, err := h.validate(ctx, cmd.ScheduleID)
	return report, err
}

func (h *ValidateScheduleHandler) validate(ctx context.Context, scheduleID string) (*planning.ValidationReport, *planning.Snapshot, error) {
	snap, err := h.snapshots.LoadSnapshot(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	sched, err := h.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	if sched == nil {
		return nil, nil, shared.NewInvalidInputError("schedule not found")
	}

	// Validation inspects the persisted plan; availability only shapes the
	// resolver's driver pools, which are not used here.
	params, err := planning.ResolveParameters(snap, sched, nil, h.grid, h.limits)
	if err != nil {
		return nil, nil, err
	}

	trips, err := h.trips.FindBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load trips: %w", err)
	}

	validator := planning.NewValidator(params.Catalog, h.limits)
	report := validator.Validate(trips, snap.Drivers, params.LogBook)
	return report, snap, nil
}
