package commands

import (
	"context"
	"fmt"

	"github.com/alessandroavenali/fuel-logistics-go/internal/application/common"
	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/schedule"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/shared"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/tasks"
)

// ConfirmScheduleCommand transitions a schedule draft → confirmed.
// Confirmation is gated on a persisted plan and an ADR validation with
// zero hard violations.
type ConfirmScheduleCommand struct {
	ScheduleID string
}

// ConfirmScheduleResponse reports the transition outcome
type ConfirmScheduleResponse struct {
	Status schedule.Status            `json:"status"`
	Report *planning.ValidationReport `json:"report"`
}

// ConfirmScheduleHandler guards and applies the confirmation transition
type ConfirmScheduleHandler struct {
	validate  *ValidateScheduleHandler
	schedules planning.ScheduleRepository
	trips     planning.TripRepository
}

// NewConfirmScheduleHandler creates the handler
func NewConfirmScheduleHandler(
	snapshots planning.SnapshotRepository,
	schedules planning.ScheduleRepository,
	trips planning.TripRepository,
	grid tasks.Grid,
	limits tasks.Limits,
) *ConfirmScheduleHandler {
	return &ConfirmScheduleHandler{
		validate:  NewValidateScheduleHandler(snapshots, schedules, trips, grid, limits),
		schedules: schedules,
		trips:     trips,
	}
}

// Handle confirms the schedule when the gate conditions hold
func (h *ConfirmScheduleHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ConfirmScheduleCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	sched, err := h.schedules.FindByID(ctx, cmd.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	if sched == nil {
		return nil, shared.NewInvalidInputError("schedule not found")
	}

	trips, err := h.trips.FindBySchedule(ctx, cmd.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trips: %w", err)
	}
	if len(trips) == 0 {
		return nil, fmt.Errorf("schedule %s has no persisted plan", cmd.ScheduleID)
	}

	report, _, err := h.validate.validate(ctx, cmd.ScheduleID)
	if err != nil {
		return nil, err
	}
	if !report.Clean() {
		return &ConfirmScheduleResponse{Status: sched.Status, Report: report},
			fmt.Errorf("plan has %d ADR violations", len(report.Violations))
	}

	if err := sched.Confirm(); err != nil {
		return nil, err
	}
	if err := h.schedules.Save(ctx, sched); err != nil {
		return nil, fmt.Errorf("failed to save schedule: %w", err)
	}
	return &ConfirmScheduleResponse{Status: sched.Status, Report: report}, nil
}
