package schedule

import (
	"fmt"
	"time"

	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/shared"
)

// Status is the lifecycle state of a schedule
type Status string

const (
	// StatusDraft is the editable state a schedule is created in
	StatusDraft Status = "draft"

	// StatusConfirmed is reached only after a plan has been persisted and
	// ADR validation reported zero hard violations
	StatusConfirmed Status = "confirmed"
)

// Schedule is a planning request over a closed date interval
type Schedule struct {
	ID             string
	Name           string
	StartDate      time.Time
	EndDate        time.Time
	RequiredLiters int
	IncludeWeekend bool
	Status         Status

	// Day-zero fleet state attached to the schedule: trailer ID → full,
	// tractor ID → tank full. Unlisted units start empty.
	InitialTrailerFull map[string]bool
	InitialTankFull    map[string]bool
}

// NewSchedule creates a draft schedule over the given interval
func NewSchedule(id, name string, start, end time.Time, requiredLiters int) (*Schedule, error) {
	if id == "" {
		return nil, shared.NewValidationError("id", "cannot be empty")
	}
	if end.Before(start) {
		return nil, shared.NewValidationError("endDate", "cannot precede startDate")
	}
	if requiredLiters < 0 {
		return nil, shared.NewValidationError("requiredLiters", "cannot be negative")
	}
	return &Schedule{
		ID:             id,
		Name:           name,
		StartDate:      start,
		EndDate:        end,
		RequiredLiters: requiredLiters,
		Status:         StatusDraft,
	}, nil
}

// WorkingDates expands the interval into the ordered list of plannable days:
// Monday to Friday, or all seven days when the weekend flag is set.
func (s *Schedule) WorkingDates() []time.Time {
	var dates []time.Time
	for d := s.StartDate; !d.After(s.EndDate); d = d.AddDate(0, 0, 1) {
		if !s.IncludeWeekend {
			switch d.Weekday() {
			case time.Saturday, time.Sunday:
				continue
			}
		}
		dates = append(dates, d)
	}
	return dates
}

// Confirm transitions draft → confirmed. The caller is responsible for
// gating on a persisted plan and a clean ADR validation.
func (s *Schedule) Confirm() error {
	if s.Status != StatusDraft {
		return fmt.Errorf("cannot confirm schedule in %s state", s.Status)
	}
	s.Status = StatusConfirmed
	return nil
}
