package solver

import (
	"fmt"
)

// InitialState is the day-zero yard balance handed to the solver
type InitialState struct {
	FullTrailers  int `json:"FT"`
	EmptyTrailers int `json:"ET"`
	FullTanks     int `json:"Tf"`
	EmptyTanks    int `json:"Te"`
}

// Input is the JSON document written to the solver child's standard input.
// Times are minutes, slots are 15-minute units; field names are part of the
// wire contract and must not change.
type Input struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	ParkingDrivers     []int `json:"D_T"`
	DestinationDrivers []int `json:"D_L"`

	InitialState InitialState `json:"initial_state"`

	LitersPerUnit int `json:"liters_per_unit"`
	TotalTrailers int `json:"total_trailers"`
	TotalTractors int `json:"total_tractors"`

	ShiftMinutes int `json:"shift_minutes"`
	SlotMinutes  int `json:"slot_minutes"`

	DriveMinutesDaily       int `json:"drive_minutes_daily"`
	DriveMinutesExtended    int `json:"drive_minutes_extended"`
	MaxExtendedDaysPerWeek  int `json:"max_extended_days_per_week"`
	WeeklyDriveLimitMinutes int `json:"weekly_drive_limit_minutes"`
	BiweeklyDriveLimit      int `json:"biweekly_drive_limit_minutes"`

	// Destination entry window, minutes relative to shift start
	EntryStartMinutes int `json:"livigno_entry_start_minutes"`
	EntryEndMinutes   int `json:"livigno_entry_end_minutes"`

	TimeLimitSeconds int   `json:"time_limit_seconds"`
	NumSearchWorkers int   `json:"num_search_workers"`
	Seed             int64 `json:"seed"`
}

// Validate rejects documents the solver child would refuse
func (in *Input) Validate() error {
	if in.StartDate == "" || in.EndDate == "" {
		return fmt.Errorf("solver input: missing horizon dates")
	}
	if len(in.ParkingDrivers) == 0 || len(in.ParkingDrivers) != len(in.DestinationDrivers) {
		return fmt.Errorf("solver input: driver count vectors must be non-empty and equal length")
	}
	if in.SlotMinutes <= 0 || in.ShiftMinutes%in.SlotMinutes != 0 {
		return fmt.Errorf("solver input: shift must be a whole number of slots")
	}
	if in.TotalTrailers <= 0 || in.TotalTractors <= 0 {
		return fmt.Errorf("solver input: fleet totals must be positive")
	}
	if in.TimeLimitSeconds <= 0 {
		return fmt.Errorf("solver input: time limit must be positive")
	}
	return nil
}

// Days returns the horizon length in working days
func (in *Input) Days() int {
	return len(in.ParkingDrivers)
}
