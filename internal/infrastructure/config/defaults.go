package config

import (
	"time"

	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/tasks"
	"github.com/alessandroavenali/fuel-logistics-go/internal/solver"
)

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "fuelplan"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "fuelplan"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Solver defaults; an empty command leaves the greedy fallback in charge
	if cfg.Solver.TimeLimitSeconds == 0 {
		cfg.Solver.TimeLimitSeconds = solver.DefaultTimeLimitSeconds
	}
	if cfg.Solver.NumSearchWorkers == 0 {
		cfg.Solver.NumSearchWorkers = 1
	}

	// Planning defaults mirror the stock grid and ADR limits
	grid := tasks.DefaultGrid()
	if cfg.Planning.ShiftStartMinute == 0 {
		cfg.Planning.ShiftStartMinute = grid.ShiftStartMinute
	}
	if cfg.Planning.ShiftMinutes == 0 {
		cfg.Planning.ShiftMinutes = grid.ShiftMinutes
	}
	if cfg.Planning.SlotMinutes == 0 {
		cfg.Planning.SlotMinutes = grid.SlotMinutes
	}
	if cfg.Planning.EntryStartMinute == 0 {
		cfg.Planning.EntryStartMinute = grid.EntryStartMinute
	}
	if cfg.Planning.EntryEndMinute == 0 {
		cfg.Planning.EntryEndMinute = grid.EntryEndMinute
	}

	limits := tasks.DefaultLimits()
	if cfg.Planning.DailyDriveMinutes == 0 {
		cfg.Planning.DailyDriveMinutes = limits.DailyDriveMinutes
	}
	if cfg.Planning.ExtendedDriveMinutes == 0 {
		cfg.Planning.ExtendedDriveMinutes = limits.ExtendedDriveMinutes
	}
	if cfg.Planning.MaxExtendedPerWeek == 0 {
		cfg.Planning.MaxExtendedPerWeek = limits.MaxExtendedPerWeek
	}
	if cfg.Planning.WeeklyDriveMinutes == 0 {
		cfg.Planning.WeeklyDriveMinutes = limits.WeeklyDriveMinutes
	}
	if cfg.Planning.BiweeklyDriveMinutes == 0 {
		cfg.Planning.BiweeklyDriveMinutes = limits.BiweeklyDriveMinutes
	}

	// Daemon defaults
	if cfg.Daemon.Address == "" {
		cfg.Daemon.Address = "localhost:8090"
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 30 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// Grid converts the planning section into the task time grid
func (p PlanningConfig) Grid() tasks.Grid {
	return tasks.Grid{
		ShiftStartMinute: p.ShiftStartMinute,
		ShiftMinutes:     p.ShiftMinutes,
		SlotMinutes:      p.SlotMinutes,
		EntryStartMinute: p.EntryStartMinute,
		EntryEndMinute:   p.EntryEndMinute,
	}
}

// Limits converts the planning section into the ADR limit set
func (p PlanningConfig) Limits() tasks.Limits {
	limits := tasks.DefaultLimits()
	limits.DailyDriveMinutes = p.DailyDriveMinutes
	limits.ExtendedDriveMinutes = p.ExtendedDriveMinutes
	limits.MaxExtendedPerWeek = p.MaxExtendedPerWeek
	limits.WeeklyDriveMinutes = p.WeeklyDriveMinutes
	limits.BiweeklyDriveMinutes = p.BiweeklyDriveMinutes
	return limits
}
