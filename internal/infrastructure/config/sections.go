package config

import "time"

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Type     string `mapstructure:"type" validate:"oneof=postgres sqlite"`
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"` // SQLite file path, ":memory:" for tests

	Pool PoolConfig `mapstructure:"pool"`
}

// PoolConfig holds connection pool settings
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open"`
	MaxIdle     int           `mapstructure:"max_idle"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}

// SolverConfig holds the constraint-programming child process settings.
// An empty command disables the solver; planning then uses the greedy
// simulator.
type SolverConfig struct {
	Command          []string `mapstructure:"command"`
	TimeLimitSeconds int      `mapstructure:"time_limit_seconds" validate:"min=0,max=14400"`

	// One search worker keeps the engine deterministic so materialised
	// vehicle and trailer bindings reproduce across runs.
	NumSearchWorkers int   `mapstructure:"num_search_workers" validate:"min=0"`
	Seed             int64 `mapstructure:"seed"`
}

// PlanningConfig holds the time grid and regulatory limits
type PlanningConfig struct {
	ShiftStartMinute int `mapstructure:"shift_start_minute"`
	ShiftMinutes     int `mapstructure:"shift_minutes" validate:"min=0"`
	SlotMinutes      int `mapstructure:"slot_minutes" validate:"min=0"`
	EntryStartMinute int `mapstructure:"entry_start_minute"`
	EntryEndMinute   int `mapstructure:"entry_end_minute"`

	DailyDriveMinutes    int `mapstructure:"daily_drive_minutes"`
	ExtendedDriveMinutes int `mapstructure:"extended_drive_minutes"`
	MaxExtendedPerWeek   int `mapstructure:"max_extended_per_week"`
	WeeklyDriveMinutes   int `mapstructure:"weekly_drive_minutes"`
	BiweeklyDriveMinutes int `mapstructure:"biweekly_drive_minutes"`
}

// DaemonConfig holds the daemon process settings
type DaemonConfig struct {
	Address         string        `mapstructure:"address"`
	QueueJobs       bool          `mapstructure:"queue_jobs"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
	Output string `mapstructure:"output"`
}
