package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/alessandroavenali/fuel-logistics-go/internal/adapters/persistence"
	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning/jobs"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/driver"
	"github.com/alessandroavenali/fuel-logistics-go/internal/infrastructure/config"
	"github.com/alessandroavenali/fuel-logistics-go/internal/infrastructure/database"
	"github.com/alessandroavenali/fuel-logistics-go/internal/infrastructure/logging"
	"github.com/alessandroavenali/fuel-logistics-go/internal/solver"

	"go.uber.org/zap"
)

// appContext bundles what every CLI command needs
type appContext struct {
	cfg    *config.Config
	db     *gorm.DB
	logger *zap.SugaredLogger

	snapshots *persistence.GormSnapshotRepository
	schedules *persistence.GormScheduleRepository
	trips     *persistence.GormTripRepository
}

// bootstrap loads config, opens the store and builds the repositories
func bootstrap() (*appContext, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "console"
	}

	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, err
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &appContext{
		cfg:       cfg,
		db:        db,
		logger:    logger,
		snapshots: persistence.NewGormSnapshotRepository(db),
		schedules: persistence.NewGormScheduleRepository(db),
		trips:     persistence.NewGormTripRepository(db),
	}, nil
}

// close releases the app context
func (a *appContext) close() {
	_ = database.Close(a.db)
	_ = a.logger.Sync()
}

// jobManager builds the planning job manager from the app context
func (a *appContext) jobManager() (*jobs.Manager, error) {
	var runner *solver.Runner
	if len(a.cfg.Solver.Command) > 0 {
		var err error
		runner, err = solver.NewRunner(a.cfg.Solver.Command, a.logger)
		if err != nil {
			return nil, err
		}
	}
	return jobs.NewManager(
		a.snapshots,
		a.schedules,
		a.trips,
		runner,
		a.cfg.Planning.Grid(),
		a.cfg.Planning.Limits(),
		jobs.Options{
			QueueJobs:               a.cfg.Daemon.QueueJobs,
			DefaultTimeLimitSeconds: a.cfg.Solver.TimeLimitSeconds,
			NumSearchWorkers:        a.cfg.Solver.NumSearchWorkers,
			Seed:                    a.cfg.Solver.Seed,
		},
		nil,
		a.logger,
	), nil
}

// loadAvailability reads a driver-availability JSON file:
// {"driverId": {"2025-03-03": true, ...}, ...}
func loadAvailability(path string) (driver.Availability, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read availability file: %w", err)
	}
	var avail driver.Availability
	if err := json.Unmarshal(raw, &avail); err != nil {
		return nil, fmt.Errorf("invalid availability file: %w", err)
	}
	return avail, nil
}

// printJSON renders any payload as indented JSON on stdout
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
