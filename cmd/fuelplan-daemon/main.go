package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alessandroavenali/fuel-logistics-go/internal/adapters/httpapi"
	"github.com/alessandroavenali/fuel-logistics-go/internal/adapters/persistence"
	"github.com/alessandroavenali/fuel-logistics-go/internal/application/common"
	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning/commands"
	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning/jobs"
	"github.com/alessandroavenali/fuel-logistics-go/internal/infrastructure/config"
	"github.com/alessandroavenali/fuel-logistics-go/internal/infrastructure/database"
	"github.com/alessandroavenali/fuel-logistics-go/internal/infrastructure/logging"
	"github.com/alessandroavenali/fuel-logistics-go/internal/solver"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	fmt.Println("Fuel Logistics Planner Daemon v0.1.0")

	cfg := config.MustLoadConfig(*configPath)

	if err := run(cfg); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(cfg *config.Config) error {
	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// 1. Store
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Infow("database connected", "type", cfg.Database.Type)

	// 2. Repositories
	snapshotRepo := persistence.NewGormSnapshotRepository(db)
	scheduleRepo := persistence.NewGormScheduleRepository(db)
	tripRepo := persistence.NewGormTripRepository(db)

	// 3. Solver runner (optional: greedy fallback plans when absent)
	var runner *solver.Runner
	if len(cfg.Solver.Command) > 0 {
		runner, err = solver.NewRunner(cfg.Solver.Command, logger)
		if err != nil {
			return err
		}
		logger.Infow("solver configured", "command", cfg.Solver.Command[0])
	} else {
		logger.Infow("no solver configured, using greedy planner")
	}

	// 4. Job manager
	manager := jobs.NewManager(
		snapshotRepo, scheduleRepo, tripRepo, runner,
		cfg.Planning.Grid(), cfg.Planning.Limits(),
		jobs.Options{
			QueueJobs:               cfg.Daemon.QueueJobs,
			DefaultTimeLimitSeconds: cfg.Solver.TimeLimitSeconds,
			NumSearchWorkers:        cfg.Solver.NumSearchWorkers,
			Seed:                    cfg.Solver.Seed,
		},
		nil, logger,
	)

	// 5. Mediator wiring
	mediator := common.NewMediator()
	startHandler := commands.NewStartJobHandler(manager)
	statusHandler := commands.NewJobStatusHandler(manager)
	if err := errors.Join(
		common.RegisterHandler[*commands.OptimizeScheduleCommand](mediator, startHandler),
		common.RegisterHandler[*commands.EstimateCapacityCommand](mediator, startHandler),
		common.RegisterHandler[*commands.GetJobQuery](mediator, statusHandler),
		common.RegisterHandler[*commands.StopJobCommand](mediator, statusHandler),
		common.RegisterHandler[*commands.JobResultQuery](mediator, statusHandler),
		common.RegisterHandler[*commands.ValidateScheduleCommand](mediator,
			commands.NewValidateScheduleHandler(snapshotRepo, scheduleRepo, tripRepo, cfg.Planning.Grid(), cfg.Planning.Limits())),
		common.RegisterHandler[*commands.ConfirmScheduleCommand](mediator,
			commands.NewConfirmScheduleHandler(snapshotRepo, scheduleRepo, tripRepo, cfg.Planning.Grid(), cfg.Planning.Limits())),
	); err != nil {
		return err
	}

	// 6. HTTP surface
	server := &http.Server{
		Addr:    cfg.Daemon.Address,
		Handler: httpapi.NewServer(mediator, logger),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("daemon listening", "address", cfg.Daemon.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-interrupt:
		logger.Infow("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Daemon.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(ctx)
}
