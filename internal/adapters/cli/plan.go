package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning/jobs"
)

// NewPlanCommand creates the plan command: run an optimisation job to
// completion, streaming progress, and persist the resulting trips.
func NewPlanCommand() *cobra.Command {
	var (
		scheduleID       string
		availabilityPath string
		timeLimitSeconds int
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan a schedule and persist the trips",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.close()

			availability, err := loadAvailability(availabilityPath)
			if err != nil {
				return err
			}

			manager, err := app.jobManager()
			if err != nil {
				return err
			}

			jobID, err := manager.Start(jobs.StartRequest{
				ScheduleID:       scheduleID,
				Kind:             jobs.KindOptimize,
				Availability:     availability,
				TimeLimitSeconds: timeLimitSeconds,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Job %s started\n", jobID)

			result, err := waitForJob(manager, jobID)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&scheduleID, "schedule", "", "Schedule ID to plan (required)")
	cmd.Flags().StringVar(&availabilityPath, "availability", "", "Path to driver-availability JSON file")
	cmd.Flags().IntVar(&timeLimitSeconds, "time-limit", 0, "Solver time limit in seconds")
	_ = cmd.MarkFlagRequired("schedule")
	return cmd
}

// waitForJob polls the job every two seconds, forwarding one cooperative
// stop on Ctrl-C; the job then returns the best plan seen so far.
func waitForJob(manager *jobs.Manager, jobID string) (*jobs.PlanResult, error) {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-interrupt:
			fmt.Fprintln(os.Stderr, "stop requested, waiting for best plan so far...")
			_ = manager.Stop(jobID)
		case <-ticker.C:
		}

		job, err := manager.Get(jobID)
		if err != nil {
			return nil, err
		}
		switch job.Status() {
		case jobs.StatusCompleted:
			return job.Result(), nil
		case jobs.StatusFailed:
			return nil, fmt.Errorf("job failed: %w", job.Err())
		case jobs.StatusCancelled:
			return nil, fmt.Errorf("job cancelled before a feasible plan was found")
		case jobs.StatusRunning, jobs.StatusCancelling:
			p := job.Progress()
			fmt.Fprintf(os.Stderr, "  %5.0fs  %d solutions, best %d liters\n",
				p.ElapsedSeconds, p.Solutions, p.Liters)
		}
	}
}
