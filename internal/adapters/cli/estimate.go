package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning/jobs"
)

// NewEstimateCommand creates the estimate command: compute the maximum
// deliverable litres for a schedule without persisting anything.
func NewEstimateCommand() *cobra.Command {
	var (
		scheduleID       string
		availabilityPath string
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the maximum deliverable liters of a schedule",
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
				ScheduleID:   scheduleID,
				Kind:         jobs.KindEstimate,
				Availability: availability,
			})
			if err != nil {
				return err
			}

			result, err := waitForJob(manager, jobID)
			if err != nil {
				return err
			}
			fmt.Printf("Maximum deliverable: %d liters (%d deliveries)\n",
				result.MaxLiters, result.Deliveries)
			return nil
		},
	}

	cmd.Flags().StringVar(&scheduleID, "schedule", "", "Schedule ID to estimate (required)")
	cmd.Flags().StringVar(&availabilityPath, "availability", "", "Path to driver-availability JSON file")
	_ = cmd.MarkFlagRequired("schedule")
	return cmd
}
