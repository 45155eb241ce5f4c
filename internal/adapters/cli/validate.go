package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning"
	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning/commands"
)

// NewValidateCommand creates the validate command: run ADR validation over
// the schedule's persisted plan.
func NewValidateCommand() *cobra.Command {
	var scheduleID string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a schedule's plan against the ADR driver-hour rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.close()

			handler := commands.NewValidateScheduleHandler(
				app.snapshots, app.schedules, app.trips,
				app.cfg.Planning.Grid(), app.cfg.Planning.Limits())

			resp, err := handler.Handle(context.Background(),
				&commands.ValidateScheduleCommand{ScheduleID: scheduleID})
			if err != nil {
				return err
			}
			report := resp.(*planning.ValidationReport)

			if err := printJSON(report); err != nil {
				return err
			}
			if !report.Clean() {
				return fmt.Errorf("%d ADR violations found", len(report.Violations))
			}
			fmt.Println("Plan is ADR-clean")
			return nil
		},
	}

	cmd.Flags().StringVar(&scheduleID, "schedule", "", "Schedule ID to validate (required)")
	_ = cmd.MarkFlagRequired("schedule")
	return cmd
}

// NewConfirmCommand creates the confirm command: draft → confirmed, gated
// on a persisted plan and a clean ADR validation.
func NewConfirmCommand() *cobra.Command {
	var scheduleID string

	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Confirm a schedule whose plan validates cleanly",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.close()

			handler := commands.NewConfirmScheduleHandler(
				app.snapshots, app.schedules, app.trips,
				app.cfg.Planning.Grid(), app.cfg.Planning.Limits())

			resp, err := handler.Handle(context.Background(),
				&commands.ConfirmScheduleCommand{ScheduleID: scheduleID})
			if err != nil {
				return err
			}
			result := resp.(*commands.ConfirmScheduleResponse)
			fmt.Printf("Schedule %s is now %s\n", scheduleID, result.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&scheduleID, "schedule", "", "Schedule ID to confirm (required)")
	_ = cmd.MarkFlagRequired("schedule")
	return cmd
}
