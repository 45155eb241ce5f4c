package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/shared"
)

// NewTripsCommand creates the trips command group for manual plan editing
func NewTripsCommand() *cobra.Command {
	var scheduleID string

	cmd := &cobra.Command{
		Use:   "trips",
		Short: "List the persisted trips of a schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.close()

			trips, err := app.trips.FindBySchedule(context.Background(), scheduleID)
			if err != nil {
				return err
			}
			if len(trips) == 0 {
				fmt.Println("No trips planned")
				return nil
			}

			total := 0
			for _, t := range trips {
				total += t.DeliveryLiters()
				fmt.Printf("%s  %s  %02d:%02d-%02d:%02d  driver=%s vehicle=%s  %s\n",
					shared.DateKey(t.Date), t.Type,
					t.DepartureMinute/60, t.DepartureMinute%60,
					t.ReturnMinute/60, t.ReturnMinute%60,
					t.DriverID, t.VehicleID, t.ID)
			}
			fmt.Printf("%d trips, %d liters delivered\n", len(trips), total)
			return nil
		},
	}

	cmd.Flags().StringVar(&scheduleID, "schedule", "", "Schedule ID (required)")
	_ = cmd.MarkFlagRequired("schedule")

	cmd.AddCommand(newTripsDeleteCommand())
	return cmd
}

func newTripsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trip-id>",
		Short: "Delete one trip from a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.close()

			if err := app.trips.Delete(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Trip %s deleted\n", args[0])
			return nil
		},
	}
}
