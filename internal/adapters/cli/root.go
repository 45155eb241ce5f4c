package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fuelplan",
		Short: "Fuel logistics planner - schedule tanker runs Milano → Tirano → Livigno",
		Long: `fuelplan plans fuel-tanker operations over a schedule horizon, subject to
ADR driver-hour rules, road-access windows and the available fleet.

Examples:
  fuelplan plan --schedule SCHED-1 --time-limit 60
  fuelplan estimate --schedule SCHED-1
  fuelplan validate --schedule SCHED-1
  fuelplan confirm --schedule SCHED-1
  fuelplan trips --schedule SCHED-1`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: search ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	rootCmd.AddCommand(NewPlanCommand())
	rootCmd.AddCommand(NewEstimateCommand())
	rootCmd.AddCommand(NewValidateCommand())
	rootCmd.AddCommand(NewConfirmCommand())
	rootCmd.AddCommand(NewTripsCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
