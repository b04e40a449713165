package resource

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lenslate/darkroom/adapter/cli"
	"github.com/lenslate/darkroom/internal/resources/application/commands"
)

var consumeCmd = &cobra.Command{
	Use:   "consume <project-id> <gigabytes>",
	Short: "Record storage consumption",
	Long: `Record storage consumption against a production's quota.

Consumption that would exceed the quota is rejected and the
ledger is left untouched.

Examples:
  darkroom resource consume 550e8400-... 64
  darkroom resource consume 550e8400-... 12.5`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ConsumeStorageHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		projectID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid project ID: %w", err)
		}
		units, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid storage amount: %w", err)
		}

		result, err := app.ConsumeStorageHandler.Handle(cmd.Context(), commands.ConsumeStorageCommand{
			ProjectID: projectID,
			Units:     units,
		})
		if err != nil {
			return fmt.Errorf("failed to consume storage: %w", err)
		}

		fmt.Printf("Storage recorded: %.1f %s\n", units, result.Unit)
		fmt.Printf("  used:      %.1f %s\n", result.Used, result.Unit)
		fmt.Printf("  total:     %.1f %s\n", result.Total, result.Unit)
		fmt.Printf("  remaining: %.1f %s\n", result.Remaining, result.Unit)
		return nil
	},
}
