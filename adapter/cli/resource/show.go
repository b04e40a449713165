package resource

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lenslate/darkroom/adapter/cli"
	"github.com/lenslate/darkroom/internal/resources/application/queries"
)

var showCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show a production's resource ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetLedgerHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		projectID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid project ID: %w", err)
		}

		view, err := app.GetLedgerHandler.Handle(cmd.Context(), queries.GetLedgerQuery{
			ProjectID: projectID,
		})
		if err != nil {
			return fmt.Errorf("failed to load ledger: %w", err)
		}

		fmt.Printf("Ledger %s\n", view.LedgerID)
		fmt.Printf("Storage: %.1f / %.1f %s used (%.1f remaining)\n",
			view.StorageUsed, view.StorageTotal, view.StorageUnit, view.StorageRemaining)

		if len(view.Equipment) == 0 {
			fmt.Println("\nNo equipment allocated.")
			return nil
		}

		fmt.Printf("\n%-24s  %-8s  %s\n", "ITEM", "QTY", "STATE")
		for _, line := range view.Equipment {
			fmt.Printf("%-24s  %-8d  %s\n", line.ItemRef, line.Quantity, line.State)
		}

		return nil
	},
}
