package resource

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lenslate/darkroom/adapter/cli"
	"github.com/lenslate/darkroom/internal/resources/application/commands"
)

var initStorageGB float64

var initCmd = &cobra.Command{
	Use:   "init <project-id>",
	Short: "Provision a resource ledger for a production",
	Long: `Provision a resource ledger for a production.

Ledgers are normally provisioned automatically when a project is
created. This command covers projects that predate automatic
provisioning or whose ledger creation failed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateLedgerHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		projectID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid project ID: %w", err)
		}

		ledgerID, err := app.CreateLedgerHandler.Handle(cmd.Context(), commands.CreateLedgerCommand{
			ProjectID:    projectID,
			StorageTotal: initStorageGB,
		})
		if err != nil {
			return fmt.Errorf("failed to create ledger: %w", err)
		}

		fmt.Printf("Ledger created: %s\n", ledgerID)
		fmt.Printf("  storage quota: %.0f GB\n", initStorageGB)
		return nil
	},
}

func init() {
	initCmd.Flags().Float64Var(&initStorageGB, "storage", 500, "storage quota in GB")
}
