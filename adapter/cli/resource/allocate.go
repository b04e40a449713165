package resource

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lenslate/darkroom/adapter/cli"
	"github.com/lenslate/darkroom/internal/resources/application/commands"
)

var allocateQuantity int

var allocateCmd = &cobra.Command{
	Use:   "allocate <project-id> <item-ref>",
	Short: "Reserve equipment for a production",
	Long: `Reserve equipment for a production.

Examples:
  darkroom resource allocate 550e8400-... camera-a7iv
  darkroom resource allocate 550e8400-... strobe-kit --quantity 2`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.EquipmentHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		projectID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid project ID: %w", err)
		}

		if err := app.EquipmentHandler.Allocate(cmd.Context(), commands.AllocateEquipmentCommand{
			ProjectID: projectID,
			ItemRef:   args[1],
			Quantity:  allocateQuantity,
		}); err != nil {
			return fmt.Errorf("failed to allocate equipment: %w", err)
		}

		fmt.Printf("Allocated: %s x%d\n", args[1], allocateQuantity)
		return nil
	},
}

func init() {
	allocateCmd.Flags().IntVarP(&allocateQuantity, "quantity", "q", 1, "number of units")
}
