package resource

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lenslate/darkroom/adapter/cli"
	"github.com/lenslate/darkroom/internal/resources/application/commands"
)

var inUseCmd = &cobra.Command{
	Use:   "in-use <project-id> <item-ref>",
	Short: "Mark allocated equipment as in use",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return markEquipment(cmd, args, "in use", func(app *cli.App) equipmentMarker {
			return app.EquipmentHandler.MarkInUse
		})
	},
}

var returnCmd = &cobra.Command{
	Use:   "return <project-id> <item-ref>",
	Short: "Mark equipment as returned",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return markEquipment(cmd, args, "returned", func(app *cli.App) equipmentMarker {
			return app.EquipmentHandler.MarkReturned
		})
	},
}

type equipmentMarker func(ctx context.Context, cmd commands.MarkEquipmentCommand) error

func markEquipment(cmd *cobra.Command, args []string, label string, pick func(*cli.App) equipmentMarker) error {
	app := cli.GetApp()
	if app == nil || app.EquipmentHandler == nil {
		return fmt.Errorf("application not initialized - database connection required")
	}

	projectID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid project ID: %w", err)
	}

	if err := pick(app)(cmd.Context(), commands.MarkEquipmentCommand{
		ProjectID: projectID,
		ItemRef:   args[1],
	}); err != nil {
		return fmt.Errorf("failed to mark equipment %s: %w", label, err)
	}

	fmt.Printf("Equipment %s: %s\n", label, args[1])
	return nil
}
