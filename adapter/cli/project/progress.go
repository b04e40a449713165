package project

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lenslate/darkroom/adapter/cli"
	"github.com/lenslate/darkroom/internal/workflow/application/commands"
)

var progressCmd = &cobra.Command{
	Use:   "progress <project-id> <stage-id> <percent>",
	Short: "Update a running stage's progress",
	Long: `Update a running stage's progress percentage (0-99).

Completing a stage is a transition, so 100 is set by
'darkroom project advance ... completed' rather than here.

Examples:
  darkroom project progress 550e8400-... 6ba7b810-... 60`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UpdateStageProgressHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		projectID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid project ID: %w", err)
		}
		stageID, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid stage ID: %w", err)
		}
		progress, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid progress value: %w", err)
		}

		err = app.UpdateStageProgressHandler.Handle(cmd.Context(), commands.UpdateStageProgressCommand{
			ProjectID: projectID,
			StageID:   stageID,
			Progress:  progress,
		})
		if err != nil {
			return fmt.Errorf("failed to update progress: %w", err)
		}

		fmt.Printf("Progress updated: %d%%\n", progress)
		return nil
	},
}
