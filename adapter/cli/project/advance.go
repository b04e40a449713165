package project

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lenslate/darkroom/adapter/cli"
	"github.com/lenslate/darkroom/internal/workflow/application/commands"
)

var advanceCmd = &cobra.Command{
	Use:   "advance <project-id> <stage-id> <status>",
	Short: "Move a stage to a new status",
	Long: `Move a stage to a new status. A stage can only start once all of
its dependencies are completed or skipped.

Statuses: in_progress, completed, delayed, skipped

Examples:
  darkroom project advance 550e8400-... 6ba7b810-... in_progress
  darkroom project advance 550e8400-... 6ba7b810-... completed`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.AdvanceStageHandler == nil {
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

		result, err := app.AdvanceStageHandler.Handle(cmd.Context(), commands.AdvanceStageCommand{
			ProjectID:    projectID,
			StageID:      stageID,
			TargetStatus: args[2],
		})
		if err != nil {
			return fmt.Errorf("failed to advance stage: %w", err)
		}

		fmt.Printf("Stage advanced to %s\n", args[2])
		fmt.Printf("  project phase: %s\n", result.ProjectPhase)
		if result.CurrentStageID != nil {
			fmt.Printf("  current stage: %s\n", *result.CurrentStageID)
		}

		return nil
	},
}
