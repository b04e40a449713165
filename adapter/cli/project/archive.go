package project

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lenslate/darkroom/adapter/cli"
	"github.com/lenslate/darkroom/internal/workflow/application/commands"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <project-id>",
	Short: "Archive a production",
	Long: `Archive a production to remove it from active listings.

Archived projects are read-only but still visible with
'darkroom project list --all'.`,
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ArchiveProjectHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		projectID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid project ID: %w", err)
		}

		if err := app.ArchiveProjectHandler.Handle(cmd.Context(), commands.ArchiveProjectCommand{
			ProjectID: projectID,
		}); err != nil {
			return fmt.Errorf("failed to archive project: %w", err)
		}

		fmt.Printf("Project archived: %s\n", projectID)
		return nil
	},
}
