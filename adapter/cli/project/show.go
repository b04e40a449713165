package project

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lenslate/darkroom/adapter/cli"
	"github.com/lenslate/darkroom/internal/workflow/application/queries"
)

var showCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show one production's pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetProjectSnapshotHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		projectID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid project ID: %w", err)
		}

		snapshot, err := app.GetProjectSnapshotHandler.Handle(cmd.Context(), queries.GetProjectSnapshotQuery{
			ProjectID: projectID,
		})
		if err != nil {
			return fmt.Errorf("failed to load project: %w", err)
		}

		fmt.Printf("%s\n", snapshot.Name)
		fmt.Println(strings.Repeat("-", 60))
		fmt.Printf("  id:       %s\n", snapshot.ID)
		fmt.Printf("  priority: %s\n", snapshot.Priority)
		fmt.Printf("  phase:    %s\n", snapshot.Phase)
		fmt.Printf("  start:    %s\n", snapshot.PlannedStart.Format("2006-01-02"))
		if snapshot.ArchivedAt != nil {
			fmt.Printf("  archived: %s\n", snapshot.ArchivedAt.Format("2006-01-02"))
		}

		fmt.Println("\nStages:")
		for _, stage := range snapshot.Stages {
			marker := " "
			if stage.Eligible && stage.Status == "pending" {
				marker = ">"
			}
			fmt.Printf("  %s %-20s  %-10s  %3d%%  %s\n",
				marker, stage.Name, stage.Status, stage.Progress, stage.ID)
		}

		if len(snapshot.Team) > 0 {
			fmt.Println("\nTeam:")
			for _, member := range snapshot.Team {
				scope := member.StageScope
				if scope == "" {
					scope = "all stages"
				}
				fmt.Printf("    %-20s  %-12s  %s\n", member.StaffID, member.Role, scope)
			}
		}

		return nil
	},
}
