package timeline

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lenslate/darkroom/adapter/cli"
	"github.com/lenslate/darkroom/internal/timeline/application/queries"
)

var showCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show a production's projected schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetTimelineHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		projectID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid project ID: %w", err)
		}

		view, err := app.GetTimelineHandler.Handle(cmd.Context(), queries.GetTimelineQuery{
			ProjectID: projectID,
		})
		if err != nil {
			return fmt.Errorf("failed to load timeline: %w", err)
		}

		fmt.Printf("%-20s  %-10s  %-10s  %s\n", "STAGE", "START", "FINISH", "STATUS")
		for _, m := range view.Milestones {
			status := m.DerivedStatus
			if m.CompletedDate != nil {
				status = fmt.Sprintf("%s (%s)", status, m.CompletedDate.Format("2006-01-02"))
			}
			fmt.Printf("%-20s  %-10s  %-10s  %s\n",
				m.StageName,
				m.PlannedDate.Format("2006-01-02"),
				m.PlannedFinish.Format("2006-01-02"),
				status)
		}

		fmt.Printf("\nEstimated delivery: %s\n", view.EstimatedDelivery.Format("2006-01-02"))
		if view.Delayed {
			fmt.Println("Status: DELAYED")
		}

		return nil
	},
}
