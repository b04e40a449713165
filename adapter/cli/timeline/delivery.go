package timeline

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lenslate/darkroom/adapter/cli"
	"github.com/lenslate/darkroom/internal/timeline/application/queries"
)

var deliveryCmd = &cobra.Command{
	Use:   "delivery <project-id>",
	Short: "Show a production's estimated delivery date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetEstimatedDeliveryHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		projectID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid project ID: %w", err)
		}

		delivery, err := app.GetEstimatedDeliveryHandler.Handle(cmd.Context(), queries.GetTimelineQuery{
			ProjectID: projectID,
		})
		if err != nil {
			return fmt.Errorf("failed to estimate delivery: %w", err)
		}

		fmt.Printf("Estimated delivery: %s\n", delivery.Format("2006-01-02"))
		return nil
	},
}
