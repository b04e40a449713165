package project

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lenslate/darkroom/adapter/cli"
	"github.com/lenslate/darkroom/internal/workflow/application/commands"
)

var (
	createTemplate string
	createPriority string
	createStart    string
)

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new production",
	Long: `Create a new production from a pipeline template.

Examples:
  darkroom project create "Hansen Wedding" --template wedding
  darkroom project create "Spring Catalog" --template commercial --priority high --start 2026-09-14`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateProjectHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		name := args[0]

		create := commands.CreateProjectCommand{
			Name:         name,
			Priority:     createPriority,
			Template:     createTemplate,
			PlannedStart: time.Now().UTC(),
		}

		if createStart != "" {
			parsed, err := time.Parse("2006-01-02", createStart)
			if err != nil {
				return fmt.Errorf("invalid start date format (use YYYY-MM-DD): %w", err)
			}
			create.PlannedStart = parsed
		}

		ctx := cmd.Context()
		result, err := app.CreateProjectHandler.Handle(ctx, create)
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		fmt.Printf("Project created: %s\n", result.ProjectID)
		fmt.Printf("  name: %s\n", name)
		fmt.Printf("  template: %s\n", createTemplate)
		fmt.Printf("  phase: %s\n", result.Phase)

		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&createTemplate, "template", "t", "wedding", "pipeline template name")
	createCmd.Flags().StringVarP(&createPriority, "priority", "p", "medium", "priority (low, medium, high, urgent)")
	createCmd.Flags().StringVar(&createStart, "start", "", "planned start date (YYYY-MM-DD)")
}
