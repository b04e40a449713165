package project

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lenslate/darkroom/adapter/cli"
	"github.com/lenslate/darkroom/internal/workflow/application/queries"
)

var (
	listAll      bool
	listPhase    string
	listPriority string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List productions",
	Long: `List productions with optional filters.

Examples:
  darkroom project list
  darkroom project list --phase shooting
  darkroom project list --all`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListProjectsHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		query := queries.ListProjectsQuery{
			IncludeArchived: listAll,
			Phase:           listPhase,
			Priority:        listPriority,
		}

		summaries, err := app.ListProjectsHandler.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}

		if len(summaries) == 0 {
			fmt.Println("No projects found.")
			return nil
		}

		fmt.Printf("%-36s  %-24s  %-8s  %-10s  %s\n", "ID", "NAME", "PRIORITY", "PHASE", "STAGES")
		fmt.Println(strings.Repeat("-", 96))
		for _, s := range summaries {
			name := s.Name
			if s.Archived {
				name += " (archived)"
			}
			fmt.Printf("%-36s  %-24s  %-8s  %-10s  %d/%d\n",
				s.ID, name, s.Priority, s.Phase, s.DoneStages, s.StageCount)
		}

		return nil
	},
}

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include archived projects")
	listCmd.Flags().StringVar(&listPhase, "phase", "", "filter by phase")
	listCmd.Flags().StringVar(&listPriority, "priority", "", "filter by priority")
}
