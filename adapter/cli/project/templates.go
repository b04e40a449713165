package project

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lenslate/darkroom/adapter/cli"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List available pipeline templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Templates == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		for _, name := range app.Templates.Names() {
			fmt.Println(name)
		}
		return nil
	},
}
