// Package timeline provides timeline projection commands.
package timeline

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for all timeline operations.
var Cmd = &cobra.Command{
	Use:   "timeline",
	Short: "Project schedules and delivery dates",
	Long:  `View the projected schedule and estimated delivery date of a production.`,
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(deliveryCmd)
}
