// Package project provides the project command group.
package project

import (
	"github.com/spf13/cobra"
)

// Cmd is the project command group
var Cmd = &cobra.Command{
	Use:   "project",
	Short: "Manage productions",
	Long:  `Create, list, and drive photography productions through their pipeline.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(advanceCmd)
	Cmd.AddCommand(progressCmd)
	Cmd.AddCommand(archiveCmd)
	Cmd.AddCommand(templatesCmd)
}
