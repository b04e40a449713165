// Package resource provides resource ledger commands.
package resource

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for all resource operations.
var Cmd = &cobra.Command{
	Use:   "resource",
	Short: "Equipment and storage ledgers",
	Long: `Track equipment checkouts and storage consumption per production.

Every production gets one ledger. Equipment moves through
allocated -> in-use -> returned, and storage draws down a fixed quota.`,
}

func init() {
	Cmd.AddCommand(initCmd)
	Cmd.AddCommand(allocateCmd)
	Cmd.AddCommand(inUseCmd)
	Cmd.AddCommand(returnCmd)
	Cmd.AddCommand(consumeCmd)
	Cmd.AddCommand(showCmd)
}
