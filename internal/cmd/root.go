package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for bulkrename
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulkrename",
		Short: "Plan and apply bulk file renames safely",
		Long: `bulkrename renames many files at once without losing any of them.

Every command first builds a rename plan: each wanted name is checked
against the files already on disk and against the rest of the batch, and
collisions are resolved before anything is touched. The plan is shown for
confirmation and then applied in two phases through temporary names, so
swaps and chains (a -> b, b -> c) are safe.

Configuration is loaded from .bulkrename/config.yaml if present.
CLI flags override configuration file settings.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	addSharedFlags(cmd)

	// Add subcommands
	cmd.AddCommand(NewSearchCommand())
	cmd.AddCommand(NewReplaceCommand())
	cmd.AddCommand(NewSequenceCommand())
	cmd.AddCommand(NewApplyCommand())
	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(NewRecoverCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewUndoCommand())

	return cmd
}
