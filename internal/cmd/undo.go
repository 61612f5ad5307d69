package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/bulkrename/internal/fileutil"
	"github.com/harrison/bulkrename/internal/planner"
)

// NewUndoCommand creates the undo command
func NewUndoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo <run-id>",
		Short: "Revert a recorded rename run",
		Long: `Rename the files of a recorded run back to their previous names.

Only renames that succeeded are reverted. Files that no longer exist are
skipped with a warning, and a previous name that has been taken since is
resolved with the conflict policy like any other collision. The undo is
itself recorded and can be undone.

Examples:
  bulkrename history
  bulkrename undo 3f2a9c1e --dry-run
  bulkrename undo 3f2a9c1e`,
		Args: cobra.ExactArgs(1),
		RunE: runUndo,
	}

	cmd.Flags().Bool("force", false, "Undo a run that has already been undone")

	return cmd
}

func runUndo(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	run, err := loadRun(cmd, s, args[0])
	if err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("force")
	if run.UndoneBy != "" && !force {
		return fmt.Errorf("run %s was already undone by run %s (use --force to undo it again)", shortID(run.ID), shortID(run.UndoneBy))
	}

	ops := run.Succeeded()
	if len(ops) == 0 {
		fmt.Fprintf(s.out, "Run %s has no completed renames to undo.\n", shortID(run.ID))
		return nil
	}

	fmt.Fprintf(s.out, "Undoing %s run %s in %s\n\n", run.Command, shortID(run.ID), run.Directory)

	plan := planner.New(fileutil.OSLister{}).Undo(ops, s.opts)
	return s.apply(cmd.Context(), plan, runRequest{command: "undo", directory: run.Directory, undoOf: run.ID})
}
