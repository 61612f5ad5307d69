package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/bulkrename/internal/history"
)

// NewHistoryCommand creates the history command and its show subcommand
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded rename runs",
		Long: `List the rename runs recorded in the history database, newest first.

Every executed plan is recorded with the outcome of each rename, so a run
can be inspected with 'history show' and reverted with 'undo'.

Examples:
  bulkrename history
  bulkrename history --limit 5
  bulkrename history show 3f2a9c1e`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to list (0 = all)")
	cmd.AddCommand(newHistoryShowCommand())

	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the renames of a recorded run",
		Long: `Show every rename of a recorded run with its outcome.

The run id may be shortened to any unique prefix of at least four characters.`,
		Args: cobra.ExactArgs(1),
		RunE: runHistoryShow,
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	exists, dbPath, err := s.historyExists()
	if err != nil {
		return err
	}
	if !exists {
		fmt.Fprintf(s.out, "No runs recorded yet.\n")
		fmt.Fprintf(s.out, "Database path: %s\n", dbPath)
		return nil
	}

	store, err := s.history()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintf(s.out, "No runs recorded yet.\n")
		return nil
	}

	printRuns(s.out, runs, s.color)
	return nil
}

// printRuns writes one line per run.
func printRuns(w io.Writer, runs []*history.Run, colorOutput bool) {
	dim := color.New(color.Faint)
	if colorOutput {
		dim.EnableColor()
	} else {
		dim.DisableColor()
	}

	fmt.Fprintf(w, "%-10s %-19s %-9s %5s %5s %5s  %s\n", "ID", "STARTED", "COMMAND", "OK", "FAIL", "SKIP", "DIRECTORY")
	for _, run := range runs {
		line := fmt.Sprintf("%-10s %-19s %-9s %5d %5d %5d  %s",
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Command,
			run.SuccessCount, run.FailedCount, run.SkippedCount,
			run.Directory)
		if run.UndoneBy != "" {
			fmt.Fprintln(w, dim.Sprint(line+" (undone)"))
			continue
		}
		fmt.Fprintln(w, line)
	}
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	run, err := loadRun(cmd, s, args[0])
	if err != nil {
		return err
	}

	out := s.out
	fmt.Fprintf(out, "Run:       %s\n", run.ID)
	fmt.Fprintf(out, "Command:   %s\n", run.Command)
	fmt.Fprintf(out, "Directory: %s\n", run.Directory)
	fmt.Fprintf(out, "Started:   %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Duration:  %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(out, "Result:    %d succeeded, %d failed, %d skipped\n", run.SuccessCount, run.FailedCount, run.SkippedCount)
	if run.UndoneBy != "" {
		fmt.Fprintf(out, "Undone by: %s\n", run.UndoneBy)
	}

	if len(run.Operations) > 0 {
		fmt.Fprintf(out, "\nRenames:\n")
		for _, op := range run.Operations {
			fmt.Fprintf(out, "  [%s] %s -> %s", op.Status, displayPath(run.Directory, op.Source), displayPath(run.Directory, op.Destination))
			if op.Error != "" {
				fmt.Fprintf(out, ": %s", op.Error)
			}
			if op.NeedsRecovery {
				fmt.Fprintf(out, " [needs recovery]")
			}
			fmt.Fprintln(out)
		}
	}
	for _, w := range run.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	for _, n := range run.Notices {
		fmt.Fprintf(out, "notice: %s\n", n)
	}
	return nil
}

// loadRun opens the history store and fetches run id with friendly errors.
func loadRun(cmd *cobra.Command, s *session, id string) (*history.Run, error) {
	exists, dbPath, err := s.historyExists()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("no runs recorded yet (database path: %s)", dbPath)
	}
	store, err := s.history()
	if err != nil {
		return nil, err
	}

	run, err := store.GetRun(cmd.Context(), id)
	if err != nil {
		if errors.Is(err, history.ErrAmbiguousID) {
			return nil, fmt.Errorf("%w, use more characters", err)
		}
		return nil, err
	}
	return run, nil
}

// displayPath shows path relative to dir when it lies inside it.
func displayPath(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
