package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/bulkrename/internal/display"
	"github.com/harrison/bulkrename/internal/executor"
	"github.com/harrison/bulkrename/internal/fileutil"
)

// NewRecoverCommand creates the recover command
func NewRecoverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recover <directory>",
		Short: "Restore files stranded under temporary names",
		Long: `Find files left under bulkrename's temporary names by an interrupted
run and rename them back to their original names.

A file is only restored when its original name is free; otherwise it is
left in place and reported so it can be renamed by hand.

Examples:
  bulkrename recover photos --dry-run   # list stranded files
  bulkrename recover photos`,
		Args: cobra.ExactArgs(1),
		RunE: runRecover,
	}

	return cmd
}

func runRecover(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	dir, err := resolveDir(args[0])
	if err != nil {
		return err
	}

	if s.cfg.DryRun {
		names, err := fileutil.OSLister{}.ListNames(dir)
		if err != nil {
			return err
		}
		var stranded []string
		for _, name := range names {
			if original, ok := executor.ParseTempName(name); ok {
				stranded = append(stranded, fmt.Sprintf("%s -> %s", name, original))
			}
		}
		if len(stranded) == 0 {
			fmt.Fprintf(s.out, "No stranded files in %s\n", dir)
			return nil
		}
		fmt.Fprintf(s.out, "Would restore %d file(s):\n", len(stranded))
		for _, line := range stranded {
			fmt.Fprintf(s.out, "  %s\n", line)
		}
		return nil
	}

	locker, err := s.locker()
	if err != nil {
		return err
	}
	engine := executor.New(
		executor.WithLogger(s.consoleLogger()),
		executor.WithLocker(locker),
	)

	report, err := engine.Recover(cmd.Context(), dir)
	if err != nil {
		return fmt.Errorf("recover failed: %w", err)
	}

	if report.Total() == 0 {
		fmt.Fprintf(s.out, "No stranded files in %s\n", dir)
		return nil
	}

	fmt.Fprintf(s.out, "Restored %d file(s)\n", len(report.Restored))
	for _, f := range report.Restored {
		fmt.Fprintf(s.out, "  %s\n", filepath.Base(f.OriginalPath))
	}

	if len(report.Skipped) > 0 {
		var files []string
		for _, f := range report.Skipped {
			files = append(files, fmt.Sprintf("%s (%s)", f.TempPath, f.Reason))
		}
		display.Warning{
			Title:      fmt.Sprintf("%d file(s) left under temporary names", len(report.Skipped)),
			Message:    "Their original names are taken by other files.",
			Files:      files,
			Suggestion: "Rename them by hand, or move the other files away and run recover again.",
		}.Display(s.out, s.color)
	}

	if len(report.Failed) > 0 {
		fmt.Fprintf(s.out, "Failed %d file(s):\n", len(report.Failed))
		for _, f := range report.Failed {
			fmt.Fprintf(s.out, "  - %s: %s\n", f.TempPath, f.Reason)
		}
		return fmt.Errorf("%d file(s) could not be restored", len(report.Failed))
	}
	return nil
}
