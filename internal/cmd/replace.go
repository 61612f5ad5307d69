package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harrison/bulkrename/internal/fileutil"
	"github.com/harrison/bulkrename/internal/models"
	"github.com/harrison/bulkrename/internal/planner"
)

// NewReplaceCommand creates the replace command
func NewReplaceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replace <directory>",
		Short: "Replace text in file names",
		Long: `Replace every occurrence of a text in the names of the selected files.

Only the part of the name before the extension is changed. Files whose
new name would collide with an existing file or another file of the batch
are handled by the conflict policy (default: add a _1, _2, ... suffix).

Examples:
  bulkrename replace photos --old IMG_ --new holiday_
  bulkrename replace docs -r --old draft --new final --keyword report
  bulkrename replace docs --old " " --new _ --once
  bulkrename replace photos --old IMG --new img --case-sensitive --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: runReplace,
	}

	addScanFlags(cmd, false)
	cmd.Flags().String("old", "", "Text to replace (required)")
	cmd.Flags().String("new", "", "Replacement text (may be empty)")
	cmd.Flags().Bool("once", false, "Replace only the first occurrence in each name")
	_ = cmd.MarkFlagRequired("old")

	return cmd
}

func runReplace(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	dir, err := resolveDir(args[0])
	if err != nil {
		return err
	}

	plan, err := buildReplacePlan(cmd, s, dir)
	if err != nil {
		return err
	}
	return s.apply(cmd.Context(), plan, runRequest{command: "replace", directory: dir})
}

// buildReplacePlan scans dir and plans the replacement described by the flags.
func buildReplacePlan(cmd *cobra.Command, s *session, dir string) (*models.RenamePlan, error) {
	oldText, _ := cmd.Flags().GetString("old")
	newText, _ := cmd.Flags().GetString("new")
	once, _ := cmd.Flags().GetBool("once")
	caseSensitive, _ := cmd.Flags().GetBool("case-sensitive")

	res, err := scanFiles(cmd.Context(), cmd, s, dir)
	if err != nil {
		return nil, err
	}

	p := planner.New(fileutil.OSLister{})
	if once {
		return p.ReplaceFirst(res.Files, oldText, newText, caseSensitive, s.opts), nil
	}
	return p.Replace(res.Files, oldText, newText, caseSensitive, s.opts), nil
}
