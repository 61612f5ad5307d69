package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/bulkrename/internal/fileutil"
	"github.com/harrison/bulkrename/internal/models"
	"github.com/harrison/bulkrename/internal/planner"
)

// maxSequencePadding matches the limit accepted in the configuration file.
const maxSequencePadding = 20

// NewSequenceCommand creates the sequence command
func NewSequenceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sequence <directory>",
		Short: "Rename files to consecutive numbers",
		Long: `Rename the selected files of one directory to prefix + number + suffix,
keeping each file's extension. Files are numbered in the chosen sort order.

Numbering defaults (start, padding, prefix, suffix) come from the
sequence section of the configuration file and can be overridden here.

Examples:
  bulkrename sequence photos --ext jpg --sort mtime
  bulkrename sequence photos --prefix trip_ --start 1 --padding 3
  bulkrename sequence scans --sort name --reverse --name-suffix _scan`,
		Args: cobra.ExactArgs(1),
		RunE: runSequence,
	}

	addScanFlags(cmd, false)
	cmd.Flags().String("sort", "mtime", "Sort key: mtime, size, name, ctime")
	cmd.Flags().Bool("reverse", false, "Number in reverse sort order")
	cmd.Flags().Int("start", 0, "First number (default from config: 1)")
	cmd.Flags().Int("padding", 0, "Zero-pad numbers to this many digits")
	cmd.Flags().String("prefix", "", "Text before the number")
	cmd.Flags().String("name-suffix", "", "Text after the number, before the extension")

	return cmd
}

func runSequence(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	dir, err := resolveDir(args[0])
	if err != nil {
		return err
	}

	params, err := sequenceParams(cmd, s.opts.Sequence)
	if err != nil {
		return err
	}

	res, err := scanFiles(cmd.Context(), cmd, s, dir)
	if err != nil {
		return err
	}

	plan := planner.New(fileutil.OSLister{}).Sequence(res.Files, params, s.opts)
	return s.apply(cmd.Context(), plan, runRequest{command: "sequence", directory: dir})
}

// sequenceParams starts from the configured defaults and applies the flags
// the user set.
func sequenceParams(cmd *cobra.Command, defaults models.SequenceDefaults) (planner.SequenceParams, error) {
	sortFlag, _ := cmd.Flags().GetString("sort")
	key, err := models.ParseSortKey(sortFlag)
	if err != nil {
		return planner.SequenceParams{}, err
	}
	reverse, _ := cmd.Flags().GetBool("reverse")

	params := planner.SequenceFromDefaults(key, reverse, defaults)
	if cmd.Flags().Changed("start") {
		params.Start, _ = cmd.Flags().GetInt("start")
	}
	if cmd.Flags().Changed("padding") {
		params.Padding, _ = cmd.Flags().GetInt("padding")
	}
	if cmd.Flags().Changed("prefix") {
		params.Prefix, _ = cmd.Flags().GetString("prefix")
	}
	if cmd.Flags().Changed("name-suffix") {
		params.Suffix, _ = cmd.Flags().GetString("name-suffix")
	}

	if params.Start < 0 {
		return params, fmt.Errorf("--start must be >= 0, got %d", params.Start)
	}
	if params.Padding < 0 || params.Padding > maxSequencePadding {
		return params, fmt.Errorf("--padding must be between 0 and %d, got %d", maxSequencePadding, params.Padding)
	}
	return params, nil
}
