package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/bulkrename/internal/fileutil"
	"github.com/harrison/bulkrename/internal/parser"
	"github.com/harrison/bulkrename/internal/planner"
)

// NewApplyCommand creates the apply command
func NewApplyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <mapping-file>",
		Short: "Rename files listed in a mapping file",
		Long: `Rename files according to explicit old -> new pairs in a YAML or
Markdown mapping file.

YAML:
  directory: photos          # relative to the mapping file; default: its directory
  renames:
    - from: IMG_0001.jpg
      to: beach.jpg

Markdown (optional frontmatter with "directory"):
  - ` + "`IMG_0001.jpg` -> `beach.jpg`" + `
  - ` + "`IMG_0002.jpg` -> `sunset.jpg`" + `

Pairs whose source is missing or listed twice are skipped with a warning.
Swaps (a -> b, b -> a) are allowed.

Examples:
  bulkrename apply renames.yaml --dry-run
  bulkrename apply docs/renames.md --yes`,
		Args: cobra.ExactArgs(1),
		RunE: runApply,
	}

	return cmd
}

func runApply(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	mapping, err := parser.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to load mapping file: %w", err)
	}
	dir, err := resolveDir(mapping.Directory)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Loaded %d rename(s) from %s\n\n", len(mapping.Renames), mapping.FilePath)

	plan := planner.New(fileutil.OSLister{}).Mapping(dir, mapping.Renames, s.opts)
	return s.apply(cmd.Context(), plan, runRequest{command: "apply", directory: dir})
}
