package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/bulkrename/internal/fileutil"
	"github.com/harrison/bulkrename/internal/models"
)

// addScanFlags registers the file selection flags shared by search, replace,
// sequence and check.
func addScanFlags(cmd *cobra.Command, recursiveDefault bool) {
	cmd.Flags().StringP("keyword", "k", "", "Only select files whose name contains this text")
	cmd.Flags().Bool("case-sensitive", false, "Match the keyword case-sensitively")
	cmd.Flags().BoolP("recursive", "r", recursiveDefault, "Descend into subdirectories")
	cmd.Flags().StringSlice("ext", nil, "Only select files with these extensions (e.g. jpg,.png)")
}

// scanFiles selects the files under dir described by the scan flags.
func scanFiles(ctx context.Context, cmd *cobra.Command, s *session, dir string) (*fileutil.ScanResult, error) {
	keyword, _ := cmd.Flags().GetString("keyword")
	caseSensitive, _ := cmd.Flags().GetBool("case-sensitive")
	recursive, _ := cmd.Flags().GetBool("recursive")
	exts, _ := cmd.Flags().GetStringSlice("ext")

	opts := fileutil.ScanOptionsFrom(keyword, caseSensitive, recursive, s.opts)
	opts.Extensions = exts

	res, err := fileutil.Scan(ctx, dir, opts)
	if err != nil {
		return nil, err
	}
	for _, scanErr := range res.Errors {
		fmt.Fprintf(s.errOut, "Warning: %v\n", scanErr)
	}
	return res, nil
}

// NewSearchCommand creates the search command
func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <directory>",
		Short: "List the files a rename would select",
		Long: `List the files in a directory that match a keyword and extension filter.

Nothing is renamed. Use it to check a selection before running replace or
sequence with the same flags.

Examples:
  bulkrename search photos --keyword IMG_
  bulkrename search docs -r --keyword draft --case-sensitive
  bulkrename search photos --ext jpg,png
  bulkrename search photos --suffixes     # list the extensions present`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	addScanFlags(cmd, false)
	cmd.Flags().Bool("suffixes", false, "List the distinct file extensions in the directory instead")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	dir, err := resolveDir(args[0])
	if err != nil {
		return err
	}

	if listSuffixes, _ := cmd.Flags().GetBool("suffixes"); listSuffixes {
		suffixes, err := fileutil.ListSuffixes(dir, s.opts.IncludeHidden)
		if err != nil {
			return err
		}
		if len(suffixes) == 0 {
			fmt.Fprintf(s.out, "No file extensions found in %s\n", dir)
			return nil
		}
		fmt.Fprintf(s.out, "%s\n", strings.Join(suffixes, " "))
		return nil
	}

	res, err := scanFiles(cmd.Context(), cmd, s, dir)
	if err != nil {
		return err
	}
	printFiles(s, res.Root, res.Files)
	return nil
}

// printFiles lists files relative to root with a count line.
func printFiles(s *session, root string, files []models.FileDescriptor) {
	if len(files) == 0 {
		fmt.Fprintf(s.out, "No matching files in %s\n", root)
		return
	}
	for _, f := range files {
		fmt.Fprintf(s.out, "  %s\n", filepath.ToSlash(f.RelativeTo(root)))
	}
	fmt.Fprintf(s.out, "%d file(s) found\n", len(files))
}
