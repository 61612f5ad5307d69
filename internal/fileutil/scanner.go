package fileutil

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/bulkrename/internal/executor"
	"github.com/harrison/bulkrename/internal/models"
	"github.com/harrison/bulkrename/internal/sortrules"
	"github.com/harrison/bulkrename/internal/textmatch"
)

// ScanOptions configures the directory scanning behavior
type ScanOptions struct {
	// Keyword must appear in the matched text; empty matches every file
	Keyword string
	// CaseSensitive controls keyword matching
	CaseSensitive bool
	// MatchPath matches the keyword against the path relative to the root
	MatchPath bool
	// IncludeHidden includes dot-files and enters dot-directories
	IncludeHidden bool
	// IgnoreDirs is a list of directory names never entered
	IgnoreDirs []string
	// Recursive enables recursive directory scanning
	Recursive bool
	// Extensions is a list of file extensions to include (e.g., ".jpg", "png")
	Extensions []string
}

// ScanOptionsFrom derives scan options from the shared rename options.
func ScanOptionsFrom(keyword string, caseSensitive bool, recursive bool, opts models.Options) ScanOptions {
	return ScanOptions{
		Keyword:       keyword,
		CaseSensitive: caseSensitive,
		MatchPath:     opts.MatchPath,
		IncludeHidden: opts.IncludeHidden,
		IgnoreDirs:    opts.IgnoreDirs,
		Recursive:     recursive,
	}
}

// ScanResult contains the results of a directory scan
type ScanResult struct {
	// Root is the absolute scanned directory
	Root string
	// Files holds a snapshot of every matched file, sorted by path
	Files []models.FileDescriptor
	// Errors contains non-fatal errors encountered during scanning
	Errors []error
}

// Scan walks root and describes every file matching opts.
func Scan(ctx context.Context, root string, opts ScanOptions) (*ScanResult, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", abs)
	}

	result := &ScanResult{
		Root:   abs,
		Files:  make([]models.FileDescriptor, 0),
		Errors: make([]error, 0),
	}

	extMap := make(map[string]bool)
	for _, ext := range opts.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extMap[strings.ToLower(ext)] = true
	}

	ignoreMap := make(map[string]bool)
	for _, dir := range opts.IgnoreDirs {
		ignoreMap[dir] = true
	}

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == abs {
				return err
			}
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil
		}
		if path == abs {
			return nil
		}

		name := d.Name()
		hidden := strings.HasPrefix(name, ".")

		if d.IsDir() {
			if !opts.Recursive || ignoreMap[name] || (hidden && !opts.IncludeHidden) {
				return filepath.SkipDir
			}
			return nil
		}

		if (hidden && !opts.IncludeHidden) || executor.IsTempName(name) {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if len(extMap) > 0 {
			_, ext := models.SplitName(name)
			if !extMap[strings.ToLower(ext)] {
				return nil
			}
		}

		if opts.Keyword != "" {
			target := name
			if opts.MatchPath {
				target, _ = filepath.Rel(abs, path)
			}
			if !textmatch.Contains(target, opts.Keyword, opts.CaseSensitive) {
				return nil
			}
		}

		fi, err := d.Info()
		if err != nil {
			// removed between listing and stat
			result.Errors = append(result.Errors, fmt.Errorf("cannot access %s: %w", path, err))
			return nil
		}
		result.Files = append(result.Files, models.DescribeInfo(path, fi))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	result.Files = sortrules.SortByPath(result.Files)
	return result, nil
}
