// Package parser reads mapping files: explicit lists of "current name ->
// new name" pairs for one directory, written in YAML or Markdown.
package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/bulkrename/internal/models"
)

// Format represents the format of a mapping file
type Format int

const (
	// FormatUnknown represents an unknown or unsupported file format
	FormatUnknown Format = iota
	// FormatMarkdown represents a Markdown (.md, .markdown) mapping file
	FormatMarkdown
	// FormatYAML represents a YAML (.yaml, .yml) mapping file
	FormatYAML
)

// String returns the string representation of the Format
func (f Format) String() string {
	switch f {
	case FormatMarkdown:
		return "markdown"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Mapping is a parsed mapping file.
type Mapping struct {
	// Directory holding the files to rename. Relative values are resolved
	// against the mapping file's directory by ParseFile; empty means that
	// directory itself.
	Directory string
	// Renames in file order
	Renames []models.RenamePair
	// FilePath is the absolute path of the parsed file, set by ParseFile
	FilePath string
}

// Parser is the interface that all mapping parsers must implement
type Parser interface {
	// Parse reads from an io.Reader and returns a parsed Mapping
	Parse(r io.Reader) (*Mapping, error)
}

// DetectFormat automatically detects the mapping format based on file extension
// Supported extensions:
//   - .md, .markdown -> FormatMarkdown
//   - .yaml, .yml -> FormatYAML
//   - all others -> FormatUnknown
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}

// NewParser creates a new parser instance for the specified format
// Returns an error if the format is unknown or unsupported
func NewParser(format Format) (Parser, error) {
	switch format {
	case FormatMarkdown:
		return NewMarkdownParser(), nil
	case FormatYAML:
		return NewYAMLParser(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %v", format)
	}
}

// ParseFile detects the format of path, parses it and resolves the mapping
// directory to an absolute path.
func ParseFile(path string) (*Mapping, error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unknown file format: %s (supported: .md, .markdown, .yaml, .yml)", path)
	}

	parser, err := NewParser(format)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	mapping, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	mapping.FilePath = absPath

	dir := mapping.Directory
	if dir == "" {
		dir = filepath.Dir(absPath)
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(filepath.Dir(absPath), dir)
	}
	mapping.Directory = filepath.Clean(dir)

	return mapping, nil
}

// validatePairs rejects pairs with a blank side. Everything else (illegal
// names, missing sources) is the planner's business and becomes a warning.
func validatePairs(pairs []models.RenamePair) error {
	for i, p := range pairs {
		if strings.TrimSpace(p.From) == "" || strings.TrimSpace(p.To) == "" {
			return fmt.Errorf("rename %d: both from and to are required", i+1)
		}
	}
	return nil
}
