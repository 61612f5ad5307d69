package models

import (
	"fmt"
	"strings"
)

// ConflictPolicy decides what a planner does when a desired name is taken.
type ConflictPolicy int

const (
	// PolicySuffix appends _1, _2, ... before the extension (default).
	PolicySuffix ConflictPolicy = iota
	// PolicySkip drops the file from the plan with a warning.
	PolicySkip
	// PolicyOverwrite replaces files outside the batch. Dangerous; opt-in only.
	PolicyOverwrite
)

// String returns the configuration spelling of the policy.
func (c ConflictPolicy) String() string {
	switch c {
	case PolicySuffix:
		return "suffix"
	case PolicySkip:
		return "skip"
	case PolicyOverwrite:
		return "overwrite"
	default:
		return "unknown"
	}
}

// ParseConflictPolicy parses "suffix", "skip" or "overwrite" (case-insensitive).
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "suffix", "suffix_number", "":
		return PolicySuffix, nil
	case "skip":
		return PolicySkip, nil
	case "overwrite":
		return PolicyOverwrite, nil
	default:
		return PolicySuffix, fmt.Errorf("invalid conflict policy %q, must be one of: suffix, skip, overwrite", s)
	}
}

// SortKey selects the ordering criterion for sequence numbering.
type SortKey int

const (
	SortByModTime SortKey = iota
	SortBySize
	SortByName
	SortByChangeTime
)

// String returns the command-line spelling of the key.
func (k SortKey) String() string {
	switch k {
	case SortByModTime:
		return "mtime"
	case SortBySize:
		return "size"
	case SortByName:
		return "name"
	case SortByChangeTime:
		return "ctime"
	default:
		return "unknown"
	}
}

// ParseSortKey parses "mtime", "size", "name" or "ctime".
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mtime", "":
		return SortByModTime, nil
	case "size":
		return SortBySize, nil
	case "name":
		return SortByName, nil
	case "ctime":
		return SortByChangeTime, nil
	default:
		return SortByModTime, fmt.Errorf("invalid sort key %q, must be one of: mtime, size, name, ctime", s)
	}
}

// SequenceDefaults holds the numbering parameters used when a caller does not
// supply its own.
type SequenceDefaults struct {
	Start   int    // First number assigned
	Padding int    // Zero-padding width; 0 disables padding
	Prefix  string // Literal placed before the number
	Suffix  string // Literal placed after the number, before the extension
}

// Options carries the policy knobs shared by scanning, planning and execution.
type Options struct {
	ConflictPolicy  ConflictPolicy
	CaseInsensitive bool     // Compare names case-folded
	IgnoreDirs      []string // Directory names skipped during traversal
	IncludeHidden   bool     // Include dot-files and dot-directories
	MatchPath       bool     // Match keywords against the relative path, not just the name
	Sequence        SequenceDefaults
}

// DefaultIgnoreDirs are skipped by the scanner unless configured otherwise.
var DefaultIgnoreDirs = []string{".git", "__pycache__", ".rename_backup", "node_modules"}

// DefaultOptions returns the default options. caseInsensitive comes from the
// single startup-time platform decision.
func DefaultOptions(caseInsensitive bool) Options {
	ignore := make([]string, len(DefaultIgnoreDirs))
	copy(ignore, DefaultIgnoreDirs)
	return Options{
		ConflictPolicy:  PolicySuffix,
		CaseInsensitive: caseInsensitive,
		IgnoreDirs:      ignore,
		Sequence:        SequenceDefaults{Start: 1},
	}
}

// NormalizeName folds a name for comparison under the given case policy.
func NormalizeName(name string, caseInsensitive bool) string {
	if caseInsensitive {
		return strings.ToLower(name)
	}
	return name
}
