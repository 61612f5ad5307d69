// Package safety holds the read-only checks run before a plan is executed.
// Nothing here mutates the filesystem; every check returns a verdict and a
// reason, and callers decide whether to abort or continue with the rest.
package safety

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/harrison/bulkrename/internal/models"
	"github.com/harrison/bulkrename/internal/textmatch"
)

// Limits carries the platform ceilings injected at startup.
type Limits struct {
	MaxPathLength int // Longest allowed destination path in characters; 0 means unlimited
}

// Violation is an operation that failed a check.
type Violation struct {
	Op     models.RenameOp
	Reason string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s -> %s: %s", v.Op.Source, v.Op.Destination, v.Reason)
}

// CheckWritable reports whether path can be modified by this process. For a
// path that does not exist yet, its parent directory must exist and be writable.
func CheckWritable(path string) (bool, string) {
	if _, err := os.Lstat(path); err == nil {
		if !writable(path) {
			return false, fmt.Sprintf("file is not writable: %s", path)
		}
		return true, ""
	}

	parent := filepath.Dir(path)
	info, err := os.Stat(parent)
	if err != nil || !info.IsDir() {
		return false, fmt.Sprintf("parent directory does not exist: %s", parent)
	}
	if !writable(parent) {
		return false, fmt.Sprintf("directory is not writable: %s", parent)
	}
	return true, ""
}

// CheckPathLength rejects paths longer than max characters. A max of zero or
// less disables the check.
func CheckPathLength(path string, max int) (bool, string) {
	if max <= 0 {
		return true, ""
	}
	if n := utf8.RuneCountInString(path); n > max {
		return false, fmt.Sprintf("path length (%d) exceeds limit (%d): %s", n, max, path)
	}
	return true, ""
}

// CheckRenameOp validates a single rename: the source is an existing regular
// file, the destination name is legal and short enough, the source and its
// directory are writable, and the destination stays on the source's volume.
func CheckRenameOp(src, dst string, limits Limits) (bool, string) {
	info, err := os.Lstat(src)
	if err != nil {
		return false, fmt.Sprintf("source file does not exist: %s", src)
	}
	if !info.Mode().IsRegular() {
		return false, fmt.Sprintf("source path is not a file: %s", src)
	}
	if ok, reason := textmatch.IsValidName(filepath.Base(dst)); !ok {
		return false, reason
	}
	if ok, reason := CheckPathLength(dst, limits.MaxPathLength); !ok {
		return false, reason
	}
	if ok, reason := CheckWritable(src); !ok {
		return false, reason
	}
	// renaming needs write access to the directory entry, not only the file
	if !writable(filepath.Dir(src)) {
		return false, fmt.Sprintf("directory is not writable: %s", filepath.Dir(src))
	}
	if !IsSameFilesystem(src, dst) {
		return false, fmt.Sprintf("destination is on another filesystem: %s", dst)
	}
	return true, ""
}

// CheckBatch runs CheckRenameOp over ops and returns the failures in op order.
func CheckBatch(ops []models.RenameOp, limits Limits) []Violation {
	var violations []Violation
	for _, op := range ops {
		if ok, reason := CheckRenameOp(op.Source, op.Destination, limits); !ok {
			violations = append(violations, Violation{Op: op, Reason: reason})
		}
	}
	return violations
}

// IsSameFilesystem reports whether a and b live on the same volume. Paths
// that do not exist are judged by their parent directory. Any stat failure
// yields false.
func IsSameFilesystem(a, b string) bool {
	ia, err := statSelfOrParent(a)
	if err != nil {
		return false
	}
	ib, err := statSelfOrParent(b)
	if err != nil {
		return false
	}
	return sameDevice(a, ia, b, ib)
}

func statSelfOrParent(path string) (os.FileInfo, error) {
	if info, err := os.Stat(path); err == nil {
		return info, nil
	}
	return os.Stat(filepath.Dir(path))
}
