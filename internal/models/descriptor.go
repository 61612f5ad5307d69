package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileDescriptor is a read-only snapshot of one file taken at scan time.
// The planners never re-read filesystem metadata once a descriptor exists.
type FileDescriptor struct {
	Path       string    // Absolute path
	Name       string    // Base name including extension
	Stem       string    // Base name without extension
	Ext        string    // Extension including the dot (e.g. ".png"), as stored on disk
	Size       int64     // Size in bytes
	ModTime    time.Time // Modification time
	ChangeTime time.Time // Creation time on windows, status-change time elsewhere
}

// Dir returns the parent directory of the described file.
func (f FileDescriptor) Dir() string {
	return filepath.Dir(f.Path)
}

// RelativeTo returns the path of f relative to base, or the full path when
// f does not live under base.
func (f FileDescriptor) RelativeTo(base string) string {
	rel, err := filepath.Rel(base, f.Path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return f.Path
	}
	return rel
}

// SplitName splits a file name into stem and extension the same way the
// descriptors do: the extension is everything from the last dot, except for
// names whose only dot is the leading one (".bashrc" has no extension).
func SplitName(name string) (stem, ext string) {
	ext = filepath.Ext(name)
	if ext == name {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}

// DescribeFile builds a FileDescriptor from the file at path.
func DescribeFile(path string) (FileDescriptor, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return FileDescriptor{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return FileDescriptor{}, fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.Mode().IsRegular() {
		return FileDescriptor{}, fmt.Errorf("not a regular file: %s", abs)
	}
	return describeInfo(abs, info), nil
}

func describeInfo(abs string, info os.FileInfo) FileDescriptor {
	name := info.Name()
	stem, ext := SplitName(name)
	return FileDescriptor{
		Path:       abs,
		Name:       name,
		Stem:       stem,
		Ext:        ext,
		Size:       info.Size(),
		ModTime:    info.ModTime(),
		ChangeTime: changeTime(info),
	}
}

// DescribeInfo builds a FileDescriptor from an already obtained os.FileInfo.
// It is used by the scanner, which stats every entry anyway.
func DescribeInfo(absPath string, info os.FileInfo) FileDescriptor {
	return describeInfo(absPath, info)
}
