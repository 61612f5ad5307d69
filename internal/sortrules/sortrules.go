// Package sortrules orders file descriptors deterministically for sequence
// numbering and per-directory processing.
package sortrules

import (
	"cmp"
	"slices"
	"strings"

	"github.com/harrison/bulkrename/internal/models"
)

// Compare returns a comparison function for key. Ties on the primary
// criterion break on the case-folded name, then on the raw name, then on the
// full path, so the order is total.
func Compare(key models.SortKey) func(a, b models.FileDescriptor) int {
	var primary func(a, b models.FileDescriptor) int
	switch key {
	case models.SortByModTime:
		primary = func(a, b models.FileDescriptor) int { return a.ModTime.Compare(b.ModTime) }
	case models.SortBySize:
		primary = func(a, b models.FileDescriptor) int { return cmp.Compare(a.Size, b.Size) }
	case models.SortByChangeTime:
		primary = func(a, b models.FileDescriptor) int { return a.ChangeTime.Compare(b.ChangeTime) }
	case models.SortByName:
		primary = func(a, b models.FileDescriptor) int { return 0 }
	default:
		primary = func(a, b models.FileDescriptor) int { return a.ModTime.Compare(b.ModTime) }
	}

	return func(a, b models.FileDescriptor) int {
		if c := primary(a, b); c != 0 {
			return c
		}
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	}
}

// SortFiles returns a sorted copy of files. The input slice is not modified.
func SortFiles(files []models.FileDescriptor, key models.SortKey, reverse bool) []models.FileDescriptor {
	sorted := slices.Clone(files)
	compare := Compare(key)
	if reverse {
		slices.SortStableFunc(sorted, func(a, b models.FileDescriptor) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(sorted, compare)
	}
	return sorted
}

// SortByPath returns a copy of files ordered by case-folded full path.
func SortByPath(files []models.FileDescriptor) []models.FileDescriptor {
	sorted := slices.Clone(files)
	slices.SortStableFunc(sorted, func(a, b models.FileDescriptor) int {
		if c := strings.Compare(strings.ToLower(a.Path), strings.ToLower(b.Path)); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	return sorted
}
