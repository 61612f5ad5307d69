package fileutil

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/harrison/bulkrename/internal/models"
)

// ListSuffixes returns the distinct lower-cased extensions of the regular
// files directly inside dir, sorted. Files without an extension are ignored.
func ListSuffixes(dir string, includeHidden bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if !includeHidden && strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if _, ext := models.SplitName(e.Name()); ext != "" {
			seen[strings.ToLower(ext)] = true
		}
	}

	suffixes := make([]string, 0, len(seen))
	for ext := range seen {
		suffixes = append(suffixes, ext)
	}
	slices.Sort(suffixes)
	return suffixes, nil
}

// ExistingNames returns the set of entry names in dir folded under the case
// policy. Directories count: a file cannot be renamed onto them either.
func ExistingNames(dir string, caseInsensitive bool) (map[string]bool, error) {
	names, err := OSLister{}.ListNames(dir)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[models.NormalizeName(n, caseInsensitive)] = true
	}
	return set, nil
}

// OSLister lists directory entries from the real filesystem.
type OSLister struct{}

// ListNames returns the raw name of every entry in dir, in directory order.
func (OSLister) ListNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}
