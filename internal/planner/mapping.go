package planner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/harrison/bulkrename/internal/models"
)

// Mapping plans explicit renames inside dir. Each pair names a current file
// and the name it should get. Unknown sources, duplicate sources and path
// components in either name are skipped with a warning; unchanged pairs are
// left out.
func (p *Planner) Mapping(dir string, pairs []models.RenamePair, opts models.Options) *models.RenamePlan {
	plan := models.NewRenamePlan(opts)
	dir = filepath.Clean(dir)

	existing, err := p.Lister.ListNames(dir)
	if err != nil {
		return fail(plan, fmt.Errorf("cannot list directory %s: %w", dir, err))
	}
	onDisk := make(map[string]string, len(existing))
	for _, n := range existing {
		onDisk[models.NormalizeName(n, opts.CaseInsensitive)] = n
	}

	seen := make(map[string]bool)
	var cands []candidate
	for _, pair := range pairs {
		if isPathLike(pair.From) || isPathLike(pair.To) {
			plan.AddWarning(fmt.Sprintf("Skip %s -> %s: mapping entries must be plain file names", pair.From, pair.To))
			continue
		}
		actual, ok := onDisk[models.NormalizeName(pair.From, opts.CaseInsensitive)]
		if !ok {
			plan.AddWarning(fmt.Sprintf("Skip %s: source file does not exist", filepath.Join(dir, pair.From)))
			continue
		}
		source := filepath.Join(dir, actual)
		key := models.NormalizeName(actual, opts.CaseInsensitive)
		if seen[key] {
			plan.AddWarning(fmt.Sprintf("Skip %s: listed more than once", source))
			continue
		}
		seen[key] = true

		if pair.To == actual {
			continue
		}
		if !checkName(plan, source, pair.To) {
			continue
		}
		cands = append(cands, candidate{source: source, name: actual, desired: pair.To})
	}

	if len(cands) == 0 {
		return plan
	}
	if err := p.planDir(plan, dir, cands); err != nil {
		return fail(plan, err)
	}
	return plan
}

func isPathLike(name string) bool {
	return strings.ContainsAny(name, `/\`) || name == "." || name == ".."
}
