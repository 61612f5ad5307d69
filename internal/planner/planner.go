// Package planner builds conflict-free rename plans. Every generator groups
// its files by directory, seeds a fresh resolver with the names on disk,
// releases the batch's own source names and routes each desired name through
// the resolver, so no two operations of a plan ever share a destination.
package planner

import (
	"fmt"
	"path/filepath"

	"github.com/harrison/bulkrename/internal/models"
	"github.com/harrison/bulkrename/internal/resolver"
	"github.com/harrison/bulkrename/internal/sortrules"
	"github.com/harrison/bulkrename/internal/textmatch"
)

// NameLister lists the regular-file names currently present in a directory.
type NameLister interface {
	ListNames(dir string) ([]string, error)
}

// Planner generates rename plans against the directory contents reported by Lister.
type Planner struct {
	Lister NameLister
}

// New creates a Planner reading directory contents through lister.
func New(lister NameLister) *Planner {
	return &Planner{Lister: lister}
}

// candidate is one file that wants a new name inside dir.
type candidate struct {
	source  string // Absolute source path
	name    string // Current base name
	desired string // Wanted base name, already legal
}

// group keeps files of one directory together in first-seen order.
type group struct {
	dir   string
	files []models.FileDescriptor
}

// groupByDir partitions path-sorted files by parent directory.
func groupByDir(files []models.FileDescriptor) []group {
	var groups []group
	index := make(map[string]int)
	for _, f := range sortrules.SortByPath(files) {
		dir := f.Dir()
		i, ok := index[dir]
		if !ok {
			i = len(groups)
			index[dir] = i
			groups = append(groups, group{dir: dir})
		}
		groups[i].files = append(groups[i].files, f)
	}
	return groups
}

// checkName returns false and records a warning when desired is not a legal name.
func checkName(plan *models.RenamePlan, source, desired string) bool {
	if ok, reason := textmatch.IsValidName(desired); !ok {
		plan.AddWarning(fmt.Sprintf("Skip %s: %s", source, reason))
		return false
	}
	return true
}

// planDir resolves the candidates of one directory into ops on plan.
//
// Under the skip policy a skipped file keeps its name, so its name must not
// have been released for the others. The directory is re-planned without
// the skipped files until no further file is skipped.
func (p *Planner) planDir(plan *models.RenamePlan, dir string, cands []candidate) error {
	existing, err := p.Lister.ListNames(dir)
	if err != nil {
		return fmt.Errorf("cannot list directory %s: %w", dir, err)
	}

	movers := cands
	var skipWarnings []string
	for {
		res := resolver.New(plan.Options.CaseInsensitive)
		res.SeedExisting(dir, existing)
		released := make([]string, 0, len(movers))
		for _, c := range movers {
			released = append(released, c.name)
		}
		res.Release(dir, released)

		var ops []models.RenameOp
		var kept []candidate
		skipped := false
		for _, c := range movers {
			op, ok, err := place(res, plan.Options.ConflictPolicy, dir, c)
			if err != nil {
				return err
			}
			if !ok {
				skipWarnings = append(skipWarnings, fmt.Sprintf("Skip %s: destination occupied: %s", c.source, c.desired))
				skipped = true
				continue
			}
			kept = append(kept, c)
			ops = append(ops, op)
		}

		if !skipped {
			plan.Warnings = append(plan.Warnings, skipWarnings...)
			plan.Ops = append(plan.Ops, ops...)
			return nil
		}
		movers = kept
	}
}

// place applies the conflict policy to one candidate. ok is false when the
// skip policy drops the file.
func place(res *resolver.Resolver, policy models.ConflictPolicy, dir string, c candidate) (models.RenameOp, bool, error) {
	op := models.RenameOp{Source: c.source}

	switch policy {
	case models.PolicySuffix:
		final, conflict, err := res.Resolve(dir, c.desired)
		if err != nil {
			return op, false, err
		}
		op.Destination = filepath.Join(dir, final)
		if conflict {
			op.Note = models.ConflictNote(c.desired, final)
		}
	case models.PolicySkip:
		if !res.Claim(dir, c.desired) {
			return op, false, nil
		}
		op.Destination = filepath.Join(dir, c.desired)
	case models.PolicyOverwrite:
		r, err := res.ClaimOverwrite(dir, c.desired)
		if err != nil {
			return op, false, err
		}
		op.Destination = filepath.Join(dir, r.Name)
		switch {
		case r.Overwrites:
			op.Note = models.OverwriteNote(r.Name)
		case r.Conflict:
			op.Note = models.ConflictNote(c.desired, r.Name)
		}
	default:
		return op, false, fmt.Errorf("unsupported conflict policy %d", policy)
	}
	return op, true, nil
}

// fail turns a fatal planning error into a plan-level error and drops all ops.
func fail(plan *models.RenamePlan, err error) *models.RenamePlan {
	plan.AddError(err.Error())
	plan.Ops = []models.RenameOp{}
	return plan
}
