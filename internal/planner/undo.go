package planner

import (
	"fmt"
	"path/filepath"

	"github.com/harrison/bulkrename/internal/models"
)

// Undo plans the inverse of previously executed ops: every destination is
// renamed back to its source name. Files that are gone are skipped with a
// warning; a source name taken in the meantime is resolved like any other
// conflict under opts.
func (p *Planner) Undo(ops []models.RenameOp, opts models.Options) *models.RenamePlan {
	plan := models.NewRenamePlan(opts)

	byDir := make(map[string][]models.RenameOp)
	var order []string
	for _, op := range ops {
		if models.IsNoOp(op) {
			continue
		}
		dir := filepath.Dir(op.Destination)
		if filepath.Dir(op.Source) != dir {
			plan.AddWarning(fmt.Sprintf("Skip %s: cannot undo a move across directories", op.Destination))
			continue
		}
		if _, ok := byDir[dir]; !ok {
			order = append(order, dir)
		}
		byDir[dir] = append(byDir[dir], op)
	}

	for _, dir := range order {
		existing, err := p.Lister.ListNames(dir)
		if err != nil {
			return fail(plan, fmt.Errorf("cannot list directory %s: %w", dir, err))
		}
		present := make(map[string]bool, len(existing))
		for _, n := range existing {
			present[n] = true
		}

		var cands []candidate
		for _, op := range byDir[dir] {
			current := filepath.Base(op.Destination)
			if !present[current] {
				plan.AddWarning(fmt.Sprintf("Skip %s: file no longer exists", op.Destination))
				continue
			}
			desired := filepath.Base(op.Source)
			if !checkName(plan, op.Destination, desired) {
				continue
			}
			cands = append(cands, candidate{source: op.Destination, name: current, desired: desired})
		}
		if len(cands) == 0 {
			continue
		}
		if err := p.planDir(plan, dir, cands); err != nil {
			return fail(plan, err)
		}
	}
	return plan
}
