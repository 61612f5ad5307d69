package planner

import (
	"errors"

	"github.com/harrison/bulkrename/internal/models"
	"github.com/harrison/bulkrename/internal/textmatch"
)

// ErrEmptyOld is reported when a substitution plan is requested with nothing to replace.
var ErrEmptyOld = errors.New("replacement string cannot be empty")

// Replace plans renaming every file whose name contains old, substituting
// all occurrences with new. Files whose name does not change are left out;
// files whose new name is illegal are skipped with a warning.
func (p *Planner) Replace(files []models.FileDescriptor, old, new string, caseSensitive bool, opts models.Options) *models.RenamePlan {
	return p.replace(files, old, new, caseSensitive, false, opts)
}

// ReplaceFirst is Replace limited to the first occurrence in each name.
func (p *Planner) ReplaceFirst(files []models.FileDescriptor, old, new string, caseSensitive bool, opts models.Options) *models.RenamePlan {
	return p.replace(files, old, new, caseSensitive, true, opts)
}

func (p *Planner) replace(files []models.FileDescriptor, old, new string, caseSensitive, firstOnly bool, opts models.Options) *models.RenamePlan {
	plan := models.NewRenamePlan(opts)
	if old == "" {
		plan.AddError(ErrEmptyOld.Error())
		return plan
	}

	for _, g := range groupByDir(files) {
		var cands []candidate
		for _, f := range g.files {
			var desired string
			if firstOnly {
				desired = textmatch.ReplaceOnce(f.Name, old, new, caseSensitive)
			} else {
				desired = textmatch.Replace(f.Name, old, new, caseSensitive)
			}
			if desired == f.Name {
				continue
			}
			if !checkName(plan, f.Path, desired) {
				continue
			}
			cands = append(cands, candidate{source: f.Path, name: f.Name, desired: desired})
		}
		if len(cands) == 0 {
			continue
		}
		if err := p.planDir(plan, g.dir, cands); err != nil {
			return fail(plan, err)
		}
	}
	return plan
}
