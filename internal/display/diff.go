package display

import (
	difflib "github.com/pmezard/go-difflib/difflib"

	"github.com/harrison/bulkrename/internal/models"
)

// diffContext is the number of unchanged lines kept around each hunk.
const diffContext = 0

// Diff renders the plan as a unified diff: the "before" side lists every
// source path, the "after" side the matching destination. Unchanged files
// are not part of a plan, so hunks carry no context lines.
func Diff(plan *models.RenamePlan) string {
	ops := plan.ValidOps()
	if len(ops) == 0 {
		return ""
	}

	before := make([]string, len(ops))
	after := make([]string, len(ops))
	for i, op := range ops {
		before[i] = op.Source + "\n"
		after[i] = op.Destination + "\n"
	}

	u := difflib.UnifiedDiff{
		A:        before,
		B:        after,
		FromFile: "before",
		ToFile:   "after",
		Context:  diffContext,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return ""
	}
	return s
}
