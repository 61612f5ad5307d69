package planner

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/harrison/bulkrename/internal/models"
)

// Validate re-checks a plan before execution: every source must still exist
// and no two valid operations may share a destination under the plan's
// case policy. It returns one message per problem found.
func Validate(plan *models.RenamePlan) []string {
	var problems []string
	for _, op := range plan.ValidOps() {
		if _, err := os.Lstat(op.Source); err != nil {
			problems = append(problems, fmt.Sprintf("Source file does not exist: %s", op.Source))
		}
	}
	return append(problems, DuplicateDestinations(plan.ValidOps(), plan.Options.CaseInsensitive)...)
}

// DuplicateDestinations reports destinations claimed by more than one op.
func DuplicateDestinations(ops []models.RenameOp, caseInsensitive bool) []string {
	sources := make(map[string][]string)
	for _, op := range ops {
		key := models.NormalizeName(op.Destination, caseInsensitive)
		sources[key] = append(sources[key], op.Source)
	}

	var problems []string
	for dst, srcs := range sources {
		if len(srcs) > 1 {
			problems = append(problems, fmt.Sprintf("Multiple files have the same destination: [%s] -> %s", strings.Join(srcs, ", "), dst))
		}
	}
	sort.Strings(problems)
	return problems
}
