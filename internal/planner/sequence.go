package planner

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/harrison/bulkrename/internal/models"
	"github.com/harrison/bulkrename/internal/sortrules"
)

// ErrMultipleDirectories is reported when a sequence plan spans directories.
var ErrMultipleDirectories = errors.New("sequential naming can only be done in the same directory")

// SequenceParams controls sequence numbering.
type SequenceParams struct {
	Key     models.SortKey
	Reverse bool
	Start   int
	Padding int    // Zero-pad to this many digits; 0 disables padding
	Prefix  string // Literal before the number
	Suffix  string // Literal after the number, before the extension
}

// SequenceFromDefaults builds params from configured defaults.
func SequenceFromDefaults(key models.SortKey, reverse bool, d models.SequenceDefaults) SequenceParams {
	return SequenceParams{
		Key:     key,
		Reverse: reverse,
		Start:   d.Start,
		Padding: d.Padding,
		Prefix:  d.Prefix,
		Suffix:  d.Suffix,
	}
}

// FormatNumber renders n zero-padded to padding digits.
func FormatNumber(n, padding int) string {
	if padding > 0 {
		return fmt.Sprintf("%0*d", padding, n)
	}
	return strconv.Itoa(n)
}

// Sequence plans renaming files to prefix + number + suffix + extension,
// numbered consecutively in sort order. All files must share one directory.
func (p *Planner) Sequence(files []models.FileDescriptor, params SequenceParams, opts models.Options) *models.RenamePlan {
	plan := models.NewRenamePlan(opts)
	if len(files) == 0 {
		return plan
	}

	groups := groupByDir(files)
	if len(groups) > 1 {
		plan.AddError(ErrMultipleDirectories.Error())
		return plan
	}
	dir := groups[0].dir

	var cands []candidate
	for i, f := range sortrules.SortFiles(files, params.Key, params.Reverse) {
		desired := params.Prefix + FormatNumber(params.Start+i, params.Padding) + params.Suffix + f.Ext
		if !checkName(plan, f.Path, desired) {
			continue
		}
		cands = append(cands, candidate{source: f.Path, name: f.Name, desired: desired})
	}

	if err := p.planDir(plan, dir, cands); err != nil {
		return fail(plan, err)
	}
	return plan
}
