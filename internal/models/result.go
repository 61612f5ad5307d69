package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FailedOp pairs a rename operation with the reason it failed.
type FailedOp struct {
	Op            RenameOp
	Error         string // Human-readable failure text, underlying errors included
	Phase         string // "phase1" or "phase2"
	NeedsRecovery bool   // File was left under its temporary name
}

// ExecutionResult is the outcome of executing a plan. Every valid op of the
// plan ends up in exactly one of Succeeded, Failed or Skipped.
type ExecutionResult struct {
	Succeeded []RenameOp
	Failed    []FailedOp
	Skipped   []RenameOp
	Notices   []string // Out-of-band observations such as foreign filesystem activity
}

// NewExecutionResult returns an empty result with non-nil lists.
func NewExecutionResult() *ExecutionResult {
	return &ExecutionResult{
		Succeeded: []RenameOp{},
		Failed:    []FailedOp{},
		Skipped:   []RenameOp{},
		Notices:   []string{},
	}
}

// SuccessCount returns the number of succeeded ops.
func (r *ExecutionResult) SuccessCount() int { return len(r.Succeeded) }

// FailedCount returns the number of failed ops.
func (r *ExecutionResult) FailedCount() int { return len(r.Failed) }

// SkippedCount returns the number of skipped ops.
func (r *ExecutionResult) SkippedCount() int { return len(r.Skipped) }

// NeedsRecovery returns the failed ops whose file is stranded under a temp name.
func (r *ExecutionResult) NeedsRecovery() []FailedOp {
	var stranded []FailedOp
	for _, f := range r.Failed {
		if f.NeedsRecovery {
			stranded = append(stranded, f)
		}
	}
	return stranded
}

// maxSummaryFailures caps the failure details printed by Summary.
const maxSummaryFailures = 10

// Summary renders counts plus up to ten failure details.
func (r *ExecutionResult) Summary() string {
	lines := []string{
		"Execution Result:",
		fmt.Sprintf("  - Success: %d", r.SuccessCount()),
		fmt.Sprintf("  - Failed: %d", r.FailedCount()),
		fmt.Sprintf("  - Skipped: %d", r.SkippedCount()),
	}
	if len(r.Failed) > 0 {
		lines = append(lines, "Failure Details:")
		for i, f := range r.Failed {
			if i == maxSummaryFailures {
				lines = append(lines, fmt.Sprintf("  ... and %d more failures", len(r.Failed)-maxSummaryFailures))
				break
			}
			lines = append(lines, fmt.Sprintf("  - %s -> %s: %s",
				filepath.Base(f.Op.Source), filepath.Base(f.Op.Destination), f.Error))
		}
	}
	return strings.Join(lines, "\n")
}
