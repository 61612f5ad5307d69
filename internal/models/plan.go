package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ConflictNotePrefix starts every note written when conflict resolution
// changed the desired destination name.
const ConflictNotePrefix = "conflict resolved"

// RenameOp is a single planned rename. Ops are created by the planners and
// never mutated afterwards.
type RenameOp struct {
	Source      string // Absolute source path
	Destination string // Absolute destination path
	Note        string // Explanation when the planner altered the desired name
}

// IsNoOp reports whether the operation renames a file onto itself.
func IsNoOp(op RenameOp) bool {
	return op.Source == op.Destination
}

// IsCaseOnlyChange reports whether the operation only changes the letter case
// of the name inside the same directory.
func IsCaseOnlyChange(op RenameOp) bool {
	srcName := filepath.Base(op.Source)
	dstName := filepath.Base(op.Destination)
	return filepath.Dir(op.Source) == filepath.Dir(op.Destination) &&
		srcName != dstName &&
		strings.EqualFold(srcName, dstName)
}

// IsConflictResolved reports whether the op carries a conflict-resolution note.
func IsConflictResolved(op RenameOp) bool {
	return strings.HasPrefix(op.Note, ConflictNotePrefix)
}

// OverwriteNotePrefix starts the note of an op that replaces an existing file.
const OverwriteNotePrefix = "overwrites existing"

// OverwriteNote formats the note attached to an op planned under the overwrite policy.
func OverwriteNote(name string) string {
	return fmt.Sprintf("%s: %s", OverwriteNotePrefix, name)
}

// IsOverwrite reports whether the op was planned to replace an existing file.
func IsOverwrite(op RenameOp) bool {
	return strings.HasPrefix(op.Note, OverwriteNotePrefix)
}

// ConflictNote formats the note attached to an op whose desired name was taken.
func ConflictNote(desired, final string) string {
	return fmt.Sprintf("%s: %s -> %s", ConflictNotePrefix, desired, final)
}

// RenamePlan is an ordered set of rename operations plus diagnostics.
// Warnings are per-file skip reasons; Errors are plan-level and forbid execution.
type RenamePlan struct {
	Ops      []RenameOp
	Warnings []string
	Errors   []string
	Options  Options
}

// NewRenamePlan creates an empty plan bound to opts.
func NewRenamePlan(opts Options) *RenamePlan {
	return &RenamePlan{
		Ops:      []RenameOp{},
		Warnings: []string{},
		Errors:   []string{},
		Options:  opts,
	}
}

// AddOp appends an operation.
func (p *RenamePlan) AddOp(src, dst, note string) {
	p.Ops = append(p.Ops, RenameOp{Source: src, Destination: dst, Note: note})
}

// AddWarning records a non-fatal per-file skip reason.
func (p *RenamePlan) AddWarning(msg string) {
	p.Warnings = append(p.Warnings, msg)
}

// AddError records a fatal plan-level error.
func (p *RenamePlan) AddError(msg string) {
	p.Errors = append(p.Errors, msg)
}

// HasErrors reports whether the plan must not be executed.
func (p *RenamePlan) HasErrors() bool {
	return len(p.Errors) > 0
}

// ValidOps returns every op that is not a no-op, in plan order.
func (p *RenamePlan) ValidOps() []RenameOp {
	valid := make([]RenameOp, 0, len(p.Ops))
	for _, op := range p.Ops {
		if !IsNoOp(op) {
			valid = append(valid, op)
		}
	}
	return valid
}

// ConflictCount returns how many ops had their desired name changed by the resolver.
func (p *RenamePlan) ConflictCount() int {
	count := 0
	for _, op := range p.Ops {
		if IsConflictResolved(op) {
			count++
		}
	}
	return count
}

// TotalCount is the number of valid operations.
func (p *RenamePlan) TotalCount() int {
	return len(p.ValidOps())
}

// Summary renders a short multi-line description of the plan.
func (p *RenamePlan) Summary() string {
	lines := []string{
		"Rename Plan Summary:",
		fmt.Sprintf("  - Total operations: %d", p.TotalCount()),
		fmt.Sprintf("  - Conflict resolutions: %d", p.ConflictCount()),
		fmt.Sprintf("  - Warnings: %d", len(p.Warnings)),
		fmt.Sprintf("  - Errors: %d", len(p.Errors)),
	}
	return strings.Join(lines, "\n")
}
