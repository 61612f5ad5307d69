package executor

import (
	"errors"
	"fmt"
)

var (
	// ErrPlanHasErrors is returned when a plan carrying plan-level errors is executed.
	ErrPlanHasErrors = errors.New("plan has errors and cannot be executed")
	// ErrInvalidPlan is returned when a plan breaks destination uniqueness.
	ErrInvalidPlan = errors.New("invalid plan")
	// ErrDirectoryLocked is returned when the locks of the plan's directories cannot be taken.
	ErrDirectoryLocked = errors.New("directory lock unavailable")
)

// Phase identifies the rename step an operation failed in.
type Phase int

const (
	// PhaseTemp is the move from the source name to the temporary name.
	PhaseTemp Phase = iota
	// PhaseFinal is the move from the temporary name to the destination.
	PhaseFinal
	// PhaseRestore is the move back from the temporary name to the source.
	PhaseRestore
)

// String returns the string representation of Phase.
func (p Phase) String() string {
	switch p {
	case PhaseTemp:
		return "phase1"
	case PhaseFinal:
		return "phase2"
	case PhaseRestore:
		return "restore"
	default:
		return "unknown"
	}
}

// OpError describes a failed step of one rename operation.
type OpError struct {
	Phase  Phase  // Step that failed
	Source string // Source path of the operation
	Target string // Path the step tried to rename to
	Err    error  // Underlying error
}

// Error implements the error interface for OpError.
func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s -> %s: %v", e.Phase, e.Source, e.Target, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *OpError) Unwrap() error {
	return e.Err
}

// IsOpError checks if the error is or wraps an OpError.
func IsOpError(err error) bool {
	if err == nil {
		return false
	}
	var oe *OpError
	return errors.As(err, &oe)
}
