package executor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/harrison/bulkrename/internal/models"
)

var errSourceMissing = errors.New("source missing")

// run holds the state of one Execute call.
type run struct {
	fs        FS
	logger    Logger
	ops       []models.RenameOp
	temps     []string // Temporary path per op once phase 1 succeeded
	result    *models.ExecutionResult
	progress  ProgressFunc
	done      int
	total     int
	cancelled bool
}

func (r *run) advance(steps int, msg string) {
	r.done += steps
	if r.progress != nil {
		r.progress(r.done, r.total, msg)
	}
}

// batch moves every op to its temporary name, then every survivor to its
// destination.
func (r *run) batch(ctx context.Context) {
	for i := range r.ops {
		if ctx.Err() != nil {
			r.skipFrom(i)
			break
		}
		r.toTemp(ctx, i)
	}

	// in-flight files are finished even after cancellation
	inFlight := context.WithoutCancel(ctx)
	for i := range r.ops {
		if r.temps[i] != "" {
			r.toFinal(inFlight, i)
		}
	}
}

// perFile completes both phases for each op in turn.
func (r *run) perFile(ctx context.Context) {
	inFlight := context.WithoutCancel(ctx)
	for i := range r.ops {
		if ctx.Err() != nil {
			r.skipFrom(i)
			return
		}
		if r.toTemp(ctx, i) {
			r.toFinal(inFlight, i)
		}
	}
}

func (r *run) skipFrom(i int) {
	r.cancelled = true
	r.result.Skipped = append(r.result.Skipped, r.ops[i:]...)
	r.logger.LogWarn(fmt.Sprintf("cancelled: skipping %d remaining operations", len(r.ops)-i))
}

// toTemp performs phase 1 for op i and reports whether it succeeded.
func (r *run) toTemp(ctx context.Context, i int) bool {
	op := r.ops[i]

	exists, err := r.fs.Exists(op.Source)
	if err == nil && !exists {
		r.fail(op, PhaseTemp, op.Source, errSourceMissing.Error(), errSourceMissing, false)
		r.advance(2, "missing: "+filepath.Base(op.Source))
		return false
	}

	temp := tempPath(op.Source)
	if err := r.fs.Rename(ctx, op.Source, temp); err != nil {
		r.fail(op, PhaseTemp, temp, err.Error(), err, false)
		r.advance(2, "failed: "+filepath.Base(op.Source))
		return false
	}
	r.temps[i] = temp
	r.advance(1, "staged: "+filepath.Base(op.Source))
	return true
}

// toFinal performs phase 2 for op i, restoring the source name on failure.
func (r *run) toFinal(ctx context.Context, i int) {
	op, temp := r.ops[i], r.temps[i]

	if !models.IsOverwrite(op) {
		if exists, err := r.fs.Exists(op.Destination); err == nil && exists {
			r.restore(ctx, op, temp, fmt.Errorf("destination already exists: %s", op.Destination))
			return
		}
	}

	if err := r.fs.Rename(ctx, temp, op.Destination); err != nil {
		r.restore(ctx, op, temp, err)
		return
	}
	r.result.Succeeded = append(r.result.Succeeded, op)
	r.advance(1, fmt.Sprintf("renamed: %s -> %s", filepath.Base(op.Source), filepath.Base(op.Destination)))
}

// restore moves temp back to the op's source. The source name is never
// clobbered; if it is taken the file stays under temp.
func (r *run) restore(ctx context.Context, op models.RenameOp, temp string, cause error) {
	defer r.advance(1, "failed: "+filepath.Base(op.Source))

	if exists, err := r.fs.Exists(op.Source); err == nil && exists {
		msg := fmt.Sprintf("%v; restore also failed: original name is occupied (file left at %s)", cause, temp)
		r.fail(op, PhaseRestore, op.Source, msg, cause, true)
		return
	}
	if err := r.fs.Rename(ctx, temp, op.Source); err != nil {
		msg := fmt.Sprintf("%v; restore also failed: %v (file left at %s)", cause, err, temp)
		r.fail(op, PhaseRestore, op.Source, msg, err, true)
		return
	}
	r.fail(op, PhaseFinal, op.Destination, fmt.Sprintf("%v (restored to original name)", cause), cause, false)
}

func (r *run) fail(op models.RenameOp, phase Phase, target, msg string, err error, needsRecovery bool) {
	recordPhase := phase
	if phase == PhaseRestore {
		recordPhase = PhaseFinal
	}
	r.result.Failed = append(r.result.Failed, models.FailedOp{
		Op:            op,
		Error:         msg,
		Phase:         recordPhase.String(),
		NeedsRecovery: needsRecovery,
	})
	opErr := &OpError{Phase: phase, Source: op.Source, Target: target, Err: err}
	if needsRecovery {
		r.logger.LogError(opErr.Error() + ": file needs manual recovery")
	} else {
		r.logger.LogWarn(opErr.Error())
	}
}
