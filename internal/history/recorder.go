package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/bulkrename/internal/models"
)

// Recorder stores every executed plan in a Store. It implements
// executor.Recorder.
type Recorder struct {
	store     *Store
	command   string
	directory string
	undoOf    string
	now       func() time.Time
	started   time.Time

	mu     sync.Mutex
	lastID string
}

// NewRecorder creates a recorder for runs of command over directory. The run
// start time is taken now.
func NewRecorder(store *Store, command, directory string) *Recorder {
	r := &Recorder{store: store, command: command, directory: directory, now: time.Now}
	r.started = r.now()
	return r
}

// Undoes marks recorded runs as reverting run id.
func (r *Recorder) Undoes(id string) *Recorder {
	r.undoOf = id
	return r
}

// LastRunID returns the id of the most recently recorded run.
func (r *Recorder) LastRunID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastID
}

// RecordRun converts plan and result into a Run and stores it.
func (r *Recorder) RecordRun(ctx context.Context, plan *models.RenamePlan, result *models.ExecutionResult) error {
	run := NewRun(plan, result)
	run.ID = uuid.NewString()
	run.Command = r.command
	run.Directory = r.directory
	run.StartedAt = r.started
	run.FinishedAt = r.now()

	if err := r.store.RecordRun(ctx, run); err != nil {
		return err
	}
	if r.undoOf != "" {
		if err := r.store.MarkUndone(ctx, r.undoOf, run.ID); err != nil {
			return fmt.Errorf("mark run %s undone: %w", r.undoOf, err)
		}
	}

	r.mu.Lock()
	r.lastID = run.ID
	r.mu.Unlock()
	return nil
}

type opKey struct{ src, dst string }

// NewRun builds the run record of an execution. Operations keep plan order;
// ops the result does not mention are recorded as skipped.
func NewRun(plan *models.RenamePlan, result *models.ExecutionResult) *Run {
	status := make(map[opKey]Operation, len(plan.Ops))
	for _, op := range result.Succeeded {
		status[opKey{op.Source, op.Destination}] = Operation{Status: StatusSucceeded}
	}
	for _, f := range result.Skipped {
		status[opKey{f.Source, f.Destination}] = Operation{Status: StatusSkipped}
	}
	for _, f := range result.Failed {
		status[opKey{f.Op.Source, f.Op.Destination}] = Operation{Status: StatusFailed, Error: f.Error, NeedsRecovery: f.NeedsRecovery}
	}

	run := &Run{
		SuccessCount: result.SuccessCount(),
		FailedCount:  result.FailedCount(),
		SkippedCount: result.SkippedCount(),
		Warnings:     append([]string{}, plan.Warnings...),
		Notices:      append([]string{}, result.Notices...),
	}
	for i, op := range plan.ValidOps() {
		rec, ok := status[opKey{op.Source, op.Destination}]
		if !ok {
			rec = Operation{Status: StatusSkipped}
		}
		rec.Seq = i + 1
		rec.Source = op.Source
		rec.Destination = op.Destination
		rec.Note = op.Note
		run.Operations = append(run.Operations, rec)
	}
	return run
}
