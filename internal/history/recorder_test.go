package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/bulkrename/internal/models"
)

func TestNewRun(t *testing.T) {
	plan := models.NewRenamePlan(models.DefaultOptions(false))
	plan.AddOp("/d/a", "/d/b", "")
	plan.AddOp("/d/same", "/d/same", "")
	plan.AddOp("/d/c", "/d/e", "")
	plan.AddOp("/d/f", "/d/g", models.ConflictNote("e", "g"))
	plan.AddOp("/d/h", "/d/i", "")
	plan.AddWarning("Skip z: listed more than once")

	result := models.NewExecutionResult()
	result.Succeeded = append(result.Succeeded, plan.Ops[0], plan.Ops[3])
	result.Failed = append(result.Failed, models.FailedOp{Op: plan.Ops[2], Error: "boom"})
	result.Notices = append(result.Notices, "external change during rename: CREATE /d/x")

	run := NewRun(plan, result)

	require.Len(t, run.Operations, 4, "no-ops are not recorded")
	assert.Equal(t, Operation{Seq: 1, Source: "/d/a", Destination: "/d/b", Status: StatusSucceeded}, run.Operations[0])
	assert.Equal(t, StatusFailed, run.Operations[1].Status)
	assert.Equal(t, "boom", run.Operations[1].Error)
	assert.Equal(t, models.ConflictNote("e", "g"), run.Operations[2].Note)
	assert.Equal(t, StatusSkipped, run.Operations[3].Status, "ops missing from the result count as skipped")
	assert.Equal(t, 2, run.SuccessCount)
	assert.Equal(t, 1, run.FailedCount)
	assert.Equal(t, []string{"Skip z: listed more than once"}, run.Warnings)
	assert.Len(t, run.Notices, 1)
}

func TestRecorder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	plan := models.NewRenamePlan(models.DefaultOptions(false))
	plan.AddOp("/d/a", "/d/b", "")
	result := models.NewExecutionResult()
	result.Succeeded = append(result.Succeeded, plan.Ops[0])

	rec := NewRecorder(store, "replace", "/d")
	require.NoError(t, rec.RecordRun(ctx, plan, result))
	firstID := rec.LastRunID()
	require.NotEmpty(t, firstID)

	run, err := store.GetRun(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, "replace", run.Command)
	assert.Equal(t, "/d", run.Directory)
	assert.False(t, run.FinishedAt.Before(run.StartedAt))

	undo := NewRecorder(store, "undo", "/d").Undoes(firstID)
	undo.now = func() time.Time { return time.Now().Add(time.Minute) }
	require.NoError(t, undo.RecordRun(ctx, plan, result))

	orig, err := store.GetRun(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, undo.LastRunID(), orig.UndoneBy)
}

func TestRecorderUndoOfMissingRun(t *testing.T) {
	store := newTestStore(t)
	plan := models.NewRenamePlan(models.DefaultOptions(false))
	rec := NewRecorder(store, "undo", "/d").Undoes("nope")
	err := rec.RecordRun(context.Background(), plan, models.NewExecutionResult())
	assert.ErrorIs(t, err, ErrRunNotFound)
}
