package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harrison/bulkrename/internal/models"
)

func fixedJournal(t *testing.T) *Journal {
	t.Helper()
	j := NewJournal(filepath.Join(t.TempDir(), "journal"))
	j.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local) }
	return j
}

func TestJournalWritePlan(t *testing.T) {
	j := fixedJournal(t)

	plan := models.NewRenamePlan(models.DefaultOptions(false))
	plan.AddOp("/d/a.txt", "/d/b.txt", "")
	plan.AddOp("/d/same.txt", "/d/same.txt", "")
	plan.AddOp("/d/c.txt", "/d/b_1.txt", models.ConflictNote("b.txt", "b_1.txt"))
	plan.AddWarning("Skip x.txt: source file does not exist")

	if err := j.WritePlan(plan); err != nil {
		t.Fatalf("WritePlan() error = %v", err)
	}

	want := filepath.Join(j.Dir(), "rename_plan_20240309_140507.json")
	if j.LastPlanPath() != want {
		t.Errorf("LastPlanPath() = %q, want %q", j.LastPlanPath(), want)
	}

	var rec map[string]any
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read plan record: %v", err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("decode plan record: %v", err)
	}

	if rec["timestamp"] != "20240309_140507" {
		t.Errorf("timestamp = %v", rec["timestamp"])
	}
	if rec["total_ops"] != float64(2) {
		t.Errorf("total_ops = %v, want 2 (no-ops excluded)", rec["total_ops"])
	}
	ops := rec["operations"].([]any)
	if len(ops) != 2 {
		t.Fatalf("operations = %v", ops)
	}
	second := ops[1].(map[string]any)
	if second["src"] != "/d/c.txt" || second["dst"] != "/d/b_1.txt" || second["note"] != "conflict resolved: b.txt -> b_1.txt" {
		t.Errorf("unexpected op %v", second)
	}
	if len(rec["warnings"].([]any)) != 1 {
		t.Errorf("warnings = %v", rec["warnings"])
	}
	if errs, ok := rec["errors"].([]any); !ok || len(errs) != 0 {
		t.Errorf("errors must be an empty array, got %v", rec["errors"])
	}
}

func TestJournalWriteResult(t *testing.T) {
	j := fixedJournal(t)

	result := models.NewExecutionResult()
	result.Succeeded = append(result.Succeeded, models.RenameOp{Source: "/d/a", Destination: "/d/b"})
	result.Failed = append(result.Failed, models.FailedOp{
		Op:    models.RenameOp{Source: "/d/c", Destination: "/d/e"},
		Error: "permission denied",
	})

	if err := j.WriteResult(result); err != nil {
		t.Fatalf("WriteResult() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(j.Dir(), "rename_result_20240309_140507.json"))
	if err != nil {
		t.Fatalf("read result record: %v", err)
	}
	var rec ResultRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("decode result record: %v", err)
	}

	if rec.SuccessCount != 1 || rec.FailedCount != 1 || rec.SkippedCount != 0 {
		t.Errorf("counts = %d/%d/%d", rec.SuccessCount, rec.FailedCount, rec.SkippedCount)
	}
	if rec.Failed[0].Error != "permission denied" {
		t.Errorf("failed error = %q", rec.Failed[0].Error)
	}
	if rec.Skipped == nil {
		t.Error("skipped must decode as an empty array")
	}
}

func TestJournalRejectsNil(t *testing.T) {
	j := fixedJournal(t)
	if err := j.WritePlan(nil); err == nil {
		t.Error("expected error for nil plan")
	}
	if err := j.WriteResult(nil); err == nil {
		t.Error("expected error for nil result")
	}
}

func TestJournalUnwritableDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	j := NewJournal(filepath.Join(blocker, "journal"))
	if err := j.WritePlan(models.NewRenamePlan(models.DefaultOptions(false))); err == nil {
		t.Error("expected error when the journal dir cannot be created")
	}
}
