package logger

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/harrison/bulkrename/internal/filelock"
	"github.com/harrison/bulkrename/internal/models"
)

// journalTimeFormat is the timestamp embedded in record names and bodies.
const journalTimeFormat = "20060102_150405"

// PlanRecord is the JSON document written before a plan is executed.
type PlanRecord struct {
	Timestamp  string         `json:"timestamp"`
	TotalOps   int            `json:"total_ops"`
	Operations []PlanRecordOp `json:"operations"`
	Warnings   []string       `json:"warnings"`
	Errors     []string       `json:"errors"`
}

// PlanRecordOp is one operation of a PlanRecord.
type PlanRecordOp struct {
	Src  string `json:"src"`
	Dst  string `json:"dst"`
	Note string `json:"note"`
}

// ResultRecord is the JSON document written after a plan was executed.
type ResultRecord struct {
	Timestamp    string           `json:"timestamp"`
	SuccessCount int              `json:"success_count"`
	FailedCount  int              `json:"failed_count"`
	SkippedCount int              `json:"skipped_count"`
	Success      []ResultRecordOp `json:"success"`
	Failed       []ResultRecordOp `json:"failed"`
	Skipped      []ResultRecordOp `json:"skipped"`
}

// ResultRecordOp is one operation of a ResultRecord. Error is only set for
// failed operations.
type ResultRecordOp struct {
	Src   string `json:"src"`
	Dst   string `json:"dst"`
	Error string `json:"error,omitempty"`
}

// Journal writes rename_plan_<ts>.json and rename_result_<ts>.json records
// into a directory. It implements executor.Journal.
type Journal struct {
	dir string
	now func() time.Time

	mu       sync.Mutex
	lastPlan string
	lastRes  string
}

// NewJournal creates a Journal writing into dir. The directory is created on
// first write.
func NewJournal(dir string) *Journal {
	return &Journal{dir: dir, now: time.Now}
}

// Dir returns the journal directory.
func (j *Journal) Dir() string {
	return j.dir
}

// LastPlanPath returns the path of the most recently written plan record.
func (j *Journal) LastPlanPath() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastPlan
}

// LastResultPath returns the path of the most recently written result record.
func (j *Journal) LastResultPath() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastRes
}

// NewPlanRecord converts a plan to its journal form. Only valid operations
// are recorded.
func NewPlanRecord(plan *models.RenamePlan, ts string) PlanRecord {
	valid := plan.ValidOps()
	rec := PlanRecord{
		Timestamp:  ts,
		TotalOps:   len(valid),
		Operations: make([]PlanRecordOp, 0, len(valid)),
		Warnings:   append([]string{}, plan.Warnings...),
		Errors:     append([]string{}, plan.Errors...),
	}
	for _, op := range valid {
		rec.Operations = append(rec.Operations, PlanRecordOp{Src: op.Source, Dst: op.Destination, Note: op.Note})
	}
	return rec
}

// NewResultRecord converts an execution result to its journal form.
func NewResultRecord(result *models.ExecutionResult, ts string) ResultRecord {
	rec := ResultRecord{
		Timestamp:    ts,
		SuccessCount: result.SuccessCount(),
		FailedCount:  result.FailedCount(),
		SkippedCount: result.SkippedCount(),
		Success:      pairs(result.Succeeded),
		Failed:       make([]ResultRecordOp, 0, len(result.Failed)),
		Skipped:      pairs(result.Skipped),
	}
	for _, f := range result.Failed {
		rec.Failed = append(rec.Failed, ResultRecordOp{Src: f.Op.Source, Dst: f.Op.Destination, Error: f.Error})
	}
	return rec
}

func pairs(ops []models.RenameOp) []ResultRecordOp {
	out := make([]ResultRecordOp, 0, len(ops))
	for _, op := range ops {
		out = append(out, ResultRecordOp{Src: op.Source, Dst: op.Destination})
	}
	return out
}

// WritePlan writes the plan record.
func (j *Journal) WritePlan(plan *models.RenamePlan) error {
	if plan == nil {
		return fmt.Errorf("journal: nil plan")
	}
	ts := j.now().Format(journalTimeFormat)
	path, err := j.write("rename_plan_"+ts+".json", NewPlanRecord(plan, ts))
	if err != nil {
		return err
	}
	j.mu.Lock()
	j.lastPlan = path
	j.mu.Unlock()
	return nil
}

// WriteResult writes the result record.
func (j *Journal) WriteResult(result *models.ExecutionResult) error {
	if result == nil {
		return fmt.Errorf("journal: nil result")
	}
	ts := j.now().Format(journalTimeFormat)
	path, err := j.write("rename_result_"+ts+".json", NewResultRecord(result, ts))
	if err != nil {
		return err
	}
	j.mu.Lock()
	j.lastRes = path
	j.mu.Unlock()
	return nil
}

func (j *Journal) write(name string, record any) (string, error) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", name, err)
	}
	path := filepath.Join(j.dir, name)
	if err := filelock.AtomicWrite(path, data); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}
