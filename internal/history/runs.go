package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harrison/bulkrename/internal/models"
)

var (
	// ErrRunNotFound is returned when no run matches an id.
	ErrRunNotFound = errors.New("run not found")
	// ErrAmbiguousID is returned when an id prefix matches several runs.
	ErrAmbiguousID = errors.New("run id prefix is ambiguous")
)

// minPrefixLength is the shortest id prefix GetRun resolves.
const minPrefixLength = 4

// Status is the outcome of one recorded operation.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Operation is one recorded rename of a run.
type Operation struct {
	Seq           int
	Source        string
	Destination   string
	Note          string
	Status        Status
	Error         string
	NeedsRecovery bool
}

// Run is a recorded execution. Operations are only loaded by GetRun.
type Run struct {
	ID           string
	Command      string
	Directory    string
	StartedAt    time.Time
	FinishedAt   time.Time
	SuccessCount int
	FailedCount  int
	SkippedCount int
	Warnings     []string
	Notices      []string
	UndoneBy     string
	Operations   []Operation
}

// Succeeded returns the operations of the run that completed, as rename ops.
func (r *Run) Succeeded() []models.RenameOp {
	var ops []models.RenameOp
	for _, op := range r.Operations {
		if op.Status == StatusSucceeded {
			ops = append(ops, models.RenameOp{Source: op.Source, Destination: op.Destination, Note: op.Note})
		}
	}
	return ops
}

// encodeList stores a string list in one TEXT column.
func encodeList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	data, _ := json.Marshal(items)
	return string(data)
}

func decodeList(s string) ([]string, error) {
	items := []string{}
	if s == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, fmt.Errorf("decode list column: %w", err)
	}
	return items, nil
}

// RecordRun stores a run and its operations in one transaction.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		return fmt.Errorf("record run: empty id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(id, command, directory, started_at, finished_at, success_count, failed_count, skipped_count, warnings, notices, undone_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Command, run.Directory,
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.SuccessCount, run.FailedCount, run.SkippedCount,
		encodeList(run.Warnings), encodeList(run.Notices), run.UndoneBy,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_operations
		(run_id, seq, source, destination, note, status, error, needs_recovery)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare operation insert: %w", err)
	}
	defer stmt.Close()

	for _, op := range run.Operations {
		if _, err := stmt.ExecContext(ctx, run.ID, op.Seq, op.Source, op.Destination, op.Note,
			string(op.Status), op.Error, op.NeedsRecovery); err != nil {
			return fmt.Errorf("insert operation %d: %w", op.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

const runColumns = `id, command, directory, started_at, finished_at, success_count, failed_count, skipped_count, warnings, notices, undone_by`

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	run := &Run{}
	var warnings, notices string
	if err := row.Scan(&run.ID, &run.Command, &run.Directory, &run.StartedAt, &run.FinishedAt,
		&run.SuccessCount, &run.FailedCount, &run.SkippedCount, &warnings, &notices, &run.UndoneBy); err != nil {
		return nil, err
	}
	var err error
	if run.Warnings, err = decodeList(warnings); err != nil {
		return nil, err
	}
	if run.Notices, err = decodeList(notices); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs first, without operations.
// limit <= 0 returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun loads a run and its operations. id may be a unique prefix of at
// least four characters.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	fullID, err := s.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, fullID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("query run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT seq, source, destination, note, status, error, needs_recovery
		FROM run_operations WHERE run_id = ? ORDER BY seq`, fullID)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var op Operation
		var status string
		if err := rows.Scan(&op.Seq, &op.Source, &op.Destination, &op.Note, &status, &op.Error, &op.NeedsRecovery); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		op.Status = Status(status)
		run.Operations = append(run.Operations, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}
	return run, nil
}

// resolveID expands an id prefix to the full run id.
func (s *Store) resolveID(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: empty id", ErrRunNotFound)
	}

	var exact int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, id).Scan(&exact); err != nil {
		return "", fmt.Errorf("query run: %w", err)
	}
	if exact == 1 || len(id) < minPrefixLength {
		return id, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`, len(id), id)
	if err != nil {
		return "", fmt.Errorf("query run prefix: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return "", fmt.Errorf("scan run id: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate run ids: %w", err)
	}

	switch len(matches) {
	case 0:
		return id, nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}
}

// MarkUndone records that run id was reverted by run undoID.
func (s *Store) MarkUndone(ctx context.Context, id, undoID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE runs SET undone_by = ? WHERE id = ?`, undoID, id)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}
