package executor

import (
	"context"
	"fmt"
	"path/filepath"
)

// RecoveredFile is one temporary file found by Recover.
type RecoveredFile struct {
	TempPath     string
	OriginalPath string
	Reason       string // Why the file was not restored
}

// RecoveryReport lists what Recover did with each temporary file.
type RecoveryReport struct {
	Restored []RecoveredFile
	Skipped  []RecoveredFile // Original name is taken
	Failed   []RecoveredFile
}

// Total returns the number of temporary files found.
func (r *RecoveryReport) Total() int {
	return len(r.Restored) + len(r.Skipped) + len(r.Failed)
}

// Recover renames temporary files left in dir by an interrupted run back to
// the names they encode, but only where that name is free.
func (e *Engine) Recover(ctx context.Context, dir string) (*RecoveryReport, error) {
	if e.Locker != nil {
		release, err := e.Locker.Lock(ctx, []string{dir})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDirectoryLocked, err)
		}
		defer func() {
			if err := release(); err != nil {
				e.Logger.LogWarn(fmt.Sprintf("failed to release directory lock: %v", err))
			}
		}()
	}

	names, err := e.FS.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	report := &RecoveryReport{}
	for _, name := range names {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		original, ok := ParseTempName(name)
		if !ok {
			continue
		}
		f := RecoveredFile{
			TempPath:     filepath.Join(dir, name),
			OriginalPath: filepath.Join(dir, original),
		}

		exists, err := e.FS.Exists(f.OriginalPath)
		if err != nil {
			f.Reason = err.Error()
			report.Failed = append(report.Failed, f)
			continue
		}
		if exists {
			f.Reason = "original name is occupied"
			report.Skipped = append(report.Skipped, f)
			e.Logger.LogWarn(fmt.Sprintf("recover: %s left in place, %s exists", name, original))
			continue
		}
		if err := e.FS.Rename(ctx, f.TempPath, f.OriginalPath); err != nil {
			f.Reason = err.Error()
			report.Failed = append(report.Failed, f)
			e.Logger.LogError(fmt.Sprintf("recover: %s: %v", name, err))
			continue
		}
		report.Restored = append(report.Restored, f)
		e.Logger.LogInfo(fmt.Sprintf("recover: restored %s", original))
	}
	return report, nil
}
