package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/bulkrename/internal/models"
)

// memFS is an in-memory FS recording every rename.
type memFS struct {
	mu        sync.Mutex
	files     map[string]string // path → content
	calls     []string
	renameErr func(oldPath, newPath string) error
}

func newMemFS(paths ...string) *memFS {
	m := &memFS{files: make(map[string]string)}
	for _, p := range paths {
		m.files[p] = filepath.Base(p)
	}
	return m
}

func (m *memFS) Rename(_ context.Context, oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, label(oldPath)+">"+label(newPath))
	if m.renameErr != nil {
		if err := m.renameErr(oldPath, newPath); err != nil {
			return err
		}
	}
	content, ok := m.files[oldPath]
	if !ok {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: os.ErrNotExist}
	}
	delete(m.files, oldPath)
	m.files[newPath] = content
	return nil
}

func (m *memFS) Exists(path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok, nil
}

func (m *memFS) ReadDir(dir string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for p := range m.files {
		if filepath.Dir(p) == dir {
			names = append(names, filepath.Base(p))
		}
	}
	sort.Strings(names)
	return names, nil
}

// content returns the content stored under the base name in /d.
func (m *memFS) content(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.files[filepath.Join("/d", name)]
	return c, ok
}

func (m *memFS) tempFiles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for p := range m.files {
		if IsTempName(filepath.Base(p)) {
			out = append(out, p)
		}
	}
	return out
}

// label shortens temp names so call logs are comparable.
func label(path string) string {
	base := filepath.Base(path)
	if orig, ok := ParseTempName(base); ok {
		return "tmp(" + orig + ")"
	}
	return base
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+msg)
}
func (l *recordingLogger) LogDebug(msg string) { l.add("DEBUG", msg) }
func (l *recordingLogger) LogInfo(msg string)  { l.add("INFO", msg) }
func (l *recordingLogger) LogWarn(msg string)  { l.add("WARN", msg) }
func (l *recordingLogger) LogError(msg string) { l.add("ERROR", msg) }

func (l *recordingLogger) contains(sub string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}

func planOf(pairs ...string) *models.RenamePlan {
	plan := models.NewRenamePlan(models.DefaultOptions(false))
	for i := 0; i+1 < len(pairs); i += 2 {
		plan.AddOp(filepath.Join("/d", pairs[i]), filepath.Join("/d", pairs[i+1]), "")
	}
	return plan
}

// assertPartition checks every valid op landed in exactly one result list.
func assertPartition(t *testing.T, plan *models.RenamePlan, result *models.ExecutionResult) {
	t.Helper()
	count := make(map[models.RenameOp]int)
	for _, op := range result.Succeeded {
		count[op]++
	}
	for _, f := range result.Failed {
		count[f.Op]++
	}
	for _, op := range result.Skipped {
		count[op]++
	}
	for _, op := range plan.ValidOps() {
		assert.Equal(t, 1, count[op], "op %s -> %s", op.Source, op.Destination)
	}
	assert.Equal(t, len(plan.ValidOps()), result.SuccessCount()+result.FailedCount()+result.SkippedCount())
}

func TestExecuteSwap(t *testing.T) {
	fs := newMemFS("/d/a.txt", "/d/b.txt")
	plan := planOf("a.txt", "b.txt", "b.txt", "a.txt")

	result, err := New(WithFS(fs)).Execute(context.Background(), plan, ExecOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.SuccessCount())
	c, _ := fs.content("b.txt")
	assert.Equal(t, "a.txt", c)
	c, _ = fs.content("a.txt")
	assert.Equal(t, "b.txt", c)
	assert.Empty(t, fs.tempFiles())
	assertPartition(t, plan, result)
}

func TestExecuteDryRun(t *testing.T) {
	fs := newMemFS("/d/a.txt", "/d/b.txt")
	plan := planOf("a.txt", "x.txt", "b.txt", "y.txt", "c.txt", "c.txt")
	j := &fakeJournal{}

	var lastDone, lastTotal int
	result, err := New(WithFS(fs), WithJournal(j)).Execute(context.Background(), plan, ExecOptions{
		DryRun:   true,
		Progress: func(done, total int, _ string) { lastDone, lastTotal = done, total },
	})
	require.NoError(t, err)

	assert.Empty(t, fs.calls, "dry run must not touch the filesystem")
	assert.Equal(t, 0, j.plans)
	assert.Equal(t, 2, result.SuccessCount(), "no-op excluded")
	assert.Equal(t, 4, lastTotal)
	assert.Equal(t, 4, lastDone)
}

func TestExecuteRefusesBadPlans(t *testing.T) {
	fs := newMemFS("/d/a.txt", "/d/b.txt")

	withErrors := planOf("a.txt", "x.txt")
	withErrors.AddError("sequential naming can only be done in the same directory")
	_, err := New(WithFS(fs)).Execute(context.Background(), withErrors, ExecOptions{})
	assert.ErrorIs(t, err, ErrPlanHasErrors)

	dup := planOf("a.txt", "x.txt", "b.txt", "X.txt")
	dup.Options.CaseInsensitive = true
	_, err = New(WithFS(fs)).Execute(context.Background(), dup, ExecOptions{})
	assert.ErrorIs(t, err, ErrInvalidPlan)

	_, err = New(WithFS(fs)).Execute(context.Background(), nil, ExecOptions{})
	assert.Error(t, err)
	assert.Empty(t, fs.calls)
}

func TestPhaseOneSourceMissing(t *testing.T) {
	fs := newMemFS("/d/b.txt")
	plan := planOf("a.txt", "x.txt", "b.txt", "y.txt")

	result, err := New(WithFS(fs)).Execute(context.Background(), plan, ExecOptions{})
	require.NoError(t, err)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, "source missing", result.Failed[0].Error)
	assert.Equal(t, "phase1", result.Failed[0].Phase)
	assert.Equal(t, []models.RenameOp{plan.Ops[1]}, result.Succeeded)
	assertPartition(t, plan, result)
}

func TestPhaseTwoFailureRestores(t *testing.T) {
	fs := newMemFS("/d/a.txt", "/d/b.txt", "/d/c.txt")
	fs.renameErr = func(oldPath, newPath string) error {
		if filepath.Base(newPath) == "y.txt" {
			return errors.New("disk says no")
		}
		return nil
	}
	plan := planOf("a.txt", "x.txt", "b.txt", "y.txt", "c.txt", "z.txt")
	logger := &recordingLogger{}

	result, err := New(WithFS(fs), WithLogger(logger)).Execute(context.Background(), plan, ExecOptions{})
	require.NoError(t, err)

	require.Len(t, result.Failed, 1)
	f := result.Failed[0]
	assert.Equal(t, "phase2", f.Phase)
	assert.False(t, f.NeedsRecovery)
	assert.Contains(t, f.Error, "disk says no")
	assert.Contains(t, f.Error, "restored to original name")

	_, ok := fs.content("b.txt")
	assert.True(t, ok, "source restored")
	_, ok = fs.content("x.txt")
	assert.True(t, ok)
	_, ok = fs.content("z.txt")
	assert.True(t, ok)
	assert.Empty(t, fs.tempFiles())
	assertPartition(t, plan, result)
	assert.True(t, logger.contains("phase2"))
}

func TestPhaseTwoRestoreAlsoFails(t *testing.T) {
	fs := newMemFS("/d/a.txt")
	fs.renameErr = func(oldPath, newPath string) error {
		if IsTempName(filepath.Base(oldPath)) {
			return fmt.Errorf("rename %s: input/output error", filepath.Base(newPath))
		}
		return nil
	}
	plan := planOf("a.txt", "x.txt")
	logger := &recordingLogger{}

	result, err := New(WithFS(fs), WithLogger(logger)).Execute(context.Background(), plan, ExecOptions{})
	require.NoError(t, err)

	require.Len(t, result.Failed, 1)
	f := result.Failed[0]
	assert.True(t, f.NeedsRecovery)
	assert.Contains(t, f.Error, "rename x.txt: input/output error")
	assert.Contains(t, f.Error, "restore also failed: rename a.txt: input/output error")
	assert.Len(t, fs.tempFiles(), 1, "file kept under its temporary name")
	assert.Len(t, result.NeedsRecovery(), 1)
	assert.True(t, logger.contains("needs manual recovery"))
}

func TestPhaseTwoRefusesToClobber(t *testing.T) {
	// x.txt appeared after planning
	fs := newMemFS("/d/a.txt", "/d/x.txt")
	plan := planOf("a.txt", "x.txt")

	result, err := New(WithFS(fs)).Execute(context.Background(), plan, ExecOptions{})
	require.NoError(t, err)

	require.Len(t, result.Failed, 1)
	assert.Contains(t, result.Failed[0].Error, "destination already exists")
	c, _ := fs.content("x.txt")
	assert.Equal(t, "x.txt", c, "foreign file untouched")
	c, _ = fs.content("a.txt")
	assert.Equal(t, "a.txt", c)
}

func TestPhaseOneFailureProtectsChain(t *testing.T) {
	// a -> b, b -> c: b cannot move, so a must not land on it
	fs := newMemFS("/d/a.txt", "/d/b.txt")
	fs.renameErr = func(oldPath, _ string) error {
		if filepath.Base(oldPath) == "b.txt" {
			return errors.New("permission denied")
		}
		return nil
	}
	plan := planOf("a.txt", "b.txt", "b.txt", "c.txt")

	result, err := New(WithFS(fs)).Execute(context.Background(), plan, ExecOptions{})
	require.NoError(t, err)

	assert.Equal(t, 0, result.SuccessCount())
	assert.Equal(t, 2, result.FailedCount())
	c, _ := fs.content("a.txt")
	assert.Equal(t, "a.txt", c)
	c, _ = fs.content("b.txt")
	assert.Equal(t, "b.txt", c)
}

func TestRestoreNeverClobbersSource(t *testing.T) {
	// the source name was taken by another op of the batch before restore
	fs := newMemFS("/d/a.txt", "/d/b.txt")
	fs.renameErr = func(oldPath, newPath string) error {
		if filepath.Base(newPath) == "b.txt" && IsTempName(filepath.Base(oldPath)) {
			return errors.New("device busy")
		}
		return nil
	}
	plan := planOf("a.txt", "b.txt", "b.txt", "a.txt")
	// b -> a lands on a.txt before a -> b fails its second step
	plan.Ops[0], plan.Ops[1] = plan.Ops[1], plan.Ops[0]

	result, err := New(WithFS(fs)).Execute(context.Background(), plan, ExecOptions{})
	require.NoError(t, err)

	require.Len(t, result.Failed, 1)
	assert.True(t, result.Failed[0].NeedsRecovery)
	assert.Contains(t, result.Failed[0].Error, "original name is occupied")
	c, _ := fs.content("a.txt")
	assert.Equal(t, "b.txt", c, "successful op kept")
	assert.Len(t, fs.tempFiles(), 1)
}

func TestOverwriteOpReplacesExisting(t *testing.T) {
	fs := newMemFS("/d/a.txt", "/d/x.txt")
	plan := models.NewRenamePlan(models.DefaultOptions(false))
	plan.AddOp("/d/a.txt", "/d/x.txt", models.OverwriteNote("x.txt"))

	result, err := New(WithFS(fs)).Execute(context.Background(), plan, ExecOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount())
	c, _ := fs.content("x.txt")
	assert.Equal(t, "a.txt", c)
}

func TestCancellation(t *testing.T) {
	for _, strategy := range []Strategy{StrategyBatch, StrategyPerFile} {
		t.Run(strategy.String(), func(t *testing.T) {
			fs := newMemFS("/d/a.txt", "/d/b.txt", "/d/c.txt")
			plan := planOf("a.txt", "x.txt", "b.txt", "y.txt", "c.txt", "z.txt")
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			result, err := New(WithFS(fs)).Execute(ctx, plan, ExecOptions{
				Strategy: strategy,
				Progress: func(done, _ int, msg string) {
					if strings.HasPrefix(msg, "staged: a.txt") {
						cancel()
					}
				},
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, context.Canceled)
			require.NotNil(t, result)

			assert.Equal(t, []models.RenameOp{plan.Ops[0]}, result.Succeeded, "in-flight op completed")
			assert.Equal(t, plan.Ops[1:], result.Skipped)
			assert.Empty(t, fs.tempFiles())
			assertPartition(t, plan, result)
		})
	}
}

func TestStrategies(t *testing.T) {
	tests := []struct {
		name      string
		strategy  Strategy
		pairs     []string
		wantCalls []string
	}{
		{
			name:     "batch",
			strategy: StrategyBatch,
			pairs:    []string{"a.txt", "x.txt", "b.txt", "y.txt"},
			wantCalls: []string{
				"a.txt>tmp(a.txt)", "b.txt>tmp(b.txt)",
				"tmp(a.txt)>x.txt", "tmp(b.txt)>y.txt",
			},
		},
		{
			name:     "per-file",
			strategy: StrategyPerFile,
			pairs:    []string{"a.txt", "x.txt", "b.txt", "y.txt"},
			wantCalls: []string{
				"a.txt>tmp(a.txt)", "tmp(a.txt)>x.txt",
				"b.txt>tmp(b.txt)", "tmp(b.txt)>y.txt",
			},
		},
		{
			name:     "per-file falls back on chains",
			strategy: StrategyPerFile,
			pairs:    []string{"a.txt", "b.txt", "b.txt", "c.txt"},
			wantCalls: []string{
				"a.txt>tmp(a.txt)", "b.txt>tmp(b.txt)",
				"tmp(a.txt)>b.txt", "tmp(b.txt)>c.txt",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newMemFS("/d/a.txt", "/d/b.txt")
			result, err := New(WithFS(fs)).Execute(context.Background(), planOf(tt.pairs...), ExecOptions{Strategy: tt.strategy})
			require.NoError(t, err)
			assert.Equal(t, 2, result.SuccessCount())
			assert.Equal(t, tt.wantCalls, fs.calls)
		})
	}
}

func TestProgressReachesTotal(t *testing.T) {
	fs := newMemFS("/d/a.txt", "/d/c.txt")
	fs.renameErr = func(oldPath, newPath string) error {
		if filepath.Base(newPath) == "z.txt" {
			return errors.New("nope")
		}
		return nil
	}
	plan := planOf("a.txt", "x.txt", "b.txt", "y.txt", "c.txt", "z.txt")

	var steps []int
	_, err := New(WithFS(fs)).Execute(context.Background(), plan, ExecOptions{
		Progress: func(done, total int, _ string) {
			assert.Equal(t, 6, total)
			steps = append(steps, done)
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, steps)
	assert.Equal(t, 6, steps[len(steps)-1])
	assert.True(t, sort.IntsAreSorted(steps))
}

type fakeJournal struct {
	plans, results int
	err            error
}

func (j *fakeJournal) WritePlan(*models.RenamePlan) error {
	j.plans++
	return j.err
}

func (j *fakeJournal) WriteResult(*models.ExecutionResult) error {
	j.results++
	return j.err
}

type fakeRecorder struct {
	runs int
}

func (r *fakeRecorder) RecordRun(_ context.Context, _ *models.RenamePlan, _ *models.ExecutionResult) error {
	r.runs++
	return nil
}

type fakeLocker struct {
	locked   []string
	released bool
	err      error
}

func (l *fakeLocker) Lock(_ context.Context, dirs []string) (func() error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locked = dirs
	return func() error { l.released = true; return nil }, nil
}

func TestCollaborators(t *testing.T) {
	fs := newMemFS("/d/a.txt")
	j := &fakeJournal{err: errors.New("log dir read-only")}
	rec := &fakeRecorder{}
	lock := &fakeLocker{}
	logger := &recordingLogger{}

	result, err := New(WithFS(fs), WithJournal(j), WithRecorder(rec), WithLocker(lock), WithLogger(logger)).
		Execute(context.Background(), planOf("a.txt", "b.txt"), ExecOptions{})
	require.NoError(t, err, "journal failures never abort")

	assert.Equal(t, 1, result.SuccessCount())
	assert.Equal(t, 1, j.plans)
	assert.Equal(t, 1, j.results)
	assert.Equal(t, 1, rec.runs)
	assert.Equal(t, []string{"/d"}, lock.locked)
	assert.True(t, lock.released)
	assert.True(t, logger.contains("failed to write plan log"))
}

func TestLockedDirectory(t *testing.T) {
	fs := newMemFS("/d/a.txt")
	lock := &fakeLocker{err: errors.New("lock is held by another process: /d")}

	_, err := New(WithFS(fs), WithLocker(lock)).Execute(context.Background(), planOf("a.txt", "b.txt"), ExecOptions{})
	assert.ErrorIs(t, err, ErrDirectoryLocked)
	assert.Empty(t, fs.calls)
}

func TestExecuteOnDisk(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"photo.realcugan.png", "photo.png", "b.txt", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(n), 0o644))
	}
	plan := models.NewRenamePlan(models.DefaultOptions(false))
	plan.AddOp(filepath.Join(dir, "photo.realcugan.png"), filepath.Join(dir, "photo_1.png"), models.ConflictNote("photo.png", "photo_1.png"))
	plan.AddOp(filepath.Join(dir, "b.txt"), filepath.Join(dir, "c.txt"), "")
	plan.AddOp(filepath.Join(dir, "c.txt"), filepath.Join(dir, "b.txt"), "")

	result, err := New().Execute(context.Background(), plan, ExecOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.SuccessCount())

	read := func(name string) string {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		return string(data)
	}
	assert.Equal(t, "photo.realcugan.png", read("photo_1.png"))
	assert.Equal(t, "photo.png", read("photo.png"))
	assert.Equal(t, "c.txt", read("b.txt"))
	assert.Equal(t, "b.txt", read("c.txt"))
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("per-file")
	require.NoError(t, err)
	assert.Equal(t, StrategyPerFile, s)

	s, err = ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyBatch, s)

	_, err = ParseStrategy("parallel")
	assert.Error(t, err)
}

func TestOpError(t *testing.T) {
	cause := os.ErrPermission
	err := fmt.Errorf("wrapped: %w", &OpError{Phase: PhaseFinal, Source: "/d/a", Target: "/d/b", Err: cause})
	assert.True(t, IsOpError(err))
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Contains(t, err.Error(), "phase2 /d/a -> /d/b")
	assert.False(t, IsOpError(errors.New("plain")))
	assert.False(t, IsOpError(nil))
}
