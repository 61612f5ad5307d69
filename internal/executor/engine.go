// Package executor applies rename plans to the filesystem with a two-phase
// protocol. Every operation first moves its source to a temporary name and
// only then to its destination, so batches that permute names among their
// own members never clobber a sibling. A failed second step restores the
// source name; a failed restore leaves the file under its temporary name
// where Recover can find it.
package executor

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harrison/bulkrename/internal/models"
	"github.com/harrison/bulkrename/internal/planner"
)

// Logger receives the engine's diagnostic messages.
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
}

// Journal persists the plan before execution and the result after it.
type Journal interface {
	WritePlan(plan *models.RenamePlan) error
	WriteResult(result *models.ExecutionResult) error
}

// Recorder stores completed runs so they can be listed and undone later.
type Recorder interface {
	RecordRun(ctx context.Context, plan *models.RenamePlan, result *models.ExecutionResult) error
}

// Locker serializes runs that touch the same directories. The returned
// release function must be called once the run is over.
type Locker interface {
	Lock(ctx context.Context, dirs []string) (release func() error, err error)
}

// ProgressFunc is called after each step with the steps done so far and the
// total, which is twice the number of valid operations.
type ProgressFunc func(done, total int, msg string)

// Strategy selects the order in which the two phases are applied.
type Strategy int

const (
	// StrategyBatch moves every file to its temporary name before moving any
	// file to its destination.
	StrategyBatch Strategy = iota
	// StrategyPerFile completes both phases for one file before starting the
	// next. It shortens the time files spend under temporary names and is only
	// used when no destination is another operation's source.
	StrategyPerFile
)

// String returns the configuration spelling of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyBatch:
		return "batch"
	case StrategyPerFile:
		return "per-file"
	default:
		return "unknown"
	}
}

// ParseStrategy parses "batch" or "per-file".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "batch", "":
		return StrategyBatch, nil
	case "per-file", "per_file", "perfile":
		return StrategyPerFile, nil
	default:
		return StrategyBatch, fmt.Errorf("invalid strategy %q, must be one of: batch, per-file", s)
	}
}

// ExecOptions controls one Execute call.
type ExecOptions struct {
	DryRun   bool
	Strategy Strategy
	Progress ProgressFunc
}

// Engine executes rename plans. The zero value is not usable; create one with New.
type Engine struct {
	FS       FS
	Logger   Logger
	Journal  Journal  // Optional
	Recorder Recorder // Optional
	Locker   Locker   // Optional
	Monitor  Monitor  // Optional
}

// Option configures an Engine.
type Option func(*Engine)

// WithFS replaces the filesystem the engine operates on.
func WithFS(fs FS) Option {
	return func(e *Engine) { e.FS = fs }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l Logger) Option {
	return func(e *Engine) { e.Logger = l }
}

// WithJournal enables plan and result records.
func WithJournal(j Journal) Option {
	return func(e *Engine) { e.Journal = j }
}

// WithRecorder enables run history.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.Recorder = r }
}

// WithLocker enables per-directory run locks.
func WithLocker(l Locker) Option {
	return func(e *Engine) { e.Locker = l }
}

// WithMonitor enables detection of foreign activity in the plan's directories.
func WithMonitor(m Monitor) Option {
	return func(e *Engine) { e.Monitor = m }
}

// New creates an Engine on the OS filesystem with logging discarded.
func New(opts ...Option) *Engine {
	e := &Engine{FS: NewOSFS(), Logger: nopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.Logger == nil {
		e.Logger = nopLogger{}
	}
	if e.FS == nil {
		e.FS = NewOSFS()
	}
	return e
}

type nopLogger struct{}

func (nopLogger) LogDebug(string) {}
func (nopLogger) LogInfo(string)  {}
func (nopLogger) LogWarn(string)  {}
func (nopLogger) LogError(string) {}

// Execute applies the valid operations of plan. Per-operation failures are
// reported in the result, never as the returned error. The error is non-nil
// only when the plan is refused before any change, or when ctx was cancelled;
// in the latter case the result is still returned and lists the operations
// that were never started as skipped.
func (e *Engine) Execute(ctx context.Context, plan *models.RenamePlan, opts ExecOptions) (*models.ExecutionResult, error) {
	if plan == nil {
		return nil, fmt.Errorf("plan cannot be nil")
	}
	if plan.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrPlanHasErrors, strings.Join(plan.Errors, "; "))
	}
	ops := plan.ValidOps()
	if dups := planner.DuplicateDestinations(ops, plan.Options.CaseInsensitive); len(dups) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPlan, dups[0])
	}

	r := &run{
		fs:       e.FS,
		logger:   e.Logger,
		ops:      ops,
		temps:    make([]string, len(ops)),
		result:   models.NewExecutionResult(),
		progress: opts.Progress,
		total:    2 * len(ops),
	}

	if opts.DryRun {
		for _, op := range ops {
			r.result.Succeeded = append(r.result.Succeeded, op)
			r.advance(2, fmt.Sprintf("preview: %s -> %s", filepath.Base(op.Source), filepath.Base(op.Destination)))
		}
		return r.result, nil
	}
	if len(ops) == 0 {
		return r.result, nil
	}

	dirs := planDirs(ops)
	if e.Locker != nil {
		release, err := e.Locker.Lock(ctx, dirs)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDirectoryLocked, err)
		}
		defer func() {
			if err := release(); err != nil {
				e.Logger.LogWarn(fmt.Sprintf("failed to release directory lock: %v", err))
			}
		}()
	}

	if e.Journal != nil {
		if err := e.Journal.WritePlan(plan); err != nil {
			e.Logger.LogWarn(fmt.Sprintf("failed to write plan log: %v", err))
		}
	}

	var stopMonitor func() []string
	if e.Monitor != nil {
		stop, err := e.Monitor.Start(dirs, expectedPaths(ops, plan.Options.CaseInsensitive))
		if err != nil {
			e.Logger.LogWarn(fmt.Sprintf("interference detection disabled: %v", err))
		} else {
			stopMonitor = stop
		}
	}

	strategy := opts.Strategy
	if strategy == StrategyPerFile && hasChains(ops, plan.Options.CaseInsensitive) {
		e.Logger.LogInfo("per-file strategy unavailable: a destination is another operation's source, using batch")
		strategy = StrategyBatch
	}
	e.Logger.LogDebug(fmt.Sprintf("executing %d operations with %s strategy", len(ops), strategy))

	switch strategy {
	case StrategyPerFile:
		r.perFile(ctx)
	default:
		r.batch(ctx)
	}

	if stopMonitor != nil {
		r.result.Notices = append(r.result.Notices, stopMonitor()...)
	}

	if e.Journal != nil {
		if err := e.Journal.WriteResult(r.result); err != nil {
			e.Logger.LogWarn(fmt.Sprintf("failed to write result log: %v", err))
		}
	}
	if e.Recorder != nil {
		if err := e.Recorder.RecordRun(context.WithoutCancel(ctx), plan, r.result); err != nil {
			e.Logger.LogWarn(fmt.Sprintf("failed to record run history: %v", err))
		}
	}

	e.Logger.LogInfo(fmt.Sprintf("rename finished: %d succeeded, %d failed, %d skipped",
		r.result.SuccessCount(), r.result.FailedCount(), r.result.SkippedCount()))

	if r.cancelled {
		return r.result, fmt.Errorf("execution cancelled, %d operations not started: %w", r.result.SkippedCount(), ctx.Err())
	}
	return r.result, nil
}

// planDirs returns the sorted set of directories touched by ops.
func planDirs(ops []models.RenameOp) []string {
	set := make(map[string]bool)
	for _, op := range ops {
		set[filepath.Dir(op.Source)] = true
		set[filepath.Dir(op.Destination)] = true
	}
	dirs := make([]string, 0, len(set))
	for d := range set {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// hasChains reports whether some destination is the source of another op.
func hasChains(ops []models.RenameOp, caseInsensitive bool) bool {
	sources := make(map[string]bool, len(ops))
	for _, op := range ops {
		sources[models.NormalizeName(op.Source, caseInsensitive)] = true
	}
	for _, op := range ops {
		dst := models.NormalizeName(op.Destination, caseInsensitive)
		if sources[dst] && dst != models.NormalizeName(op.Source, caseInsensitive) {
			return true
		}
	}
	return false
}

// expectedPaths matches the paths the run itself creates or removes.
func expectedPaths(ops []models.RenameOp, caseInsensitive bool) func(string) bool {
	known := make(map[string]bool, 2*len(ops))
	for _, op := range ops {
		known[models.NormalizeName(op.Source, caseInsensitive)] = true
		known[models.NormalizeName(op.Destination, caseInsensitive)] = true
	}
	return func(path string) bool {
		if IsTempName(filepath.Base(path)) {
			return true
		}
		return known[models.NormalizeName(filepath.Clean(path), caseInsensitive)]
	}
}
