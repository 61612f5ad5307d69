package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/bulkrename/internal/config"
	"github.com/harrison/bulkrename/internal/display"
	"github.com/harrison/bulkrename/internal/executor"
	"github.com/harrison/bulkrename/internal/filelock"
	"github.com/harrison/bulkrename/internal/history"
	"github.com/harrison/bulkrename/internal/logger"
	"github.com/harrison/bulkrename/internal/models"
	"github.com/harrison/bulkrename/internal/safety"
)

// addSharedFlags registers the flags every subcommand understands.
func addSharedFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to config file (default: .bulkrename/config.yaml)")
	flags.Bool("dry-run", false, "Show what would be renamed without touching any file")
	flags.BoolP("yes", "y", false, "Apply the plan without asking for confirmation")
	flags.String("log-dir", "", "Directory for run logs and plan/result records")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error")
	flags.String("conflict", "", "Name conflict policy: suffix, skip, overwrite")
	flags.Bool("case-insensitive", false, "Treat names differing only in case as the same file")
	flags.Bool("case-sensitive-fs", false, "Treat names differing only in case as different files")
	flags.Bool("include-hidden", false, "Include hidden files and directories")
	flags.Bool("match-path", false, "Match keywords against the path relative to the directory")
	flags.Bool("diff", false, "Show the plan as a unified diff of old and new names")
	flags.Bool("per-file", false, "Finish each rename before starting the next (no chains)")
	flags.Bool("no-detect", false, "Do not watch for changes made by other programs during the run")
	flags.Duration("lock-timeout", 0, "How long to wait for another run on the same directory")
}

// flagOverrides collects the shared flags the user actually set.
func flagOverrides(cmd *cobra.Command) (config.FlagOverrides, error) {
	flags := cmd.Flags()
	var f config.FlagOverrides

	if flags.Changed("case-insensitive") && flags.Changed("case-sensitive-fs") {
		return f, fmt.Errorf("cannot use both --case-insensitive and --case-sensitive-fs")
	}

	if flags.Changed("conflict") {
		v, _ := flags.GetString("conflict")
		f.ConflictPolicy = &v
	}
	if flags.Changed("case-insensitive") {
		v, _ := flags.GetBool("case-insensitive")
		f.CaseInsensitive = &v
	} else if flags.Changed("case-sensitive-fs") {
		v, _ := flags.GetBool("case-sensitive-fs")
		v = !v
		f.CaseInsensitive = &v
	}
	if flags.Changed("include-hidden") {
		v, _ := flags.GetBool("include-hidden")
		f.IncludeHidden = &v
	}
	if flags.Changed("match-path") {
		v, _ := flags.GetBool("match-path")
		f.MatchPath = &v
	}
	if flags.Changed("dry-run") {
		v, _ := flags.GetBool("dry-run")
		f.DryRun = &v
	}
	if flags.Changed("log-dir") {
		v, _ := flags.GetString("log-dir")
		f.LogDir = &v
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		f.LogLevel = &v
	}
	if flags.Changed("per-file") {
		perFile, _ := flags.GetBool("per-file")
		v := executor.StrategyBatch.String()
		if perFile {
			v = executor.StrategyPerFile.String()
		}
		f.Strategy = &v
	}
	if flags.Changed("no-detect") {
		noDetect, _ := flags.GetBool("no-detect")
		v := !noDetect
		f.DetectInterference = &v
	}
	if flags.Changed("lock-timeout") {
		v, _ := flags.GetDuration("lock-timeout")
		f.LockTimeout = &v
	}
	return f, nil
}

// session is the merged configuration and output streams of one command.
type session struct {
	cfg      *config.Config
	platform config.Platform
	opts     models.Options

	in       io.Reader
	out      io.Writer
	errOut   io.Writer
	color    bool
	yes      bool
	showDiff bool

	store *history.Store
}

// newSession loads the configuration, applies flag overrides and validates
// the result.
func newSession(cmd *cobra.Command) (*session, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		if _, statErr := os.Stat(configPath); statErr != nil {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	overrides, err := flagOverrides(cmd)
	if err != nil {
		return nil, err
	}
	cfg.MergeWithFlags(overrides)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	yes, _ := cmd.Flags().GetBool("yes")
	showDiff, _ := cmd.Flags().GetBool("diff")
	platform := config.DetectPlatform()

	return &session{
		cfg:      cfg,
		platform: platform,
		opts:     cfg.Options(platform),
		in:       cmd.InOrStdin(),
		out:      cmd.OutOrStdout(),
		errOut:   cmd.ErrOrStderr(),
		color:    display.IsTerminal(cmd.OutOrStdout()),
		yes:      yes,
		showDiff: showDiff,
	}, nil
}

// Close releases the history store if one was opened.
func (s *session) Close() error {
	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	return err
}

// history opens the run history store once per session.
func (s *session) history() (*history.Store, error) {
	if s.store != nil {
		return s.store, nil
	}
	dbPath, err := s.cfg.ResolveHistoryDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get history database path: %w", err)
	}
	store, err := history.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	s.store = store
	return store, nil
}

// historyExists reports whether a history database has been created yet.
func (s *session) historyExists() (bool, string, error) {
	dbPath, err := s.cfg.ResolveHistoryDBPath()
	if err != nil {
		return false, "", fmt.Errorf("failed to get history database path: %w", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return false, dbPath, nil
	}
	return true, dbPath, nil
}

// consoleLogger returns the logger for engine diagnostics on stderr.
func (s *session) consoleLogger() *logger.ConsoleLogger {
	return logger.NewConsoleLogger(s.errOut, s.cfg.LogLevel)
}

// locker serializes runs through lock files in the application home.
func (s *session) locker() (*filelock.DirLocker, error) {
	lockDir, err := config.GetLockDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get lock directory: %w", err)
	}
	return filelock.NewDirLocker(lockDir, s.cfg.LockTimeout), nil
}

// runRequest names what a plan is for, so the run can be recorded.
type runRequest struct {
	command   string
	directory string
	undoOf    string // Run id the plan reverts, if any
}

// apply shows plan, asks for confirmation and executes it. A nil error means
// every operation succeeded, the plan was empty, or the user declined.
func (s *session) apply(ctx context.Context, plan *models.RenamePlan, req runRequest) error {
	display.Preview(s.out, plan, s.cfg.PreviewLimit, s.color)
	if s.showDiff {
		if diff := display.Diff(plan); diff != "" {
			fmt.Fprintf(s.out, "\n%s", diff)
		}
	}

	if plan.HasErrors() {
		return fmt.Errorf("%w (%d error(s))", executor.ErrPlanHasErrors, len(plan.Errors))
	}
	total := plan.TotalCount()
	if total == 0 {
		return nil
	}

	if violations := safety.CheckBatch(plan.ValidOps(), s.platform.Limits()); len(violations) > 0 {
		fmt.Fprintln(s.out)
		display.SafetyWarning(violations).Display(s.out, s.color)
		return fmt.Errorf("%d operation(s) failed safety checks", len(violations))
	}

	if s.cfg.DryRun {
		result, err := executor.New().Execute(ctx, plan, executor.ExecOptions{DryRun: true})
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out)
		display.ResultSummary(s.out, result, true, s.color)
		return nil
	}

	if !s.yes {
		fmt.Fprintln(s.out)
		if !confirmAction(s.in, s.out, fmt.Sprintf("Rename %d file(s)?", total)) {
			fmt.Fprintf(s.out, "Operation cancelled.\n")
			return nil
		}
	}

	return s.execute(ctx, plan, req)
}

// execute runs a confirmed plan with logging, journaling, locking and history.
func (s *session) execute(ctx context.Context, plan *models.RenamePlan, req runRequest) error {
	logDir, err := s.cfg.ResolveLogDir()
	if err != nil {
		return fmt.Errorf("failed to get log directory: %w", err)
	}
	fileLog, err := logger.NewFileLoggerWithLevel(logDir, s.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer fileLog.Close()

	multiLog := &multiLogger{loggers: []executor.Logger{s.consoleLogger(), fileLog}}
	fileLog.LogInfo(fmt.Sprintf("%s: %s", req.command, req.directory))
	fileLog.LogPlan(plan)

	locker, err := s.locker()
	if err != nil {
		return err
	}
	engineOpts := []executor.Option{
		executor.WithLogger(multiLog),
		executor.WithLocker(locker),
	}

	var journal *logger.Journal
	if s.cfg.BackupLog {
		journal = logger.NewJournal(logDir)
		engineOpts = append(engineOpts, executor.WithJournal(journal))
	}

	var recorder *history.Recorder
	if s.cfg.History.Enabled {
		store, err := s.history()
		if err != nil {
			multiLog.LogWarn(fmt.Sprintf("run history disabled: %v", err))
		} else {
			recorder = history.NewRecorder(store, req.command, req.directory)
			if req.undoOf != "" {
				recorder.Undoes(req.undoOf)
			}
			engineOpts = append(engineOpts, executor.WithRecorder(recorder))
		}
	}

	if s.cfg.DetectInterference {
		engineOpts = append(engineOpts, executor.WithMonitor(executor.NewWatchMonitor()))
	}

	progress := display.NewProgressPrinter(s.errOut, display.IsTerminal(s.errOut))
	start := time.Now()
	result, execErr := executor.New(engineOpts...).Execute(ctx, plan, executor.ExecOptions{
		Strategy: s.cfg.ExecStrategy(),
		Progress: progress.Callback(),
	})
	progress.Finish()

	if result == nil {
		if errors.Is(execErr, executor.ErrDirectoryLocked) {
			return fmt.Errorf("%w (another bulkrename run is using it, see --lock-timeout)", execErr)
		}
		return execErr
	}

	fileLog.LogSummary(result, time.Since(start))
	fmt.Fprintln(s.out)
	display.ResultSummary(s.out, result, false, s.color)

	fmt.Fprintf(s.out, "\nRun log: %s\n", fileLog.RunFile())
	if journal != nil && journal.LastResultPath() != "" {
		fmt.Fprintf(s.out, "Result record: %s\n", journal.LastResultPath())
	}
	if recorder != nil && recorder.LastRunID() != "" {
		fmt.Fprintf(s.out, "Run id: %s (undo with 'bulkrename undo %s')\n", recorder.LastRunID(), shortID(recorder.LastRunID()))
	}

	if execErr != nil {
		return fmt.Errorf("rename interrupted: %w", execErr)
	}
	if n := result.FailedCount(); n > 0 {
		return fmt.Errorf("%d rename(s) failed", n)
	}
	return nil
}

// multiLogger implements executor.Logger by delegating to multiple loggers
type multiLogger struct {
	loggers []executor.Logger
}

// LogDebug forwards to all loggers
func (ml *multiLogger) LogDebug(message string) {
	for _, l := range ml.loggers {
		l.LogDebug(message)
	}
}

// LogInfo forwards to all loggers
func (ml *multiLogger) LogInfo(message string) {
	for _, l := range ml.loggers {
		l.LogInfo(message)
	}
}

// LogWarn forwards to all loggers
func (ml *multiLogger) LogWarn(message string) {
	for _, l := range ml.loggers {
		l.LogWarn(message)
	}
}

// LogError forwards to all loggers
func (ml *multiLogger) LogError(message string) {
	for _, l := range ml.loggers {
		l.LogError(message)
	}
}

// confirmAction prompts on out and reads a yes/no answer from in.
func confirmAction(in io.Reader, out io.Writer, prompt string) bool {
	scanner := bufio.NewScanner(in)

	fmt.Fprintf(out, "%s [y/N]: ", prompt)

	if !scanner.Scan() {
		fmt.Fprintln(out)
		return false
	}

	response := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return response == "y" || response == "yes"
}

// resolveDir turns a directory argument into a clean absolute path.
func resolveDir(arg string) (string, error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("resolve directory path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("directory not found: %s", abs)
		}
		return "", fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// shortID is the id prefix shown in listings.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
