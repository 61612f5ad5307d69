package logger

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harrison/bulkrename/internal/models"
)

// TestNewConsoleLogger verifies the constructor stores the writer and normalizes the level.
func TestNewConsoleLogger(t *testing.T) {
	t.Run("with valid writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "DEBUG")

		if logger.writer != buf {
			t.Error("writer not set correctly")
		}
		if logger.logLevel != "debug" {
			t.Errorf("expected log level %q, got %q", "debug", logger.logLevel)
		}
		if logger.colorOutput {
			t.Error("expected colors to be disabled for a buffer")
		}
	})

	t.Run("with nil writer", func(t *testing.T) {
		logger := NewConsoleLogger(nil, "info")
		logger.LogInfo("dropped")
		logger.LogSummary(models.NewExecutionResult(), time.Second)
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		logger := NewConsoleLogger(&bytes.Buffer{}, "verbose")
		if logger.logLevel != "info" {
			t.Errorf("expected log level %q, got %q", "info", logger.logLevel)
		}
	})
}

// TestConsoleLoggerLevelFiltering verifies messages below the configured level are dropped.
func TestConsoleLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		name        string
		configLevel string
		logFunc     func(*ConsoleLogger)
		shouldLog   bool
	}{
		{"trace allows trace", "trace", func(l *ConsoleLogger) { l.LogTrace("msg") }, true},
		{"debug blocks trace", "debug", func(l *ConsoleLogger) { l.LogTrace("msg") }, false},
		{"debug allows debug", "debug", func(l *ConsoleLogger) { l.LogDebug("msg") }, true},
		{"info blocks debug", "info", func(l *ConsoleLogger) { l.LogDebug("msg") }, false},
		{"info allows info", "info", func(l *ConsoleLogger) { l.LogInfo("msg") }, true},
		{"info allows warn", "info", func(l *ConsoleLogger) { l.LogWarn("msg") }, true},
		{"warn blocks info", "warn", func(l *ConsoleLogger) { l.LogInfo("msg") }, false},
		{"error blocks warn", "error", func(l *ConsoleLogger) { l.LogWarn("msg") }, false},
		{"error allows error", "error", func(l *ConsoleLogger) { l.LogError("msg") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.logFunc(NewConsoleLogger(buf, tt.configLevel))

			if got := buf.Len() > 0; got != tt.shouldLog {
				t.Errorf("logged = %v, want %v (output %q)", got, tt.shouldLog, buf.String())
			}
		})
	}
}

// TestConsoleLoggerFormat verifies the "[HH:MM:SS] [LEVEL] message" layout.
func TestConsoleLoggerFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "info").LogWarn("disk is slow")

	out := buf.String()
	if !strings.HasSuffix(out, "[WARN] disk is slow\n") {
		t.Errorf("unexpected output %q", out)
	}
	if len(out) < 10 || out[0] != '[' || out[9] != ']' {
		t.Errorf("expected [HH:MM:SS] prefix, got %q", out)
	}
}

func TestIsValidLevel(t *testing.T) {
	for _, level := range []string{"trace", "DEBUG", " info ", "warn", "error"} {
		if !IsValidLevel(level) {
			t.Errorf("IsValidLevel(%q) = false, want true", level)
		}
	}
	for _, level := range []string{"", "verbose", "fatal"} {
		if IsValidLevel(level) {
			t.Errorf("IsValidLevel(%q) = true, want false", level)
		}
	}
}

// TestConsoleLoggerLogSummary verifies counts, failures and notices are reported.
func TestConsoleLoggerLogSummary(t *testing.T) {
	result := models.NewExecutionResult()
	result.Succeeded = append(result.Succeeded, models.RenameOp{Source: "/d/a.txt", Destination: "/d/b.txt"})
	result.Failed = append(result.Failed, models.FailedOp{
		Op:            models.RenameOp{Source: "/d/c.txt", Destination: "/d/e.txt"},
		Error:         "permission denied",
		NeedsRecovery: true,
	})
	result.Skipped = append(result.Skipped, models.RenameOp{Source: "/d/f.txt", Destination: "/d/g.txt"})
	result.Notices = append(result.Notices, "external change during rename: CREATE /d/x")

	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "info").LogSummary(result, 90*time.Second)
	out := buf.String()

	for _, want := range []string{
		"=== Rename Summary ===",
		"Succeeded: 1",
		"Failed: 1",
		"Skipped: 1",
		"Duration: 1m30s",
		"/d/c.txt -> /d/e.txt: permission denied [needs recovery]",
		"notice: external change during rename: CREATE /d/x",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	NewConsoleLogger(buf, "warn").LogSummary(result, time.Second)
	if buf.Len() != 0 {
		t.Errorf("summary should be filtered at warn level, got %q", buf.String())
	}
}

func TestConsoleLoggerLogPlan(t *testing.T) {
	plan := models.NewRenamePlan(models.DefaultOptions(false))
	plan.AddOp("/d/a.txt", "/d/b.txt", "")
	plan.AddOp("/d/c.txt", "/d/b_1.txt", models.ConflictNote("b.txt", "b_1.txt"))
	plan.AddWarning("Skip x.txt: destination occupied: y.txt")

	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "info").LogPlan(plan)
	out := buf.String()

	for _, want := range []string{"Operations: 2", "Conflicts resolved: 1", "warning: Skip x.txt"} {
		if !strings.Contains(out, want) {
			t.Errorf("plan output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{120 * time.Millisecond, "120ms"},
		{5 * time.Second, "5s"},
		{90 * time.Second, "1m30s"},
		{2 * time.Minute, "2m"},
		{2*time.Hour + 15*time.Minute, "2h15m"},
		{3 * time.Hour, "3h"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

// TestConsoleLoggerWriteErrorIgnored verifies a failing writer does not panic.
func TestConsoleLoggerWriteErrorIgnored(t *testing.T) {
	NewConsoleLogger(errWriter{}, "info").LogError("boom")
}

// TestConsoleLoggerConcurrent verifies concurrent writers produce whole lines.
func TestConsoleLoggerConcurrent(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.LogInfo("line")
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 20 {
		t.Fatalf("expected 20 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, "[INFO] line") {
			t.Errorf("interleaved line %q", line)
		}
	}
}

func TestNoOpLogger(t *testing.T) {
	n := NewNoOpLogger()
	n.LogTrace("x")
	n.LogDebug("x")
	n.LogInfo("x")
	n.LogWarn("x")
	n.LogError("x")
	n.LogPlan(nil)
	n.LogSummary(nil, 0)
}
