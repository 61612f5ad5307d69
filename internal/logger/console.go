// Package logger provides logging implementations for bulkrename runs.
//
// ConsoleLogger and FileLogger filter messages by level and render run
// summaries; Journal persists the JSON plan and result records of each run.
// Implementations are safe for concurrent use.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/harrison/bulkrename/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs run progress to a writer with timestamps.
// All output is prefixed with [HH:MM:SS] timestamps.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		// false when NO_COLOR is set or the stream is not a TTY
		return !color.NoColor
	}
	return false
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	default:
		return "info"
	}
}

// IsValidLevel reports whether level names a known log level.
func IsValidLevel(level string) bool {
	l := strings.ToLower(strings.TrimSpace(level))
	return normalizeLogLevel(l) == l
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// logWithLevel writes "[HH:MM:SS] [LEVEL] message" if filtering allows it.
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, colorLevel(level), message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}
	cl.writer.Write([]byte(formatted))
}

// LogPlan logs the counts of a plan and every warning and error it carries.
func (cl *ConsoleLogger) LogPlan(plan *models.RenamePlan) {
	if cl.writer == nil || plan == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	scheme := newColorScheme(cl.colorOutput)
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", ts, scheme.header("=== Rename Plan ==="))
	fmt.Fprintf(&b, "[%s] %s\n", ts, scheme.metric("Operations", plan.TotalCount(), kindNeutral))
	fmt.Fprintf(&b, "[%s] %s\n", ts, scheme.metric("Conflicts resolved", plan.ConflictCount(), kindWarnIfPositive))
	for _, w := range plan.Warnings {
		fmt.Fprintf(&b, "[%s]   %s %s\n", ts, scheme.warn.Sprint("warning:"), w)
	}
	for _, e := range plan.Errors {
		fmt.Fprintf(&b, "[%s]   %s %s\n", ts, scheme.fail.Sprint("error:"), e)
	}
	cl.writer.Write([]byte(b.String()))
}

// LogSummary logs the outcome of a run at INFO level, followed by each
// failure and notice.
func (cl *ConsoleLogger) LogSummary(result *models.ExecutionResult, duration time.Duration) {
	if cl.writer == nil || result == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	cl.writer.Write([]byte(formatSummary(result, duration, timestamp(), newColorScheme(cl.colorOutput))))
}

// formatSummary renders the summary block shared by console and file loggers.
func formatSummary(result *models.ExecutionResult, duration time.Duration, ts string, scheme *colorScheme) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", ts, scheme.header("=== Rename Summary ==="))
	fmt.Fprintf(&b, "[%s] %s\n", ts, scheme.metric("Succeeded", result.SuccessCount(), kindSuccess))
	fmt.Fprintf(&b, "[%s] %s\n", ts, scheme.metric("Failed", result.FailedCount(), kindFailIfPositive))
	fmt.Fprintf(&b, "[%s] %s\n", ts, scheme.metric("Skipped", result.SkippedCount(), kindWarnIfPositive))
	fmt.Fprintf(&b, "[%s] Duration: %s\n", ts, formatDuration(duration))

	if len(result.Failed) > 0 {
		fmt.Fprintf(&b, "[%s] %s\n", ts, scheme.fail.Sprint("Failed operations:"))
		for _, f := range result.Failed {
			line := fmt.Sprintf("%s -> %s: %s", f.Op.Source, f.Op.Destination, f.Error)
			if f.NeedsRecovery {
				line += " " + scheme.fail.Sprint("[needs recovery]")
			}
			fmt.Fprintf(&b, "[%s]   - %s\n", ts, line)
		}
	}
	for _, n := range result.Notices {
		fmt.Fprintf(&b, "[%s]   %s %s\n", ts, scheme.warn.Sprint("notice:"), n)
	}
	return b.String()
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "120ms", "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		minutes := (d % time.Hour) / time.Minute
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	case d >= time.Minute:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger discards all log messages.
// Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(string)                                    {}
func (n *NoOpLogger) LogDebug(string)                                    {}
func (n *NoOpLogger) LogInfo(string)                                     {}
func (n *NoOpLogger) LogWarn(string)                                     {}
func (n *NoOpLogger) LogError(string)                                    {}
func (n *NoOpLogger) LogPlan(*models.RenamePlan)                         {}
func (n *NoOpLogger) LogSummary(*models.ExecutionResult, time.Duration) {}
