package logger

import (
	"fmt"

	"github.com/fatih/color"
)

// metricKind selects how a counter is colored.
type metricKind int

const (
	kindNeutral metricKind = iota
	kindSuccess
	kindFailIfPositive
	kindWarnIfPositive
)

// colorScheme defines consistent colors for summary output.
// Green: success counts
// Red: failures
// Yellow: warnings, skips and conflicts
// Cyan: labels
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
	bold    *color.Color
}

// newColorScheme creates the standard color scheme. With enabled false every
// color prints plain text.
func newColorScheme(enabled bool) *colorScheme {
	s := &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
		bold:    color.New(color.Bold),
	}
	for _, c := range []*color.Color{s.success, s.fail, s.warn, s.label, s.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

func (s *colorScheme) header(text string) string {
	return s.bold.Sprint(text)
}

// metric formats "label: value", coloring the value by kind.
func (s *colorScheme) metric(label string, value int, kind metricKind) string {
	text := fmt.Sprintf("%s: %d", label, value)
	switch {
	case kind == kindSuccess:
		return s.success.Sprint(text)
	case kind == kindFailIfPositive && value > 0:
		return s.fail.Sprint(text)
	case kind == kindWarnIfPositive && value > 0:
		return s.warn.Sprint(text)
	default:
		return text
	}
}

// colorLevel colors a log level tag.
func colorLevel(level string) string {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	default:
		return level
	}
}
