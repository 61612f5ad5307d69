package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/bulkrename/internal/safety"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related files (optional)
	Suggestion string   // Action to take (optional)
}

// Display shows a formatted warning, in yellow when colorOutput is set
func (w Warning) Display(out io.Writer, colorOutput bool) {
	var b strings.Builder

	b.WriteString("Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Files) > 0 {
		b.WriteString("    ")
		if len(w.Files) == 1 {
			b.WriteString("Affected file:\n")
		} else {
			b.WriteString("Affected files:\n")
		}
		for i, file := range w.Files {
			b.WriteString(fmt.Sprintf("      %d. %s\n", i+1, file))
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	fmt.Fprint(out, palette(colorOutput, color.FgYellow).Sprint(b.String()))
}

// SafetyWarning describes operations that failed the pre-execution checks.
func SafetyWarning(violations []safety.Violation) Warning {
	files := make([]string, 0, len(violations))
	for _, v := range violations {
		files = append(files, v.String())
	}
	return Warning{
		Title:      fmt.Sprintf("%d operation(s) failed safety checks", len(violations)),
		Files:      files,
		Suggestion: "Fix permissions or shorten the names, then run again",
	}
}

// RecoveryWarning describes files stranded under temporary names.
func RecoveryWarning(sources []string) Warning {
	return Warning{
		Title:      "Some files were left under temporary names",
		Message:    "Restoring their original names failed after a rename error.",
		Files:      sources,
		Suggestion: "Run 'bulkrename recover <dir>' to restore them",
	}
}
