package display

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/harrison/bulkrename/internal/models"
)

// Preview writes the plan's operations, errors and warnings. limit caps the
// number of operations listed; 0 lists all of them.
func Preview(w io.Writer, plan *models.RenamePlan, limit int, colorOutput bool) {
	bold := palette(colorOutput, color.Bold)
	yellow := palette(colorOutput, color.FgYellow)
	red := palette(colorOutput, color.FgRed)
	cyan := palette(colorOutput, color.FgCyan)

	ops := plan.ValidOps()
	if len(ops) == 0 {
		fmt.Fprintln(w, "No files need renaming.")
	} else {
		fmt.Fprintln(w, bold.Sprintf("Planned renames (%d):", len(ops)))
		for i, op := range ops {
			if limit > 0 && i == limit {
				fmt.Fprintf(w, "  ... and %d more\n", len(ops)-limit)
				break
			}
			fmt.Fprintf(w, "  %s -> %s\n", opLabel(op), cyan.Sprint(filepath.Base(op.Destination)))
			switch {
			case models.IsOverwrite(op):
				fmt.Fprintf(w, "      %s\n", red.Sprint(op.Note))
			case op.Note != "":
				fmt.Fprintf(w, "      %s\n", yellow.Sprint(op.Note))
			}
		}
	}

	if n := plan.ConflictCount(); n > 0 {
		fmt.Fprintln(w, yellow.Sprintf("%d name conflict(s) resolved automatically", n))
	}
	if len(plan.Warnings) > 0 {
		fmt.Fprintln(w, yellow.Sprintf("Warnings (%d):", len(plan.Warnings)))
		for _, msg := range plan.Warnings {
			fmt.Fprintf(w, "  - %s\n", msg)
		}
	}
	if plan.HasErrors() {
		fmt.Fprintln(w, red.Sprintf("Errors (%d), the plan cannot be executed:", len(plan.Errors)))
		for _, msg := range plan.Errors {
			fmt.Fprintf(w, "  - %s\n", msg)
		}
	}
}

// opLabel shows the source relative to the destination directory, which is
// the plain base name for every in-place rename.
func opLabel(op models.RenameOp) string {
	if filepath.Dir(op.Source) == filepath.Dir(op.Destination) {
		return filepath.Base(op.Source)
	}
	return op.Source
}

// ResultSummary writes the outcome of an execution.
func ResultSummary(w io.Writer, result *models.ExecutionResult, dryRun bool, colorOutput bool) {
	green := palette(colorOutput, color.FgGreen)
	red := palette(colorOutput, color.FgRed)
	yellow := palette(colorOutput, color.FgYellow)

	verb := "Renamed"
	if dryRun {
		verb = "Would rename"
	}
	fmt.Fprintln(w, green.Sprintf("%s %d file(s)", verb, result.SuccessCount()))
	if n := result.SkippedCount(); n > 0 {
		fmt.Fprintln(w, yellow.Sprintf("Skipped %d file(s)", n))
	}
	if n := result.FailedCount(); n > 0 {
		fmt.Fprintln(w, red.Sprintf("Failed %d file(s):", n))
		for _, f := range result.Failed {
			fmt.Fprintf(w, "  - %s -> %s: %s\n", filepath.Base(f.Op.Source), filepath.Base(f.Op.Destination), f.Error)
		}
	}
	for _, n := range result.Notices {
		fmt.Fprintln(w, yellow.Sprint("Notice: ", n))
	}

	if stranded := result.NeedsRecovery(); len(stranded) > 0 {
		files := make([]string, 0, len(stranded))
		for _, f := range stranded {
			files = append(files, f.Op.Source)
		}
		RecoveryWarning(files).Display(w, colorOutput)
	}
}
