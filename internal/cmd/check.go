package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/bulkrename/internal/display"
	"github.com/harrison/bulkrename/internal/planner"
	"github.com/harrison/bulkrename/internal/safety"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <directory>",
		Short: "Check whether a replacement could be applied",
		Long: `Build the plan of a replace command and run every pre-flight check on
it without renaming anything: permissions, path length limits, missing
sources and duplicate destinations.

Exits with an error when any check fails.

Examples:
  bulkrename check photos --old IMG_ --new holiday_
  bulkrename check docs -r --old draft --new final`,
		Args: cobra.ExactArgs(1),
		RunE: runCheck,
	}

	addScanFlags(cmd, false)
	cmd.Flags().String("old", "", "Text to replace (required)")
	cmd.Flags().String("new", "", "Replacement text (may be empty)")
	cmd.Flags().Bool("once", false, "Replace only the first occurrence in each name")
	_ = cmd.MarkFlagRequired("old")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	dir, err := resolveDir(args[0])
	if err != nil {
		return err
	}

	plan, err := buildReplacePlan(cmd, s, dir)
	if err != nil {
		return err
	}

	display.Preview(s.out, plan, s.cfg.PreviewLimit, s.color)
	if plan.HasErrors() {
		return fmt.Errorf("plan has %d error(s)", len(plan.Errors))
	}

	ops := plan.ValidOps()
	problems := planner.Validate(plan)
	violations := safety.CheckBatch(ops, s.platform.Limits())

	fmt.Fprintln(s.out)
	for _, p := range problems {
		fmt.Fprintf(s.out, "Problem: %s\n", p)
	}
	if len(violations) > 0 {
		display.SafetyWarning(violations).Display(s.out, s.color)
	}
	if n := len(problems) + len(violations); n > 0 {
		return fmt.Errorf("%d check(s) failed", n)
	}

	fmt.Fprintf(s.out, "All %d operation(s) passed safety checks.\n", len(ops))
	return nil
}
