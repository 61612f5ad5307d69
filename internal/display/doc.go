// Package display renders plans, results and warnings for the terminal.
//
// All output goes to an io.Writer. Colors are only used when the caller
// asks for them, which the CLI decides once with IsTerminal:
//
//	colorOutput := display.IsTerminal(os.Stdout)
//	display.Preview(os.Stdout, plan, cfg.PreviewLimit, colorOutput)
//
// # Previews
//
// Preview lists the planned renames as "old -> new" lines, marking
// conflict-resolved and overwriting operations, and prints plan errors and
// warnings after them. Diff renders the same plan as a unified diff of the
// old and new paths.
//
// # Progress
//
// ProgressPrinter adapts an executor progress callback to a redrawn
// progress bar on terminals and to a single final line elsewhere.
//
// # Warnings
//
// Warning is a titled message with optional affected files and a suggestion,
// used for safety violations and files left under temporary names.
package display
