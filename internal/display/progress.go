package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/harrison/bulkrename/internal/executor"
	"github.com/harrison/bulkrename/internal/logger"
)

// progressWidth is the bar width in characters.
const progressWidth = 30

// ProgressPrinter draws execution progress. On a terminal the bar is redrawn
// in place after every step; elsewhere only the final state is printed by
// Finish, keeping logs and pipes free of carriage returns.
type ProgressPrinter struct {
	writer      io.Writer
	interactive bool
	bar         *logger.ProgressBar
	mu          sync.Mutex
	drawn       bool
}

// NewProgressPrinter creates a printer. interactive enables in-place redraws
// and colors.
func NewProgressPrinter(w io.Writer, interactive bool) *ProgressPrinter {
	bar := logger.NewProgressBar(0, progressWidth, interactive)
	bar.SetPrefix("Renaming ")
	return &ProgressPrinter{writer: w, interactive: interactive, bar: bar}
}

// Callback returns the function to pass as executor.ExecOptions.Progress.
func (p *ProgressPrinter) Callback() executor.ProgressFunc {
	return func(done, total int, _ string) {
		p.mu.Lock()
		defer p.mu.Unlock()

		p.bar.SetTotal(total)
		p.bar.Update(done)
		if p.interactive {
			fmt.Fprintf(p.writer, "\r%s", p.bar.Render())
			p.drawn = true
		}
	}
}

// Finish terminates the progress line.
func (p *ProgressPrinter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar.Total() == 0 {
		return
	}
	if p.interactive {
		if p.drawn {
			fmt.Fprintln(p.writer)
		}
		return
	}
	fmt.Fprintln(p.writer, p.bar.Render())
}
