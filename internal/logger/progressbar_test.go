package logger

import (
	"strings"
	"testing"
)

func TestProgressBarRender(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		current int
		want    string
	}{
		{"empty", 10, 0, "[          ] 0/10 (0%)"},
		{"half", 10, 5, "[=====     ] 5/10 (50%)"},
		{"complete", 10, 10, "[==========] 10/10 (100%)"},
		{"overflow clamps", 10, 15, "[==========] 15/10 (100%)"},
		{"zero total", 0, 0, "[          ] 0/0 (0%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pb := NewProgressBar(tt.total, 10, false)
			pb.Update(tt.current)
			if got := pb.Render(); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProgressBarIncrementAndTotal(t *testing.T) {
	pb := NewProgressBar(4, 0, false)
	pb.Increment()
	pb.Increment()

	if pb.Current() != 2 {
		t.Errorf("Current() = %d, want 2", pb.Current())
	}
	if pb.Percentage() != 50 {
		t.Errorf("Percentage() = %d, want 50", pb.Percentage())
	}

	pb.SetTotal(8)
	if pb.Total() != 8 || pb.Percentage() != 25 {
		t.Errorf("after SetTotal: total=%d perc=%d", pb.Total(), pb.Percentage())
	}
}

func TestProgressBarPrefixAndColor(t *testing.T) {
	pb := NewProgressBar(2, 4, true)
	pb.SetPrefix("Renaming ")
	pb.Update(1)

	out := pb.Render()
	if !strings.Contains(out, "Renaming [==  ] 1/2 (50%)") {
		t.Errorf("unexpected render %q", out)
	}
	if !strings.Contains(out, "\x1b[36m") {
		t.Errorf("expected cyan escape in %q", out)
	}

	pb.Update(2)
	if !strings.Contains(pb.Render(), "\x1b[32m") {
		t.Errorf("expected green escape when complete")
	}
}
