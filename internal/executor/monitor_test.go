package executor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchMonitorReportsForeignActivity(t *testing.T) {
	dir := t.TempDir()
	mine := filepath.Join(dir, "mine.txt")

	m := &WatchMonitor{SettleDelay: 300 * time.Millisecond}
	stop, err := m.Start([]string{dir}, func(path string) bool { return path == mine })
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(mine, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "intruder.txt"), []byte("x"), 0o644))

	notices := stop()
	require.NotEmpty(t, notices)
	joined := strings.Join(notices, "\n")
	assert.Contains(t, joined, "intruder.txt")
	assert.NotContains(t, joined, "mine.txt")

	// stop is idempotent
	assert.Equal(t, notices, stop())
}

func TestWatchMonitorMissingDirectory(t *testing.T) {
	_, err := NewWatchMonitor().Start([]string{filepath.Join(t.TempDir(), "nope")}, nil)
	assert.Error(t, err)
}

func TestExpectedPathsIgnoresTempNames(t *testing.T) {
	ops := planOf("A.txt", "b.txt").Ops
	expected := expectedPaths(ops, true)

	assert.True(t, expected("/d/a.txt"))
	assert.True(t, expected("/d/B.TXT"))
	assert.True(t, expected("/d/"+NewTempName("A.txt")))
	assert.False(t, expected("/d/c.txt"))
}
