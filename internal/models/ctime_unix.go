//go:build linux

package models

import (
	"os"
	"syscall"
	"time"
)

// changeTime extracts the inode status-change time from syscall.Stat_t.
func changeTime(info os.FileInfo) time.Time {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime()
	}
	return time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec))
}
