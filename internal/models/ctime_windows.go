//go:build windows

package models

import (
	"os"
	"syscall"
	"time"
)

// changeTime returns the creation time, which is what windows reports in
// place of a POSIX status-change time.
func changeTime(info os.FileInfo) time.Time {
	attr, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return info.ModTime()
	}
	return time.Unix(0, attr.CreationTime.Nanoseconds())
}
