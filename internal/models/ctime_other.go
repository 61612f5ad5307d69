//go:build !linux && !darwin && !windows

package models

import (
	"os"
	"time"
)

// changeTime falls back to the modification time where the platform stat
// data is not decoded.
func changeTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
