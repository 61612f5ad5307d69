//go:build !unix && !windows

package safety

import "os"

func writable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().Perm()&0o200 != 0
}

func sameDevice(_ string, _ os.FileInfo, _ string, _ os.FileInfo) bool {
	return true
}
