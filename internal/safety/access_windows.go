//go:build windows

package safety

import (
	"os"
	"path/filepath"
	"strings"
)

// writable checks the read-only attribute; ACLs are not consulted.
func writable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir() || info.Mode().Perm()&0o200 != 0
}

func sameDevice(a string, _ os.FileInfo, b string, _ os.FileInfo) bool {
	va := filepath.VolumeName(absOrSelf(a))
	vb := filepath.VolumeName(absOrSelf(b))
	return strings.EqualFold(va, vb)
}

func absOrSelf(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
