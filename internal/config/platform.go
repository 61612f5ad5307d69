package config

import (
	"runtime"

	"github.com/harrison/bulkrename/internal/safety"
)

// windowsMaxPath is the classic MAX_PATH ceiling.
const windowsMaxPath = 260

// Platform holds the filesystem behavior decided once at startup.
type Platform struct {
	OS              string
	CaseInsensitive bool // Default name comparison policy
	MaxPathLength   int  // 0 = no ceiling enforced
}

// DetectPlatform describes the running platform. It is the only place that
// consults runtime.GOOS; everything else receives the result.
func DetectPlatform() Platform {
	return platformFor(runtime.GOOS)
}

func platformFor(goos string) Platform {
	switch goos {
	case "windows":
		return Platform{OS: goos, CaseInsensitive: true, MaxPathLength: windowsMaxPath}
	case "darwin":
		return Platform{OS: goos, CaseInsensitive: true}
	default:
		return Platform{OS: goos}
	}
}

// Limits returns the safety limits of the platform.
func (p Platform) Limits() safety.Limits {
	return safety.Limits{MaxPathLength: p.MaxPathLength}
}
