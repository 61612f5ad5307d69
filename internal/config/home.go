package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv overrides the bulkrename home directory.
const HomeEnv = "BULKRENAME_HOME"

// GetHome returns the bulkrename home directory
// Priority order:
//  1. BULKRENAME_HOME environment variable (if set)
//  2. ~/.bulkrename
//
// The directory is created if it doesn't exist
func GetHome() (string, error) {
	home := os.Getenv(HomeEnv)
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get user home directory: %w", err)
		}
		home = filepath.Join(userHome, ".bulkrename")
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create bulkrename home directory: %w", err)
	}
	return home, nil
}

// homeSubdir returns a directory below the home, creating it.
func homeSubdir(name string) (string, error) {
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create %s directory: %w", name, err)
	}
	return dir, nil
}

// GetLockDir returns the directory holding per-directory execution locks
// Always returns: $BULKRENAME_HOME/locks
func GetLockDir() (string, error) {
	return homeSubdir("locks")
}

// GetDefaultLogDir returns $BULKRENAME_HOME/logs
func GetDefaultLogDir() (string, error) {
	return homeSubdir("logs")
}

// GetHistoryDBPath returns the absolute path to the history database
// Always returns: $BULKRENAME_HOME/history.db
func GetHistoryDBPath() (string, error) {
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "history.db"), nil
}

// ResolveLogDir returns the configured log directory or the default one.
func (c *Config) ResolveLogDir() (string, error) {
	if c.LogDir != "" {
		return c.LogDir, nil
	}
	return GetDefaultLogDir()
}

// ResolveHistoryDBPath returns the configured history database or the default one.
func (c *Config) ResolveHistoryDBPath() (string, error) {
	if c.History.DBPath != "" {
		return c.History.DBPath, nil
	}
	return GetHistoryDBPath()
}
