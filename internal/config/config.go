// Package config loads bulkrename settings from YAML and merges them with
// command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/bulkrename/internal/executor"
	"github.com/harrison/bulkrename/internal/models"
	"github.com/harrison/bulkrename/internal/textmatch"
)

// SequenceConfig holds the default numbering parameters of the sequence command.
type SequenceConfig struct {
	// Start is the first number assigned
	Start int `yaml:"start"`

	// Padding is the zero-padding width (0 = no padding)
	Padding int `yaml:"padding"`

	// Prefix is placed before the number
	Prefix string `yaml:"prefix"`

	// Suffix is placed after the number, before the extension
	Suffix string `yaml:"suffix"`
}

// HistoryConfig represents run history configuration
type HistoryConfig struct {
	// Enabled records every executed run so it can be listed and undone
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database (empty = $BULKRENAME_HOME/history.db)
	DBPath string `yaml:"db_path"`
}

// Config represents bulkrename configuration options
type Config struct {
	// ConflictPolicy is one of suffix, skip, overwrite
	ConflictPolicy string `yaml:"conflict_policy"`

	// CaseInsensitive forces the name comparison policy; nil detects it from the platform
	CaseInsensitive *bool `yaml:"case_insensitive"`

	// IncludeHidden includes dot-files and dot-directories in scans
	IncludeHidden bool `yaml:"include_hidden"`

	// MatchPath matches keywords against relative paths instead of names
	MatchPath bool `yaml:"match_path"`

	// IgnoreDirs lists directory names never scanned
	IgnoreDirs []string `yaml:"ignore_dirs"`

	// Sequence holds sequence numbering defaults
	Sequence SequenceConfig `yaml:"sequence"`

	// DryRun previews plans without touching the filesystem
	DryRun bool `yaml:"dry_run"`

	// BackupLog writes the JSON plan and result journal of each run
	BackupLog bool `yaml:"backup_log"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs and journals are written (empty = $BULKRENAME_HOME/logs)
	LogDir string `yaml:"log_dir"`

	// Strategy is the execution order, batch or per-file
	Strategy string `yaml:"strategy"`

	// DetectInterference watches touched directories for foreign changes during a run
	DetectInterference bool `yaml:"detect_interference"`

	// PreviewLimit caps the operations shown before confirmation (0 = all)
	PreviewLimit int `yaml:"preview_limit"`

	// LockTimeout bounds the wait for another run's directory lock (0 = fail immediately)
	LockTimeout time.Duration `yaml:"lock_timeout"`

	// History contains run history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		ConflictPolicy:     "suffix",
		CaseInsensitive:    nil, // platform decides
		IncludeHidden:      false,
		MatchPath:          false,
		IgnoreDirs:         append([]string{}, models.DefaultIgnoreDirs...),
		Sequence:           SequenceConfig{Start: 1},
		DryRun:             false,
		BackupLog:          true,
		LogLevel:           "info",
		LogDir:             "",
		Strategy:           "batch",
		DetectInterference: true,
		PreviewLimit:       20,
		LockTimeout:        5 * time.Second,
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Pointer fields tell an explicit false or zero apart from an absent key.
	type yamlConfig struct {
		ConflictPolicy     string         `yaml:"conflict_policy"`
		CaseInsensitive    *bool          `yaml:"case_insensitive"`
		IncludeHidden      *bool          `yaml:"include_hidden"`
		MatchPath          *bool          `yaml:"match_path"`
		IgnoreDirs         []string       `yaml:"ignore_dirs"`
		Sequence           SequenceConfig `yaml:"sequence"`
		DryRun             *bool          `yaml:"dry_run"`
		BackupLog          *bool          `yaml:"backup_log"`
		LogLevel           string         `yaml:"log_level"`
		LogDir             string         `yaml:"log_dir"`
		Strategy           string         `yaml:"strategy"`
		DetectInterference *bool          `yaml:"detect_interference"`
		PreviewLimit       *int           `yaml:"preview_limit"`
		LockTimeout        string         `yaml:"lock_timeout"`
		History            HistoryConfig  `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.ConflictPolicy != "" {
		cfg.ConflictPolicy = yamlCfg.ConflictPolicy
	}
	if yamlCfg.CaseInsensitive != nil {
		cfg.CaseInsensitive = yamlCfg.CaseInsensitive
	}
	if yamlCfg.IncludeHidden != nil {
		cfg.IncludeHidden = *yamlCfg.IncludeHidden
	}
	if yamlCfg.MatchPath != nil {
		cfg.MatchPath = *yamlCfg.MatchPath
	}
	if yamlCfg.IgnoreDirs != nil {
		// an explicit empty list disables the defaults
		cfg.IgnoreDirs = yamlCfg.IgnoreDirs
	}
	if yamlCfg.DryRun != nil {
		cfg.DryRun = *yamlCfg.DryRun
	}
	if yamlCfg.BackupLog != nil {
		cfg.BackupLog = *yamlCfg.BackupLog
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.Strategy != "" {
		cfg.Strategy = yamlCfg.Strategy
	}
	if yamlCfg.DetectInterference != nil {
		cfg.DetectInterference = *yamlCfg.DetectInterference
	}
	if yamlCfg.PreviewLimit != nil {
		cfg.PreviewLimit = *yamlCfg.PreviewLimit
	}
	if yamlCfg.LockTimeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.LockTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid lock_timeout format %q: %w", yamlCfg.LockTimeout, err)
		}
		cfg.LockTimeout = timeout
	}

	// Nested sections merge per key, so detect which keys were present.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if section, ok := rawMap["sequence"].(map[string]interface{}); ok {
			if _, exists := section["start"]; exists {
				cfg.Sequence.Start = yamlCfg.Sequence.Start
			}
			if _, exists := section["padding"]; exists {
				cfg.Sequence.Padding = yamlCfg.Sequence.Padding
			}
			if _, exists := section["prefix"]; exists {
				cfg.Sequence.Prefix = yamlCfg.Sequence.Prefix
			}
			if _, exists := section["suffix"]; exists {
				cfg.Sequence.Suffix = yamlCfg.Sequence.Suffix
			}
		}
		if section, ok := rawMap["history"].(map[string]interface{}); ok {
			if _, exists := section["enabled"]; exists {
				cfg.History.Enabled = yamlCfg.History.Enabled
			}
			if _, exists := section["db_path"]; exists {
				cfg.History.DBPath = yamlCfg.History.DBPath
			}
		}
	}

	return cfg, nil
}

// ConfigFileName is the config file looked up by LoadConfigFromDir.
var ConfigFileName = filepath.Join(".bulkrename", "config.yaml")

// LoadConfigFromDir loads configuration from .bulkrename/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ConfigFileName))
}

// FlagOverrides carries command-line values. Nil fields were not given.
type FlagOverrides struct {
	ConflictPolicy     *string
	CaseInsensitive    *bool
	IncludeHidden      *bool
	MatchPath          *bool
	DryRun             *bool
	LogDir             *string
	LogLevel           *string
	Strategy           *string
	DetectInterference *bool
	PreviewLimit       *int
	LockTimeout        *time.Duration
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(f FlagOverrides) {
	if f.ConflictPolicy != nil {
		c.ConflictPolicy = *f.ConflictPolicy
	}
	if f.CaseInsensitive != nil {
		v := *f.CaseInsensitive
		c.CaseInsensitive = &v
	}
	if f.IncludeHidden != nil {
		c.IncludeHidden = *f.IncludeHidden
	}
	if f.MatchPath != nil {
		c.MatchPath = *f.MatchPath
	}
	if f.DryRun != nil {
		c.DryRun = *f.DryRun
	}
	if f.LogDir != nil {
		c.LogDir = *f.LogDir
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.Strategy != nil {
		c.Strategy = *f.Strategy
	}
	if f.DetectInterference != nil {
		c.DetectInterference = *f.DetectInterference
	}
	if f.PreviewLimit != nil {
		c.PreviewLimit = *f.PreviewLimit
	}
	if f.LockTimeout != nil {
		c.LockTimeout = *f.LockTimeout
	}
}

// maxPadding bounds the zero-padding width of sequence numbers.
const maxPadding = 20

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if _, err := models.ParseConflictPolicy(c.ConflictPolicy); err != nil {
		return fmt.Errorf("invalid conflict_policy: %w", err)
	}
	if _, err := executor.ParseStrategy(c.Strategy); err != nil {
		return fmt.Errorf("invalid strategy: %w", err)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.Sequence.Start < 0 {
		return fmt.Errorf("sequence.start must be >= 0, got %d", c.Sequence.Start)
	}
	if c.Sequence.Padding < 0 || c.Sequence.Padding > maxPadding {
		return fmt.Errorf("sequence.padding must be between 0 and %d, got %d", maxPadding, c.Sequence.Padding)
	}
	for key, v := range map[string]string{"sequence.prefix": c.Sequence.Prefix, "sequence.suffix": c.Sequence.Suffix} {
		if i := strings.IndexAny(v, textmatch.ForbiddenChars); i >= 0 {
			return fmt.Errorf("%s contains invalid character %q", key, v[i])
		}
	}

	if c.PreviewLimit < 0 {
		return fmt.Errorf("preview_limit must be >= 0, got %d", c.PreviewLimit)
	}
	if c.LockTimeout < 0 {
		return fmt.Errorf("lock_timeout must be >= 0, got %v", c.LockTimeout)
	}
	for _, d := range c.IgnoreDirs {
		if strings.TrimSpace(d) == "" {
			return fmt.Errorf("ignore_dirs cannot contain empty names")
		}
	}

	return nil
}

// Options converts the configuration into the shared rename options. The
// case policy falls back to the platform's when not configured.
func (c *Config) Options(p Platform) models.Options {
	policy, _ := models.ParseConflictPolicy(c.ConflictPolicy)
	caseInsensitive := p.CaseInsensitive
	if c.CaseInsensitive != nil {
		caseInsensitive = *c.CaseInsensitive
	}

	opts := models.DefaultOptions(caseInsensitive)
	opts.ConflictPolicy = policy
	opts.IncludeHidden = c.IncludeHidden
	opts.MatchPath = c.MatchPath
	opts.IgnoreDirs = append([]string{}, c.IgnoreDirs...)
	opts.Sequence = models.SequenceDefaults{
		Start:   c.Sequence.Start,
		Padding: c.Sequence.Padding,
		Prefix:  c.Sequence.Prefix,
		Suffix:  c.Sequence.Suffix,
	}
	return opts
}

// ExecStrategy returns the parsed execution strategy. Call Validate first.
func (c *Config) ExecStrategy() executor.Strategy {
	s, _ := executor.ParseStrategy(c.Strategy)
	return s
}
