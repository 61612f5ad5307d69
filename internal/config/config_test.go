package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harrison/bulkrename/internal/executor"
	"github.com/harrison/bulkrename/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ConflictPolicy != "suffix" {
		t.Errorf("ConflictPolicy = %q, want suffix", cfg.ConflictPolicy)
	}
	if cfg.CaseInsensitive != nil {
		t.Errorf("CaseInsensitive = %v, want nil (platform decides)", *cfg.CaseInsensitive)
	}
	if cfg.Sequence.Start != 1 {
		t.Errorf("Sequence.Start = %d, want 1", cfg.Sequence.Start)
	}
	if !cfg.BackupLog || !cfg.History.Enabled || !cfg.DetectInterference {
		t.Error("journal, history and interference detection should be on by default")
	}
	if len(cfg.IgnoreDirs) != len(models.DefaultIgnoreDirs) {
		t.Errorf("IgnoreDirs = %v", cfg.IgnoreDirs)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	path := writeConfig(t, `conflict_policy: skip
case_insensitive: false
include_hidden: true
match_path: true
ignore_dirs: [vendor]
dry_run: true
backup_log: false
log_level: debug
log_dir: /tmp/rename-logs
strategy: per-file
detect_interference: false
preview_limit: 0
lock_timeout: 2s
sequence:
  start: 0
  padding: 3
  prefix: IMG_
history:
  enabled: false
  db_path: /tmp/h.db
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.ConflictPolicy != "skip" {
		t.Errorf("ConflictPolicy = %q", cfg.ConflictPolicy)
	}
	if cfg.CaseInsensitive == nil || *cfg.CaseInsensitive {
		t.Errorf("CaseInsensitive should be explicitly false")
	}
	if !cfg.IncludeHidden || !cfg.MatchPath || !cfg.DryRun {
		t.Error("boolean keys not applied")
	}
	if cfg.BackupLog || cfg.DetectInterference || cfg.History.Enabled {
		t.Error("explicit false values must override defaults")
	}
	if len(cfg.IgnoreDirs) != 1 || cfg.IgnoreDirs[0] != "vendor" {
		t.Errorf("IgnoreDirs = %v", cfg.IgnoreDirs)
	}
	if cfg.LogLevel != "debug" || cfg.LogDir != "/tmp/rename-logs" || cfg.Strategy != "per-file" {
		t.Errorf("string keys not applied: %+v", cfg)
	}
	if cfg.PreviewLimit != 0 {
		t.Errorf("PreviewLimit = %d, want 0", cfg.PreviewLimit)
	}
	if cfg.LockTimeout != 2*time.Second {
		t.Errorf("LockTimeout = %v", cfg.LockTimeout)
	}
	if cfg.Sequence != (SequenceConfig{Start: 0, Padding: 3, Prefix: "IMG_"}) {
		t.Errorf("Sequence = %+v", cfg.Sequence)
	}
	if cfg.History.DBPath != "/tmp/h.db" {
		t.Errorf("History.DBPath = %q", cfg.History.DBPath)
	}
}

// TestLoadConfigPartialSections verifies absent keys keep their defaults.
func TestLoadConfigPartialSections(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "sequence:\n  padding: 2\n"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Sequence.Start != 1 || cfg.Sequence.Padding != 2 {
		t.Errorf("Sequence = %+v", cfg.Sequence)
	}
	if !cfg.History.Enabled || cfg.PreviewLimit != 20 {
		t.Error("defaults lost for absent sections")
	}
}

func TestLoadConfigMissingAndMalformed(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should yield defaults, got %v", err)
	}
	if cfg.ConflictPolicy != "suffix" {
		t.Errorf("expected defaults, got %+v", cfg)
	}

	if _, err := LoadConfig(writeConfig(t, "conflict_policy: [unclosed")); err == nil {
		t.Error("expected parse error")
	}
	if _, err := LoadConfig(writeConfig(t, "lock_timeout: soon")); err == nil || !strings.Contains(err.Error(), "lock_timeout") {
		t.Errorf("expected lock_timeout error, got %v", err)
	}
}

func TestLoadConfigFromDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".bulkrename"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".bulkrename", "config.yaml"), []byte("log_level: warn\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFromDir(dir)
	if err != nil {
		t.Fatalf("LoadConfigFromDir() error = %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

// TestMergeWithFlags verifies CLI values win and nil flags leave config untouched.
func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	policy := "overwrite"
	ci := true
	limit := 5
	timeout := time.Minute

	cfg.MergeWithFlags(FlagOverrides{
		ConflictPolicy:  &policy,
		CaseInsensitive: &ci,
		PreviewLimit:    &limit,
		LockTimeout:     &timeout,
	})

	if cfg.ConflictPolicy != "overwrite" || cfg.PreviewLimit != 5 || cfg.LockTimeout != time.Minute {
		t.Errorf("flags not merged: %+v", cfg)
	}
	if cfg.CaseInsensitive == nil || !*cfg.CaseInsensitive {
		t.Error("CaseInsensitive flag not merged")
	}
	ci = false
	if !*cfg.CaseInsensitive {
		t.Error("merged flag must not alias the caller's variable")
	}
	if cfg.LogLevel != "info" || cfg.Strategy != "batch" {
		t.Error("unset flags changed the config")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad policy", func(c *Config) { c.ConflictPolicy = "rename" }, "conflict_policy"},
		{"bad strategy", func(c *Config) { c.Strategy = "parallel" }, "strategy"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"negative start", func(c *Config) { c.Sequence.Start = -1 }, "sequence.start"},
		{"huge padding", func(c *Config) { c.Sequence.Padding = 99 }, "sequence.padding"},
		{"bad prefix", func(c *Config) { c.Sequence.Prefix = "a/b" }, "sequence.prefix"},
		{"negative preview", func(c *Config) { c.PreviewLimit = -1 }, "preview_limit"},
		{"negative timeout", func(c *Config) { c.LockTimeout = -time.Second }, "lock_timeout"},
		{"empty ignore dir", func(c *Config) { c.IgnoreDirs = []string{" "} }, "ignore_dirs"},
		{"valid overwrite", func(c *Config) { c.ConflictPolicy = "overwrite" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ConflictPolicy = "skip"
	cfg.Sequence = SequenceConfig{Start: 5, Padding: 2, Prefix: "p", Suffix: "s"}
	cfg.Strategy = "per-file"

	opts := cfg.Options(Platform{CaseInsensitive: true})
	if opts.ConflictPolicy != models.PolicySkip {
		t.Errorf("ConflictPolicy = %v", opts.ConflictPolicy)
	}
	if !opts.CaseInsensitive {
		t.Error("platform case policy should apply when unset")
	}
	if opts.Sequence != (models.SequenceDefaults{Start: 5, Padding: 2, Prefix: "p", Suffix: "s"}) {
		t.Errorf("Sequence = %+v", opts.Sequence)
	}
	if cfg.ExecStrategy() != executor.StrategyPerFile {
		t.Errorf("ExecStrategy() = %v", cfg.ExecStrategy())
	}

	forced := false
	cfg.CaseInsensitive = &forced
	if cfg.Options(Platform{CaseInsensitive: true}).CaseInsensitive {
		t.Error("configured case policy must win over the platform")
	}
}
