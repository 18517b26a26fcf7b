// Package config loads the YAML run configuration consumed by the scanner
// and the nuker.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DeletionBehavior tunes how the scanner and nuker treat the filesystem.
type DeletionBehavior struct {
	FollowSymlinks bool `yaml:"follow_symlinks"`
}

// Performance holds the worker-pool sizes.
type Performance struct {
	// MaxWorkers bounds the scan pool; one worker per top-level
	// subdirectory traversal.
	MaxWorkers int `yaml:"max_workers"`
	// ParallelDeletions bounds the FORCE-mode deletion pool.
	ParallelDeletions int `yaml:"parallel_deletions"`
}

// Logging configures the audit log sink.
type Logging struct {
	LogPath  string `yaml:"log_path"`
	LogLevel string `yaml:"log_level"`
}

// SizeThresholds holds human-readable size limits ("100MB", "1GB").
type SizeThresholds struct {
	MinimumFileSize string `yaml:"minimum_file_size"`
}

// Reports configures where scan reports and undo manifests are written.
type Reports struct {
	Dir string `yaml:"dir"`
}

// Schedule is the desired automated-run schedule.
type Schedule struct {
	Enabled   bool   `yaml:"enabled"`
	Frequency string `yaml:"frequency"`
}

// Config is the full run configuration.
type Config struct {
	TargetPath       string           `yaml:"target_path"`
	WhitelistPaths   []string         `yaml:"whitelist_paths"`
	SafeMode         bool             `yaml:"safe_mode"`
	DeletionBehavior DeletionBehavior `yaml:"deletion_behavior"`
	Performance      Performance      `yaml:"performance"`
	Logging          Logging          `yaml:"logging"`
	SizeThresholds   SizeThresholds   `yaml:"size_thresholds"`
	Reports          Reports          `yaml:"reports"`
	Schedule         Schedule         `yaml:"schedule"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return Config{
		TargetPath: home,
		WhitelistPaths: []string{
			filepath.Join(home, ".ssh"),
			filepath.Join(home, ".gnupg"),
			filepath.Join(home, "Documents"),
		},
		SafeMode:         true,
		DeletionBehavior: DeletionBehavior{FollowSymlinks: false},
		Performance:      Performance{MaxWorkers: 4, ParallelDeletions: 2},
		Logging: Logging{
			LogPath:  filepath.Join(home, ".reclaim", "reclaim.log"),
			LogLevel: "info",
		},
		SizeThresholds: SizeThresholds{MinimumFileSize: "1MB"},
		Reports:        Reports{Dir: filepath.Join(home, ".reclaim", "reports")},
		Schedule:       Schedule{Enabled: false, Frequency: "weekly"},
	}
}

// Load reads a config file over the defaults. A missing file at the default
// location is not an error; an unreadable or malformed file is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Performance.MaxWorkers <= 0 {
		cfg.Performance.MaxWorkers = 4
	}

	if cfg.Performance.ParallelDeletions <= 0 {
		cfg.Performance.ParallelDeletions = 2
	}

	return cfg, nil
}

// ParseSizeMB parses a human size threshold such as "100MB", "1.5GB" or
// "512KB" into megabytes. A bare number is taken as megabytes. An empty
// string parses to 0.
func ParseSizeMB(s string) (float64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, nil
	}

	factor := 1.0

	switch {
	case strings.HasSuffix(s, "GB"):
		factor = 1024
		s = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		s = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		factor = 1.0 / 1024
		s = strings.TrimSuffix(s, "KB")
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size threshold %q", s)
	}

	if v < 0 {
		return 0, fmt.Errorf("size threshold must not be negative: %q", s)
	}

	return v * factor, nil
}
