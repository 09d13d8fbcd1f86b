// Package config loads and (optionally) hot-reloads the run
// configuration for cmd/binalloc-bench: which scenarios to run, how
// many worker goroutines and iterations, and which size-class profile
// to exercise the allocator with.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the soak-test harness's run description.
type Config struct {
	// Scenarios names which of the S1-S6 scenarios to run, e.g.
	// ["linear_growth", "churn_boundary", "multithread"].
	Scenarios []string `toml:"scenarios"`

	// Threads is the worker goroutine count for the multithread
	// scenario (S3's "32 threads" is the default but is configurable
	// here so a soak run can scale with the host).
	Threads int `toml:"threads"`

	// Iterations is the per-worker iteration count for the multithread
	// scenario (S3).
	Iterations int `toml:"iterations"`

	// Profile selects the allocator's size-class table: "full" for
	// sizeclass.Classes or "reduced" for sizeclass.Reduced.
	Profile string `toml:"profile"`
}

// Default returns the harness's built-in configuration, used when no
// config file is supplied.
func Default() Config {
	return Config{
		Scenarios:  []string{"linear_growth", "churn_boundary", "multithread", "large_path", "abi_roundtrip", "alignment_cap"},
		Threads:    32,
		Iterations: 1000,
		Profile:    "full",
	}
}

// Load reads and decodes a TOML config file.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports a non-nil error for a config that would make no
// sense to run (zero workers, zero iterations, or an unrecognized
// size-class profile).
func (c Config) Validate() error {
	if c.Threads <= 0 {
		return fmt.Errorf("config: threads must be positive, got %d", c.Threads)
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("config: iterations must be positive, got %d", c.Iterations)
	}
	switch c.Profile {
	case "full", "reduced":
	default:
		return fmt.Errorf("config: unknown profile %q (want \"full\" or \"reduced\")", c.Profile)
	}
	if len(c.Scenarios) == 0 {
		return fmt.Errorf("config: scenarios list is empty")
	}
	return nil
}
