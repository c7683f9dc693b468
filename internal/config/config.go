// Package config loads the settings used by the tsqueue-bench CLI demo.
// The core envelope and queue packages take constructor arguments only
// and never read ambient configuration; this package exists solely for
// the command-line entrypoint.
package config

import (
	"os"
	"time"

	"github.com/roasbeef/tsqueue/errcode"
	"github.com/roasbeef/tsqueue/queue"
	"gopkg.in/yaml.v3"
)

// Config is the top-level tsqueue-bench configuration document.
type Config struct {
	Queue   QueueConfig   `yaml:"queue"`
	Logging LoggingConfig `yaml:"logging"`
}

// QueueConfig controls the queue constructed by the demo.
type QueueConfig struct {
	// Capacity bounds how many envelopes the queue may hold at once.
	Capacity int `yaml:"capacity"`

	// DefaultTimeout is read from the config file but not consulted by
	// the run command, which uses timed push/pop only when its
	// --op-timeout flag is set.
	DefaultTimeout time.Duration `yaml:"default_timeout"`
}

// LoggingConfig controls the dual-stream logger set up by
// internal/logging.
type LoggingConfig struct {
	// Level is the minimum btclog level name (trace, debug, info,
	// warn, error, critical, off).
	Level string `yaml:"level"`

	// Directory is where the rotating log file is written. Empty
	// disables file logging.
	Directory string `yaml:"directory"`

	MaxLogFiles    int `yaml:"max_log_files"`
	MaxLogFileSize int `yaml:"max_log_file_size_mb"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Queue: QueueConfig{
			Capacity:       queue.DefaultCapacity,
			DefaultTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:          "info",
			Directory:      "",
			MaxLogFiles:    3,
			MaxLogFileSize: 10,
		},
	}
}

// Load reads and parses a YAML configuration file at path, layering it
// on top of Default so a partial file only overrides what it sets.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, errcode.Errorf(
			errcode.NotFound, "reading config %q: %v", path, err,
		)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errcode.Errorf(
			errcode.NullParam, "parsing config %q: %v", path, err,
		)
	}

	if cfg.Queue.Capacity < 1 {
		return cfg, errcode.Errorf(
			errcode.NullParam,
			"queue.capacity must be >= 1, got %d", cfg.Queue.Capacity,
		)
	}

	return cfg, nil
}
