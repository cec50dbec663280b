// Package config defines service configuration and its loading from
// defaults, an optional YAML file and MINDCHECK_ environment variables.
package config

import (
	"runtime"

	"github.com/okian/mindcheck/internal/domain/keywords"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// WorkerCount sets the number of batch evaluation workers.
	WorkerCount int `koanf:"worker_count"`

	// MaxBatchSize caps POST /assessments/batch.
	MaxBatchSize int `koanf:"max_batch_size"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// KeywordTriggers is the phrase list scanned in free text.
	KeywordTriggers []keywords.Trigger `koanf:"keyword_triggers"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		WorkerCount:     runtime.NumCPU(),
		MaxBatchSize:    100,
		MaxBodyBytes:    64 << 10,
		KeywordTriggers: keywords.DefaultTriggers(),
	}
}
