package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/mindcheck/pkg/logger"
)

// SetupLogging sends logs to stderr so stdout carries only the report.
func SetupLogging(verbose bool) error {
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.SetLevelString(level)
}

// ShowHelp prints usage information for the assess tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Mindcheck Assess
================

Evaluates one well-being snapshot and prints score, patterns,
recommendations and the reasoning trace.

Usage:
  go run ./cmd/assess -file snapshot.yaml [options]

Options:
  -file string
        Snapshot file (.yaml, .yml or .json)
  -format string
        Output format: json or text (default "text")
  -triggers string
        File with a keyword_triggers list replacing the built-in phrases
  -verbose
        Log evaluation details to stderr
  -help
        Show this help message

Exit codes:
  0  evaluated
  1  invalid or unreadable snapshot
  2  usage error

Examples:
  # Human-readable report
  go run ./cmd/assess -file snapshot.yaml

  # JSON output with custom triggers
  go run ./cmd/assess -file snapshot.json -format json -triggers triggers.yaml
`)
}
