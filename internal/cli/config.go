// Package cli implements the assess command: load a snapshot file, evaluate
// it and print a report.
package cli

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config holds the command-line options.
type Config struct {
	File         string // Snapshot file, YAML or JSON by extension
	Format       string // Output format: json or text
	TriggersFile string // Optional keyword trigger list
	Verbose      bool   // Log evaluation details to stderr
}
