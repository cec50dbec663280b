package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/okian/mindcheck/internal/domain/evaluation"
)

// WriteReport prints res in the requested format.
func WriteReport(w io.Writer, res evaluation.Result, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case FormatText:
		return writeText(w, res)
	default:
		return usageError("unknown format %q", format)
	}
}

func writeText(w io.Writer, res evaluation.Result) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Score: %d (%s)\n", res.Score, res.Tier)

	patterns := "none"
	if len(res.Patterns) > 0 {
		patterns = strings.Join(res.Patterns, ", ")
	}
	fmt.Fprintf(&b, "Patterns: %s\n", patterns)

	b.WriteString("Recommendations:\n")
	for _, r := range res.Recommendations {
		fmt.Fprintf(&b, "  - %s: %s\n", r.Title, r.Text)
	}

	b.WriteString("Trace:\n")
	for i, note := range res.Trace {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, note)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
