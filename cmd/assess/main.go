package main

import (
	"context"
	"flag"
	"os"

	"github.com/okian/mindcheck/internal/cli"
)

func main() {
	var (
		file     = flag.String("file", "", "Snapshot file (.yaml, .yml or .json)")
		format   = flag.String("format", cli.FormatText, "Output format: json or text")
		triggers = flag.String("triggers", "", "File with a keyword_triggers list")
		verbose  = flag.Bool("verbose", false, "Log evaluation details to stderr")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		cli.ShowHelp(os.Stdout)
		return
	}

	if err := cli.SetupLogging(*verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(cli.ExitUsage)
	}

	cfg := &cli.Config{
		File:         *file,
		Format:       *format,
		TriggersFile: *triggers,
		Verbose:      *verbose,
	}

	if err := cli.Run(context.Background(), cfg, os.Stdout); err != nil {
		os.Stderr.WriteString("assess: " + err.Error() + "\n")
		os.Exit(cli.ExitCode(err))
	}
}
