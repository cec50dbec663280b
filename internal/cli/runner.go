package cli

import (
	"context"
	"io"

	"github.com/okian/mindcheck/internal/domain/evaluation"
	"github.com/okian/mindcheck/internal/domain/keywords"
	"github.com/okian/mindcheck/pkg/logger"
)

// Run loads the snapshot named by cfg, evaluates it and writes the report to out.
func Run(ctx context.Context, cfg *Config, out io.Writer) error {
	if cfg.File == "" {
		return usageError("-file is required")
	}
	if cfg.Format != FormatJSON && cfg.Format != FormatText {
		return usageError("unknown format %q, want json or text", cfg.Format)
	}

	log := logger.Get().Named("assess")

	opts := []evaluation.Option{evaluation.WithLogger(log)}
	if cfg.TriggersFile != "" {
		triggers, err := LoadTriggers(cfg.TriggersFile)
		if err != nil {
			return err
		}
		log.Debug(ctx, "loaded keyword triggers", logger.Int("count", len(triggers)))
		opts = append(opts, evaluation.WithScanner(keywords.NewScanner(keywords.WithTriggers(triggers))))
	}

	snap, err := LoadSnapshot(cfg.File)
	if err != nil {
		return err
	}

	res, err := evaluation.New(opts...).Evaluate(ctx, snap)
	if err != nil {
		return err
	}

	return WriteReport(out, res, cfg.Format)
}
