package batch

import (
	"context"
	"io"

	"github.com/Epistemic-Technology/emolit/internal/config"
	"github.com/Epistemic-Technology/emolit/internal/extract"
	"github.com/Epistemic-Technology/emolit/internal/llm"
	"github.com/Epistemic-Technology/emolit/internal/logger"
	"github.com/Epistemic-Technology/emolit/internal/storage"
)

// NewFromConfig wires the production extractors, the configured model
// provider and the optional ledger into a Driver. The closer releases the
// OCR engine.
func NewFromConfig(ctx context.Context, cfg config.Config, store storage.Store, log logger.Logger) (*Driver, io.Closer, error) {
	selector, closer, err := extract.NewFromConfig(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	completer, err := llm.NewCompleter(ctx, cfg.LLM, log)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	summarizer := llm.NewSummarizer(completer, log, llm.WithMaxChars(cfg.LLM.MaxPromptChars))

	opts := Options{InputDir: cfg.InputDir, OutputDir: cfg.OutputDir}
	return NewDriver(opts, selector, summarizer, store, log), closer, nil
}
