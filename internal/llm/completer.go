package llm

import (
	"context"
	"fmt"

	"github.com/Epistemic-Technology/emolit/internal/config"
	"github.com/Epistemic-Technology/emolit/internal/logger"
)

// Completer sends one prompt to a language model and returns its completion
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// NewCompleter builds the configured provider client wrapped with request
// throttling and the per-call timeout.
func NewCompleter(ctx context.Context, cfg config.LLMConfig, log logger.Logger) (Completer, error) {
	var (
		base Completer
		err  error
	)
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		base, err = NewOpenAICompleter(cfg.OpenAIKey, OpenAIOptions{
			Model:            cfg.ModelName(),
			Temperature:      cfg.Temperature,
			StructuredOutput: cfg.StructuredOutput,
		}, log)
	case config.ProviderGemini:
		base, err = NewGeminiCompleter(ctx, cfg.GeminiKey, GeminiOptions{
			Model:            cfg.ModelName(),
			Temperature:      cfg.Temperature,
			StructuredOutput: cfg.StructuredOutput,
		}, log)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return Throttle(base, cfg.RequestsPerMinute, cfg.Timeout, log), nil
}
