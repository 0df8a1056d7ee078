package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/Epistemic-Technology/emolit/internal/logger"
)

type GeminiOptions struct {
	Model       string
	Temperature float64
	// StructuredOutput requests an application/json response
	StructuredOutput bool
}

// GeminiCompleter calls the Gemini API
type GeminiCompleter struct {
	client *genai.Client
	opts   GeminiOptions
	log    logger.Logger
}

func NewGeminiCompleter(ctx context.Context, apiKey string, opts GeminiOptions, log logger.Logger) (*GeminiCompleter, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiCompleter{client: client, opts: opts, log: log}, nil
}

func (g *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	temperature := float32(g.opts.Temperature)
	genCfg := &genai.GenerateContentConfig{Temperature: &temperature}
	if g.opts.StructuredOutput {
		genCfg.ResponseMIMEType = "application/json"
	}

	g.log.Debug("Sending %d character prompt to Gemini model %s", len(prompt), g.opts.Model)
	res, err := g.client.Models.GenerateContent(ctx, g.opts.Model, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, genCfg)
	if err != nil {
		g.log.Error("Gemini request failed: %v", err)
		return "", err
	}
	return res.Text(), nil
}
