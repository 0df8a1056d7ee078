package llm

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"

	"github.com/Epistemic-Technology/emolit/internal/logger"
)

type OpenAIOptions struct {
	Model       string
	Temperature float64
	// StructuredOutput asks the Responses API to conform to SummarySchema
	StructuredOutput bool
	// BaseURL overrides the API endpoint (compatible gateways, tests)
	BaseURL string
}

// OpenAICompleter calls the OpenAI Responses API
type OpenAICompleter struct {
	client openai.Client
	opts   OpenAIOptions
	schema map[string]any
	log    logger.Logger
}

func NewOpenAICompleter(apiKey string, opts OpenAIOptions, log logger.Logger) (*OpenAICompleter, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}

	// the SDK retries failed requests by default; every prompt is sent once
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	c := &OpenAICompleter{client: openai.NewClient(reqOpts...), opts: opts, log: log}
	if opts.StructuredOutput {
		schema, err := SummarySchema()
		if err != nil {
			return nil, err
		}
		c.schema = schema
	}
	return c, nil
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	params := responses.ResponseNewParams{
		Model: c.opts.Model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(
					responses.ResponseInputMessageContentListParam{
						responses.ResponseInputContentParamOfInputText(prompt),
					},
					"user",
				),
			},
		},
		Temperature: openai.Float(c.opts.Temperature),
	}
	if c.schema != nil {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigParamOfJSONSchema("emotional_literacy_summary", c.schema),
		}
	}

	c.log.Debug("Sending %d character prompt to OpenAI model %s", len(prompt), c.opts.Model)
	response, err := c.client.Responses.New(ctx, params)
	if err != nil {
		c.log.Error("OpenAI request failed: %v", err)
		return "", err
	}
	return response.OutputText(), nil
}
