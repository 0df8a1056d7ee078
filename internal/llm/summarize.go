package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/Epistemic-Technology/emolit/internal/logger"
	"github.com/Epistemic-Technology/emolit/models"
)

// DefaultMaxPromptChars bounds the excerpt sent to the model
const DefaultMaxPromptChars = 6000

// ErrSummaryParse marks completions that are not a JSON object
var ErrSummaryParse = errors.New("completion is not a JSON object")

// Summarizer turns extracted text into a SummaryRecord through one model call
type Summarizer struct {
	completer Completer
	maxChars  int
	validate  bool
	log       logger.Logger
}

type SummarizerOption func(*Summarizer)

// WithMaxChars sets the excerpt budget in characters
func WithMaxChars(n int) SummarizerOption {
	return func(s *Summarizer) {
		if n > 0 {
			s.maxChars = n
		}
	}
}

// WithSchemaCheck logs a warning when a parsed completion does not match the
// six-field schema
func WithSchemaCheck(enabled bool) SummarizerOption {
	return func(s *Summarizer) { s.validate = enabled }
}

func NewSummarizer(completer Completer, log logger.Logger, opts ...SummarizerOption) *Summarizer {
	s := &Summarizer{completer: completer, maxChars: DefaultMaxPromptChars, validate: true, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize always returns a persistable record. A completion that is a JSON
// object gets the citation attached under "citation"; anything else becomes a
// degraded {raw, citation} record. The returned error is non-nil only when
// the model could not be called at all, in which case the record is degraded
// with an empty raw text.
func (s *Summarizer) Summarize(ctx context.Context, text, conceptName string, citation models.Citation) (models.SummaryRecord, error) {
	citation = citation.Clone()

	prompt, err := BuildPrompt(Truncate(text, s.maxChars), conceptName, citation)
	if err != nil {
		return models.SummaryRecord{Citation: citation}, fmt.Errorf("failed to build prompt: %w", err)
	}

	s.log.Info("Summarizing concept %q", conceptName)
	completion, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		s.log.Error("LLM call failed for %q: %v", conceptName, err)
		return models.SummaryRecord{Citation: citation}, err
	}

	record, err := ParseCompletion(completion, citation)
	if err != nil {
		s.log.Warn("Error parsing LLM response for %q: %v", conceptName, err)
		return record, nil
	}

	if s.validate {
		if err := ValidateSummary([]byte(completion)); err != nil {
			s.log.Warn("LLM response for %q does not match the summary schema: %v", conceptName, err)
		}
	}
	return record, nil
}

// ParseCompletion attaches citation to a JSON object completion, keeping the
// model's key order. Non-object completions yield a degraded record holding
// the unmodified completion together with ErrSummaryParse.
func ParseCompletion(completion string, citation models.Citation) (models.SummaryRecord, error) {
	degraded := models.SummaryRecord{Raw: completion, Citation: citation}

	if !gjson.Valid(completion) || !gjson.Parse(completion).IsObject() {
		return degraded, ErrSummaryParse
	}

	citationJSON, err := json.Marshal(citation)
	if err != nil {
		return degraded, fmt.Errorf("failed to marshal citation: %w", err)
	}
	fields, err := sjson.SetRawBytes([]byte(completion), "citation", citationJSON)
	if err != nil {
		return degraded, fmt.Errorf("%w: %v", ErrSummaryParse, err)
	}

	return models.SummaryRecord{Fields: json.RawMessage(fields), Citation: citation}, nil
}
