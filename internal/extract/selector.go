package extract

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Epistemic-Technology/emolit/internal/logger"
	"github.com/Epistemic-Technology/emolit/models"
)

// DefaultQualityThreshold is the minimum trimmed length of digital text
const DefaultQualityThreshold = 100

// Reason explains how the selector reached its result
type Reason string

const (
	ReasonDigitalOK     Reason = "digital_ok"
	ReasonDigitalFailed Reason = "digital_failed"
	ReasonLowQuality    Reason = "low_quality"
	ReasonRecovered     Reason = "recovered"
)

// Selection is either a DigitalResult or an OCRResult.
type Selection interface {
	Result() models.ExtractionResult
	Strategy() models.Strategy
	Reason() Reason
	sealed()
}

// DigitalResult is returned when the text layer was readable and long enough
type DigitalResult struct {
	models.ExtractionResult
}

func (r DigitalResult) Result() models.ExtractionResult { return r.ExtractionResult }
func (DigitalResult) Strategy() models.Strategy          { return models.StrategyDigital }
func (DigitalResult) Reason() Reason                     { return ReasonDigitalOK }
func (DigitalResult) sealed()                            {}

// OCRResult is returned after falling back to OCR. Cause holds the digital
// extraction error when Why is ReasonDigitalFailed.
type OCRResult struct {
	models.ExtractionResult
	Why   Reason
	Cause error
}

func (r OCRResult) Result() models.ExtractionResult { return r.ExtractionResult }
func (OCRResult) Strategy() models.Strategy          { return models.StrategyOCR }
func (r OCRResult) Reason() Reason                   { return r.Why }
func (OCRResult) sealed()                            {}

type state int

const (
	stateTryDigital state = iota
	stateTryOCR
	stateDone
)

// decide is the transition out of TryDigital: Done when extraction succeeded
// with enough text, TryOCR otherwise.
func decide(result models.ExtractionResult, err error, threshold int) (state, Reason) {
	if err != nil {
		return stateTryOCR, ReasonDigitalFailed
	}
	if TrimmedLength(result.Text) < threshold {
		return stateTryOCR, ReasonLowQuality
	}
	return stateDone, ReasonDigitalOK
}

// TrimmedLength counts the runes of text without surrounding whitespace
func TrimmedLength(text string) int {
	return utf8.RuneCountInString(strings.TrimSpace(text))
}

type DigitalSource interface {
	Extract(ctx context.Context, path string) (models.ExtractionResult, error)
}

type OCRSource interface {
	Extract(ctx context.Context, path string) models.ExtractionResult
}

// Selector chooses between digital extraction and OCR for one document
type Selector struct {
	digital   DigitalSource
	ocr       OCRSource
	threshold int
	timeout   time.Duration
	log       logger.Logger
}

// NewSelector creates a selector. A non-positive threshold uses
// DefaultQualityThreshold; timeout bounds digital extraction, zero disables it.
func NewSelector(digital DigitalSource, ocr OCRSource, threshold int, timeout time.Duration, log logger.Logger) *Selector {
	if threshold <= 0 {
		threshold = DefaultQualityThreshold
	}
	return &Selector{digital: digital, ocr: ocr, threshold: threshold, timeout: timeout, log: log}
}

// Select runs TryDigital, then TryOCR when needed. OCR is invoked at most
// once and its result is final.
func (s *Selector) Select(ctx context.Context, path string) Selection {
	var (
		selection Selection
		reason    Reason
		cause     error
	)

	for st := stateTryDigital; st != stateDone; {
		switch st {
		case stateTryDigital:
			result, err := s.tryDigital(ctx, path)
			st, reason = decide(result, err, s.threshold)
			switch reason {
			case ReasonDigitalOK:
				selection = DigitalResult{ExtractionResult: result}
			case ReasonDigitalFailed:
				cause = err
				s.log.Warn("Primary extraction failed: %v. Trying OCR fallback", err)
			case ReasonLowQuality:
				s.log.Warn("Low-quality text detected in %s (%d characters). Falling back to OCR", path, TrimmedLength(result.Text))
			}
		case stateTryOCR:
			s.log.Info("Falling back to OCR for %s", path)
			selection = OCRResult{ExtractionResult: s.ocr.Extract(ctx, path), Why: reason, Cause: cause}
			st = stateDone
		}
	}

	return selection
}

// FallbackOCR runs only the OCR tier, for callers recovering from a failure
// outside the selector.
func (s *Selector) FallbackOCR(ctx context.Context, path string, cause error) Selection {
	return OCRResult{ExtractionResult: s.ocr.Extract(ctx, path), Why: ReasonRecovered, Cause: cause}
}

// tryDigital runs the digital source under the configured timeout. The
// underlying PDF engines are not cancellable mid-page, so the call is
// abandoned rather than interrupted when the deadline passes. An abandoned
// parse keeps its goroutine and engine memory until it returns on its own and
// overlaps with the documents processed after it.
func (s *Selector) tryDigital(ctx context.Context, path string) (models.ExtractionResult, error) {
	if s.timeout <= 0 {
		return s.digital.Extract(ctx, path)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type outcome struct {
		result models.ExtractionResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: &ExtractionError{Path: path, Err: fmt.Errorf("panic: %v", r)}}
			}
		}()
		result, err := s.digital.Extract(ctx, path)
		done <- outcome{result, err}
	}()

	select {
	case o := <-done:
		return o.result, o.err
	case <-ctx.Done():
		s.log.Warn("Abandoned digital extraction of %s after %v; the parse keeps running in the background", path, s.timeout)
		return models.ExtractionResult{}, &ExtractionError{Path: path, Err: ctx.Err()}
	}
}
