package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/Epistemic-Technology/emolit/internal/citations"
	"github.com/Epistemic-Technology/emolit/internal/logger"
	"github.com/Epistemic-Technology/emolit/models"
)

// TextReader returns the plain text of every page of a PDF, in page order.
type TextReader interface {
	PageTexts(ctx context.Context, path string) ([]string, error)
}

// DigitalExtractor reads the embedded text layer of a PDF and guesses its
// citation from the result.
type DigitalExtractor struct {
	reader TextReader
	log    logger.Logger
}

func NewDigitalExtractor(reader TextReader, log logger.Logger) *DigitalExtractor {
	return &DigitalExtractor{reader: reader, log: log}
}

// Extract concatenates page texts without separators. Any reader failure,
// including a panic inside the PDF library, is returned as an *ExtractionError.
func (d *DigitalExtractor) Extract(ctx context.Context, path string) (result models.ExtractionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ExtractionError{Path: path, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	pages, err := d.reader.PageTexts(ctx, path)
	if err != nil {
		return models.ExtractionResult{}, &ExtractionError{Path: path, Err: err}
	}

	text := strings.Join(pages, "")
	d.log.Debug("Extracted %d characters from %d pages of %s", len(text), len(pages), path)

	return models.ExtractionResult{
		Text:     text,
		Citation: citations.GuessFromText(text),
	}, nil
}
