package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Epistemic-Technology/emolit/internal/citations"
	"github.com/Epistemic-Technology/emolit/internal/logger"
	"github.com/Epistemic-Technology/emolit/models"
)

// Rasterizer renders the first maxPages pages of a PDF as PNG images, in
// page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, path string, dpi float64, maxPages int) ([][]byte, error)
}

// Recognizer returns the text recognized in a PNG image
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

type OCROptions struct {
	DPI      float64
	MaxPages int
	// PageTimeout bounds each recognition call and, multiplied by MaxPages,
	// the rasterization step. Zero means no timeout.
	PageTimeout time.Duration
}

// OCRExtractor recognizes text from the first pages of a PDF. It is the last
// resort of the pipeline and never fails: any error yields empty text.
type OCRExtractor struct {
	rasterizer Rasterizer
	recognizer Recognizer
	opts       OCROptions
	log        logger.Logger
}

func NewOCRExtractor(rasterizer Rasterizer, recognizer Recognizer, opts OCROptions, log logger.Logger) *OCRExtractor {
	return &OCRExtractor{rasterizer: rasterizer, recognizer: recognizer, opts: opts, log: log}
}

// PageMarker is written before the text of page n (1-indexed)
func PageMarker(n int) string {
	return fmt.Sprintf("\n\n--- PAGE %d ---\n\n", n)
}

// Extract never guesses a citation; the result always carries an empty one.
func (o *OCRExtractor) Extract(ctx context.Context, path string) models.ExtractionResult {
	text, err := o.recognize(ctx, path)
	if err != nil {
		o.log.Error("OCR extraction failed: %v", err)
		text = ""
	}
	return models.ExtractionResult{Text: text, Citation: citations.EmptyCitation()}
}

func (o *OCRExtractor) recognize(ctx context.Context, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &OCRError{Path: path, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	rasterCtx, cancel := o.withTimeout(ctx, time.Duration(o.opts.MaxPages))
	images, err := o.rasterizer.Rasterize(rasterCtx, path, o.opts.DPI, o.opts.MaxPages)
	cancel()
	if err != nil {
		return "", &OCRError{Path: path, Err: err}
	}

	var b strings.Builder
	for i, img := range images {
		page := i + 1
		o.log.Info("Running OCR on page %d of %s", page, path)

		pageCtx, cancel := o.withTimeout(ctx, 1)
		pageText, err := o.recognizer.Recognize(pageCtx, img)
		cancel()
		if err != nil {
			return "", &OCRError{Path: path, Page: page, Err: err}
		}

		b.WriteString(PageMarker(page))
		b.WriteString(pageText)
	}
	return b.String(), nil
}

func (o *OCRExtractor) withTimeout(ctx context.Context, factor time.Duration) (context.Context, context.CancelFunc) {
	if o.opts.PageTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.opts.PageTimeout*factor)
}
