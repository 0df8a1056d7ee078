// Package extract turns a PDF into text, either from its embedded text layer
// or, as a fallback, by recognizing rasterized pages.
package extract

import (
	"io"

	"github.com/Epistemic-Technology/emolit/internal/config"
	"github.com/Epistemic-Technology/emolit/internal/logger"
)

// NewFromConfig wires the production engines into a Selector. The returned
// closer releases the OCR engine.
func NewFromConfig(cfg config.Config, log logger.Logger) (*Selector, io.Closer, error) {
	reader, err := NewTextReader(cfg.Extract.DigitalEngine)
	if err != nil {
		return nil, nil, err
	}
	recognizer, err := NewRecognizer(cfg.OCR)
	if err != nil {
		return nil, nil, err
	}

	digital := NewDigitalExtractor(reader, log)
	ocr := NewOCRExtractor(FitzRasterizer{}, recognizer, OCROptions{
		DPI:         cfg.OCR.DPI,
		MaxPages:    cfg.OCR.MaxPages,
		PageTimeout: cfg.OCR.Timeout,
	}, log)

	return NewSelector(digital, ocr, cfg.Extract.QualityThreshold, cfg.Extract.Timeout, log), recognizer, nil
}
