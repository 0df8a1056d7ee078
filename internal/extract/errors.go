package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrExtraction marks failures of the digital text layer reader
	ErrExtraction = errors.New("digital extraction failed")
	// ErrOCR marks failures while rasterizing or recognizing pages
	ErrOCR = errors.New("ocr failed")
)

// ExtractionError is returned when a PDF cannot be opened or its text layer
// cannot be read.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// OCRError is produced inside the OCR extractor. Page is 1-indexed, 0 when the
// failure happened before any page was recognized.
type OCRError struct {
	Path string
	Page int
	Err  error
}

func (e *OCRError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("ocr failed for %s page %d: %v", e.Path, e.Page, e.Err)
	}
	return fmt.Sprintf("ocr failed for %s: %v", e.Path, e.Err)
}

func (e *OCRError) Unwrap() error { return e.Err }

func (e *OCRError) Is(target error) bool { return target == ErrOCR }
