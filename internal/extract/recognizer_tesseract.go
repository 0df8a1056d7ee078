//go:build ocr

package extract

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/Epistemic-Technology/emolit/internal/config"
)

// TesseractRecognizer runs OCR in-process through libtesseract
type TesseractRecognizer struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewRecognizer creates a libtesseract-backed recognizer. The caller must
// Close it.
func NewRecognizer(cfg config.OCRConfig) (*TesseractRecognizer, error) {
	client := gosseract.NewClient()
	if cfg.Language != "" {
		if err := client.SetLanguage(strings.Split(cfg.Language, "+")...); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set OCR language: %w", err)
		}
	}
	return &TesseractRecognizer{client: client}, nil
}

func (t *TesseractRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to load image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to recognize text: %w", err)
	}
	return text, nil
}

func (t *TesseractRecognizer) Close() error {
	return t.client.Close()
}
