package extract

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"
	pdf "github.com/ledongthuc/pdf"

	"github.com/Epistemic-Technology/emolit/internal/config"
)

// NewTextReader returns the reader for the configured digital engine
func NewTextReader(engine string) (TextReader, error) {
	switch engine {
	case config.EngineMuPDF, "":
		return FitzReader{}, nil
	case config.EngineNative:
		return NativeReader{}, nil
	default:
		return nil, fmt.Errorf("unknown digital engine: %s", engine)
	}
}

// FitzReader reads text through MuPDF
type FitzReader struct{}

func (FitzReader) PageTexts(ctx context.Context, path string) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := doc.Text(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", i+1, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// NativeReader reads text with the pure Go ledongthuc/pdf parser
type NativeReader struct{}

func (NativeReader) PageTexts(ctx context.Context, path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	total := r.NumPage()
	pages := make([]string, 0, total)
	// pages are 1-indexed in ledongthuc/pdf
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
