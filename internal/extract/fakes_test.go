package extract

import (
	"context"
	"fmt"
	"sync"

	"github.com/Epistemic-Technology/emolit/internal/logger"
	"github.com/Epistemic-Technology/emolit/models"
)

// warnRecorder keeps every Warn message and drops the rest.
type warnRecorder struct {
	logger.Logger
	mu    sync.Mutex
	warns []string
}

func newWarnRecorder() *warnRecorder {
	return &warnRecorder{Logger: logger.NewNoOpLogger()}
}

func (w *warnRecorder) Warn(format string, v ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.warns = append(w.warns, fmt.Sprintf(format, v...))
}

func (w *warnRecorder) messages() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.warns...)
}

type fakeReader struct {
	pages []string
	err   error
	panic bool
}

func (f fakeReader) PageTexts(ctx context.Context, path string) ([]string, error) {
	if f.panic {
		panic("corrupt xref table")
	}
	return f.pages, f.err
}

type fakeDigital struct {
	result models.ExtractionResult
	err    error
	block  bool
	calls  int
}

func (f *fakeDigital) Extract(ctx context.Context, path string) (models.ExtractionResult, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		select {}
	}
	return f.result, f.err
}

type fakeOCR struct {
	text  string
	calls int
}

func (f *fakeOCR) Extract(ctx context.Context, path string) models.ExtractionResult {
	f.calls++
	return models.ExtractionResult{Text: f.text, Citation: models.Citation{Title: "Untitled", Authors: []string{}, Source: "guessed"}}
}

type fakeRasterizer struct {
	images   [][]byte
	err      error
	gotDPI   float64
	gotPages int
}

func (f *fakeRasterizer) Rasterize(ctx context.Context, path string, dpi float64, maxPages int) ([][]byte, error) {
	f.gotDPI = dpi
	f.gotPages = maxPages
	if f.err != nil {
		return nil, f.err
	}
	return f.images, nil
}

type fakeRecognizer struct {
	texts map[string]string
	errOn string
	calls int
}

func (f *fakeRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	f.calls++
	if string(image) == f.errOn {
		return "", context.DeadlineExceeded
	}
	return f.texts[string(image)], nil
}
