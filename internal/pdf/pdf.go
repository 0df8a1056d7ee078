package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var magic = []byte("%PDF-")

// Info describes a structurally valid PDF
type Info struct {
	Pages int
	Bytes int
}

// IsPDF reports whether data starts with the PDF header, ignoring leading whitespace
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), magic)
}

// Inspect parses and validates a PDF in relaxed mode and returns its page count
func Inspect(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, errors.New("empty PDF data")
	}
	if !IsPDF(data) {
		return Info{}, errors.New("data is not a PDF")
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pdfContext, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return Info{}, fmt.Errorf("failed to validate PDF: %w", err)
	}
	return Info{Pages: pdfContext.PageCount, Bytes: len(data)}, nil
}

// InspectFile reads path and inspects it
func InspectFile(path string) (Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to read PDF: %w", err)
	}
	return Inspect(data)
}
