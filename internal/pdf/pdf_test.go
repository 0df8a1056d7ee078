package pdf

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

func TestInspect(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "samples", "*.pdf"))
	if err != nil {
		t.Fatalf("Failed to list sample PDFs: %v", err)
	}
	if len(files) == 0 {
		t.Skip("No sample PDFs found in samples directory")
	}

	for _, filePath := range files {
		t.Run(filepath.Base(filePath), func(t *testing.T) {
			pdfBytes, err := os.ReadFile(filePath)
			if err != nil {
				t.Fatalf("Failed to read PDF file %s: %v", filePath, err)
			}

			expectedPageCount, err := api.PageCount(bytes.NewReader(pdfBytes), nil)
			if err != nil {
				t.Fatalf("Failed to get page count: %v", err)
			}

			info, err := Inspect(pdfBytes)
			if err != nil {
				t.Fatalf("Inspect failed: %v", err)
			}
			if info.Pages != expectedPageCount {
				t.Errorf("Expected %d pages, got %d", expectedPageCount, info.Pages)
			}
			if info.Bytes != len(pdfBytes) {
				t.Errorf("Expected %d bytes, got %d", len(pdfBytes), info.Bytes)
			}
		})
	}
}

func TestInspect_EmptyInput(t *testing.T) {
	if _, err := Inspect([]byte{}); err == nil {
		t.Error("Expected error for empty PDF data, got nil")
	}
}

func TestInspect_InvalidInput(t *testing.T) {
	if _, err := Inspect([]byte("This is not a PDF")); err == nil {
		t.Error("Expected error for invalid PDF data, got nil")
	}
}

func TestInspect_TruncatedPDF(t *testing.T) {
	if _, err := Inspect([]byte("%PDF-1.4\n1 0 obj\n<<")); err == nil {
		t.Error("Expected error for truncated PDF, got nil")
	}
}

func TestInspectFile_Missing(t *testing.T) {
	if _, err := InspectFile(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

func TestIsPDF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"header", []byte("%PDF-1.7\n..."), true},
		{"leading whitespace", []byte("\r\n %PDF-1.4"), true},
		{"html", []byte("<!DOCTYPE html>"), false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPDF(tt.data); got != tt.want {
				t.Errorf("IsPDF() = %v, want %v", got, tt.want)
			}
		})
	}
}
