//go:build !ocr

package extract

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Epistemic-Technology/emolit/internal/config"
)

type recordingRunner struct {
	name  string
	args  []string
	stdin []byte
	out   []byte
	err   error
}

func (r *recordingRunner) Run(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	r.name, r.args, r.stdin = name, args, stdin
	return r.out, r.err
}

func TestTesseractRecognizer_CLI(t *testing.T) {
	rec, err := NewRecognizer(config.OCRConfig{TesseractPath: "/usr/local/bin/tesseract", Language: "eng"})
	if err != nil {
		t.Fatalf("NewRecognizer failed: %v", err)
	}
	runner := &recordingRunner{out: []byte("Recognized text\n")}
	rec.runner = runner

	got, err := rec.Recognize(context.Background(), []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if got != "Recognized text\n" {
		t.Errorf("Expected recognized text, got %q", got)
	}
	if runner.name != "/usr/local/bin/tesseract" {
		t.Errorf("Expected configured binary, got %s", runner.name)
	}
	wantArgs := []string{"stdin", "stdout", "-l", "eng"}
	if !reflect.DeepEqual(runner.args, wantArgs) {
		t.Errorf("Expected args %v, got %v", wantArgs, runner.args)
	}
	if string(runner.stdin) != "png-bytes" {
		t.Errorf("Expected image on stdin, got %q", runner.stdin)
	}
}

func TestTesseractRecognizer_CLIError(t *testing.T) {
	rec, _ := NewRecognizer(config.OCRConfig{})
	rec.runner = &recordingRunner{err: errors.New("exit status 1")}

	if _, err := rec.Recognize(context.Background(), nil); err == nil {
		t.Error("Expected error, got nil")
	}
	if rec.binary != "tesseract" {
		t.Errorf("Expected default binary tesseract, got %s", rec.binary)
	}
}
