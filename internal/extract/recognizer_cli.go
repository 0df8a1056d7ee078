//go:build !ocr

package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Epistemic-Technology/emolit/internal/config"
)

// Runner executes an external command with stdin and returns its stdout
type Runner interface {
	Run(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// TesseractRecognizer pipes page images through the tesseract executable.
// Build with -tags ocr to link libtesseract instead.
type TesseractRecognizer struct {
	binary   string
	language string
	runner   Runner
}

// NewRecognizer creates a recognizer for the configured tesseract binary.
// The binary is resolved lazily so a missing install only fails OCR calls.
func NewRecognizer(cfg config.OCRConfig) (*TesseractRecognizer, error) {
	binary := cfg.TesseractPath
	if binary == "" {
		binary = "tesseract"
	}
	return &TesseractRecognizer{binary: binary, language: cfg.Language, runner: execRunner{}}, nil
}

func (t *TesseractRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	args := []string{"stdin", "stdout"}
	if t.language != "" {
		args = append(args, "-l", t.language)
	}
	out, err := t.runner.Run(ctx, t.binary, args, image)
	if err != nil {
		return "", fmt.Errorf("failed to recognize text: %w", err)
	}
	return string(out), nil
}

func (t *TesseractRecognizer) Close() error { return nil }
