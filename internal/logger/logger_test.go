package logger

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"fatal", FatalLevel, false},
		{"verbose", InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, WarnLevel)

	log.Debug("debug %d", 1)
	log.Info("info %d", 2)
	log.Warn("warn %d", 3)
	log.Error("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("Expected debug and info lines to be filtered, got %q", out)
	}
	if !strings.Contains(out, "[WARN] warn 3") {
		t.Errorf("Expected warn line, got %q", out)
	}
	if !strings.Contains(out, "[ERROR] error 4") {
		t.Errorf("Expected error line, got %q", out)
	}

	log.SetLevel(DebugLevel)
	log.Debug("now visible")
	if !strings.Contains(buf.String(), "[DEBUG] now visible") {
		t.Errorf("Expected debug line after SetLevel, got %q", buf.String())
	}
}

func TestNewLoggerFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "emolit.log")
	log, err := NewLogger(LogConfig{Output: "file", Level: "debug", FilePath: path})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	log.Info("hello")
}

func TestNewLoggerInvalidOutput(t *testing.T) {
	if _, err := NewLogger(LogConfig{Output: "syslog"}); err == nil {
		t.Error("Expected error for unknown output, got nil")
	}
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	if _, err := NewLogger(LogConfig{Output: "stderr", Level: "loud"}); err == nil {
		t.Error("Expected error for unknown level, got nil")
	}
}
