package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Level represents the logging level
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level. The empty string means info.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level: %s", level)
	}
}

// Logger is the interface for logging operations
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
	Fatal(format string, v ...any)
	SetLevel(level Level)
}

// LogConfig holds configuration for the logger
type LogConfig struct {
	// Output destination: "file", "stderr" or "stdout". Empty means auto-detect.
	Output string `yaml:"output"`
	// Log level: "debug", "info", "warn", "error", "fatal"
	Level string `yaml:"level"`
	// FilePath for file output (only used when Output is "file")
	FilePath string `yaml:"file"`
}

type standardLogger struct {
	mu     sync.RWMutex
	logger *log.Logger
	level  Level
}

// New creates a logger writing to w
func New(w io.Writer, level Level) Logger {
	return &standardLogger{
		logger: log.New(w, "", log.LstdFlags),
		level:  level,
	}
}

// NewLogger creates a logger from the provided configuration. Unset fields
// fall back to EMOLIT_LOG_OUTPUT, EMOLIT_LOG_LEVEL and EMOLIT_LOG_FILE.
func NewLogger(config LogConfig) (Logger, error) {
	output := firstNonEmpty(config.Output, os.Getenv("EMOLIT_LOG_OUTPUT"), detectEnvironment())

	var writer io.Writer
	switch output {
	case "stderr":
		writer = os.Stderr
	case "stdout":
		writer = os.Stdout
	case "file":
		file, err := openLogFile(firstNonEmpty(config.FilePath, os.Getenv("EMOLIT_LOG_FILE")))
		if err != nil {
			return nil, err
		}
		writer = file
	default:
		return nil, fmt.Errorf("invalid log output: %s (expected 'file', 'stderr' or 'stdout')", output)
	}

	level, err := ParseLevel(firstNonEmpty(config.Level, os.Getenv("EMOLIT_LOG_LEVEL")))
	if err != nil {
		return nil, err
	}

	return New(writer, level), nil
}

// NewNoOpLogger creates a logger that discards all output (useful for tests)
func NewNoOpLogger() Logger {
	return New(io.Discard, FatalLevel)
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".emolit", "emolit.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

// detectEnvironment picks stderr inside containers and a log file elsewhere
func detectEnvironment() string {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return "stderr"
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return "stderr"
	}
	return "file"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (l *standardLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *standardLogger) enabled(level Level) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level <= level
}

func (l *standardLogger) Debug(format string, v ...any) {
	if l.enabled(DebugLevel) {
		l.log(DebugLevel, format, v...)
	}
}

func (l *standardLogger) Info(format string, v ...any) {
	if l.enabled(InfoLevel) {
		l.log(InfoLevel, format, v...)
	}
}

func (l *standardLogger) Warn(format string, v ...any) {
	if l.enabled(WarnLevel) {
		l.log(WarnLevel, format, v...)
	}
}

func (l *standardLogger) Error(format string, v ...any) {
	if l.enabled(ErrorLevel) {
		l.log(ErrorLevel, format, v...)
	}
}

// Fatal logs a fatal message and exits
func (l *standardLogger) Fatal(format string, v ...any) {
	l.log(FatalLevel, format, v...)
	os.Exit(1)
}

func (l *standardLogger) log(level Level, format string, v ...any) {
	l.logger.Printf("[%s] %s", level.String(), fmt.Sprintf(format, v...))
}
