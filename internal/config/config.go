// Package config holds the explicit runtime configuration of the summarization
// pipeline. Nothing else in the module reads the process environment directly.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Epistemic-Technology/emolit/internal/logger"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	EngineMuPDF  = "mupdf"
	EngineNative = "native"
)

type Config struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
	// DBPath is the SQLite ledger location. Empty disables the ledger.
	DBPath string `yaml:"db_path"`

	LLM     LLMConfig        `yaml:"llm"`
	Extract ExtractConfig    `yaml:"extract"`
	OCR     OCRConfig        `yaml:"ocr"`
	Zotero  ZoteroConfig     `yaml:"zotero"`
	Log     logger.LogConfig `yaml:"log"`
}

type LLMConfig struct {
	Provider          string        `yaml:"provider"`
	Model             string        `yaml:"model"`
	Temperature       float64       `yaml:"temperature"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	StructuredOutput  bool          `yaml:"structured_output"`
	MaxPromptChars    int           `yaml:"max_prompt_chars"`

	// Credentials are only read from the environment.
	OpenAIKey string `yaml:"-"`
	GeminiKey string `yaml:"-"`
}

type ExtractConfig struct {
	QualityThreshold int           `yaml:"quality_threshold"`
	DigitalEngine    string        `yaml:"digital_engine"`
	Timeout          time.Duration `yaml:"timeout"`
}

type OCRConfig struct {
	DPI           float64       `yaml:"dpi"`
	MaxPages      int           `yaml:"max_pages"`
	Language      string        `yaml:"language"`
	TesseractPath string        `yaml:"tesseract_path"`
	Timeout       time.Duration `yaml:"timeout"`
}

// ZoteroConfig is only needed to summarize Zotero attachments from the MCP server
type ZoteroConfig struct {
	LibraryID string `yaml:"library_id"`
	APIKey    string `yaml:"-"`
}

// Enabled reports whether both Zotero credentials are present
func (z ZoteroConfig) Enabled() bool {
	return z.LibraryID != "" && z.APIKey != ""
}

// Default returns the documented defaults. Model is left empty so that the
// provider-specific default applies.
func Default() Config {
	return Config{
		InputDir:  filepath.Join("assets", "journals_conference_papers"),
		OutputDir: filepath.Join("assets", "extracted_journals_conference_papers"),
		DBPath:    defaultDBPath(),
		LLM: LLMConfig{
			Provider:          ProviderOpenAI,
			Temperature:       0.3,
			Timeout:           90 * time.Second,
			RequestsPerMinute: 30,
			MaxPromptChars:    6000,
		},
		Extract: ExtractConfig{
			QualityThreshold: 100,
			DigitalEngine:    EngineMuPDF,
			Timeout:          2 * time.Minute,
		},
		OCR: OCRConfig{
			DPI:           200,
			MaxPages:      3,
			Language:      "eng",
			TesseractPath: "tesseract",
			Timeout:       60 * time.Second,
		},
	}
}

// Load reads the configuration and validates it
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Read builds a Config from defaults, an optional YAML file and the
// environment, in that order of precedence (later wins). Commands that never
// call a model use it to skip credential checks.
func Read(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return cfg, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.InputDir = getEnv("EMOLIT_INPUT_DIR", c.InputDir)
	c.OutputDir = getEnv("EMOLIT_OUTPUT_DIR", c.OutputDir)
	if v, ok := os.LookupEnv("EMOLIT_DB_PATH"); ok {
		c.DBPath = v
	}

	c.LLM.Provider = strings.ToLower(getEnv("EMOLIT_LLM_PROVIDER", c.LLM.Provider))
	c.LLM.Model = getEnv("EMOLIT_LLM_MODEL", c.LLM.Model)
	c.LLM.Temperature = getEnvAsFloat("EMOLIT_LLM_TEMPERATURE", c.LLM.Temperature)
	c.LLM.Timeout = getEnvAsDuration("EMOLIT_LLM_TIMEOUT", c.LLM.Timeout)
	c.LLM.RequestsPerMinute = getEnvAsInt("EMOLIT_LLM_RPM", c.LLM.RequestsPerMinute)
	c.LLM.StructuredOutput = getEnvAsBool("EMOLIT_LLM_STRUCTURED", c.LLM.StructuredOutput)
	c.LLM.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.LLM.GeminiKey = getEnv("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY"))

	c.Extract.DigitalEngine = strings.ToLower(getEnv("EMOLIT_DIGITAL_ENGINE", c.Extract.DigitalEngine))
	c.Extract.Timeout = getEnvAsDuration("EMOLIT_EXTRACT_TIMEOUT", c.Extract.Timeout)

	c.OCR.Language = getEnv("EMOLIT_OCR_LANGUAGE", c.OCR.Language)
	c.OCR.TesseractPath = getEnv("EMOLIT_TESSERACT_PATH", c.OCR.TesseractPath)
	c.OCR.Timeout = getEnvAsDuration("EMOLIT_OCR_TIMEOUT", c.OCR.Timeout)

	c.Zotero.LibraryID = getEnv("ZOTERO_LIBRARY_ID", c.Zotero.LibraryID)
	c.Zotero.APIKey = os.Getenv("ZOTERO_API_KEY")

	c.Log.Output = getEnv("EMOLIT_LOG_OUTPUT", c.Log.Output)
	c.Log.Level = getEnv("EMOLIT_LOG_LEVEL", c.Log.Level)
	c.Log.FilePath = getEnv("EMOLIT_LOG_FILE", c.Log.FilePath)
}

// Validate reports every configuration problem at once
func (c Config) Validate() error {
	var errs []error
	if c.InputDir == "" {
		errs = append(errs, errors.New("input_dir is required"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir is required"))
	}

	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.OpenAIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY environment variable not set"))
		}
	case ProviderGemini:
		if c.LLM.GeminiKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY environment variable not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider: %q", c.LLM.Provider))
	}
	if c.LLM.MaxPromptChars <= 0 {
		errs = append(errs, errors.New("llm.max_prompt_chars must be positive"))
	}
	if c.LLM.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("llm.requests_per_minute must not be negative"))
	}

	switch c.Extract.DigitalEngine {
	case EngineMuPDF, EngineNative:
	default:
		errs = append(errs, fmt.Errorf("unknown digital engine: %q", c.Extract.DigitalEngine))
	}
	if c.Extract.QualityThreshold <= 0 {
		errs = append(errs, errors.New("extract.quality_threshold must be positive"))
	}

	if c.OCR.DPI <= 0 {
		errs = append(errs, errors.New("ocr.dpi must be positive"))
	}
	if c.OCR.MaxPages <= 0 {
		errs = append(errs, errors.New("ocr.max_pages must be positive"))
	}

	return errors.Join(errs...)
}

// ModelName returns the configured model or the provider default
func (c LLMConfig) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	if c.Provider == ProviderGemini {
		return "gemini-2.5-flash"
	}
	return "gpt-4o-mini"
}

// APIKey returns the credential of the selected provider
func (c LLMConfig) APIKey() string {
	if c.Provider == ProviderGemini {
		return c.GeminiKey
	}
	return c.OpenAIKey
}

func defaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".emolit", "emolit.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
