package common

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Catalog CatalogConfig
	Match   MatchConfig
	LLM     LLMConfig
	PDF     PDFConfig
	Server  ServerConfig
	Output  OutputConfig
	Log     LogConfig
}

// CatalogConfig holds intervention catalog configuration
type CatalogConfig struct {
	Source   string // csv/xlsx path, sqlite://path or postgres:// DSN
	Table    string // table for SQL sources
	Fallback string // "builtin" | "empty"
}

// MatchConfig selects issue extraction and matching strategies
type MatchConfig struct {
	IssueMode      string // "prefix" | "word" | "substring"
	Strategy       string // "keyword" | "fuzzy"
	FuzzyThreshold float64
	TopN           int
	EstimateCosts  bool
}

// LLMConfig holds summary provider configuration
type LLMConfig struct {
	Provider    string // "gemini" | "openai" | "none"
	GeminiModel string
	GeminiKey   string
	OpenAIModel string
	OpenAIKey   string
	OpenAIURL   string
	Temperature float32
	Timeout     time.Duration
	Retries     int
	RPS         float64
	CacheSize   int
	InputCap    int
}

// PDFConfig holds PDF text extraction configuration
type PDFConfig struct {
	Pdftotext string
	Pdfinfo   string
	MaxPages  int
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPAddr  string
	Workers   int
	QueueSize int
	JobTTL    int // number of finished jobs kept in memory
	MaxUpload int64
}

// OutputConfig holds export locations
type OutputConfig struct {
	Dir string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string // "text" | "json"
}

// LoadConfig loads configuration from environment variables. A .env file in the
// working directory is read first when present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Catalog: CatalogConfig{
			Source:   getEnv("CATALOG_SOURCE", "data/irc_interventions.csv"),
			Table:    getEnv("CATALOG_TABLE", "interventions"),
			Fallback: strings.ToLower(getEnv("CATALOG_FALLBACK", "builtin")),
		},
		Match: MatchConfig{
			IssueMode:      strings.ToLower(getEnv("ISSUE_MATCH_MODE", "prefix")),
			Strategy:       strings.ToLower(getEnv("MATCH_STRATEGY", "keyword")),
			FuzzyThreshold: getEnvAsFloat64("FUZZY_THRESHOLD", 0.7),
			TopN:           getEnvAsInt("SUMMARY_TOP_N", 5),
			EstimateCosts:  getEnvAsBool("ESTIMATE_COSTS", true),
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(getEnv("SUMMARY_PROVIDER", "gemini")),
			GeminiModel: getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			GeminiKey:   getEnv("GOOGLE_API_KEY", os.Getenv("GEMINI_API_KEY")),
			OpenAIModel: getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIKey:   getEnv("OPENAI_API_KEY", ""),
			OpenAIURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature: getEnvAsFloat32("SUMMARY_TEMPERATURE", 0.2),
			Timeout:     getEnvAsDuration("SUMMARY_TIMEOUT", 20*time.Second),
			Retries:     getEnvAsInt("SUMMARY_RETRIES", 0),
			RPS:         getEnvAsFloat64("SUMMARY_RPS", 1),
			CacheSize:   getEnvAsInt("SUMMARY_CACHE_SIZE", 128),
			InputCap:    getEnvAsInt("SUMMARY_INPUT_CAP", 600),
		},
		PDF: PDFConfig{
			Pdftotext: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdfinfo:   getEnv("PDFINFO_BIN", "pdfinfo"),
			MaxPages:  getEnvAsInt("PDF_MAX_PAGES", 0),
		},
		Server: ServerConfig{
			HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
			Workers:   getEnvAsInt("ANALYSIS_WORKERS", 4),
			QueueSize: getEnvAsInt("ANALYSIS_QUEUE_SIZE", 64),
			JobTTL:    getEnvAsInt("ANALYSIS_JOBS_KEPT", 512),
			MaxUpload: int64(getEnvAsInt("MAX_UPLOAD_MB", 20)) << 20,
		},
		Output: OutputConfig{
			Dir: getEnv("OUTPUT_DIR", "output"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Catalog.Source) == "" {
		return NewAppError("CONFIG_ERROR", "CATALOG_SOURCE is required", ErrInvalidInput)
	}
	if !oneOf(c.Catalog.Fallback, "builtin", "empty") {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("CATALOG_FALLBACK %q must be builtin or empty", c.Catalog.Fallback), ErrInvalidInput)
	}
	if !oneOf(c.Match.IssueMode, "prefix", "word", "substring") {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("ISSUE_MATCH_MODE %q must be prefix, word or substring", c.Match.IssueMode), ErrInvalidInput)
	}
	if !oneOf(c.Match.Strategy, "keyword", "fuzzy") {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("MATCH_STRATEGY %q must be keyword or fuzzy", c.Match.Strategy), ErrInvalidInput)
	}
	if c.Match.FuzzyThreshold <= 0 || c.Match.FuzzyThreshold > 1 {
		return NewAppError("CONFIG_ERROR", "FUZZY_THRESHOLD must be in (0, 1]", ErrInvalidInput)
	}
	if !oneOf(c.LLM.Provider, "gemini", "openai", "none") {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("SUMMARY_PROVIDER %q must be gemini, openai or none", c.LLM.Provider), ErrInvalidInput)
	}
	if c.LLM.Timeout <= 0 {
		return NewAppError("CONFIG_ERROR", "SUMMARY_TIMEOUT must be positive", ErrInvalidInput)
	}
	if c.LLM.Retries < 0 {
		return NewAppError("CONFIG_ERROR", "SUMMARY_RETRIES must not be negative", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	return nil
}

// NewLogger builds the process logger from LogConfig.
func (c LogConfig) NewLogger() *slog.Logger {
	level := slog.LevelInfo
	switch c.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
