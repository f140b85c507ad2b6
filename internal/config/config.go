// Package config loads the process configuration from the environment,
// optionally seeded from a .env file. Load is called once in main; the
// resulting Config travels by value through the factories.
package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kenjpais/diagram-generator/pkg/domain"
)

// Provider names accepted in LLM_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Validator tiers accepted in VALIDATOR.
const (
	ValidatorStrict = "strict"
	ValidatorBasic  = "basic"
)

// Config is the full environment surface of the process.
type Config struct {
	Provider string

	GeminiAPIKey string
	GeminiModel  string

	OllamaBaseURL string
	OllamaModel   string

	LLMTimeout    time.Duration
	MaxAttempts   int
	OutputDir     string
	RenderFormat  domain.Format
	RenderTimeout time.Duration
	Validator     string
	CacheSize     int

	RedisAddr string
	HTTPAddr  string

	// EncryptKey, when present, seals persisted run records with AES-256-GCM.
	EncryptKey []byte

	LogLevel  slog.Level
	LogFormat string
}

// Load reads the environment into a Config. When envFiles are given they are
// loaded first and must exist; otherwise a .env in the working directory is
// picked up best-effort. Invalid enum or numeric values fail Load rather
// than being silently defaulted.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("config: loading env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{
		Provider:      strings.ToLower(getenv("LLM_PROVIDER", ProviderGemini)),
		GeminiAPIKey:  firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY")),
		GeminiModel:   getenv("GEMINI_MODEL", "gemini-2.5-pro"),
		OllamaBaseURL: getenv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:   getenv("OLLAMA_MODEL", "llama3"),
		OutputDir:     getenv("OUTPUT_DIR", "output"),
		Validator:     strings.ToLower(getenv("VALIDATOR", ValidatorStrict)),
		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		LogFormat:     strings.ToLower(getenv("LOG_FORMAT", "text")),
	}

	switch cfg.Provider {
	case ProviderGemini, ProviderOllama:
	default:
		return nil, fmt.Errorf("config: unknown LLM_PROVIDER %q (want %q or %q)", cfg.Provider, ProviderGemini, ProviderOllama)
	}

	switch cfg.Validator {
	case ValidatorStrict, ValidatorBasic:
	default:
		return nil, fmt.Errorf("config: unknown VALIDATOR %q (want %q or %q)", cfg.Validator, ValidatorStrict, ValidatorBasic)
	}

	cfg.RenderFormat = domain.Format(strings.ToLower(getenv("RENDER_FORMAT", string(domain.FormatSVG))))
	if !cfg.RenderFormat.Known() {
		return nil, fmt.Errorf("config: unknown RENDER_FORMAT %q (want svg, png or pdf)", cfg.RenderFormat)
	}

	var err error
	if cfg.MaxAttempts, err = intOr("MAX_RETRY_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("config: MAX_RETRY_ATTEMPTS must be at least 1, got %d", cfg.MaxAttempts)
	}
	if cfg.CacheSize, err = intOr("GENERATION_CACHE_SIZE", 0); err != nil {
		return nil, err
	}
	if cfg.CacheSize < 0 {
		return nil, fmt.Errorf("config: GENERATION_CACHE_SIZE must not be negative, got %d", cfg.CacheSize)
	}

	if cfg.LLMTimeout, err = durationOr("LLM_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if cfg.RenderTimeout, err = durationOr("RENDER_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("config: unknown LOG_LEVEL %q: %w", raw, err)
		}
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("config: unknown LOG_FORMAT %q (want text or json)", cfg.LogFormat)
	}

	if raw := strings.TrimSpace(os.Getenv("ENCRYPT_KEY")); raw != "" {
		key, decErr := hex.DecodeString(raw)
		if decErr != nil || len(key) != 32 {
			return nil, fmt.Errorf("config: ENCRYPT_KEY must be 64 hex characters (a 32-byte AES-256 key)")
		}
		cfg.EncryptKey = key
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func intOr(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer, got %q", key, raw)
	}
	return v, nil
}

func durationOr(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be a duration like \"30s\", got %q", key, raw)
	}
	return v, nil
}
