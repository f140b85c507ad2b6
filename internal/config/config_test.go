package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenjpais/diagram-generator/internal/config"
	"github.com/kenjpais/diagram-generator/pkg/domain"
)

var envKeys = []string{
	"LLM_PROVIDER", "GEMINI_API_KEY", "GOOGLE_API_KEY", "GEMINI_MODEL",
	"OLLAMA_BASE_URL", "OLLAMA_MODEL", "LLM_TIMEOUT",
	"MAX_RETRY_ATTEMPTS", "OUTPUT_DIR", "RENDER_FORMAT", "RENDER_TIMEOUT",
	"VALIDATOR", "GENERATION_CACHE_SIZE", "REDIS_ADDR", "HTTP_ADDR",
	"LOG_LEVEL", "LOG_FORMAT", "ENCRYPT_KEY",
}

// clearEnv blanks the full env surface, restoring it when the test ends.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

// unsetEnv removes keys entirely so a .env file can provide them; t.Setenv
// first registers the restore.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.GeminiModel)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaBaseURL)
	assert.Equal(t, "llama3", cfg.OllamaModel)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, domain.FormatSVG, cfg.RenderFormat)
	assert.Equal(t, 30*time.Second, cfg.RenderTimeout)
	assert.Zero(t, cfg.LLMTimeout, "the provider default applies when unset")
	assert.Equal(t, config.ValidatorStrict, cfg.Validator)
	assert.Zero(t, cfg.CacheSize)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.EncryptKey)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("OLLAMA_MODEL", "codellama")
	t.Setenv("MAX_RETRY_ATTEMPTS", "5")
	t.Setenv("RENDER_FORMAT", "png")
	t.Setenv("RENDER_TIMEOUT", "90s")
	t.Setenv("LLM_TIMEOUT", "45s")
	t.Setenv("VALIDATOR", "basic")
	t.Setenv("GENERATION_CACHE_SIZE", "128")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.ProviderOllama, cfg.Provider)
	assert.Equal(t, "codellama", cfg.OllamaModel)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, domain.FormatPNG, cfg.RenderFormat)
	assert.Equal(t, 90*time.Second, cfg.RenderTimeout)
	assert.Equal(t, 45*time.Second, cfg.LLMTimeout)
	assert.Equal(t, config.ValidatorBasic, cfg.Validator)
	assert.Equal(t, 128, cfg.CacheSize)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadEncryptKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENCRYPT_KEY", strings.Repeat("ab", 32))

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Len(t, cfg.EncryptKey, 32)
	assert.Equal(t, byte(0xab), cfg.EncryptKey[0])
}

func TestLoadGeminiKeyAlias(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "alias-key")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "alias-key", cfg.GeminiAPIKey, "GOOGLE_API_KEY stands in when GEMINI_API_KEY is unset")

	t.Setenv("GEMINI_API_KEY", "primary-key")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Equal(t, "primary-key", cfg.GeminiAPIKey, "GEMINI_API_KEY wins when both are set")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"unknown provider", "LLM_PROVIDER", "claude", "LLM_PROVIDER"},
		{"unknown format", "RENDER_FORMAT", "gif", "RENDER_FORMAT"},
		{"unknown validator", "VALIDATOR", "fuzzy", "VALIDATOR"},
		{"non-numeric attempts", "MAX_RETRY_ATTEMPTS", "many", "MAX_RETRY_ATTEMPTS"},
		{"zero attempts", "MAX_RETRY_ATTEMPTS", "0", "at least 1"},
		{"negative cache", "GENERATION_CACHE_SIZE", "-1", "GENERATION_CACHE_SIZE"},
		{"bad timeout", "RENDER_TIMEOUT", "fast", "RENDER_TIMEOUT"},
		{"unknown level", "LOG_LEVEL", "noisy", "LOG_LEVEL"},
		{"unknown log format", "LOG_FORMAT", "xml", "LOG_FORMAT"},
		{"short encrypt key", "ENCRYPT_KEY", "deadbeef", "ENCRYPT_KEY"},
		{"non-hex encrypt key", "ENCRYPT_KEY", strings.Repeat("zz", 32), "ENCRYPT_KEY"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := config.Load()
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	unsetEnv(t, "LLM_PROVIDER", "OLLAMA_MODEL", "OUTPUT_DIR")

	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"LLM_PROVIDER=ollama\nOLLAMA_MODEL=mistral\nOUTPUT_DIR=artifacts\n"), 0o600))

	cfg, err := config.Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, config.ProviderOllama, cfg.Provider)
	assert.Equal(t, "mistral", cfg.OllamaModel)
	assert.Equal(t, "artifacts", cfg.OutputDir)
}

func TestLoadMissingEnvFile(t *testing.T) {
	clearEnv(t)

	_, err := config.Load(filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "env file")
}
