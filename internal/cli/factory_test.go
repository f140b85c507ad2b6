package cli

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenjpais/diagram-generator/internal/config"
	"github.com/kenjpais/diagram-generator/internal/logging"
	"github.com/kenjpais/diagram-generator/internal/metrics"
	"github.com/kenjpais/diagram-generator/pkg/adapters/file"
	"github.com/kenjpais/diagram-generator/pkg/adapters/memory"
	"github.com/kenjpais/diagram-generator/pkg/adapters/redis"
	"github.com/kenjpais/diagram-generator/pkg/domain"
)

func newTestRecorder() *metrics.Recorder {
	return metrics.NewRecorder(prometheus.NewRegistry())
}

func testConfig() *config.Config {
	return &config.Config{
		Provider:      config.ProviderOllama,
		OllamaBaseURL: "http://localhost:11434",
		OllamaModel:   "llama3",
		MaxAttempts:   3,
		OutputDir:     "output",
		RenderFormat:  domain.FormatSVG,
		RenderTimeout: time.Second,
		Validator:     config.ValidatorStrict,
	}
}

func TestBuildAppWiresPipeline(t *testing.T) {
	cfg := testConfig()
	cfg.MaxAttempts = 5
	cfg.CacheSize = 16

	app, err := BuildApp(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 5, app.Pipeline.MaxAttempts())
	assert.NotNil(t, app.Store)
	assert.Same(t, app.Store, app.Pipeline.Store(), "the pipeline records into the same store the commands read")
	assert.NotNil(t, app.Validator)
	assert.NotNil(t, app.Renderer)
	assert.NotNil(t, app.Registry)
}

func TestBuildAppRequiresGeminiKey(t *testing.T) {
	cfg := testConfig()
	cfg.Provider = config.ProviderGemini
	cfg.GeminiModel = "gemini-2.5-pro"

	_, err := BuildApp(context.Background(), cfg, logging.NewNop())
	require.Error(t, err)
	assert.ErrorContains(t, err, "gemini")
}

func TestProviderConfigMapsPerProvider(t *testing.T) {
	cfg := testConfig()
	cfg.LLMTimeout = 45 * time.Second

	pc := providerConfig(cfg)
	assert.Equal(t, "llama3", pc.Model)
	assert.Equal(t, "http://localhost:11434", pc.BaseURL)
	assert.Empty(t, pc.APIKey)
	assert.Equal(t, 45*time.Second, pc.Timeout)

	cfg.Provider = config.ProviderGemini
	cfg.GeminiAPIKey = "key"
	cfg.GeminiModel = "gemini-2.5-pro"

	pc = providerConfig(cfg)
	assert.Equal(t, "gemini-2.5-pro", pc.Model)
	assert.Equal(t, "key", pc.APIKey)
	assert.Empty(t, pc.BaseURL)
}

func TestBuildValidatorTierSelection(t *testing.T) {
	// Port syntax parses under the full grammar but sits outside the basic
	// tier's whitelist; a dangling edge fails both tiers.
	const withPort = "digraph G { a:n -> b }"
	const danglingEdge = "digraph G { a -> }"
	ctx := context.Background()

	cfg := testConfig()
	strict := buildValidator(cfg, logging.NewNop())
	assert.True(t, strict.Validate(ctx, withPort).Valid)
	assert.False(t, strict.Validate(ctx, danglingEdge).Valid)

	cfg.Validator = config.ValidatorBasic
	basic := buildValidator(cfg, logging.NewNop())
	assert.False(t, basic.Validate(ctx, withPort).Valid)
	assert.False(t, basic.Validate(ctx, danglingEdge).Valid,
		"the basic tier must not pass source the grammar tier rejects")
}

func TestBuildPersistenceBackendSelection(t *testing.T) {
	cfg := testConfig()

	store, locker := buildPersistence(cfg)
	_, isFile := store.(*file.Store)
	_, isMemory := locker.(*memory.Locker)
	assert.True(t, isFile)
	assert.True(t, isMemory)

	cfg.RedisAddr = "localhost:6379"
	store, locker = buildPersistence(cfg)
	_, isRedis := store.(*redis.Store)
	_, isRedisLock := locker.(*redis.Locker)
	assert.True(t, isRedis)
	assert.True(t, isRedisLock)
}

func TestStoreMiddlewareSealsOnlyWhenKeyed(t *testing.T) {
	cfg := testConfig()
	rec := newTestRecorder()

	assert.Len(t, storeMiddleware(cfg, rec), 2)

	cfg.EncryptKey = make([]byte, 32)
	assert.Len(t, storeMiddleware(cfg, rec), 3)
}
