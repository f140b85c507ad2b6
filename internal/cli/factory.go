package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	diagen "github.com/kenjpais/diagram-generator"
	"github.com/kenjpais/diagram-generator/internal/config"
	"github.com/kenjpais/diagram-generator/internal/metrics"
	"github.com/kenjpais/diagram-generator/pkg/adapters/file"
	"github.com/kenjpais/diagram-generator/pkg/adapters/graphviz"
	"github.com/kenjpais/diagram-generator/pkg/adapters/llm"
	"github.com/kenjpais/diagram-generator/pkg/adapters/memory"
	"github.com/kenjpais/diagram-generator/pkg/adapters/redis"
	"github.com/kenjpais/diagram-generator/pkg/persistence/middleware"
	"github.com/kenjpais/diagram-generator/pkg/ports"
)

// App bundles the wired collaborators the commands share. Building one is
// pure construction: nothing dials out until a run starts.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Pipeline  *diagen.Pipeline
	Store     ports.RunStore
	Validator ports.SyntaxValidator
	Renderer  ports.Renderer
	Metrics   *metrics.Recorder
	Registry  *prometheus.Registry
}

// BuildApp assembles the full pipeline from configuration: the provider
// client behind logging and metrics middleware, the optional generation
// cache, the validator tiers, the dot renderer, and the run store behind
// its middleware chain.
func BuildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	registry := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(registry)

	client, err := llm.DefaultRegistry().New(ctx, cfg.Provider, providerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("building %s client: %w", cfg.Provider, err)
	}
	client = llm.Chain(client,
		llm.WithLogging(logger),
		llm.WithObservation(recorder.ProviderObserver()),
	)

	var requestor ports.CodeRequestor
	if requestor, err = llm.NewRequestor(client); err != nil {
		return nil, err
	}
	if cfg.CacheSize > 0 {
		if requestor, err = llm.NewCachedRequestor(requestor, cfg.CacheSize); err != nil {
			return nil, err
		}
	}

	extractor, err := llm.NewExtractor(client)
	if err != nil {
		return nil, err
	}

	store, locker := buildPersistence(cfg)
	store = middleware.Wrap(store, storeMiddleware(cfg, recorder)...)

	renderer, err := graphviz.NewRenderer(
		graphviz.WithTimeout(cfg.RenderTimeout),
		graphviz.WithLocker(locker),
	)
	if err != nil {
		return nil, err
	}

	validator := buildValidator(cfg, logger)

	pipe, err := diagen.New(requestor, validator, renderer,
		diagen.WithLogger(logger),
		diagen.WithHooks(recorder.Hooks()),
		diagen.WithMaxAttempts(cfg.MaxAttempts),
		diagen.WithExtractor(extractor),
		diagen.WithStore(store),
	)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:    cfg,
		Logger:    logger,
		Pipeline:  pipe,
		Store:     store,
		Validator: validator,
		Renderer:  renderer,
		Metrics:   recorder,
		Registry:  registry,
	}, nil
}

// BuildRunStore wires only the run-history store, for commands that browse
// or prune history without touching a provider. The scrub and encryption
// layers match BuildApp so sealed records stay readable.
func BuildRunStore(cfg *config.Config) ports.RunStore {
	store, _ := buildPersistence(cfg)
	mws := []middleware.Middleware{middleware.NewScrubMiddleware()}
	if len(cfg.EncryptKey) > 0 {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey: cfg.EncryptKey,
		}))
	}
	return middleware.Wrap(store, mws...)
}

// providerConfig maps the flat environment config onto the settings the
// chosen provider factory reads.
func providerConfig(cfg *config.Config) llm.ProviderConfig {
	pc := llm.ProviderConfig{Timeout: cfg.LLMTimeout}
	switch cfg.Provider {
	case config.ProviderOllama:
		pc.Model = cfg.OllamaModel
		pc.BaseURL = cfg.OllamaBaseURL
	default:
		pc.Model = cfg.GeminiModel
		pc.APIKey = cfg.GeminiAPIKey
	}
	return pc
}

// modelName returns the model the configured provider will use.
func modelName(cfg *config.Config) string {
	if cfg.Provider == config.ProviderOllama {
		return cfg.OllamaModel
	}
	return cfg.GeminiModel
}

// buildValidator assembles the tiers named by VALIDATOR. Strict puts the
// full DOT grammar first; basic keeps only the conservative recognizer,
// which rejects more than the grammar tier but never passes more.
func buildValidator(cfg *config.Config, logger *slog.Logger) ports.SyntaxValidator {
	basic := graphviz.NewBasicValidator()
	if cfg.Validator == config.ValidatorBasic {
		return graphviz.NewTiered(nil, basic, logger)
	}
	return graphviz.NewTiered(graphviz.NewGrammarValidator(), basic, logger)
}

// buildPersistence picks the run-history and render-lock backends. With
// REDIS_ADDR set both live in Redis so replicas share history and serialize
// renders; otherwise runs land under .diagen/runs with an in-process lock.
func buildPersistence(cfg *config.Config) (ports.RunStore, ports.Locker) {
	if cfg.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		return redis.NewFromClient(client), redis.NewLocker(client, "diagen:render")
	}
	return file.NewStore(""), memory.NewLocker()
}

// storeMiddleware orders the store decorators: metrics outermost so it
// observes records exactly as the pipeline wrote them, then PII scrubbing,
// then sealing when an encryption key is configured.
func storeMiddleware(cfg *config.Config, recorder *metrics.Recorder) []middleware.Middleware {
	mws := []middleware.Middleware{
		recorder.StoreMiddleware(),
		middleware.NewScrubMiddleware(),
	}
	if len(cfg.EncryptKey) > 0 {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey: cfg.EncryptKey,
		}))
	}
	return mws
}
