package diagen

import (
	"context"
	"io"
	"log/slog"

	"github.com/kenjpais/diagram-generator/internal/pipeline"
	"github.com/kenjpais/diagram-generator/pkg/domain"
	"github.com/kenjpais/diagram-generator/pkg/ports"
)

// Version is the release version. Builds override it with
// -ldflags "-X github.com/kenjpais/diagram-generator.Version=v1.2.3".
var Version = "dev"

// DefaultMaxAttempts is the correction budget applied when no option
// overrides it.
const DefaultMaxAttempts = pipeline.DefaultMaxAttempts

// Pipeline is the high-level entry point for the library.
// It wraps the internal orchestrator and provides a simplified API for
// consumers: hand it a provider, a validator and a renderer, then run
// structured intents (Run) or free-form requests (RunText) through it.
type Pipeline struct {
	orch        *pipeline.Orchestrator
	logger      *slog.Logger
	hooks       domain.Hooks
	extractor   ports.IntentExtractor
	store       ports.RunStore
	maxAttempts int
}

// Option defines a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithHooks registers observability callbacks.
func WithHooks(hooks domain.Hooks) Option {
	return func(p *Pipeline) {
		p.hooks = hooks
	}
}

// WithLogger sets a custom structured logger. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMaxAttempts sets the correction budget (default 3). A run makes at
// most n+1 validation passes. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(p *Pipeline) {
		if n >= 1 {
			p.maxAttempts = n
		}
	}
}

// WithExtractor enables RunText by providing the natural-language
// understanding collaborator.
func WithExtractor(extractor ports.IntentExtractor) Option {
	return func(p *Pipeline) {
		p.extractor = extractor
	}
}

// WithStore records terminal runs to the given store. Writes are
// best-effort: a store failure is logged, never surfaced as a run failure.
func WithStore(store ports.RunStore) Option {
	return func(p *Pipeline) {
		p.store = store
	}
}

// New initializes a Pipeline around the three mandatory collaborators.
func New(requestor ports.CodeRequestor, validator ports.SyntaxValidator, renderer ports.Renderer, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(p)
	}

	// Ensure the logger is initialized so we never pass nil downstream.
	if p.logger == nil {
		p.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(p.logger),
		pipeline.WithHooks(p.hooks),
		pipeline.WithMaxAttempts(p.maxAttempts),
	}
	if p.extractor != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithExtractor(p.extractor))
	}
	if p.store != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithStore(p.store))
	}

	orch, err := pipeline.New(requestor, validator, renderer, pipelineOpts...)
	if err != nil {
		return nil, err
	}
	p.orch = orch

	return p, nil
}

// Run drives one pipeline run from a validated intent to a rendered
// artifact. On failure the error is a *domain.SchemaError (the intent never
// entered the machine) or a *domain.PipelineError carrying the diagnostic
// trail and the last source text.
func (p *Pipeline) Run(ctx context.Context, intent domain.DiagramIntent, job domain.RenderJob) (*domain.Result, error) {
	return p.orch.Run(ctx, intent, job)
}

// RunText extracts a structured intent from a free-form request, then runs
// the pipeline on it. Requires WithExtractor.
func (p *Pipeline) RunText(ctx context.Context, request string, job domain.RenderJob) (*domain.Result, error) {
	return p.orch.RunText(ctx, request, job)
}

// MaxAttempts returns the configured correction budget.
func (p *Pipeline) MaxAttempts() int {
	return p.orch.MaxAttempts()
}

// Store returns the run store the pipeline records to, or nil when runs are
// not persisted.
func (p *Pipeline) Store() ports.RunStore {
	return p.store
}
