// Package pipeline contains the core state machine that drives one diagram
// request from validated intent to a rendered artifact or a typed failure.
package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/kenjpais/diagram-generator/pkg/domain"
	"github.com/kenjpais/diagram-generator/pkg/ports"
)

// DefaultMaxAttempts is the correction budget applied when no option
// overrides it. A run makes at most DefaultMaxAttempts+1 validation passes:
// the initial generation plus one per correction.
const DefaultMaxAttempts = 3

// Orchestrator owns the retry loop and attempt bookkeeping for single runs.
// It holds no state across runs, so one instance may serve concurrent runs
// as long as each run gets its own output base name.
type Orchestrator struct {
	requestor   ports.CodeRequestor
	validator   ports.SyntaxValidator
	renderer    ports.Renderer
	extractor   ports.IntentExtractor
	store       ports.RunStore
	hooks       domain.Hooks
	logger      *slog.Logger
	maxAttempts int
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithMaxAttempts sets the correction budget. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(o *Orchestrator) {
		if n >= 1 {
			o.maxAttempts = n
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithExtractor enables RunText by providing the natural-language extractor.
func WithExtractor(extractor ports.IntentExtractor) Option {
	return func(o *Orchestrator) {
		o.extractor = extractor
	}
}

// WithStore records terminal runs to the given store. Writes are
// best-effort: a store failure is logged and never fails the run.
func WithStore(store ports.RunStore) Option {
	return func(o *Orchestrator) {
		o.store = store
	}
}

// WithHooks registers observability callbacks.
func WithHooks(hooks domain.Hooks) Option {
	return func(o *Orchestrator) {
		o.hooks = hooks
	}
}

// New builds an orchestrator around the three mandatory collaborators.
func New(requestor ports.CodeRequestor, validator ports.SyntaxValidator, renderer ports.Renderer, opts ...Option) (*Orchestrator, error) {
	if requestor == nil {
		return nil, errors.New("pipeline: code requestor is required")
	}
	if validator == nil {
		return nil, errors.New("pipeline: syntax validator is required")
	}
	if renderer == nil {
		return nil, errors.New("pipeline: renderer is required")
	}

	o := &Orchestrator{
		requestor:   requestor,
		validator:   validator,
		renderer:    renderer,
		logger:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// MaxAttempts returns the configured correction budget.
func (o *Orchestrator) MaxAttempts() int { return o.maxAttempts }

// RunText extracts a structured intent from a free-form request and runs the
// pipeline on it. Extraction failures surface as the extractor's own typed
// error; no run record is written because no run ever started.
func (o *Orchestrator) RunText(ctx context.Context, request string, job domain.RenderJob) (*domain.Result, error) {
	if o.extractor == nil {
		return nil, errors.New("pipeline: no intent extractor configured")
	}
	intent, err := o.extractor.Extract(ctx, request)
	if err != nil {
		return nil, err
	}
	return o.run(ctx, request, intent, job)
}

// Run drives one pipeline run. On success the returned Result names both
// output files; on failure the error is a *domain.SchemaError (intent never
// entered the machine) or a *domain.PipelineError carrying the diagnostic
// trail and last source text.
func (o *Orchestrator) Run(ctx context.Context, intent domain.DiagramIntent, job domain.RenderJob) (*domain.Result, error) {
	return o.run(ctx, "", intent, job)
}

func (o *Orchestrator) run(ctx context.Context, request string, intent domain.DiagramIntent, job domain.RenderJob) (*domain.Result, error) {
	// Schema violations surface before the state machine starts: nothing
	// was generated, so there is nothing to retry or record.
	if err := intent.Validate(); err != nil {
		return nil, err
	}

	status := domain.StatusExtracted
	transition := func(to domain.RunStatus) {
		o.logger.DebugContext(ctx, "pipeline transition",
			"run", job.BaseName, "from", string(status), "to", string(to))
		if o.hooks.OnTransition != nil {
			o.hooks.OnTransition(ctx, status, to)
		}
		status = to
	}

	var diagnostics []string
	fail := func(reason domain.FailureReason, lastSource string, attempts int, cause error) (*domain.Result, error) {
		transition(domain.StatusFailed)
		o.record(ctx, domain.RunRecord{
			ID:          job.BaseName,
			Request:     request,
			DiagramType: intent.Type,
			Status:      domain.StatusFailed,
			Reason:      reason,
			Attempts:    attempts,
			Diagnostics: diagnostics,
			CreatedAt:   time.Now().UTC(),
		})
		return nil, &domain.PipelineError{
			Reason:      reason,
			Attempts:    attempts,
			Diagnostics: diagnostics,
			LastSource:  lastSource,
			Err:         cause,
		}
	}

	transition(domain.StatusGenerating)
	source, err := o.requestor.Generate(ctx, intent)
	if err != nil {
		// The provider itself is unusable; a correction round cannot fix
		// that, so this path is never retried.
		return fail(domain.ReasonGenerationUnavailable, "", 0, err)
	}

	for attempt := 1; ; attempt++ {
		transition(domain.StatusValidating)
		verdict := o.validator.Validate(ctx, source)

		record := domain.GenerationAttempt{
			Number:     attempt,
			Source:     source,
			Valid:      verdict.Valid,
			Diagnostic: verdict.Diagnostic,
		}
		if o.hooks.OnAttempt != nil {
			o.hooks.OnAttempt(ctx, record)
		}

		if verdict.Valid {
			o.logger.DebugContext(ctx, "syntax accepted", "run", job.BaseName, "attempt", attempt)
			break
		}

		diagnostics = append(diagnostics, verdict.Diagnostic)
		o.logger.DebugContext(ctx, "syntax rejected",
			"run", job.BaseName, "attempt", attempt, "diagnostic", verdict.Diagnostic)

		// attempt counts validations: the initial generation plus one per
		// correction. Attempt maxAttempts+1 failing means the budget is gone.
		if attempt == o.maxAttempts+1 {
			return fail(domain.ReasonMaxRetriesExceeded, source, attempt, nil)
		}

		transition(domain.StatusCorrecting)
		corrected, err := o.requestor.Correct(ctx, intent, source, verdict.Diagnostic)
		if err != nil {
			return fail(domain.ReasonGenerationUnavailable, source, attempt, err)
		}
		source = corrected
	}

	attempts := len(diagnostics) + 1

	transition(domain.StatusRendering)
	artifact, err := o.renderer.Render(ctx, source, job)
	if err != nil {
		return fail(domain.ReasonRenderFailure, source, attempts, err)
	}

	transition(domain.StatusSucceeded)
	o.record(ctx, domain.RunRecord{
		ID:           job.BaseName,
		Request:      request,
		DiagramType:  intent.Type,
		Status:       domain.StatusSucceeded,
		Attempts:     attempts,
		Diagnostics:  diagnostics,
		SourcePath:   artifact.SourcePath,
		ArtifactPath: artifact.ArtifactPath,
		CreatedAt:    time.Now().UTC(),
	})

	return &domain.Result{
		Source:       source,
		SourcePath:   artifact.SourcePath,
		ArtifactPath: artifact.ArtifactPath,
		Attempts:     attempts,
		Diagnostics:  diagnostics,
	}, nil
}

func (o *Orchestrator) record(ctx context.Context, rec domain.RunRecord) {
	if o.store == nil {
		return
	}
	if err := o.store.Save(ctx, rec); err != nil {
		o.logger.WarnContext(ctx, "failed to record run", "run", rec.ID, "error", err)
	}
}
