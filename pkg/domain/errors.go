package domain

import (
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when a run ID cannot be found in the store.
var ErrRunNotFound = errors.New("run not found")

// ErrEmptyCompletion is returned when the provider answered but produced no
// usable text once response hygiene stripped fences and chatter.
var ErrEmptyCompletion = errors.New("empty completion")

// ErrInvalidJSON is returned when an extraction response cannot be decoded
// as the intent JSON document.
var ErrInvalidJSON = errors.New("completion is not valid intent JSON")

// ErrDotNotFound is returned when the graphviz "dot" executable is missing.
var ErrDotNotFound = errors.New(`graphviz "dot" executable not found in PATH`)

// FailureReason classifies a terminal pipeline failure.
type FailureReason string

const (
	// ReasonGenerationUnavailable: the provider itself failed (unreachable,
	// timeout, unparseable output). Never retried.
	ReasonGenerationUnavailable FailureReason = "generation_unavailable"

	// ReasonMaxRetriesExceeded: the correction loop exhausted its attempt
	// budget; the error carries the full diagnostic history.
	ReasonMaxRetriesExceeded FailureReason = "max_retries_exceeded"

	// ReasonRenderFailure: the rendering toolchain is missing, crashed, or
	// exceeded its wall-clock budget. Never retried.
	ReasonRenderFailure FailureReason = "render_failure"
)

// SchemaError reports the first intent invariant violation found.
type SchemaError struct {
	Field  string // Intent field group ("groups", "components", ...)
	Reason string // Human-readable reason for failure
	Value  any    // The offending value, when one exists
}

func (e *SchemaError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("intent %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("intent %s: %s (%v)", e.Field, e.Reason, e.Value)
}

// ProviderError reports that the generative provider could not produce
// usable output. It marks an availability problem, not a content problem,
// and is never retried by the pipeline.
type ProviderError struct {
	Provider string // e.g. "gemini", "ollama"
	Op       string // "generate", "correct" or "extract"
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// RenderError reports a rendering toolchain failure. Terminal: the source
// was already validated, so retrying generation would not help.
type RenderError struct {
	Stage string // "resolve", "write", "dot"
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// PipelineError is the structured terminal failure of a pipeline run. It
// carries the last source text and the verbatim diagnostic trail so the
// caller can remediate by hand.
type PipelineError struct {
	Reason      FailureReason
	Attempts    int // Validation passes made; a render failure counts one more than its rejections
	Diagnostics []string
	LastSource  string
	Err         error
}

func (e *PipelineError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("pipeline failed (%s): %v", e.Reason, e.Err)
	case len(e.Diagnostics) > 0:
		return fmt.Sprintf("pipeline failed (%s) after %d rejected attempt(s), last diagnostic: %s",
			e.Reason, len(e.Diagnostics), e.Diagnostics[len(e.Diagnostics)-1])
	default:
		return fmt.Sprintf("pipeline failed (%s)", e.Reason)
	}
}

func (e *PipelineError) Unwrap() error { return e.Err }
