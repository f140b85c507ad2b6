package domain

import (
	"context"
	"time"
)

// RunStatus defines the current stage of a pipeline run.
type RunStatus string

const (
	StatusExtracted  RunStatus = "extracted"  // Initial: intent in hand, nothing generated yet
	StatusGenerating RunStatus = "generating" // Waiting on the first generation
	StatusValidating RunStatus = "validating" // Syntax check in progress
	StatusCorrecting RunStatus = "correcting" // Waiting on a correction
	StatusRendering  RunStatus = "rendering"  // Handing off to the renderer
	StatusSucceeded  RunStatus = "succeeded"  // Sink state: artifacts on disk
	StatusFailed     RunStatus = "failed"     // Sink state: typed failure returned
)

// Terminal reports whether the status is a sink state.
func (s RunStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// RunRecord is the persisted summary of a terminal pipeline run. The ID is
// the output base name, which callers must keep unique across concurrent runs.
type RunRecord struct {
	ID           string        `json:"id"`
	Request      string        `json:"request,omitempty"`
	DiagramType  DiagramType   `json:"diagram_type,omitempty"`
	Status       RunStatus     `json:"status"`
	Reason       FailureReason `json:"reason,omitempty"`
	Attempts     int           `json:"attempts"`
	Diagnostics  []string      `json:"diagnostics,omitempty"`
	SourcePath   string        `json:"source_path,omitempty"`
	ArtifactPath string        `json:"artifact_path,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`

	// Sealed carries the encrypted payload when a persistence decorator
	// seals the record. In a sealed envelope only ID, Status, and CreatedAt
	// stay readable.
	Sealed string `json:"sealed,omitempty"`
}

// Hooks defines optional callbacks for pipeline observability.
// A nil hook field is skipped; callbacks must be safe for concurrent use
// when pipeline runs are concurrent.
type Hooks struct {
	// OnTransition fires on every state change, including into sink states.
	OnTransition func(ctx context.Context, from, to RunStatus)

	// OnAttempt fires after each attempt is validated.
	OnAttempt func(ctx context.Context, attempt GenerationAttempt)
}
