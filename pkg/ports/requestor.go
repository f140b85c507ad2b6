package ports

import (
	"context"

	"github.com/kenjpais/diagram-generator/pkg/domain"
)

// CodeRequestor abstracts the generative text provider that produces diagram
// source. Both operations are synchronous and may take seconds; the
// implementation enforces its own timeout and reports failures as
// *domain.ProviderError rather than hanging the caller.
type CodeRequestor interface {
	// Generate produces diagram source from a validated intent.
	Generate(ctx context.Context, intent domain.DiagramIntent) (string, error)

	// Correct produces a corrected source given the prior attempt and the
	// validator's diagnostic, passed verbatim. The original intent is
	// re-attached on every call so the provider cannot drift from the
	// structured data; honoring it is the provider's contract, not
	// verified here.
	Correct(ctx context.Context, intent domain.DiagramIntent, priorSource, diagnostic string) (string, error)
}

// IntentExtractor abstracts the natural-language understanding collaborator
// that turns a free-form request into a structured intent. It sits in front
// of the pipeline, never inside it: the pipeline only ever sees intents that
// already exist.
type IntentExtractor interface {
	// Extract derives a validated DiagramIntent from free-form text.
	// Returns *domain.ProviderError when the provider cannot answer or
	// answers with something that is not an intent document.
	Extract(ctx context.Context, request string) (domain.DiagramIntent, error)
}
