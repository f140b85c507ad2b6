package graphviz

import (
	"context"
	"log/slog"

	"github.com/kenjpais/diagram-generator/pkg/domain"
	"github.com/kenjpais/diagram-generator/pkg/ports"
)

// Tiered routes validation to the precise tier when one is configured and to
// the fallback otherwise. The fallback is never consulted to overrule a
// precise rejection: a verdict from the answering tier is final.
type Tiered struct {
	precise  ports.SyntaxValidator
	fallback ports.SyntaxValidator
	logger   *slog.Logger
}

// NewTiered builds the routing validator. precise may be nil, in which case
// every call goes to fallback.
func NewTiered(precise, fallback ports.SyntaxValidator, logger *slog.Logger) *Tiered {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tiered{precise: precise, fallback: fallback, logger: logger}
}

func (t *Tiered) Validate(ctx context.Context, source string) domain.Verdict {
	if t.precise != nil {
		t.logger.DebugContext(ctx, "validating syntax", "tier", "grammar")
		return t.precise.Validate(ctx, source)
	}
	t.logger.DebugContext(ctx, "validating syntax", "tier", "basic")
	return t.fallback.Validate(ctx, source)
}
