package ports

import (
	"context"

	"github.com/kenjpais/diagram-generator/pkg/domain"
)

// SyntaxValidator judges one diagram source text. Implementations must be
// deterministic: identical input yields an identical verdict.
//
// Two tiers are acceptable behind this interface: a precise grammar-aware
// checker and a conservative fallback. The caller is agnostic to which tier
// answered. A fallback may reject source the precise tier accepts (a false
// rejection just feeds the correction loop), but it must never pass source
// the precise tier would reject: that source would skip correction and fail
// terminally at the renderer. Availability concerns (for example a missing
// toolchain) are resolved inside the implementation; the port always
// produces a verdict.
type SyntaxValidator interface {
	Validate(ctx context.Context, source string) domain.Verdict
}
