package ports

import (
	"context"

	"github.com/kenjpais/diagram-generator/pkg/domain"
)

// Renderer turns validated diagram source into a rendered artifact and
// persists both the source text and the artifact under the caller-supplied
// base name. Rendering is the only pipeline step with a mandatory wall-clock
// budget; exceeding it is reported as a *domain.RenderError and never
// retried. Callers must not hand the same RenderJob base name to two
// concurrent runs.
type Renderer interface {
	Render(ctx context.Context, source string, job domain.RenderJob) (domain.Artifact, error)
}
