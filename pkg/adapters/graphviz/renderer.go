package graphviz

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/kenjpais/diagram-generator/pkg/domain"
	"github.com/kenjpais/diagram-generator/pkg/ports"
)

// defaultRenderTimeout bounds one dot invocation. Rendering is the only
// pipeline step with a mandatory wall-clock budget.
const defaultRenderTimeout = 30 * time.Second

// Renderer shells out to the graphviz dot binary. It writes the accepted
// source next to the rendered artifact so both can be inspected and
// re-rendered by hand.
type Renderer struct {
	dotPath string
	timeout time.Duration
	locker  ports.Locker
}

// RendererOption configures the renderer.
type RendererOption func(*Renderer)

// WithTimeout replaces the default render budget.
func WithTimeout(d time.Duration) RendererOption {
	return func(r *Renderer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithDotPath points the renderer at a specific dot binary instead of
// resolving "dot" from PATH.
func WithDotPath(path string) RendererOption {
	return func(r *Renderer) {
		if path != "" {
			r.dotPath = path
		}
	}
}

// WithLocker guards each output base name for the duration of a render, for
// callers that cannot guarantee collision-free names on their own.
func WithLocker(l ports.Locker) RendererOption {
	return func(r *Renderer) {
		r.locker = l
	}
}

// NewRenderer resolves the dot binary and returns a ready renderer. A missing
// binary fails construction with domain.ErrDotNotFound so the problem
// surfaces at startup rather than mid-run.
func NewRenderer(opts ...RendererOption) (*Renderer, error) {
	r := &Renderer{
		dotPath: "dot",
		timeout: defaultRenderTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}

	resolved, err := exec.LookPath(r.dotPath)
	if err != nil {
		return nil, fmt.Errorf("%w (install graphviz: https://graphviz.org/download/)", domain.ErrDotNotFound)
	}
	r.dotPath = resolved
	return r, nil
}

// Render writes <dir>/<base>.dot and runs dot to produce <dir>/<base>.<fmt>.
// Failures are never retried.
func (r *Renderer) Render(ctx context.Context, source string, job domain.RenderJob) (domain.Artifact, error) {
	if job.BaseName == "" {
		return domain.Artifact{}, &domain.RenderError{Stage: "resolve", Err: errors.New("empty base name")}
	}
	if filepath.Base(job.BaseName) != job.BaseName {
		return domain.Artifact{}, &domain.RenderError{
			Stage: "resolve",
			Err:   fmt.Errorf("base name %q must not contain path separators", job.BaseName),
		}
	}
	if !job.Format.Known() {
		return domain.Artifact{}, &domain.RenderError{
			Stage: "resolve",
			Err:   fmt.Errorf("unsupported render format %q", job.Format),
		}
	}

	if r.locker != nil {
		unlock, err := r.locker.Lock(ctx, "render:"+job.BaseName, 2*r.timeout)
		if err != nil {
			return domain.Artifact{}, &domain.RenderError{Stage: "resolve", Err: fmt.Errorf("acquire render lock: %w", err)}
		}
		defer func() { _ = unlock(context.WithoutCancel(ctx)) }()
	}

	dir := job.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.Artifact{}, &domain.RenderError{Stage: "write", Err: fmt.Errorf("create output dir: %w", err)}
	}

	srcPath := filepath.Join(dir, job.BaseName+".dot")
	if err := os.WriteFile(srcPath, []byte(source), 0o644); err != nil {
		return domain.Artifact{}, &domain.RenderError{Stage: "write", Err: fmt.Errorf("write source: %w", err)}
	}
	outPath := filepath.Join(dir, job.BaseName+"."+string(job.Format))

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.dotPath, "-T"+string(job.Format), srcPath, "-o", outPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return domain.Artifact{}, &domain.RenderError{
				Stage: "dot",
				Err:   fmt.Errorf("timed out after %s", r.timeout),
			}
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%v: %s", err, msg)
		}
		return domain.Artifact{}, &domain.RenderError{Stage: "dot", Err: err}
	}

	return domain.Artifact{SourcePath: srcPath, ArtifactPath: outPath}, nil
}
