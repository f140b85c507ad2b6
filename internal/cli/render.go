package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kenjpais/diagram-generator/pkg/adapters/graphviz"
	"github.com/kenjpais/diagram-generator/pkg/adapters/memory"
	"github.com/kenjpais/diagram-generator/pkg/domain"
)

// RunRender renders an existing DOT file once, without a provider. The dot
// executable is the syntax arbiter here: whatever it accepts becomes an
// artifact.
func RunRender(opts RunOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	renderer, err := graphviz.NewRenderer(
		graphviz.WithTimeout(cfg.RenderTimeout),
		graphviz.WithLocker(memory.NewLocker()),
	)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(opts.SourcePath)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}

	job := domain.RenderJob{
		Dir:      cfg.OutputDir,
		BaseName: opts.BaseName,
		Format:   cfg.RenderFormat,
	}
	if job.BaseName == "" {
		job.BaseName = strings.TrimSuffix(filepath.Base(opts.SourcePath), filepath.Ext(opts.SourcePath))
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	artifact, err := renderer.Render(sigCtx, string(data), job)
	if err != nil {
		if handleExecutionError(err) == nil {
			printSystemMessage("Interrupted.")
			return nil
		}
		return err
	}
	printSystemMessage("Rendered '%s'.", artifact.ArtifactPath)
	return nil
}

// RunValidate checks a DOT file, or an intent document when IntentPath is
// set, and reports the first problem found. The bool is the verdict; err is
// reserved for problems reading the input or the configuration.
func RunValidate(opts RunOptions) (bool, string, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return false, "", err
	}

	if opts.IntentPath != "" {
		intent, err := readIntent(opts.IntentPath)
		if err != nil {
			return false, "", err
		}
		if err := intent.Validate(); err != nil {
			return false, err.Error(), nil
		}
		return true, "", nil
	}

	data, err := os.ReadFile(opts.SourcePath)
	if err != nil {
		return false, "", fmt.Errorf("reading source: %w", err)
	}

	validator := buildValidator(cfg, createLogger(opts.Debug, cfg))
	verdict := validator.Validate(context.Background(), string(data))
	return verdict.Valid, verdict.Diagnostic, nil
}
