package cli

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kenjpais/diagram-generator/pkg/adapters/graphviz"
	"github.com/kenjpais/diagram-generator/pkg/adapters/memory"
	"github.com/kenjpais/diagram-generator/pkg/domain"
	"github.com/kenjpais/diagram-generator/pkg/ports"
)

// watchInterval is how often the watched file is polled. Polling survives
// editors that replace the file on save instead of writing in place.
const watchInterval = 500 * time.Millisecond

// RunWatch re-renders a DOT file whenever it changes on disk, a live
// preview for hand-written diagrams. No provider is involved: the loop is
// validate, render, wait.
func RunWatch(opts RunOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := createLogger(opts.Debug, cfg)

	validator := buildValidator(cfg, logger)
	renderer, err := graphviz.NewRenderer(
		graphviz.WithTimeout(cfg.RenderTimeout),
		graphviz.WithLocker(memory.NewLocker()),
	)
	if err != nil {
		return err
	}

	job := domain.RenderJob{
		Dir:      cfg.OutputDir,
		BaseName: strings.TrimSuffix(filepath.Base(opts.SourcePath), filepath.Ext(opts.SourcePath)),
		Format:   cfg.RenderFormat,
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	printSystemMessage("Watching '%s'. Press Ctrl+C to stop.", opts.SourcePath)

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	var lastSum [sha256.Size]byte
	for {
		sum, err := fileChecksum(opts.SourcePath)
		switch {
		case err != nil:
			printSystemMessage("Cannot read '%s': %v", opts.SourcePath, err)
			// Keep polling; the file may be mid-save or about to appear.
		case sum != lastSum:
			lastSum = sum
			renderWatched(sigCtx, validator, renderer, opts.SourcePath, job)
		}

		select {
		case <-sigCtx.Done():
			fmt.Printf("\n")
			printSystemMessage("Watcher stopped.")
			return nil
		case <-ticker.C:
		}
	}
}

// renderWatched validates and renders the current file contents, reporting
// either the artifact path or the first diagnostic.
func renderWatched(ctx context.Context, validator ports.SyntaxValidator, renderer ports.Renderer, path string, job domain.RenderJob) {
	data, err := os.ReadFile(path)
	if err != nil {
		printSystemMessage("Cannot read '%s': %v", path, err)
		return
	}
	source := string(data)

	if verdict := validator.Validate(ctx, source); !verdict.Valid {
		printSystemMessage("Invalid: %s", verdict.Diagnostic)
		return
	}

	artifact, err := renderer.Render(ctx, source, job)
	if err != nil {
		if isInterrupted(err) {
			return
		}
		printSystemMessage("Render failed: %v", err)
		return
	}
	printSystemMessage("Rendered '%s'.", artifact.ArtifactPath)
}

func fileChecksum(path string) ([sha256.Size]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return [sha256.Size]byte{}, err
	}
	return sha256.Sum256(data), nil
}
