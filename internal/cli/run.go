package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kenjpais/diagram-generator/internal/config"
	"github.com/kenjpais/diagram-generator/internal/presentation/tui"
	"github.com/kenjpais/diagram-generator/pkg/domain"
)

// RunOptions carries the command-line surface shared by the generation
// commands.
type RunOptions struct {
	Request    string   // natural-language request text
	IntentPath string   // JSON intent document path, "-" for stdin
	SourcePath string   // DOT file observed in watch mode
	BaseName   string   // artifact base name, timestamped when empty
	OutputDir  string   // overrides OUTPUT_DIR when set
	Format     string   // overrides RENDER_FORMAT when set
	EnvFiles   []string // explicit env files for configuration
	Debug      bool
	JSONLogs   bool
}

// Execute runs one generation end to end and prints the outcome. Errors come
// back already classified for ExitCode: pipeline failures are printed as a
// structured summary first, interruptions are swallowed.
func Execute(opts RunOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := createLogger(opts.Debug, cfg)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	app, err := BuildApp(sigCtx, cfg, logger)
	if err != nil {
		return err
	}

	job := domain.RenderJob{
		Dir:      cfg.OutputDir,
		BaseName: opts.BaseName,
		Format:   cfg.RenderFormat,
	}
	if job.BaseName == "" {
		job.BaseName = timestampName(time.Now())
	}

	result, err := runOnce(sigCtx, app, opts, job)

	render := tui.NewRenderer()
	if err != nil {
		if handleExecutionError(err) == nil {
			printSystemMessage("Interrupted.")
			return nil
		}
		printMarkdown(render, tui.FailureMarkdown(err))
		return err
	}
	printMarkdown(render, tui.ResultMarkdown(result))
	return nil
}

// runOnce dispatches between the intent-document and free-text paths.
func runOnce(ctx context.Context, app *App, opts RunOptions, job domain.RenderJob) (*domain.Result, error) {
	if opts.IntentPath != "" {
		intent, err := readIntent(opts.IntentPath)
		if err != nil {
			return nil, err
		}
		return app.Pipeline.Run(ctx, intent, job)
	}
	if strings.TrimSpace(opts.Request) == "" {
		return nil, errors.New("nothing to do: pass a request or --intent")
	}
	return app.Pipeline.RunText(ctx, opts.Request, job)
}

// readIntent loads a DiagramIntent document from a file, or stdin for "-".
func readIntent(path string) (domain.DiagramIntent, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return domain.DiagramIntent{}, fmt.Errorf("reading intent document: %w", err)
	}

	var intent domain.DiagramIntent
	if err := json.Unmarshal(data, &intent); err != nil {
		return domain.DiagramIntent{}, fmt.Errorf("parsing intent document: %w", err)
	}
	return intent, nil
}

// loadConfig resolves configuration for a command: the environment first,
// then flag overrides on top.
func loadConfig(opts RunOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.EnvFiles...)
	if err != nil {
		return nil, err
	}
	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}
	if opts.Format != "" {
		format := domain.Format(strings.ToLower(opts.Format))
		if !format.Known() {
			return nil, fmt.Errorf("unknown format %q (want svg, png or pdf)", opts.Format)
		}
		cfg.RenderFormat = format
	}
	if opts.JSONLogs {
		cfg.LogFormat = "json"
	}
	return cfg, nil
}

// timestampName builds the default artifact base name for a request made
// at t, unique enough for interactive use without clobbering earlier runs.
func timestampName(t time.Time) string {
	return "diagram_" + t.Format("20060102_150405")
}
