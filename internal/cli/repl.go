package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kenjpais/diagram-generator/internal/presentation/tui"
	"github.com/kenjpais/diagram-generator/pkg/domain"
)

// historyLimit caps how many runs /history lists.
const historyLimit = 20

// replCommand is a slash command recognized by the interactive session.
type replCommand int

const (
	cmdRequest replCommand = iota
	cmdHelp
	cmdHistory
	cmdClear
	cmdExit
	cmdUnknown
)

// parseCommand classifies an input line. Anything that does not start with
// "/" is a diagram request.
func parseCommand(line string) replCommand {
	if !strings.HasPrefix(line, "/") {
		return cmdRequest
	}
	switch strings.ToLower(strings.Fields(line)[0]) {
	case "/help", "/h":
		return cmdHelp
	case "/history":
		return cmdHistory
	case "/clear":
		return cmdClear
	case "/exit", "/quit", "/q":
		return cmdExit
	default:
		return cmdUnknown
	}
}

// RunREPL drives the interactive session: each non-command line becomes a
// generation with a timestamped artifact name, and the outcome is rendered
// as markdown in the terminal.
func RunREPL(opts RunOptions) error {
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

	tui.PrintBanner()
	printSystemMessage("Provider '%s' (%s). Type /help for commands.", cfg.Provider, modelName(cfg))

	render := tui.NewRenderer()
	scanner := bufio.NewScanner(NewInterruptibleReader(os.Stdin, sigCtx.Done()))

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch parseCommand(line) {
		case cmdHelp:
			printMarkdown(render, tui.HelpMarkdown)
		case cmdHistory:
			records, err := app.Store.List(sigCtx, historyLimit)
			if err != nil {
				printSystemMessage("Could not read run history: %v", err)
				continue
			}
			printMarkdown(render, tui.HistoryMarkdown(records))
		case cmdClear:
			fmt.Print("\033[H\033[2J")
		case cmdExit:
			printSystemMessage("Bye.")
			return nil
		case cmdUnknown:
			printSystemMessage("Unknown command %q. Type /help for the list.", line)
		default:
			runRequest(sigCtx, app, render, line)
		}
	}

	if err := scanner.Err(); err != nil && !isInterrupted(err) {
		return err
	}
	if sigCtx.Signal() == os.Interrupt {
		fmt.Printf("[CTRL+C]\n")
	}
	printSystemMessage("Session ended.")
	return nil
}

// runRequest feeds one free-text line through the pipeline and prints the
// outcome. Pipeline failures are part of the conversation, not a reason to
// leave the session.
func runRequest(ctx context.Context, app *App, render func(string) (string, error), request string) {
	job := domain.RenderJob{
		Dir:      app.Config.OutputDir,
		BaseName: timestampName(time.Now()),
		Format:   app.Config.RenderFormat,
	}

	printSystemMessage("Working...")
	result, err := app.Pipeline.RunText(ctx, request, job)
	if err != nil {
		if isInterrupted(err) {
			return
		}
		printMarkdown(render, tui.FailureMarkdown(err))
		return
	}
	printMarkdown(render, tui.ResultMarkdown(result))
}
