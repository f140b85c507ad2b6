package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/kenjpais/diagram-generator/internal/config"
	"github.com/kenjpais/diagram-generator/internal/logging"
	"github.com/kenjpais/diagram-generator/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it,
// so completion messages can distinguish Ctrl+C from SIGTERM.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context cancelled on SIGINT or SIGTERM. It is
// a drop-in for signal.NotifyContext that also records which signal fired.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the command logger. Outside debug mode the
// interactive commands stay silent so stdout belongs to the diagrams.
func createLogger(debug bool, cfg *config.Config) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug, cfg.LogFormat)
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

// printMarkdown renders markdown for the terminal, falling back to the raw
// text when the renderer cannot handle it.
func printMarkdown(render func(string) (string, error), markdown string) {
	out, err := render(markdown)
	if err != nil {
		out = markdown
	}
	fmt.Print(out)
}

// InterruptibleReader wraps a blocking reader (os.Stdin) and reports an
// interruption when the cancel channel closes around a Read.
type InterruptibleReader struct {
	base   io.Reader
	cancel <-chan struct{}
}

func NewInterruptibleReader(base io.Reader, cancel <-chan struct{}) *InterruptibleReader {
	return &InterruptibleReader{base: base, cancel: cancel}
}

func (r *InterruptibleReader) Read(p []byte) (n int, err error) {
	select {
	case <-r.cancel:
		return 0, errors.New("interrupted")
	default:
	}

	n, err = r.base.Read(p)

	select {
	case <-r.cancel:
		return 0, errors.New("interrupted")
	default:
	}
	return n, err
}

func isInterrupted(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, io.EOF) ||
		err.Error() == "interrupted" ||
		(errors.Unwrap(err) != nil && isInterrupted(errors.Unwrap(err)))
}

// handleExecutionError keeps user interruptions off the error path so they
// exit 0.
func handleExecutionError(err error) error {
	if err == nil {
		return nil
	}
	if isInterrupted(err) {
		return nil
	}
	return err
}

// ExitCode maps a command error onto the process exit status: 0 for
// success, 1 when the pipeline itself gave up on a run, 2 for
// configuration and startup problems.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var pipeErr *domain.PipelineError
	var schemaErr *domain.SchemaError
	if errors.As(err, &pipeErr) || errors.As(err, &schemaErr) {
		return 1
	}
	return 2
}
