package llm

import (
	"context"
	"log/slog"
	"time"
)

// Middleware wraps a Client with a cross-cutting concern.
type Middleware func(Client) Client

// Chain applies middlewares so the first one listed ends up outermost.
func Chain(c Client, mws ...Middleware) Client {
	for i := len(mws) - 1; i >= 0; i-- {
		c = mws[i](c)
	}
	return c
}

// WithLogging records one structured line per completion: provider,
// duration, prompt and completion sizes, and the error if any.
func WithLogging(logger *slog.Logger) Middleware {
	return func(next Client) Client {
		return &loggingClient{next: next, log: logger}
	}
}

// WithObservation invokes observe after every completion with the provider
// name, elapsed wall time and outcome. Metrics bridges hang off this without
// pulling their dependency into the adapter.
func WithObservation(observe func(provider string, elapsed time.Duration, err error)) Middleware {
	return func(next Client) Client {
		return &observedClient{next: next, observe: observe}
	}
}

type observedClient struct {
	next    Client
	observe func(provider string, elapsed time.Duration, err error)
}

func (o *observedClient) Name() string { return o.next.Name() }

func (o *observedClient) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := o.next.Complete(ctx, req)
	o.observe(o.next.Name(), time.Since(start), err)
	return out, err
}

type loggingClient struct {
	next Client
	log  *slog.Logger
}

func (l *loggingClient) Name() string { return l.next.Name() }

func (l *loggingClient) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := l.next.Complete(ctx, req)

	attrs := []any{
		slog.String("provider", l.next.Name()),
		slog.Int("prompt_bytes", len(req.System)+len(req.User)),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		l.log.ErrorContext(ctx, "completion failed", append(attrs, slog.Any("error", err))...)
		return out, err
	}
	l.log.DebugContext(ctx, "completion ok", append(attrs, slog.Int("completion_bytes", len(out)))...)
	return out, nil
}
