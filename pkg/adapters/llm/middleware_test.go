package llm_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenjpais/diagram-generator/pkg/adapters/llm"
)

func TestWithLoggingPassesThrough(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	inner := &fakeClient{steps: []scripted{{out: "digraph G { }"}}}
	client := llm.WithLogging(logger)(inner)

	out, err := client.Complete(context.Background(), llm.Request{User: "draw"})
	require.NoError(t, err)
	assert.Equal(t, "digraph G { }", out)
	assert.Equal(t, "fake:test", client.Name())
	assert.Contains(t, buf.String(), "completion ok")
}

func TestWithLoggingRecordsFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	inner := &fakeClient{steps: []scripted{{err: errors.New("socket closed")}}}
	client := llm.WithLogging(logger)(inner)

	_, err := client.Complete(context.Background(), llm.Request{User: "draw"})
	require.Error(t, err)
	assert.Contains(t, buf.String(), "completion failed")
	assert.Contains(t, buf.String(), "socket closed")
}

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) llm.Middleware {
		return func(next llm.Client) llm.Client {
			return tagged{name: name, next: next, order: &order}
		}
	}

	inner := &fakeClient{steps: []scripted{{out: "ok"}}}
	client := llm.Chain(inner, tag("outer"), tag("inner"))

	_, err := client.Complete(context.Background(), llm.Request{User: "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order, "first middleware listed wraps outermost")
}

type tagged struct {
	name  string
	next  llm.Client
	order *[]string
}

func (t tagged) Complete(ctx context.Context, req llm.Request) (string, error) {
	*t.order = append(*t.order, t.name)
	return t.next.Complete(ctx, req)
}

func (t tagged) Name() string { return t.next.Name() }

func TestWithObservationSeesOutcome(t *testing.T) {
	var provider string
	var sawErr bool
	observe := func(name string, _ time.Duration, err error) {
		provider = name
		sawErr = err != nil
	}

	inner := &fakeClient{steps: []scripted{{out: "ok"}, {err: errors.New("nope")}}}
	client := llm.Chain(inner, llm.WithObservation(observe))

	_, err := client.Complete(context.Background(), llm.Request{User: "x"})
	require.NoError(t, err)
	assert.Equal(t, "fake:test", provider)
	assert.False(t, sawErr)

	_, err = client.Complete(context.Background(), llm.Request{User: "x"})
	require.Error(t, err)
	assert.True(t, sawErr)
}
