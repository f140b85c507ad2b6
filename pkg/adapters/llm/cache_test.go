package llm_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenjpais/diagram-generator/pkg/adapters/llm"
	"github.com/kenjpais/diagram-generator/pkg/domain"
)

// countingRequestor counts calls and answers deterministically.
type countingRequestor struct {
	generates int
	corrects  int
}

func (c *countingRequestor) Generate(_ context.Context, intent domain.DiagramIntent) (string, error) {
	c.generates++
	return fmt.Sprintf("digraph G { /* %s #%d */ }", intent.Type, c.generates), nil
}

func (c *countingRequestor) Correct(context.Context, domain.DiagramIntent, string, string) (string, error) {
	c.corrects++
	return "digraph G { }", nil
}

func TestCachedRequestorReusesGenerate(t *testing.T) {
	inner := &countingRequestor{}
	cached, err := llm.NewCachedRequestor(inner, 8)
	require.NoError(t, err)

	ctx := context.Background()
	intent := testIntent()

	first, err := cached.Generate(ctx, intent)
	require.NoError(t, err)
	second, err := cached.Generate(ctx, intent)
	require.NoError(t, err)

	assert.Equal(t, first, second, "cache hit must return the cached source")
	assert.Equal(t, 1, inner.generates, "identical intents hit the provider once")

	other := intent
	other.Type = domain.DiagramCloud
	_, err = cached.Generate(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.generates, "a different intent misses")
}

func TestCachedRequestorNeverCachesCorrect(t *testing.T) {
	inner := &countingRequestor{}
	cached, err := llm.NewCachedRequestor(inner, 8)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := cached.Correct(ctx, testIntent(), "digraph {", "missing closing brace")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, inner.corrects)
}

func TestFingerprintStability(t *testing.T) {
	a, err := llm.Fingerprint(testIntent())
	require.NoError(t, err)
	b, err := llm.Fingerprint(testIntent())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	changed := testIntent()
	changed.Components[0].Label = "renamed"
	c, err := llm.Fingerprint(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
