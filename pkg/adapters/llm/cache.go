package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kenjpais/diagram-generator/pkg/domain"
	"github.com/kenjpais/diagram-generator/pkg/ports"
)

// CachedRequestor wraps a CodeRequestor with an LRU over Generate results,
// keyed by a fingerprint of the intent document. Identical intents are
// common in interactive use (re-running a request to get fresh output
// files) and cost seconds each against a real provider.
//
// Correct is never cached: its inputs include a prior attempt that by
// definition just failed.
type CachedRequestor struct {
	inner ports.CodeRequestor
	cache *lru.Cache[string, string]
}

// NewCachedRequestor builds the decorator with a fixed cache size.
func NewCachedRequestor(inner ports.CodeRequestor, size int) (*CachedRequestor, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &CachedRequestor{inner: inner, cache: cache}, nil
}

func (c *CachedRequestor) Generate(ctx context.Context, intent domain.DiagramIntent) (string, error) {
	key, err := Fingerprint(intent)
	if err != nil {
		// Unfingerprintable intents just skip the cache.
		return c.inner.Generate(ctx, intent)
	}
	if source, ok := c.cache.Get(key); ok {
		return source, nil
	}
	source, err := c.inner.Generate(ctx, intent)
	if err == nil {
		c.cache.Add(key, source)
	}
	return source, err
}

func (c *CachedRequestor) Correct(ctx context.Context, intent domain.DiagramIntent, priorSource, diagnostic string) (string, error) {
	return c.inner.Correct(ctx, intent, priorSource, diagnostic)
}

// Fingerprint returns a stable hash of the intent document. Marshaling a
// struct emits fields in declaration order, so equal intents hash equal.
func Fingerprint(intent domain.DiagramIntent) (string, error) {
	b, err := json.Marshal(intent)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
