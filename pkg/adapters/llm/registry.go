package llm

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ProviderConfig carries the settings a provider factory may need. A factory
// ignores fields that do not apply to it.
type ProviderConfig struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Factory builds a Client from provider settings.
type Factory func(ctx context.Context, cfg ProviderConfig) (Client, error)

// Registry manages the closed set of named providers configuration can
// choose from. Tests register fakes the same way.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with the built-in providers: "gemini"
// and "ollama".
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("gemini", func(ctx context.Context, cfg ProviderConfig) (Client, error) {
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	})
	r.Register("ollama", func(_ context.Context, cfg ProviderConfig) (Client, error) {
		return NewOllamaClient(cfg.BaseURL, cfg.Model, cfg.Timeout)
	})
	return r
}

// Register adds a provider factory. An existing name is overwritten.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// New builds a Client for the named provider.
func (r *Registry) New(ctx context.Context, name string, cfg ProviderConfig) (Client, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown provider %q (known: %v)", name, r.Providers())
	}
	return factory(ctx, cfg)
}

// Providers lists the registered provider names, sorted.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
