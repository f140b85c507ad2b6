package llm

import (
	"context"
)

// Request is one chat exchange handed to a provider. The system part sets
// the role, the user part carries the payload.
type Request struct {
	System string
	User   string

	// ForceJSON asks the provider for a JSON-typed response when the
	// provider supports declaring that. Providers that cannot honor it
	// still must answer; the caller's parser has the final word.
	ForceJSON bool
}

// Client is the transport seam under the requestor and the extractor. A
// Client focuses on the API call itself; logging and caching are applied
// via Middleware.
type Client interface {
	// Complete sends one request and returns the raw completion text.
	// Implementations enforce their own timeout and must not hang the
	// caller beyond it.
	Complete(ctx context.Context, req Request) (string, error)

	// Name identifies provider and model, e.g. "gemini:gemini-2.5-pro".
	Name() string
}
