package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kenjpais/diagram-generator/internal/prompt"
	"github.com/kenjpais/diagram-generator/pkg/domain"
)

// Extractor implements ports.IntentExtractor: free-form text in, validated
// intent out. A provider answer that is not a schema-valid intent document
// is an extraction failure (the user should rephrase, not debug JSON), so
// every failure here surfaces as a *domain.ProviderError.
type Extractor struct {
	client Client
	tpl    *prompt.Template
}

// NewExtractor loads the extract template for the client.
func NewExtractor(client Client) (*Extractor, error) {
	tpl, err := prompt.Load(prompt.Extract)
	if err != nil {
		return nil, err
	}
	return &Extractor{client: client, tpl: tpl}, nil
}

type extractData struct {
	Request string
}

func (e *Extractor) Extract(ctx context.Context, request string) (domain.DiagramIntent, error) {
	var intent domain.DiagramIntent

	if strings.TrimSpace(request) == "" {
		return intent, e.fail(fmt.Errorf("%w: blank request", domain.ErrEmptyCompletion))
	}

	system, user, err := e.tpl.Render(extractData{Request: request})
	if err != nil {
		return intent, e.fail(err)
	}

	raw, err := e.client.Complete(ctx, Request{System: system, User: user, ForceJSON: true})
	if err != nil {
		return intent, e.fail(err)
	}

	doc := ExtractJSON(raw)
	if doc == "" {
		return intent, e.fail(fmt.Errorf("%w: %q", domain.ErrInvalidJSON, excerpt(raw, 200)))
	}
	if err := json.Unmarshal([]byte(doc), &intent); err != nil {
		return intent, e.fail(fmt.Errorf("%w: %v (document %q)", domain.ErrInvalidJSON, err, excerpt(doc, 200)))
	}
	if err := intent.Validate(); err != nil {
		return domain.DiagramIntent{}, e.fail(fmt.Errorf("extracted intent rejected: %w", err))
	}
	return intent, nil
}

func (e *Extractor) fail(err error) error {
	return &domain.ProviderError{Provider: e.client.Name(), Op: "extract", Err: err}
}
