package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kenjpais/diagram-generator/internal/prompt"
	"github.com/kenjpais/diagram-generator/pkg/domain"
)

// Requestor implements ports.CodeRequestor on top of a Client and the
// embedded prompt templates.
type Requestor struct {
	client Client
	gen    *prompt.Template
	fix    *prompt.Template
}

// NewRequestor loads the generate and correct templates for the client.
func NewRequestor(client Client) (*Requestor, error) {
	gen, err := prompt.Load(prompt.Generate)
	if err != nil {
		return nil, err
	}
	fix, err := prompt.Load(prompt.Correct)
	if err != nil {
		return nil, err
	}
	return &Requestor{client: client, gen: gen, fix: fix}, nil
}

type generateData struct {
	DiagramType string
	IntentJSON  string
}

type correctData struct {
	DiagramType string
	IntentJSON  string
	PriorSource string
	Diagnostic  string
}

// Generate produces diagram source from the intent.
func (r *Requestor) Generate(ctx context.Context, intent domain.DiagramIntent) (string, error) {
	intentJSON, err := marshalIntent(intent)
	if err != nil {
		return "", r.fail("generate", err)
	}
	system, user, err := r.gen.Render(generateData{
		DiagramType: string(intent.Type),
		IntentJSON:  intentJSON,
	})
	if err != nil {
		return "", r.fail("generate", err)
	}
	return r.complete(ctx, "generate", Request{System: system, User: user})
}

// Correct produces corrected source from the prior attempt. The diagnostic
// goes into the prompt verbatim and the full intent rides along so the
// provider cannot drift from the structured data.
func (r *Requestor) Correct(ctx context.Context, intent domain.DiagramIntent, priorSource, diagnostic string) (string, error) {
	intentJSON, err := marshalIntent(intent)
	if err != nil {
		return "", r.fail("correct", err)
	}
	system, user, err := r.fix.Render(correctData{
		DiagramType: string(intent.Type),
		IntentJSON:  intentJSON,
		PriorSource: priorSource,
		Diagnostic:  diagnostic,
	})
	if err != nil {
		return "", r.fail("correct", err)
	}
	return r.complete(ctx, "correct", Request{System: system, User: user})
}

func (r *Requestor) complete(ctx context.Context, op string, req Request) (string, error) {
	raw, err := r.client.Complete(ctx, req)
	if err != nil {
		return "", r.fail(op, err)
	}
	source := ExtractDOT(raw)
	if source == "" {
		return "", r.fail(op, fmt.Errorf("%w: %q", domain.ErrEmptyCompletion, excerpt(raw, 200)))
	}
	return source, nil
}

func (r *Requestor) fail(op string, err error) error {
	return &domain.ProviderError{Provider: r.client.Name(), Op: op, Err: err}
}

func marshalIntent(intent domain.DiagramIntent) (string, error) {
	b, err := json.MarshalIndent(intent, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
