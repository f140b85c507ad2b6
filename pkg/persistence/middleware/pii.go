package middleware

import (
	"context"
	"regexp"

	"github.com/kenjpais/diagram-generator/pkg/domain"
	"github.com/kenjpais/diagram-generator/pkg/ports"
)

// emailPattern matches local@domain tokens closely enough for redaction.
var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

type scrubMiddleware struct {
	next     ports.RunStore
	patterns []*regexp.Regexp
}

// NewScrubMiddleware creates a middleware that redacts email-like tokens from
// the request text and diagnostics before a record is persisted. Extra
// patterns extend the built-in email rule. Scrubbing happens on write, so the
// raw text never reaches the underlying store.
func NewScrubMiddleware(extraPatterns ...string) Middleware {
	patterns := []*regexp.Regexp{emailPattern}
	for _, p := range extraPatterns {
		patterns = append(patterns, regexp.MustCompile(p))
	}
	return func(next ports.RunStore) ports.RunStore {
		return &scrubMiddleware{next: next, patterns: patterns}
	}
}

func (m *scrubMiddleware) Save(ctx context.Context, record domain.RunRecord) error {
	record.Request = m.scrub(record.Request)
	if len(record.Diagnostics) > 0 {
		scrubbed := make([]string, len(record.Diagnostics))
		for i, d := range record.Diagnostics {
			scrubbed[i] = m.scrub(d)
		}
		record.Diagnostics = scrubbed
	}
	return m.next.Save(ctx, record)
}

func (m *scrubMiddleware) Load(ctx context.Context, id string) (domain.RunRecord, error) {
	return m.next.Load(ctx, id)
}

func (m *scrubMiddleware) List(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	return m.next.List(ctx, limit)
}

func (m *scrubMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *scrubMiddleware) scrub(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, "***")
	}
	return s
}
