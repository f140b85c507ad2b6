package middleware_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenjpais/diagram-generator/pkg/domain"
	"github.com/kenjpais/diagram-generator/pkg/persistence/middleware"
)

func TestScrubMiddleware_RedactsEmails(t *testing.T) {
	underlying := NewMockStore()
	secure := middleware.NewScrubMiddleware()(underlying)
	ctx := context.Background()

	record := domain.RunRecord{
		ID:          "scrubbed",
		Request:     "show how bob.smith+ops@corp.example.com reaches the database",
		Status:      domain.StatusFailed,
		Diagnostics: []string{`syntax error near "admin@internal.example.org"`},
		CreatedAt:   time.Now(),
	}
	require.NoError(t, secure.Save(ctx, record))

	stored, err := underlying.Load(ctx, "scrubbed")
	require.NoError(t, err)
	assert.Equal(t, "show how *** reaches the database", stored.Request)
	assert.Equal(t, []string{`syntax error near "***"`}, stored.Diagnostics)
}

func TestScrubMiddleware_ExtraPatterns(t *testing.T) {
	underlying := NewMockStore()
	secure := middleware.NewScrubMiddleware(`\b\d{3}-\d{2}-\d{4}\b`)(underlying)
	ctx := context.Background()

	require.NoError(t, secure.Save(ctx, domain.RunRecord{
		ID:        "ssn",
		Request:   "access path for record 999-99-9999",
		Status:    domain.StatusSucceeded,
		CreatedAt: time.Now(),
	}))

	stored, err := underlying.Load(ctx, "ssn")
	require.NoError(t, err)
	assert.Equal(t, "access path for record ***", stored.Request)
}

func TestScrubMiddleware_DoesNotMutateCallerRecord(t *testing.T) {
	underlying := NewMockStore()
	secure := middleware.NewScrubMiddleware()(underlying)

	diagnostics := []string{"mail root@example.com bounced"}
	record := domain.RunRecord{
		ID:          "immutably",
		Request:     "notify root@example.com",
		Status:      domain.StatusFailed,
		Diagnostics: diagnostics,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, secure.Save(context.Background(), record))

	assert.Equal(t, "notify root@example.com", record.Request)
	assert.Equal(t, []string{"mail root@example.com bounced"}, diagnostics, "caller's slice must stay intact")
}

func TestScrubMiddleware_PassesReadsThrough(t *testing.T) {
	underlying := NewMockStore()
	secure := middleware.NewScrubMiddleware()(underlying)
	ctx := context.Background()

	require.NoError(t, underlying.Save(ctx, domain.RunRecord{
		ID:        "raw",
		Request:   "stored before scrubbing was enabled: ceo@example.com",
		CreatedAt: time.Now(),
	}))

	got, err := secure.Load(ctx, "raw")
	require.NoError(t, err)
	assert.Contains(t, got.Request, "ceo@example.com", "scrubbing is write-side only")
}
