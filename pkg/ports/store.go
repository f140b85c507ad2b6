package ports

import (
	"context"

	"github.com/kenjpais/diagram-generator/pkg/domain"
)

// RunStore persists terminal run summaries. The pipeline writes records
// best-effort: a store failure is logged, never surfaced as a run failure.
type RunStore interface {
	// Save persists the record under record.ID, replacing any previous
	// record with the same ID.
	Save(ctx context.Context, record domain.RunRecord) error

	// Load retrieves one record by ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, id string) (domain.RunRecord, error)

	// List returns records ordered newest-first. A non-positive limit
	// means no limit.
	List(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Delete removes the record for an ID. Deleting an unknown ID is not
	// an error.
	Delete(ctx context.Context, id string) error
}
