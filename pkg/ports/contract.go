package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenjpais/diagram-generator/pkg/domain"
)

// RunStoreContract runs a suite of tests verifying that a RunStore
// implementation adheres to the interface contract. Adapter test files call
// this against their own construction.
func RunStoreContract(t *testing.T, store RunStore) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	record := func(id string, age time.Duration) domain.RunRecord {
		return domain.RunRecord{
			ID:           id,
			Request:      "two services behind a load balancer",
			DiagramType:  domain.DiagramSystem,
			Status:       domain.StatusSucceeded,
			Attempts:     1,
			SourcePath:   "output/" + id + ".dot",
			ArtifactPath: "output/" + id + ".svg",
			CreatedAt:    base.Add(-age),
		}
	}

	t.Run("SaveAndLoad", func(t *testing.T) {
		want := record("contract-save", 0)
		want.Diagnostics = []string{"unbalanced braces: 1 unclosed opening brace(s)"}
		require.NoError(t, store.Save(ctx, want))

		got, err := store.Load(ctx, want.ID)
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Status, got.Status)
		assert.Equal(t, want.Attempts, got.Attempts)
		assert.Equal(t, want.Diagnostics, got.Diagnostics)
		assert.Equal(t, want.ArtifactPath, got.ArtifactPath)
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "CreatedAt should round-trip")
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		first := record("contract-replace", 0)
		require.NoError(t, store.Save(ctx, first))

		second := first
		second.Status = domain.StatusFailed
		second.Reason = domain.ReasonRenderFailure
		require.NoError(t, store.Save(ctx, second))

		got, err := store.Load(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFailed, got.Status)
		assert.Equal(t, domain.ReasonRenderFailure, got.Reason)
	})

	t.Run("LoadNonExistent", func(t *testing.T) {
		_, err := store.Load(ctx, "contract-missing")
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		ids := []string{"contract-list-old", "contract-list-mid", "contract-list-new"}
		require.NoError(t, store.Save(ctx, record(ids[0], 3*time.Hour)))
		require.NoError(t, store.Save(ctx, record(ids[1], 2*time.Hour)))
		require.NoError(t, store.Save(ctx, record(ids[2], time.Hour)))
		defer func() {
			for _, id := range ids {
				_ = store.Delete(ctx, id)
			}
		}()

		all, err := store.List(ctx, 0)
		require.NoError(t, err)

		pos := map[string]int{}
		for i, r := range all {
			pos[r.ID] = i
		}
		require.Contains(t, pos, ids[0])
		require.Contains(t, pos, ids[2])
		assert.Less(t, pos[ids[2]], pos[ids[0]], "newer runs should come first")

		limited, err := store.List(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("Delete", func(t *testing.T) {
		r := record("contract-delete", 0)
		require.NoError(t, store.Save(ctx, r))
		require.NoError(t, store.Delete(ctx, r.ID))

		_, err := store.Load(ctx, r.ID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)

		assert.NoError(t, store.Delete(ctx, r.ID), "deleting an unknown id is not an error")
	})
}
