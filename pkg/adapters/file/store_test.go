package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenjpais/diagram-generator/pkg/adapters/file"
	"github.com/kenjpais/diagram-generator/pkg/domain"
	"github.com/kenjpais/diagram-generator/pkg/ports"
)

// Ensure Store implements RunStore
var _ ports.RunStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ports.RunStoreContract(t, store)
}

func TestFileStore_RejectsPathyIDs(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ctx := context.Background()

	err := store.Save(ctx, domain.RunRecord{ID: "../outside", CreatedAt: time.Now()})
	require.Error(t, err)

	_, err = store.Load(ctx, "nested/run")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrRunNotFound)
}

func TestFileStore_ListSkipsGarbage(t *testing.T) {
	dir := t.TempDir()
	store := file.NewStore(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.RunRecord{
		ID:        "real",
		Status:    domain.StatusSucceeded,
		CreatedAt: time.Now(),
	}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("garbage"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))

	records, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "real", records[0].ID)
}

func TestFileStore_WritesReadableJSON(t *testing.T) {
	dir := t.TempDir()
	store := file.NewStore(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.RunRecord{
		ID:          "diagram_20250601_120000",
		Status:      domain.StatusFailed,
		Reason:      domain.ReasonMaxRetriesExceeded,
		Attempts:    4,
		Diagnostics: []string{"a", "b"},
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}))

	raw, err := os.ReadFile(filepath.Join(dir, "diagram_20250601_120000.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"status": "failed"`)
	assert.Contains(t, string(raw), `"reason": "max_retries_exceeded"`)
}

func TestFileStore_EmptyDirListsNothing(t *testing.T) {
	store := file.NewStore(filepath.Join(t.TempDir(), "never-created"))
	records, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}
