package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kenjpais/diagram-generator/pkg/domain"
)

// Store implements ports.RunStore on the local filesystem, one JSON document
// per run. It is the default history backend for the CLI, so `diagen runs`
// works across invocations without extra infrastructure.
type Store struct {
	dir string
}

// NewStore creates a file store rooted at dir.
// If dir is empty, it defaults to ".diagen/runs".
func NewStore(dir string) *Store {
	if dir == "" {
		dir = filepath.Join(".diagen", "runs")
	}
	return &Store{dir: dir}
}

// Save writes the record to <dir>/<id>.json via a temp file and rename, so a
// crash mid-write never leaves a truncated document behind.
func (s *Store) Save(_ context.Context, record domain.RunRecord) error {
	if err := checkID(record.ID); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("ensure run directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run record: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".run-*.json")
	if err != nil {
		return fmt.Errorf("create temp run file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write run record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close run file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(record.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("commit run record: %w", err)
	}
	return nil
}

// Load reads one record by ID.
func (s *Store) Load(_ context.Context, id string) (domain.RunRecord, error) {
	if err := checkID(id); err != nil {
		return domain.RunRecord{}, err
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.RunRecord{}, domain.ErrRunNotFound
		}
		return domain.RunRecord{}, fmt.Errorf("read run record: %w", err)
	}

	var record domain.RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.RunRecord{}, fmt.Errorf("decode run record %q: %w", id, err)
	}
	return record, nil
}

// List reads every stored record and returns them newest-first. Files that do
// not parse as run records are skipped.
func (s *Store) List(_ context.Context, limit int) ([]domain.RunRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.RunRecord{}, nil
		}
		return nil, fmt.Errorf("list runs: %w", err)
	}

	records := make([]domain.RunRecord, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		var record domain.RunRecord
		if err := json.Unmarshal(data, &record); err != nil || record.ID == "" {
			continue
		}
		records = append(records, record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Delete removes the record file. Unknown IDs are a no-op.
func (s *Store) Delete(_ context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete run record: %w", err)
	}
	return nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// checkID rejects IDs that would escape the store directory.
func checkID(id string) error {
	if id == "" {
		return fmt.Errorf("run id cannot be empty")
	}
	if filepath.Base(id) != id {
		return fmt.Errorf("run id %q must not contain path separators", id)
	}
	return nil
}
