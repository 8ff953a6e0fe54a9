package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/amterp/memmap/internal/config"
	memerr "github.com/amterp/memmap/internal/errors"
	"github.com/amterp/memmap/internal/logging"
	"github.com/amterp/memmap/internal/model"
	"github.com/amterp/memmap/internal/util"
)

// FileMemoryStore implements MemoryStore using one JSON file per memory
// under memories/.
type FileMemoryStore struct {
	paths  *config.Paths
	logger logging.Logger
	now    func() time.Time
}

var _ MemoryStore = (*FileMemoryStore)(nil)

// NewMemoryStore creates a new file-backed memory store.
func NewMemoryStore(paths *config.Paths, logger logging.Logger) *FileMemoryStore {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FileMemoryStore{paths: paths, logger: logger, now: time.Now}
}

// Save writes a memory, replacing any existing one with the same ID.
func (s *FileMemoryStore) Save(_ context.Context, m *model.Memory) error {
	if m.ID == "" {
		return memerr.InvalidField("id", "memory ID is required")
	}
	if err := writeJSON(s.paths.MemoryPath(m.ID), m); err != nil {
		return fmt.Errorf("failed to save memory %s: %w", m.ID, err)
	}
	return nil
}

// Get reads a memory by ID.
func (s *FileMemoryStore) Get(_ context.Context, id string) (*model.Memory, error) {
	var m model.Memory
	if err := readJSON(s.paths.MemoryPath(id), &m); err != nil {
		if os.IsNotExist(err) {
			return nil, memerr.MemoryNotFound(id)
		}
		return nil, fmt.Errorf("failed to read memory %s: %w", id, err)
	}
	return &m, nil
}

// List returns all memories, oldest first by timestamp then ID.
func (s *FileMemoryStore) List(_ context.Context) ([]*model.Memory, error) {
	ms, err := listJSONDir[model.Memory](s.paths.MemoriesDir(), config.MemorySnapshotPrefix, s.logger)
	if err != nil {
		return nil, err
	}
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].Timestamp != ms[j].Timestamp {
			return ms[i].Timestamp < ms[j].Timestamp
		}
		return ms[i].ID < ms[j].ID
	})
	return ms, nil
}

// SaveAll writes a timestamped snapshot keyed by ID, then each memory.
func (s *FileMemoryStore) SaveAll(ctx context.Context, ms []*model.Memory) error {
	snapshot := make(map[string]*model.Memory, len(ms))
	for _, m := range ms {
		if m.ID == "" {
			return memerr.InvalidField("id", "memory ID is required")
		}
		snapshot[m.ID] = m
	}

	name := config.MemorySnapshotPrefix + util.SnapshotStamp(s.now()) + ".json"
	if err := writeJSON(filepath.Join(s.paths.MemoriesDir(), name), snapshot); err != nil {
		return fmt.Errorf("failed to write memory snapshot: %w", err)
	}

	for _, m := range ms {
		if err := s.Save(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a memory file.
func (s *FileMemoryStore) Delete(_ context.Context, id string) error {
	if err := os.Remove(s.paths.MemoryPath(id)); err != nil {
		if os.IsNotExist(err) {
			return memerr.MemoryNotFound(id)
		}
		return fmt.Errorf("failed to delete memory %s: %w", id, err)
	}
	return nil
}
