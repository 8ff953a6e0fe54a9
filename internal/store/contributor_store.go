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

// FileContributorStore implements ContributorStore using one JSON file per
// contributor under users/.
type FileContributorStore struct {
	paths  *config.Paths
	logger logging.Logger
	now    func() time.Time
}

var _ ContributorStore = (*FileContributorStore)(nil)

// NewContributorStore creates a new file-backed contributor store.
func NewContributorStore(paths *config.Paths, logger logging.Logger) *FileContributorStore {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FileContributorStore{paths: paths, logger: logger, now: time.Now}
}

// Save writes a contributor record, replacing any existing one.
func (s *FileContributorStore) Save(_ context.Context, c *model.Contributor) error {
	if c.ID == "" {
		return memerr.InvalidField("id", "contributor ID is required")
	}
	if err := writeJSON(s.paths.ContributorPath(c.ID), c); err != nil {
		return fmt.Errorf("failed to save contributor %s: %w", c.ID, err)
	}
	return nil
}

// Get reads a contributor by ID.
func (s *FileContributorStore) Get(_ context.Context, id string) (*model.Contributor, error) {
	var c model.Contributor
	if err := readJSON(s.paths.ContributorPath(id), &c); err != nil {
		if os.IsNotExist(err) {
			return nil, memerr.ContributorNotFound(id)
		}
		return nil, fmt.Errorf("failed to read contributor %s: %w", id, err)
	}
	return &c, nil
}

// List returns all contributors sorted by ID.
// Snapshot files and malformed records are skipped.
func (s *FileContributorStore) List(_ context.Context) ([]*model.Contributor, error) {
	cs, err := listJSONDir[model.Contributor](s.paths.UsersDir(), config.ContributorSnapshotPrefix, s.logger)
	if err != nil {
		return nil, err
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i].ID < cs[j].ID })
	return cs, nil
}

// SaveAll writes a timestamped snapshot of the given records keyed by ID,
// then each record to its own file.
func (s *FileContributorStore) SaveAll(ctx context.Context, cs []*model.Contributor) error {
	snapshot := make(map[string]*model.Contributor, len(cs))
	for _, c := range cs {
		if c.ID == "" {
			return memerr.InvalidField("id", "contributor ID is required")
		}
		snapshot[c.ID] = c
	}

	name := config.ContributorSnapshotPrefix + util.SnapshotStamp(s.now()) + ".json"
	if err := writeJSON(filepath.Join(s.paths.UsersDir(), name), snapshot); err != nil {
		return fmt.Errorf("failed to write contributor snapshot: %w", err)
	}

	for _, c := range cs {
		if err := s.Save(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a contributor file.
func (s *FileContributorStore) Delete(_ context.Context, id string) error {
	if err := os.Remove(s.paths.ContributorPath(id)); err != nil {
		if os.IsNotExist(err) {
			return memerr.ContributorNotFound(id)
		}
		return fmt.Errorf("failed to delete contributor %s: %w", id, err)
	}
	return nil
}
