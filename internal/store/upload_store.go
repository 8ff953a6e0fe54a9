package store

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/amterp/memmap/internal/config"
)

// FileUploadStore writes uploads under the data directory's uploads/.
type FileUploadStore struct {
	paths *config.Paths
}

var _ UploadStore = (*FileUploadStore)(nil)

// NewUploadStore creates a new upload store.
func NewUploadStore(paths *config.Paths) *FileUploadStore {
	return &FileUploadStore{paths: paths}
}

// Write stores data as uploads/<kind>/<name>.
func (s *FileUploadStore) Write(_ context.Context, kind, name string, data []byte) (string, error) {
	if kind != config.UploadImage && kind != config.UploadTrajectory {
		return "", fmt.Errorf("unknown upload kind %q", kind)
	}
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid upload name %q", name)
	}

	dest := filepath.Join(s.paths.UploadDir(kind), name)
	if err := writeFileAtomic(dest, data); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	return path.Join(config.UploadsDir, kind, name), nil
}
