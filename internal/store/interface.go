package store

import (
	"context"

	"github.com/amterp/memmap/internal/model"
)

// ContributorStore handles contributor persistence.
type ContributorStore interface {
	Save(ctx context.Context, c *model.Contributor) error // Upsert
	Get(ctx context.Context, id string) (*model.Contributor, error)
	List(ctx context.Context) ([]*model.Contributor, error)
	SaveAll(ctx context.Context, cs []*model.Contributor) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore handles memory persistence.
type MemoryStore interface {
	Save(ctx context.Context, m *model.Memory) error // Upsert
	Get(ctx context.Context, id string) (*model.Memory, error)
	List(ctx context.Context) ([]*model.Memory, error)
	SaveAll(ctx context.Context, ms []*model.Memory) error
	Delete(ctx context.Context, id string) error
}

// KV is a byte-oriented key-value store. Get returns a NotFoundError
// when the key is absent.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// UploadStore writes uploaded files.
type UploadStore interface {
	// Write stores data under the upload kind and returns the path
	// relative to the data directory, e.g. "uploads/images/<name>".
	Write(ctx context.Context, kind, name string, data []byte) (string, error)
}

// ConfigStore handles the memmap config file.
type ConfigStore interface {
	Load() (*model.AppConfig, error)
	Save(cfg *model.AppConfig) error
	Exists() bool
	Path() string
}
