package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/amterp/memmap/internal/config"
	memerr "github.com/amterp/memmap/internal/errors"
)

// MemoryKV is an in-process KV.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ KV = (*MemoryKV)(nil)

// NewMemoryKV creates an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, memerr.KeyNotFound(key)
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// FileKV stores each key as a file in one directory.
type FileKV struct {
	dir string
	mu  sync.Mutex
}

var _ KV = (*FileKV)(nil)

// NewFileKV creates a KV rooted at dir. The directory is created on the
// first write.
func NewFileKV(dir string) *FileKV {
	return &FileKV{dir: dir}
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.dir, config.SafeFileName(key)+".json")
}

func (f *FileKV) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, memerr.KeyNotFound(key)
		}
		return nil, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return data, nil
}

func (f *FileKV) Put(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := writeFileAtomic(f.path(key), value); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (f *FileKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}
