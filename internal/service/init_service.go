package service

import (
	"fmt"
	"os"

	"github.com/amterp/memmap/internal/config"
	"github.com/amterp/memmap/internal/model"
	"github.com/amterp/memmap/internal/store"
)

// InitResult describes what Initialize did.
type InitResult struct {
	DataDir       string
	ConfigPath    string
	ConfigCreated bool
}

// InitService sets up a data directory.
type InitService struct {
	newConfigStore func(path string) store.ConfigStore
}

// NewInitService creates a new init service.
func NewInitService() *InitService {
	return &InitService{
		newConfigStore: func(path string) store.ConfigStore {
			return store.NewConfigStore(path)
		},
	}
}

// Initialize creates the data directory layout under dataDir and writes a
// default config.toml there unless one already exists. Running it again
// on an initialized directory only fills in missing directories.
func (s *InitService) Initialize(dataDir string) (*InitResult, error) {
	paths := config.NewPaths(dataDir)

	for _, dir := range paths.DataDirs() {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	result := &InitResult{DataDir: paths.DataDir(), ConfigPath: paths.ConfigPath()}
	cs := s.newConfigStore(paths.ConfigPath())
	if cs.Exists() {
		return result, nil
	}

	cfg := model.DefaultAppConfig()
	cfg.Server.DataDir = paths.DataDir()
	if err := cs.Save(cfg); err != nil {
		return nil, fmt.Errorf("failed to write config: %w", err)
	}
	result.ConfigCreated = true
	return result, nil
}
