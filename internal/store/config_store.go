package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/amterp/memmap/internal/model"
)

// Environment variables that override the config file.
const (
	EnvDataDir = "MEMMAP_DATA_DIR"
	EnvNATSURL = "MEMMAP_NATS_URL"
)

// FileConfigStore implements ConfigStore using a TOML file.
type FileConfigStore struct {
	path   string
	getenv func(string) string
}

var _ ConfigStore = (*FileConfigStore)(nil)

// NewConfigStore creates a config store for the file at path.
func NewConfigStore(path string) *FileConfigStore {
	return &FileConfigStore{path: path, getenv: os.Getenv}
}

// Path returns the config file path.
func (s *FileConfigStore) Path() string {
	return s.path
}

// Load reads the config, filling unset values from DefaultAppConfig.
// Returns the defaults if the file doesn't exist. Environment overrides
// are applied last.
func (s *FileConfigStore) Load() (*model.AppConfig, error) {
	cfg := model.DefaultAppConfig()

	data, err := os.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", s.path, err)
		}
	}

	if v := s.getenv(EnvDataDir); v != "" {
		cfg.Server.DataDir = v
	}
	if v := s.getenv(EnvNATSURL); v != "" {
		cfg.Remote.NATSURL = v
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", s.path, err)
	}
	return cfg, nil
}

func validateConfig(cfg *model.AppConfig) error {
	switch cfg.Storage.Contributors {
	case "", model.StorageFile, model.StorageSQLite:
	default:
		return fmt.Errorf("storage.contributors must be %q or %q, got %q",
			model.StorageFile, model.StorageSQLite, cfg.Storage.Contributors)
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}
	return nil
}

// Save writes the config as TOML.
func (s *FileConfigStore) Save(cfg *model.AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists returns true if the config file exists.
func (s *FileConfigStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}
