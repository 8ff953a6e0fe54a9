package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amterp/memmap/internal/model"
	"github.com/amterp/memmap/internal/store"
)

func TestInitService_Initialize(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	svc := NewInitService()

	res, err := svc.Initialize(dataDir)
	require.NoError(t, err)
	assert.True(t, res.ConfigCreated)
	assert.Equal(t, filepath.Join(dataDir, "config.toml"), res.ConfigPath)

	for _, sub := range []string{"users", "memories", "uploads/images", "uploads/trajectories", "cache"} {
		info, err := os.Stat(filepath.Join(dataDir, filepath.FromSlash(sub)))
		require.NoError(t, err, sub)
		assert.True(t, info.IsDir(), sub)
	}

	cfg, err := store.NewConfigStore(res.ConfigPath).Load()
	require.NoError(t, err)
	assert.Equal(t, dataDir, cfg.Server.DataDir)
	assert.Equal(t, model.StorageFile, cfg.Storage.Contributors)
}

func TestInitService_KeepsExistingConfig(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.MkdirAll(dataDir, 0755))
	configPath := filepath.Join(dataDir, "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[server]\nport = 8080\n"), 0644))

	res, err := NewInitService().Initialize(dataDir)
	require.NoError(t, err)
	assert.False(t, res.ConfigCreated)

	cfg, err := store.NewConfigStore(configPath).Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)

	_, err = os.Stat(filepath.Join(dataDir, "users"))
	assert.NoError(t, err)
}
