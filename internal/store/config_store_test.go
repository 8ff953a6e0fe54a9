package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amterp/memmap/internal/model"
)

func newTestConfigStore(t *testing.T, env map[string]string) *FileConfigStore {
	t.Helper()
	s := NewConfigStore(filepath.Join(t.TempDir(), "config.toml"))
	s.getenv = func(k string) string { return env[k] }
	return s
}

func TestFileConfigStore_MissingFileGivesDefaults(t *testing.T) {
	s := newTestConfigStore(t, nil)

	assert.False(t, s.Exists())
	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultAppConfig(), cfg)
}

func TestFileConfigStore_PartialFileKeepsDefaults(t *testing.T) {
	s := newTestConfigStore(t, nil)
	require.NoError(t, os.WriteFile(s.Path(), []byte(`
[server]
port = 8080

[palette]
colors = ["#ff0000", "#00ff00"]

[[members]]
id = "user001"
name = "Ada Lovelace"
role = "graduated_member"
`), 0644))

	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data", cfg.Server.DataDir)
	assert.True(t, cfg.Server.Watch)
	assert.Equal(t, []string{"#ff0000", "#00ff00"}, cfg.Palette.Colors)
	require.Len(t, cfg.Members, 1)
	assert.Equal(t, "Ada Lovelace", cfg.Members[0].Name)
	assert.Equal(t, model.RoleGraduated, cfg.Members[0].Role)
}

func TestFileConfigStore_EnvOverrides(t *testing.T) {
	s := newTestConfigStore(t, map[string]string{
		EnvDataDir: "/srv/memmap",
		EnvNATSURL: "nats://127.0.0.1:4222",
	})

	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/memmap", cfg.Server.DataDir)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.Remote.NATSURL)
}

func TestFileConfigStore_Invalid(t *testing.T) {
	s := newTestConfigStore(t, nil)

	require.NoError(t, os.WriteFile(s.Path(), []byte("[server\nport="), 0644))
	_, err := s.Load()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(s.Path(), []byte("[storage]\ncontributors = \"mongo\"\n"), 0644))
	_, err = s.Load()
	assert.Error(t, err)
}

func TestFileConfigStore_SaveRoundTrip(t *testing.T) {
	s := newTestConfigStore(t, nil)

	cfg := model.DefaultAppConfig()
	cfg.Storage.Contributors = model.StorageSQLite
	cfg.Members = []model.Member{{ID: "user002", Name: "Grace", Role: model.RoleCurrent, IsActive: true}}
	require.NoError(t, s.Save(cfg))
	assert.True(t, s.Exists())

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
