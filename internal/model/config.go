package model

import "time"

// Contributor storage backends.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// AppConfig is the memmap configuration, stored as config.toml.
type AppConfig struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Remote  RemoteConfig  `toml:"remote"`
	Palette PaletteConfig `toml:"palette"`
	Log     LogConfig     `toml:"log"`
	Members []Member      `toml:"members,omitempty"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	DataDir string `toml:"data_dir"`
	Watch   bool   `toml:"watch"`
}

// StorageConfig selects the contributor store backend.
type StorageConfig struct {
	Contributors string `toml:"contributors"`          // "file" or "sqlite"
	SQLitePath   string `toml:"sqlite_path,omitempty"` // relative to data_dir
}

// RemoteConfig configures the NATS key-value tier. Empty NATSURL disables it.
type RemoteConfig struct {
	NATSURL string `toml:"nats_url,omitempty"`
	Bucket  string `toml:"bucket"`
	Timeout string `toml:"timeout"`
}

// PaletteConfig overrides the color palette.
type PaletteConfig struct {
	Colors       []string `toml:"colors,omitempty"`
	DefaultColor string   `toml:"default_color,omitempty"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Host:    "localhost",
			Port:    3001,
			DataDir: "data",
			Watch:   true,
		},
		Storage: StorageConfig{
			Contributors: StorageFile,
			SQLitePath:   "memmap.db",
		},
		Remote: RemoteConfig{
			Bucket:  "memmap",
			Timeout: "2s",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// RemoteTimeout parses Remote.Timeout, falling back to two seconds.
func (c *AppConfig) RemoteTimeout() time.Duration {
	d, err := time.ParseDuration(c.Remote.Timeout)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

// FindMember returns the member with the given ID, or nil.
func (c *AppConfig) FindMember(id string) *Member {
	for i := range c.Members {
		if c.Members[i].ID == id {
			return &c.Members[i]
		}
	}
	return nil
}
