package config

import (
	"path/filepath"
	"strings"
)

const (
	DefaultDataDir  = "data"
	UsersDir        = "users"
	MemoriesDir     = "memories"
	UploadsDir      = "uploads"
	ImagesDir       = "images"
	TrajectoriesDir = "trajectories"
	CacheDir        = "cache"
	ConfigFileName  = "config.toml"

	// Bulk snapshot files written next to the per-record files.
	ContributorSnapshotPrefix = "contributors-"
	MemorySnapshotPrefix      = "memories-"
)

// Upload kinds, also the directory names under uploads/.
const (
	UploadImage      = ImagesDir
	UploadTrajectory = TrajectoriesDir
)

// Paths provides path resolution for memmap data files.
type Paths struct {
	dataDir string
}

// NewPaths creates a new Paths resolver rooted at dataDir.
// An empty dataDir means DefaultDataDir relative to the working directory.
func NewPaths(dataDir string) *Paths {
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	return &Paths{dataDir: dataDir}
}

// DataDir returns the root data directory.
func (p *Paths) DataDir() string {
	return p.dataDir
}

// ConfigPath returns the default config file location.
func (p *Paths) ConfigPath() string {
	return filepath.Join(p.dataDir, ConfigFileName)
}

// UsersDir returns the directory holding contributor records.
func (p *Paths) UsersDir() string {
	return filepath.Join(p.dataDir, UsersDir)
}

// ContributorPath returns the file path for one contributor record.
func (p *Paths) ContributorPath(id string) string {
	return filepath.Join(p.UsersDir(), SafeFileName(id)+".json")
}

// MemoriesDir returns the directory holding memory records.
func (p *Paths) MemoriesDir() string {
	return filepath.Join(p.dataDir, MemoriesDir)
}

// MemoryPath returns the file path for one memory record.
func (p *Paths) MemoryPath(id string) string {
	return filepath.Join(p.MemoriesDir(), SafeFileName(id)+".json")
}

// UploadsDir returns the root of uploaded files.
func (p *Paths) UploadsDir() string {
	return filepath.Join(p.dataDir, UploadsDir)
}

// UploadDir returns the directory for one upload kind.
func (p *Paths) UploadDir(kind string) string {
	return filepath.Join(p.UploadsDir(), kind)
}

// CacheDir returns the directory backing the local key-value tier.
func (p *Paths) CacheDir() string {
	return filepath.Join(p.dataDir, CacheDir)
}

// SQLitePath resolves the SQLite database path. Relative paths are
// relative to the data directory.
func (p *Paths) SQLitePath(configured string) string {
	if configured == "" {
		configured = "memmap.db"
	}
	if filepath.IsAbs(configured) {
		return configured
	}
	return filepath.Join(p.dataDir, configured)
}

// DataDirs lists every directory `memmap init` creates.
func (p *Paths) DataDirs() []string {
	return []string{
		p.UsersDir(),
		p.MemoriesDir(),
		p.UploadDir(UploadImage),
		p.UploadDir(UploadTrajectory),
		p.CacheDir(),
	}
}

// SafeFileName maps an identifier to a file name: path separators and
// other characters outside [A-Za-z0-9._@+-] become underscores. Emails
// pass through unchanged.
func SafeFileName(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '@' || r == '+' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := b.String()
	if name == "" || name == "." || name == ".." {
		return "_" + name
	}
	return name
}
