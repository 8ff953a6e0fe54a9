package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/amterp/memmap/internal/color"
	"github.com/amterp/memmap/internal/config"
	"github.com/amterp/memmap/internal/logging"
	"github.com/amterp/memmap/internal/model"
	"github.com/amterp/memmap/internal/store"
)

// TestContributor returns a contributor keyed by email with test defaults.
func TestContributor(email, colorHex string) *model.Contributor {
	return &model.Contributor{
		ID:               email,
		Email:            email,
		Name:             "Test " + email,
		Color:            colorHex,
		RegistrationDate: "2025-10-10T08:00:00.000Z",
	}
}

// TestMemory returns a memory with test defaults.
func TestMemory(id, target, contributorEmail string) *model.Memory {
	return &model.Memory{
		ID:               id,
		Title:            "Memory " + id,
		TargetUserID:     target,
		ContributorEmail: contributorEmail,
		Coordinates:      []float64{103.7764, 1.2966},
		Timestamp:        "2025-10-10T08:00:00.000Z",
		Type:             model.DefaultMemoryType,
	}
}

// TestMembers returns two members, one graduated and one current.
func TestMembers() []model.Member {
	return []model.Member{
		{ID: "user001", Name: "Ada Lovelace", Role: model.RoleGraduated, GraduationDate: "2024-06"},
		{ID: "user002", Name: "Grace Hopper", Role: model.RoleCurrent, IsActive: true},
	}
}

// TestPalette returns a small red/green/blue palette.
func TestPalette(t *testing.T) color.Palette {
	t.Helper()
	p, err := color.NewPalette("#ff0000", "#00ff00", "#0000ff")
	if err != nil {
		t.Fatalf("failed to build palette: %v", err)
	}
	return p
}

// TempDataDir creates a data directory with the full memmap layout.
// It is removed when the test finishes.
func TempDataDir(t *testing.T) *config.Paths {
	t.Helper()

	paths := config.NewPaths(filepath.Join(t.TempDir(), "data"))
	for _, dir := range paths.DataDirs() {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}
	return paths
}

// Env bundles file-backed stores and a color engine over one temp data dir.
type Env struct {
	Paths        *config.Paths
	Contributors *store.FileContributorStore
	Memories     *store.FileMemoryStore
	Uploads      *store.FileUploadStore
	ColorState   *store.KVColorStateStore
	Engine       *color.Engine
}

// NewEnv creates an Env whose engine uses palette and persists to the
// data dir's cache.
func NewEnv(t *testing.T, palette color.Palette) *Env {
	t.Helper()

	paths := TempDataDir(t)
	logger := logging.NewNop()
	colorState := store.NewColorStateStore(store.NewFileKV(paths.CacheDir()))
	engine := color.NewEngine(palette, color.WithStateStore(colorState))
	engine.Restore(context.Background(), nil)

	return &Env{
		Paths:        paths,
		Contributors: store.NewContributorStore(paths, logger),
		Memories:     store.NewMemoryStore(paths, logger),
		Uploads:      store.NewUploadStore(paths),
		ColorState:   colorState,
		Engine:       engine,
	}
}
