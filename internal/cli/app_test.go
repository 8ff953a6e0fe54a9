package cli

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	memerr "github.com/amterp/memmap/internal/errors"
	"github.com/amterp/memmap/internal/service"
	"github.com/amterp/memmap/internal/store"
)

func initDataDir(t *testing.T) string {
	t.Helper()
	t.Setenv(store.EnvDataDir, "")
	t.Setenv(store.EnvNATSURL, "")

	res, err := service.NewInitService().Initialize(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return res.ConfigPath
}

func TestNewApp_RestoresColorsAcrossRuns(t *testing.T) {
	ctx := context.Background()
	configPath := initDataDir(t)

	app, err := NewApp(ctx, configPath, false)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}

	first, err := app.Contributors.Register(ctx, service.RegisterInput{Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	second, err := app.Contributors.Register(ctx, service.RegisterInput{Email: "grace@example.com"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if first.Color == second.Color {
		t.Fatalf("Expected distinct colors, both got %s", first.Color)
	}
	app.Close()

	reopened, err := NewApp(ctx, configPath, false)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer reopened.Close()

	if got, ok := reopened.Engine.Lookup("ada@example.com"); !ok || got != first.Color {
		t.Errorf("Expected ada to keep %s, got %q (assigned=%v)", first.Color, got, ok)
	}
	if got := reopened.Engine.Snapshot().Cursor; got != 2 {
		t.Errorf("Expected next color index 2, got %d", got)
	}

	third, err := reopened.Contributors.Register(ctx, service.RegisterInput{Email: "linus@example.com"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if third.Color == first.Color || third.Color == second.Color {
		t.Errorf("Expected a new distinct color, got %s", third.Color)
	}
}

func TestNewApp_NotInitialized(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(store.EnvDataDir, filepath.Join(dir, "missing"))
	t.Setenv(store.EnvNATSURL, "")

	_, err := NewApp(context.Background(), filepath.Join(dir, "config.toml"), false)
	var notInit *memerr.NotInitializedError
	if !errors.As(err, &notInit) {
		t.Fatalf("Expected NotInitializedError, got %v", err)
	}
}

func TestResolveConfigPath(t *testing.T) {
	if got := resolveConfigPath("custom.toml"); got != "custom.toml" {
		t.Errorf("Expected explicit path, got %q", got)
	}

	t.Setenv(store.EnvDataDir, filepath.Join("srv", "memmap"))
	want := filepath.Join("srv", "memmap", "config.toml")
	if got := resolveConfigPath(""); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
