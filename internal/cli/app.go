package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/amterp/memmap/internal/color"
	"github.com/amterp/memmap/internal/config"
	memerr "github.com/amterp/memmap/internal/errors"
	"github.com/amterp/memmap/internal/logging"
	"github.com/amterp/memmap/internal/metrics"
	"github.com/amterp/memmap/internal/model"
	"github.com/amterp/memmap/internal/prompt"
	"github.com/amterp/memmap/internal/service"
	"github.com/amterp/memmap/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App holds all the dependencies for the CLI.
type App struct {
	Config           *model.AppConfig
	ConfigPath       string
	Paths            *config.Paths
	Logger           logging.Logger
	Metrics          metrics.Collector
	Registry         *prometheus.Registry
	ContributorStore store.ContributorStore
	MemoryStore      store.MemoryStore
	Engine           *color.Engine
	Prompter         prompt.Prompter
	Contributors     *service.ContributorService
	Memories         *service.MemoryService
	Members          *service.MemberService
	Uploads          *service.UploadService
	ColorDoctor      *service.ColorDoctorService

	closers []func() error
}

// resolveConfigPath returns the explicit --config value, or config.toml
// inside the data directory named by MEMMAP_DATA_DIR (default "data").
func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return config.NewPaths(os.Getenv(store.EnvDataDir)).ConfigPath()
}

// NewApp loads the config and wires up stores, the color engine and the
// services. The engine is restored from the color cache, with colors on
// contributor records taking precedence.
// If interactive is false, uses NoopPrompter that fails on prompts.
func NewApp(ctx context.Context, configFlag string, interactive bool) (*App, error) {
	configPath := resolveConfigPath(configFlag)
	cfg, err := store.NewConfigStore(configPath).Load()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log config: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := &App{
		Config:     cfg,
		ConfigPath: configPath,
		Paths:      config.NewPaths(cfg.Server.DataDir),
		Logger:     logger,
		Metrics:    metrics.NewPrometheus(registry, ""),
		Registry:   registry,
	}

	if err := app.RequireInitialized(); err != nil {
		return nil, err
	}

	if err := app.openStores(ctx); err != nil {
		app.Close()
		return nil, err
	}

	stateStore, err := app.openColorState(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	palette := color.DefaultPalette()
	if len(cfg.Palette.Colors) > 0 {
		palette, err = color.NewPalette(cfg.Palette.Colors...)
		if err != nil {
			app.Close()
			return nil, err
		}
	}

	app.Engine = color.NewEngine(palette,
		color.WithStateStore(stateStore),
		color.WithLogger(logger),
		color.WithMetrics(app.Metrics),
		color.WithDefaultColor(cfg.Palette.DefaultColor),
	)

	app.Contributors = service.NewContributorService(app.ContributorStore, app.Engine, logger)
	recordColors, err := app.Contributors.RecordColors(ctx)
	if err != nil {
		logger.Warn("failed to read contributor colors", "error", err)
	}
	app.Engine.Restore(ctx, recordColors)

	app.Members = service.NewMemberService(cfg.Members)
	app.Memories = service.NewMemoryService(app.MemoryStore, app.ContributorStore, app.Engine, app.Members, logger)
	app.Uploads = service.NewUploadService(store.NewUploadStore(app.Paths), logger)
	app.ColorDoctor = service.NewColorDoctorService(app.ContributorStore, app.MemoryStore, app.Engine, logger)

	if interactive {
		app.Prompter = prompt.NewHuhPrompter()
	} else {
		app.Prompter = &prompt.NoopPrompter{}
	}

	return app, nil
}

func (a *App) openStores(ctx context.Context) error {
	switch a.Config.Storage.Contributors {
	case model.StorageSQLite:
		s, err := store.OpenSQLiteContributorStore(ctx, a.Paths.SQLitePath(a.Config.Storage.SQLitePath), a.Logger)
		if err != nil {
			return err
		}
		a.ContributorStore = s
		a.closers = append(a.closers, s.Close)
	default:
		a.ContributorStore = store.NewContributorStore(a.Paths, a.Logger)
	}
	a.MemoryStore = store.NewMemoryStore(a.Paths, a.Logger)
	return nil
}

// openColorState builds the color cache: a file-backed KV in the data
// directory, fronted by NATS when a remote is configured. An unreachable
// remote is logged and skipped.
func (a *App) openColorState(ctx context.Context) (*store.KVColorStateStore, error) {
	var kv store.KV = store.NewFileKV(a.Paths.CacheDir())

	if url := a.Config.Remote.NATSURL; url != "" {
		timeout := a.Config.RemoteTimeout()
		dialCtx, cancel := context.WithTimeout(ctx, timeout)
		remote, err := store.DialNATSKV(dialCtx, url, a.Config.Remote.Bucket, store.WithNATSTimeout(timeout))
		cancel()
		if err != nil {
			a.Logger.Warn("remote color cache unavailable, using local cache only",
				"url", url,
				"error", err)
		} else {
			a.closers = append(a.closers, func() error {
				remote.Close()
				return nil
			})
			kv = store.NewTieredKV(remote, kv, a.Logger)
		}
	}

	return store.NewColorStateStore(kv), nil
}

// RequireInitialized ensures the data directory has been set up.
func (a *App) RequireInitialized() error {
	info, err := os.Stat(a.Paths.UsersDir())
	if err != nil || !info.IsDir() {
		return &memerr.NotInitializedError{Path: a.Paths.DataDir()}
	}
	return nil
}

// Close releases database and network connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}

// Fatal prints an error and exits.
func Fatal(err error) {
	PrintError("%v", err)
	os.Exit(1)
}
