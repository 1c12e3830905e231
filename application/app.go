// Package application wires configuration, launch profiles, browser engines,
// the event bus and run history into one application object.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"browserboot/application/bootstrap"
	apphistory "browserboot/application/history"
	"browserboot/core/event"
	"browserboot/core/eventbus"
	domainhistory "browserboot/domain/history"
	"browserboot/domain/launch"
	"browserboot/infrastructure/browser"
	"browserboot/infrastructure/config"
	"browserboot/infrastructure/repository"
	"browserboot/resources"
)

// App owns every long-lived component. Close releases them in reverse order.
type App struct {
	settings     *config.Config
	profiles     *launch.Registry
	launcher     browser.ManagedLauncher
	bootstrapper *bootstrap.Bootstrapper
	eventBus     eventbus.EventBus
	ciBinaryPath string

	history  *History
	recorder *apphistory.Recorder

	logger *slog.Logger
}

// Config holds configuration for creating the App.
type Config struct {
	Settings *config.Config
	// Lookup reads environment variables. Defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
	// Launcher replaces the launcher built from Settings.Engine.
	Launcher browser.ManagedLauncher
	Logger   *slog.Logger
}

// New builds the App. History recording is started only when enabled in settings.
func New(ctx context.Context, cfg *Config) (*App, error) {
	if cfg.Settings == nil {
		cfg.Settings = config.Default()
	}
	if cfg.Lookup == nil {
		cfg.Lookup = os.LookupEnv
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	settings := cfg.Settings

	profiles, err := LoadProfiles(settings.ProfilesDir)
	if err != nil {
		return nil, err
	}
	cfg.Logger.Debug("Launch profiles loaded", "count", profiles.Count())

	launcher := cfg.Launcher
	if launcher == nil {
		launcher, err = browser.NewLauncher(settings.Engine, settings.DriverConfig(), cfg.Logger)
		if err != nil {
			return nil, err
		}
	}

	a := &App{
		settings:     settings,
		profiles:     profiles,
		launcher:     launcher,
		eventBus:     eventbus.New(100, cfg.Logger),
		ciBinaryPath: settings.CIBinaryPath(cfg.Lookup),
		logger:       cfg.Logger,
	}
	a.eventBus.Subscribe(a.handleEvent)

	a.bootstrapper, err = bootstrap.New(&bootstrap.Config{
		Launcher:        launcher,
		Profiles:        profiles,
		Engine:          settings.Engine,
		MaxAttempts:     settings.MaxAttempts,
		PageLoadTimeout: settings.PageLoadTimeout,
		CIBinaryPath:    a.ciBinaryPath,
		EventBus:        a.eventBus,
		Logger:          cfg.Logger,
	})
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	if settings.History.Enabled {
		a.history, err = OpenHistory(ctx, settings, cfg.Logger)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.recorder = apphistory.NewRecorder(&apphistory.RecorderConfig{
			Service:  a.history.Service,
			EventBus: a.eventBus,
			Logger:   cfg.Logger,
		})
		a.recorder.Start()
	}

	return a, nil
}

// LoadProfiles loads launch profiles from dir, or the embedded defaults when dir is empty.
func LoadProfiles(dir string) (*launch.Registry, error) {
	registry := launch.NewRegistry()
	loader := launch.NewLoader(registry)

	var err error
	if dir == "" {
		err = loader.LoadFromFS(resources.ProfileFiles)
	} else {
		err = loader.LoadDir(os.DirFS(dir), ".")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load launch profiles: %w", err)
	}

	return registry, nil
}

// Settings returns the effective configuration.
func (a *App) Settings() *config.Config {
	return a.settings
}

// Profiles returns the loaded launch profiles.
func (a *App) Profiles() *launch.Registry {
	return a.profiles
}

// ResolveProfile returns the profile a Bootstrap call would launch for mode.
func (a *App) ResolveProfile(mode launch.Mode) (*launch.Profile, error) {
	return a.profiles.Resolve(mode, launch.Overrides{BinaryPath: a.ciBinaryPath})
}

// Bootstrap starts a browser session. See bootstrap.Bootstrapper.Bootstrap.
func (a *App) Bootstrap(ctx context.Context, endpoint *url.URL, mode launch.Mode, opts ...bootstrap.Option) (browser.Session, error) {
	return a.bootstrapper.Bootstrap(ctx, endpoint, mode, opts...)
}

// HistoryService returns the run history service, or nil when recording is disabled.
func (a *App) HistoryService() *domainhistory.Service {
	if a.history == nil {
		return nil
	}
	return a.history.Service
}

// Close stops recording, drains pending events and releases the launcher and database.
func (a *App) Close(ctx context.Context) error {
	// Closing the bus first lets the recorder save runs that just finished.
	a.eventBus.Close()
	if a.recorder != nil {
		a.recorder.Stop()
	}

	var err error
	if a.launcher != nil {
		if cerr := a.launcher.Close(); cerr != nil {
			a.logger.Warn("Failed to close launcher", "error", cerr)
			err = cerr
		}
	}
	if a.history != nil {
		if cerr := a.history.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}

	return err
}

// handleEvent writes every bootstrap event to the debug log.
func (a *App) handleEvent(e event.Event) {
	switch e := e.(type) {
	case *event.BootstrapStarted:
		a.logger.Debug("Event", "event", e.EventName(), "run_id", e.RunID(), "engine", e.Engine)
	case *event.AttemptFailed:
		a.logger.Debug("Event", "event", e.EventName(), "run_id", e.RunID(),
			"attempt", e.Attempt, "step", e.Step.String())
	case event.RunEvent:
		a.logger.Debug("Event", "event", e.EventName(), "run_id", e.RunID())
	default:
		a.logger.Debug("Event", "event", e.EventName())
	}
}

// History bundles the run history service with its database connection.
type History struct {
	Service *domainhistory.Service
	db      *repository.MongoDB
}

// OpenHistory connects to MongoDB and prepares the run collection.
func OpenHistory(ctx context.Context, settings *config.Config, logger *slog.Logger) (*History, error) {
	mongoCfg := repository.DefaultMongoDBConfig()
	mongoCfg.URI = settings.History.MongoURI
	mongoCfg.Database = settings.History.Database

	db, err := repository.NewMongoDB(ctx, mongoCfg, logger)
	if err != nil {
		return nil, err
	}

	repo := repository.NewMongoRunRepository(db, logger)
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Warn("Failed to ensure run indexes", "error", err)
	}

	return &History{
		Service: domainhistory.NewService(repo),
		db:      db,
	}, nil
}

// Close disconnects from MongoDB.
func (h *History) Close(ctx context.Context) error {
	return h.db.Close(ctx)
}
