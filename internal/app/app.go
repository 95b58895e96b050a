package app

import (
	"fmt"
	"time"

	"github.com/bobmcallan/vire-research/internal/artifacts"
	"github.com/bobmcallan/vire-research/internal/auth"
	"github.com/bobmcallan/vire-research/internal/cache"
	"github.com/bobmcallan/vire-research/internal/common"
	"github.com/bobmcallan/vire-research/internal/config"
	"github.com/bobmcallan/vire-research/internal/handlers"
	"github.com/bobmcallan/vire-research/internal/interfaces"
	"github.com/bobmcallan/vire-research/internal/mcp"
	"github.com/bobmcallan/vire-research/internal/storage"
)

// App holds all application components and dependencies.
type App struct {
	Config  *config.Config
	Logger  *common.Logger
	Storage interfaces.StorageManager

	Store *artifacts.Store
	Cache *cache.BacktestCache
	JWT   auth.JWT

	// HTTP handlers
	HealthHandler   *handlers.HealthHandler
	VersionHandler  *handlers.VersionHandler
	AuthHandler     *handlers.AuthHandler
	BacktestHandler *handlers.BacktestHandler
	AnalysisHandler *handlers.AnalysisHandler
	NewsHandler     *handlers.NewsHandler
	NoteHandler     *handlers.NoteHandler
	MCPHandler      *mcp.Handler
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	storageManager, err := storage.NewStorageManager(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.Storage = storageManager

	a.Store = artifacts.NewStore(
		cfg.Artifacts.AnalysisDir,
		cfg.Artifacts.BacktestDir,
		cfg.Artifacts.ReadConcurrency,
		logger,
	)
	a.Cache = cache.New(
		time.Duration(cfg.Cache.TTLSeconds)*time.Second,
		cfg.Cache.MaxEntries,
	)
	a.JWT = auth.JWT{
		Secret:   []byte(cfg.Auth.JWTSecret),
		TokenTTL: time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute,
	}

	a.initHandlers()

	logger.Info().
		Str("analysis_dir", cfg.Artifacts.AnalysisDir).
		Str("backtest_dir", cfg.Artifacts.BacktestDir).
		Msg("application initialization complete")

	return a, nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	a.HealthHandler = handlers.NewHealthHandler(a.Logger)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.AuthHandler = handlers.NewAuthHandler(a.JWT, &a.Config.Auth, a.Logger)
	a.BacktestHandler = handlers.NewBacktestHandler(a.Store, a.Cache, a.Logger)
	a.AnalysisHandler = handlers.NewAnalysisHandler(a.Store, a.Logger)
	a.NewsHandler = handlers.NewNewsHandler(a.Storage.NewsStorage(), a.JWT, a.Logger)
	a.NoteHandler = handlers.NewNoteHandler(a.Storage.NoteStorage(), a.JWT, a.Logger)
	a.MCPHandler = mcp.NewHandler(a.Store, a.Logger)
}

// Close releases application resources.
func (a *App) Close() error {
	if a.Cache != nil {
		a.Cache.Purge()
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	return nil
}
