package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/wordmark/internal/config"
	"github.com/mrlokans/wordmark/internal/database"
	"github.com/mrlokans/wordmark/internal/database/favorites"
	"github.com/mrlokans/wordmark/internal/entities"
	"github.com/mrlokans/wordmark/internal/exporters"
	"github.com/mrlokans/wordmark/internal/history"
	http_controllers "github.com/mrlokans/wordmark/internal/http"
	"github.com/mrlokans/wordmark/internal/importers"
	"github.com/mrlokans/wordmark/internal/scheduler"
	"github.com/mrlokans/wordmark/internal/settingsstore"
	"github.com/mrlokans/wordmark/internal/tasks"
	"github.com/mrlokans/wordmark/internal/thumbnail"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// ConfigureLogging applies the configured log level and formatter.
func ConfigureLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.Global.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	if cfg.Global.Debug {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// Serve runs the HTTP server until SIGINT or SIGTERM. onStarted runs once the
// listener is up.
func Serve(router *gin.Engine, cfg *config.Config, onStarted func(), onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		logrus.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Listen failed")
		}
	}()
	if onStarted != nil {
		go onStarted()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.WithField("timeout", timeout).Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server shutdown failed")
	}

	logrus.Info("Server exiting")
}

// historyConfig maps the configured windows onto the engine's groups.
func historyConfig(cfg *config.Config) history.Config {
	windows := history.Windows{}
	if cfg.History.TextWindow > 0 {
		windows[history.GroupText] = cfg.History.TextWindow
	}
	if cfg.History.CardWindow > 0 {
		windows[history.GroupCard] = cfg.History.CardWindow
	}
	if cfg.History.StyleWindow > 0 {
		windows[history.GroupTextStyle] = cfg.History.StyleWindow
		windows[history.GroupIconStyle] = cfg.History.StyleWindow
	}
	return history.Config{
		Capacity: cfg.History.Capacity,
		Windows:  windows,
		Initial:  entities.DefaultDesign(),
	}
}

func Run(cfg *config.Config, version string) {
	ConfigureLogging(cfg)
	logrus.WithField("version", version).Info("Starting Wordmark")
	if !cfg.Global.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewDatabase(cfg.Database.Path, cfg.Global.Debug)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Error("Error closing database")
		}
	}()

	settings := settingsstore.New(db.DB)
	favoritesRepo := favorites.NewRepository(db.DB)

	ctx := context.Background()
	fonts, err := NewFontStack(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize font providers")
	}
	defer fonts.Close()

	engine := history.NewEngine(historyConfig(cfg), thumbnail.NewPreviewCapturer(cfg.History.ThumbnailWidth), favoritesRepo)
	engine.Init(ctx)
	defer engine.Close()

	// Task queues must be registered before the workers start.
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to initialize task queue")
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				logrus.WithError(err).Error("Error closing task client")
			}
		}()

		taskClient.Register(
			tasks.NewLoadProviderQueue(fonts.Aggregator),
			tasks.NewPreloadAssetsQueue(fonts.Preloader),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		fonts.Aggregator.SetScheduler(tasks.NewLoadScheduler(taskClient))
		fonts.Preloader.SetScheduler(tasks.NewChunkScheduler(taskClient))
	}

	var refresher *scheduler.CatalogRefreshScheduler
	if cfg.Refresh.Enabled {
		refresher = scheduler.NewCatalogRefreshScheduler(cfg.Refresh.Schedule, fonts.Bus, settings, fonts.Providers...)
		if err := refresher.Start(ctx); err != nil {
			logrus.WithError(err).Error("Failed to start catalog refresh scheduler")
			refresher = nil
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Catalog:           fonts.Aggregator,
		Preloader:         fonts.Preloader,
		Network:           fonts.Network,
		Adobe:             fonts.Adobe,
		Foundry:           fonts.Scraper,
		History:           engine,
		Favorites:         engine,
		Exporter:          exporters.NewExporter(engine, favoritesRepo),
		Importer:          importers.NewImporter(engine, favoritesRepo),
		Onboarding:        settings,
		Database:          db,
		CustomFontsDir:    cfg.Custom.Dir,
		CustomFontsPublic: cfg.Custom.PublicBase,
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
		TaskClient:        taskClient,
		Version:           version,
	}
	if refresher != nil {
		routerCfg.Refresher = refresher
	}
	if pinger, ok := fonts.Payloads.(interface{ Ping(context.Context) error }); ok {
		routerCfg.HealthChecks = map[string]http_controllers.HealthCheck{"redis": pinger.Ping}
	}

	router := http_controllers.NewRouter(routerCfg)

	// Providers start loading once the server answers, so the Open Foundry
	// provider can reach the catalog route.
	onStarted := func() {
		fonts.Aggregator.LoadAllProviders(context.Background())
	}

	onShutdown := func(ctx context.Context) {
		if refresher != nil {
			refresher.Stop()
		}
		engine.Close()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onStarted, onShutdown)
}
