package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camly/storefront/internal"
	"github.com/camly/storefront/internal/cache"
	"github.com/camly/storefront/internal/catalog"
	"github.com/camly/storefront/internal/handler/admin"
	"github.com/camly/storefront/internal/handler/og"
	"github.com/camly/storefront/internal/handler/storefront"
	"github.com/camly/storefront/internal/middleware"
	"github.com/camly/storefront/internal/routes"
	"github.com/camly/storefront/internal/sheets"
	"github.com/camly/storefront/internal/worker"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize the snapshot cache and hydrate the store so the first
	// request after a restart is served from the last good data.
	fileCache, err := cache.New(cfg.Cache.Dir, logger)
	if err != nil {
		return fmt.Errorf("cache initialization failed: %w", err)
	}
	store := catalog.NewStore(fileCache, logger)
	store.Hydrate()

	// Initialize the sheets client
	client := sheets.NewClient(cfg.Sheet.ID, logger,
		sheets.WithFetchCache(fileCache, cfg.Sync.FetchTTL),
	)
	if cfg.Sheet.APIKey != "" {
		if err := client.UseAPI(ctx, cfg.Sheet.APIKey); err != nil {
			logger.Warn().Err(err).Msg("sheets api unavailable, using public endpoints")
		}
	}

	// Initialize the sync worker
	tabs := worker.TabConfig{
		Products:      sheets.ParseTabs(cfg.Sheet.ProductTabs),
		Categories:    cfg.Sheet.CategoriesGID,
		Tags:          cfg.Sheet.TagsGID,
		Menu:          cfg.Sheet.MenuGID,
		Pages:         cfg.Sheet.PagesGID,
		Sizes:         cfg.Sheet.SizesGID,
		Types:         cfg.Sheet.TypesGID,
		Levels:        cfg.Sheet.LevelsGID,
		Announcements: cfg.Sheet.AnnouncementsGID,
	}
	syncOpts := []worker.Option{worker.WithInterval(cfg.Sync.Interval)}
	if cfg.Drive.FolderID != "" && cfg.Sheet.APIKey != "" {
		indexer, err := sheets.NewDriveIndexer(ctx, cfg.Sheet.APIKey, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("drive indexer unavailable, skipping image fallback")
		} else {
			syncOpts = append(syncOpts, worker.WithDriveImages(indexer, cfg.Drive.FolderID))
		}
	}
	syncer := worker.New(client, store, tabs, logger, syncOpts...)
	go syncer.Run(ctx)

	// Initialize handlers
	metrics := middleware.NewMetrics(nil)
	catalogHandler := storefront.NewCatalogHandler(store, logger)
	contentHandler := storefront.NewContentHandler(store, logger)
	ogHandler := og.NewHandler(store, og.Site{
		URL:          cfg.Site.URL,
		Name:         cfg.Site.Name,
		DefaultTitle: cfg.Site.DefaultTitle,
		DefaultDesc:  cfg.Site.DefaultDesc,
		DefaultImage: cfg.Site.DefaultImage,
	}, cfg.Web.Shell, logger)
	authHandler := admin.NewAuthHandler(
		cfg.Admin.Username, cfg.Admin.PasswordHash, cfg.Admin.Password,
		[]byte(cfg.Admin.JWTSecret), cfg.Admin.TokenTTL, logger,
	)
	syncHandler := admin.NewSyncHandler(syncer, logger)

	// Assemble the server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	routes.Register(e, routes.Deps{
		Catalog:   catalogHandler,
		Content:   contentHandler,
		OG:        ogHandler,
		Auth:      authHandler,
		Sync:      syncHandler,
		Metrics:   metrics,
		Log:       logger,
		AssetsDir: cfg.Web.Dir,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Int("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
