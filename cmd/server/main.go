// Command server runs the PostForge HTTP API: a caching, journaling backend
// for a post management dashboard, fronting a remote post store.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/nrjbwj/postforge/internal/cache"
	"github.com/nrjbwj/postforge/internal/config"
	httpapi "github.com/nrjbwj/postforge/internal/http"
	"github.com/nrjbwj/postforge/internal/observability"
	"github.com/nrjbwj/postforge/internal/repo"
	"github.com/nrjbwj/postforge/internal/services"
	"github.com/nrjbwj/postforge/internal/sysutil"
	"github.com/nrjbwj/postforge/internal/upstream"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx := context.Background()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	// Durable journal + idempotency records are optional; without a path the
	// journal lives in memory only and create deduplication is disabled.
	db, err := openJournalDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.ActivityDBPath).Msg("journal database open failed")
	}

	client := newUpstreamClient(cfg)

	svc := &services.PostService{
		Client:   client,
		Cache:    cache.New(cfg.StaleTime),
		Activity: services.NewActivityLog(cfg.ActivityMax, db),
	}

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, httpapi.Deps{
		Posts:    svc,
		Activity: svc.Activity,
		DB:       db,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().
			Str("version", version).
			Str("addr", srv.Addr).
			Str("upstream_mode", cfg.Upstream.Mode).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Block until SIGINT/SIGTERM, then drain in-flight requests.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

// openJournalDB opens and migrates the SQLite store when a path is
// configured; otherwise it returns nil and the service runs memory-only.
func openJournalDB(cfg config.Config) (*gorm.DB, error) {
	if cfg.ActivityDBPath == "" {
		return nil, nil
	}
	gdb, err := repo.OpenSQLite(cfg.ActivityDBPath, cfg.OTEL.Enabled)
	if err != nil {
		return nil, err
	}
	if err := repo.AutoMigrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

// newUpstreamClient selects the configured post store implementation: the
// real HTTP client, or the in-process mock for offline development.
func newUpstreamClient(cfg config.Config) upstream.Client {
	if cfg.Upstream.Mode == config.UpstreamModeMock {
		log.Info().Msg("upstream mock mode: serving seeded in-memory posts")
		return upstream.NewSampleStore()
	}
	return upstream.NewHTTPClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, cfg.Upstream.ReadRetries)
}
