// Command server runs the trip-planning gateway: the middleware pipeline,
// session machinery, and credential endpoints in front of the domain route
// groups.
//
// Boot order favors availability: the listener comes up before storage is
// probed, so /health answers even when the database is missing. A failed
// database open degrades the process (memory-only sessions, auth reporting
// storage unavailable) instead of refusing to start.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/globetrotter-app/go-trip-gateway/internal/config"
	httpapi "github.com/globetrotter-app/go-trip-gateway/internal/http"
	"github.com/globetrotter-app/go-trip-gateway/internal/observability"
	"github.com/globetrotter-app/go-trip-gateway/internal/repo"
	"github.com/globetrotter-app/go-trip-gateway/internal/services"
	"github.com/globetrotter-app/go-trip-gateway/internal/session"
	"github.com/globetrotter-app/go-trip-gateway/internal/sysutil"
)

const version = "1.0.0"

func main() {
	// Optional .env for local development; real environments set vars directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	gin.SetMode(cfg.GinMode)

	serviceName := sysutil.FirstNonEmpty(cfg.OTEL.ServiceName, "go-trip-gateway")
	log.Info().
		Str("service", serviceName).
		Str("version", version).
		Str("env", cfg.Environment).
		Str("port", cfg.Port).
		Msg("gateway starting")

	if cfg.Session.Secret == config.DefaultSessionSecret {
		log.Warn().Msg("SESSION_SECRET is the default value; set a real secret before exposing this service")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Warn().Err(err).Msg("tracing setup failed, continuing without it")
		shutdownOTel = func(context.Context) error { return nil }
	}

	// Storage. A failed open leaves db nil and the gateway degraded.
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.DBPath).
			Msg("database unavailable, starting degraded")
		db = nil
	} else if err := repo.AutoMigrate(db); err != nil {
		log.Warn().Err(err).Msg("migration failed, starting degraded")
		db = nil
	}

	deps := httpapi.Deps{
		Auth:     services.NewAuthService(db),
		Sessions: selectSessionStore(cfg, db),
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, deps, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	// Listen first, probe after: the health endpoint must answer while
	// storage problems are still being reported.
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	go probeStorage(ctx, db)
	go session.Sweep(ctx, deps.Sessions, cfg.Session.SweepInterval)

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	} else {
		log.Info().Msg("server drained")
	}

	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracer shutdown error")
	}

	log.Info().Msg("goodbye")
}

// selectSessionStore picks the configured session backend, falling back to
// process memory when the database is unreachable.
func selectSessionStore(cfg config.Config, db *gorm.DB) session.Store {
	if cfg.Session.Store == "memory" {
		log.Info().Msg("using in-memory session store")
		return session.NewMemoryStore()
	}
	if db == nil {
		log.Warn().Msg("database unavailable, sessions fall back to process memory")
		return session.NewMemoryStore()
	}
	return repo.NewSessionStore(db)
}

// probeStorage reports storage health once after boot without blocking the
// listener.
func probeStorage(ctx context.Context, db *gorm.DB) {
	if db == nil {
		log.Warn().Msg("storage probe skipped, no database")
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn().Err(err).Msg("storage probe failed")
		return
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		log.Warn().Err(err).Msg("storage unreachable")
		return
	}
	log.Info().Msg("storage reachable")
}
