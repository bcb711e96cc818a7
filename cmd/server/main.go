// Command server runs the marketplace chat API: HTTP transport, SQLite
// persistence, the digest dispatcher, and observability wiring. It loads
// configuration from the environment (and an optional .env file), starts
// the Gin server, and shuts everything down cleanly on SIGINT/SIGTERM.
//
// @title       Chat Core API
// @version     1.0
// @description Chat, blocking, reactions, presence, and unread tracking for the marketplace messaging core.
// @BasePath    /api/v1
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

	_ "github.com/avelora/chat-core/docs"
	"github.com/avelora/chat-core/internal/config"
	"github.com/avelora/chat-core/internal/email"
	httpapi "github.com/avelora/chat-core/internal/http"
	"github.com/avelora/chat-core/internal/observability"
	"github.com/avelora/chat-core/internal/repo"
	"github.com/avelora/chat-core/internal/services"
	"github.com/avelora/chat-core/internal/sysutil"
	"github.com/avelora/chat-core/internal/worker"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing first so everything below is instrumented.
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("database open failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	// Notification batching and digest delivery.
	notifier := services.NewNotifier(db)
	notifier.Window = cfg.BatchWindow

	sender := email.NewSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	dispatcher := &worker.Dispatcher{
		Batches:  notifier,
		Previews: &services.MessageService{DB: db},
		Sender:   sender,
		Cron:     cfg.DigestCron,
		Window:   cfg.BatchWindow,
	}
	stopDispatcher, err := dispatcher.Start(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("digest dispatcher start failed")
	}

	// HTTP transport.
	engine := gin.New()
	httpapi.RegisterRoutes(engine, db, notifier, cfg)

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
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	stopDispatcher()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown failed")
	}
	log.Info().Msg("server stopped")
}
