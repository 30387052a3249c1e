package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/smuct-dev/studentbase-backend/internal/config"
	"github.com/smuct-dev/studentbase-backend/internal/database"
	"github.com/smuct-dev/studentbase-backend/internal/handler"
	"github.com/smuct-dev/studentbase-backend/internal/logger"
	"github.com/smuct-dev/studentbase-backend/internal/repository"
	"github.com/smuct-dev/studentbase-backend/internal/router"
	"github.com/smuct-dev/studentbase-backend/internal/service"
	"github.com/smuct-dev/studentbase-backend/internal/validator"
)

func main() {
	cfg := config.Load()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting StudentBase Backend")

	if cfg.JWTSecret == "change-this-to-a-secure-random-string" {
		log.Warn().Msg("JWT_SECRET is the insecure default; set it before deploying")
	}

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	accountRepo := repository.NewAccountRepository(pool)

	authService := service.NewAuthService(cfg)
	accountService := service.NewAccountService(accountRepo, authService, rdb, cfg, log)
	mediaService := service.NewMediaService(cfg)

	handlers := &router.Handlers{
		Auth:    handler.NewAuthHandler(authService, accountService),
		Account: handler.NewAccountHandler(accountService, mediaService),
		Stream:  handler.NewStreamHandler(rdb, log, cfg.AllowedOrigins),
	}

	r := router.SetupRouter(authService, handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
