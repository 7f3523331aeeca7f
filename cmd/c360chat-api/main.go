package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/c360chat/c360chat/internal/api"
	"github.com/c360chat/c360chat/internal/app"
	"github.com/c360chat/c360chat/internal/auth"
	"github.com/c360chat/c360chat/internal/config"
	"github.com/c360chat/c360chat/internal/conversation"
	"github.com/c360chat/c360chat/internal/observability"
)

func main() {
	cfg, err := config.LoadFromEnv("c360chat-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	assistant, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize assistant", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = assistant.Close() }()

	sessions := conversation.NewSessions()
	deps := api.Dependencies{
		Logger:    logger,
		Sessions:  sessions,
		Assistant: assistant.Assistant,
		Schema:    assistant.Schema,
		Readiness: api.CombineReadinessChecks(
			app.CheckObjectStoreConfig(cfg),
			assistant.Warehouse.Ping,
		),
		DependencyTimeout: 5 * time.Second,
	}
	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := &conversation.Sweeper{
		Sessions: sessions,
		IdleTTL:  cfg.Session.IdleTTL,
		Interval: cfg.Session.SweepInterval,
		Logger:   logger,
	}
	go func() { _ = sweeper.Run(ctx) }()

	go func() {
		logger.Info("starting api server",
			slog.String("addr", cfg.HTTP.Address),
			slog.String("provider", cfg.AI.Provider),
			slog.String("model", cfg.AI.Model),
			slog.String("warehouse_driver", cfg.Warehouse.Driver),
			slog.String("table", assistant.Schema.Identifier()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
