package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bookstore/internal/app"
	"bookstore/internal/config"
	"bookstore/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Logger ---
	zlog, err := logger.New(logger.Options{
		Level:    cfg.Log.Level,
		Format:   cfg.Log.Format,
		Output:   cfg.Log.Output,
		FilePath: cfg.Log.FilePath,
		Env:      cfg.App.Env,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zlog) }()

	// --- Application ---
	application, err := app.New(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize application", zap.Error(err))
	}

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		zlog.Error("server stopped with error", zap.Error(err))
		return
	}
	zlog.Info("server gracefully stopped")
}
