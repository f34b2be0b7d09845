package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	provisionworker "github.com/magabrotheeeer/profile-provisioner/internal/app/provision-worker"
	"github.com/magabrotheeeer/profile-provisioner/internal/config"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("starting provision-worker", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := provisionworker.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize worker", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("worker stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("provision-worker stopped gracefully")
}
