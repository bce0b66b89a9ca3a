package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/localpop/localpop-backend/internal/mail"
	"github.com/localpop/localpop-backend/pkg/config"
	"github.com/localpop/localpop-backend/pkg/db"
	"github.com/localpop/localpop-backend/pkg/logger"
	"github.com/localpop/localpop-backend/pkg/metrics"
)

// mail-worker drains the email outbox on its own schedule so notification
// delivery can be scaled and restarted independently of the API.
func main() {
	logg := logger.New(logger.Options{ServiceName: "mail-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "mail-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	sender, err := mail.NewSendGridSender(cfg.Mail)
	if err != nil {
		logg.Error(context.Background(), "failed to create mail sender", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	mailMetrics := metrics.NewMailMetrics(registry)

	dispatcher, err := mail.NewDispatcher(mail.DispatcherParamsFromConfig(
		cfg.Mail,
		mail.NewRepository(dbClient.DB()),
		sender,
		logg,
		mailMetrics,
	))
	if err != nil {
		logg.Error(context.Background(), "failed to create mail dispatcher", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting mail worker")

	if err := dispatcher.Run(ctx); err != nil && err != context.Canceled {
		logg.Error(ctx, "mail worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "mail worker shut down")
}
