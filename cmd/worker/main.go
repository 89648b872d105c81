package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"donationhub/internal/adapter"
	"donationhub/internal/infra"
	"donationhub/internal/ledger"
	"donationhub/internal/notify"
)

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.ServiceName).With().Str("cmd", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := infra.SetupTracing(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure tracing")
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	backend, err := adapter.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to open store")
	}
	defer backend.Close()

	notifier := notify.New(backend.Store.Repos().Notifications, logger, cfg.DefaultLocale)
	svc := ledger.NewService(backend.Store, notifier, ledger.Options{
		Logger:     logger,
		Policy:     ledger.AdmissionPolicy{Min: cfg.PoolAutoMin, Max: cfg.PoolAutoMax},
		MaxRetries: cfg.ApprovalMaxRetries,
	})

	if err := svc.RunReconciler(ctx, cfg.ReconcileInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}
