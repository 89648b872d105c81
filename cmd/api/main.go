package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"donationhub/internal/adapter"
	"donationhub/internal/http/handlers"
	httpapi "donationhub/internal/http/httpapi"
	"donationhub/internal/infra"
	"donationhub/internal/infra/geoip"
	"donationhub/internal/ledger"
	"donationhub/internal/middleware"
	"donationhub/internal/notify"
)

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := infra.SetupTracing(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure tracing")
	}

	backend, err := adapter.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer backend.Close()

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()
	var lookup middleware.CountryLookup
	if resolver != nil {
		lookup = resolver.CountryCode
	}

	notifier := notify.New(backend.Store.Repos().Notifications, logger, cfg.DefaultLocale)
	svc := ledger.NewService(backend.Store, notifier, ledger.Options{
		Logger:     logger,
		Policy:     ledger.AdmissionPolicy{Min: cfg.PoolAutoMin, Max: cfg.PoolAutoMax},
		MaxRetries: cfg.ApprovalMaxRetries,
	})

	app := handlers.NewApp(svc, notifier, logger)
	app.Ready = backend.Ping

	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:       cfg.JWTSecret,
		CORSOrigins:     cfg.CORSOrigins,
		TrustProxy:      cfg.TrustProxyHeaders,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   lookup,
		SubmitPerMinute: cfg.RateLimitPerMin,
		Logger:          logger,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("store", cfg.StoreDriver).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("failed to flush traces")
	}
	logger.Info().Msg("server stopped")
}
