package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MagnumMax/skyluxse-sub003/api/routes"
	"github.com/MagnumMax/skyluxse-sub003/internal/bookings"
	"github.com/MagnumMax/skyluxse-sub003/internal/ingest"
	"github.com/MagnumMax/skyluxse-sub003/pkg/config"
	"github.com/MagnumMax/skyluxse-sub003/pkg/db"
	"github.com/MagnumMax/skyluxse-sub003/pkg/logger"
	"github.com/MagnumMax/skyluxse-sub003/pkg/metrics"
	"github.com/MagnumMax/skyluxse-sub003/pkg/migrate"
	"github.com/MagnumMax/skyluxse-sub003/pkg/outbox"
	"github.com/MagnumMax/skyluxse-sub003/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	bookingService, err := bookings.NewService(bookings.ServiceParams{
		DB:     dbClient,
		Repo:   bookings.NewRepository(),
		Outbox: outboxService,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create bookings service", err)
		os.Exit(1)
	}

	ingestService, err := ingest.NewService(ingest.ServiceParams{
		Config:     cfg.Webhook,
		Flags:      cfg.FeatureFlags,
		Repo:       ingest.NewRepository(dbClient.DB()),
		Classifier: ingest.NewClassifier(cfg.Webhook),
		Bookings:   bookingService,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create ingest service", err)
		os.Exit(1)
	}

	deliverers, err := buildDeliverers(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build deliverers", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	dispatcher, err := outbox.NewDispatcher(outbox.DispatcherParams{
		Config:     cfg.Outbox,
		Repository: outbox.NewRepository(dbClient.DB()),
		Deliverers: deliverers,
		Logger:     logg,
		Metrics:    metrics.NewDispatchMetrics(registry),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatcher", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:         addr,
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:     cfg,
			Logger:     logg,
			DB:         dbClient,
			Redis:      redisClient,
			RateLimits: redisClient,
			Ingest:     ingestService,
			Dispatch:   dispatcher,
			Registry:   registry,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shutting down gracefully")
}
