package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ofuentes/wms-bridge/internal/picklists"
	syncworker "github.com/ofuentes/wms-bridge/internal/sync"
	"github.com/ofuentes/wms-bridge/pkg/config"
	"github.com/ofuentes/wms-bridge/pkg/db"
	"github.com/ofuentes/wms-bridge/pkg/erp"
	"github.com/ofuentes/wms-bridge/pkg/logger"
	"github.com/ofuentes/wms-bridge/pkg/metrics"
	"github.com/ofuentes/wms-bridge/pkg/migrate"
	"github.com/ofuentes/wms-bridge/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "sync-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "sync-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
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

	erpClient, err := erp.NewClient(context.Background(), cfg.ERP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap erp client", err)
		os.Exit(1)
	}

	pickListService, err := picklists.NewService(picklists.NewRepository(dbClient.DB()), dbClient, erpClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create pick list service", err)
		os.Exit(1)
	}

	holder, err := os.Hostname()
	if err != nil || holder == "" {
		holder = "sync-worker-local"
	}

	worker, err := syncworker.NewWorker(
		erpClient,
		pickListService,
		redisClient,
		redisClient,
		metrics.NewSyncJobMetrics(prometheus.DefaultRegisterer),
		logg,
		cfg.Sync,
		holder,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create sync worker", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"holder": holder,
	})

	go serveMetrics(ctx, logg, cfg.Sync.MetricsPort)

	logg.Info(ctx, "starting sync worker")
	if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "sync worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "sync worker shutting down gracefully")
}

func serveMetrics(ctx context.Context, logg *logger.Logger, port string) {
	if port == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		<-ctx.Done()
		server.Close()
	}()
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "metrics server stopped unexpectedly", err)
	}
}
