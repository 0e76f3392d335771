package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/ofuentes/wms-bridge/api/routes"
	"github.com/ofuentes/wms-bridge/internal/auth"
	"github.com/ofuentes/wms-bridge/internal/bins"
	"github.com/ofuentes/wms-bridge/internal/branches"
	"github.com/ofuentes/wms-bridge/internal/counts"
	"github.com/ofuentes/wms-bridge/internal/dashboard"
	"github.com/ofuentes/wms-bridge/internal/grpo"
	"github.com/ofuentes/wms-bridge/internal/labels"
	"github.com/ofuentes/wms-bridge/internal/lookup"
	"github.com/ofuentes/wms-bridge/internal/picklists"
	"github.com/ofuentes/wms-bridge/internal/series"
	"github.com/ofuentes/wms-bridge/internal/transfers"
	"github.com/ofuentes/wms-bridge/internal/users"
	"github.com/ofuentes/wms-bridge/pkg/auth/session"
	"github.com/ofuentes/wms-bridge/pkg/config"
	"github.com/ofuentes/wms-bridge/pkg/db"
	"github.com/ofuentes/wms-bridge/pkg/erp"
	"github.com/ofuentes/wms-bridge/pkg/logger"
	"github.com/ofuentes/wms-bridge/pkg/migrate"
	"github.com/ofuentes/wms-bridge/pkg/redis"
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	allocator := series.NewAllocator()

	authService, err := auth.NewService(auth.NewRepository(gormDB), sessionManager, cfg.JWT)
	exitOnError(logg, "auth service", err)

	dashboardService, err := dashboard.NewService(dashboard.NewRepository(gormDB))
	exitOnError(logg, "dashboard service", err)

	grpoService, err := grpo.NewService(grpo.NewRepository(gormDB), dbClient, erpClient, allocator)
	exitOnError(logg, "grpo service", err)

	transferService, err := transfers.NewService(transfers.NewRepository(gormDB), dbClient, erpClient, allocator)
	exitOnError(logg, "transfer service", err)

	pickListService, err := picklists.NewService(picklists.NewRepository(gormDB), dbClient, erpClient)
	exitOnError(logg, "pick list service", err)

	countService, err := counts.NewService(counts.NewRepository(gormDB), dbClient, erpClient, allocator)
	exitOnError(logg, "count service", err)

	binService, err := bins.NewService(bins.NewRepository(gormDB), erpClient)
	exitOnError(logg, "bin service", err)

	labelService, err := labels.NewService(labels.NewRepository(gormDB), erpClient, cfg.Labels)
	exitOnError(logg, "label service", err)

	lookupService, err := lookup.NewService(erpClient, redisClient, logg)
	exitOnError(logg, "lookup service", err)

	userService, err := users.NewService(users.NewRepository(gormDB), dbClient, cfg.Password)
	exitOnError(logg, "user service", err)

	branchService, err := branches.NewService(branches.NewRepository(gormDB), dbClient)
	exitOnError(logg, "branch service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			erpClient,
			sessionManager,
			authService,
			dashboardService,
			grpoService,
			transferService,
			pickListService,
			countService,
			binService,
			labelService,
			lookupService,
			userService,
			branchService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func exitOnError(logg *logger.Logger, what string, err error) {
	if err != nil {
		logg.Error(context.Background(), "failed to create "+what, err)
		os.Exit(1)
	}
}
