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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/config"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/domain"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/handler"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/health"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/infra/reportcache"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/infra/reportrecorder"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/infra/taskstore"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/observability"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/observability/logging"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/observability/metrics"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/observability/middleware"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/service/normalize"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/service/tracker"
)

// Version is set via ldflags at build time
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	obs, err := initObservability(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		slog.Error("failed to initialize HTTP metrics", slog.String("error", err.Error()))
		return 1
	}

	progressMetrics, err := metrics.NewProgressMetrics()
	if err != nil {
		slog.Error("failed to initialize progress metrics", slog.String("error", err.Error()))
		return 1
	}

	// Initialize weekly snapshot recorder (no-op unless InfluxDB configured)
	recorderCfg := reportrecorder.LoadConfig()
	snapshotRecorder, err := reportrecorder.NewRecorder(ctx, recorderCfg)
	if err != nil {
		slog.Error("failed to initialize snapshot recorder", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := snapshotRecorder.Close(); err != nil {
			slog.Warn("failed to close snapshot recorder", slog.String("error", err.Error()))
		}
	}()

	storeClient := taskstore.NewClient(cfg.TaskStoreURL)

	redisClient, reportCache := initReportCache(ctx, cfg)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				slog.Warn("failed to close redis client", slog.String("error", err.Error()))
			}
		}()
	}

	trk := tracker.New(storeClient, normalize.New())

	// Load the initial plan collection; an unreachable store is fatal at
	// boot, later refresh failures are surfaced per request.
	if err := trk.Refresh(ctx, domain.PageParams{Page: cfg.Page.Page, PerPage: cfg.Page.PerPage}); err != nil {
		slog.Error("failed to load initial plan collection",
			slog.String("task_store_url", cfg.TaskStoreURL),
			slog.String("error", err.Error()),
		)
		return 1
	}

	planHandler := handler.NewPlanHandler(trk, cfg.Page, progressMetrics)
	reportHandler := handler.NewReportHandler(trk, cfg.Timezone, reportCache, snapshotRecorder, progressMetrics)

	// Setup router with observability middleware
	r := gin.New()
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/health", "/health/live", "/health/ready", "/metrics"},
		Module:      logging.Module("study-progress"),
		TracerName:  "github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/observability/middleware",
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	// Health check endpoints
	healthChecker := health.NewChecker(redisClient, storeClient, Version)
	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	// API routes
	v1 := r.Group("/api/v1")
	{
		v1.POST("/plans", planHandler.HandleCreatePlan)
		v1.GET("/plans", planHandler.HandleListPlans)
		v1.POST("/plans/:planId/status", planHandler.HandleUpdatePlanStatus)
		v1.POST("/plans/:planId/tasks", planHandler.HandleAddTask)
		v1.PATCH("/plans/:planId/tasks/:taskId", planHandler.HandleUpdateTask)
		v1.POST("/plans/:planId/tasks/:taskId/status", planHandler.HandleUpdateTaskStatus)

		v1.GET("/reports/entries", reportHandler.HandleEntries)
		v1.GET("/reports/segments", reportHandler.HandleSegments)
		v1.GET("/reports/trend", reportHandler.HandleTrend)
		v1.GET("/reports/weeks", reportHandler.HandleWeeks)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
			slog.String("task_store_url", cfg.TaskStoreURL),
			slog.String("timezone", cfg.Timezone.String()),
		)
		serverErr <- srv.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}

// initReportCache connects redis for report memoization. The cache is
// optional: when redis is unreachable the service runs without it.
func initReportCache(ctx context.Context, cfg *config.Config) (*redis.Client, *reportcache.Cache) {
	if cfg.Redis == nil || cfg.Redis.Addr == "" {
		slog.Info("report cache disabled, no redis address configured")
		return nil, nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		slog.Warn("failed to instrument redis tracing",
			slog.String("event", "redis.otel.tracing.fail"),
			slog.String("error", err.Error()),
		)
	}

	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		slog.Warn("failed to instrument redis metrics",
			slog.String("event", "redis.otel.metrics.fail"),
			slog.String("error", err.Error()),
		)
	}

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, report cache disabled",
			slog.String("event", "redis.connect.fail"),
			slog.String("addr", cfg.Redis.Addr),
			slog.String("error", err.Error()),
		)
		_ = redisClient.Close()
		return nil, nil
	}

	slog.Info("redis connected",
		slog.String("addr", cfg.Redis.Addr),
	)

	return redisClient, reportcache.NewCache(redisClient)
}

func initObservability(ctx context.Context, cfg *config.Config) (*observability.Resources, error) {
	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "study-progress"
	}

	env := logging.EnvDev
	if e := os.Getenv("ENV"); e != "" {
		env = logging.Environment(e)
	}

	return observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:     serviceName,
			Version:  Version,
			Revision: "",
		},
		Environment:   env,
		LogLevel:      cfg.LogLevel,
		SamplingRate:  1.0,
		DefaultModule: logging.Module("study-progress"),
	})
}
