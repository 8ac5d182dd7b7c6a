package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/tracker-console/api/swagger"
	"github.com/noah-isme/tracker-console/internal/handler"
	"github.com/noah-isme/tracker-console/internal/middleware"
	"github.com/noah-isme/tracker-console/internal/repository"
	"github.com/noah-isme/tracker-console/internal/service"
	"github.com/noah-isme/tracker-console/pkg/cache"
	"github.com/noah-isme/tracker-console/pkg/config"
	"github.com/noah-isme/tracker-console/pkg/export"
	"github.com/noah-isme/tracker-console/pkg/logger"
	corsmiddleware "github.com/noah-isme/tracker-console/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tracker-console/pkg/middleware/requestid"
	"github.com/noah-isme/tracker-console/pkg/telemetry"
)

// @title Tracker Console
// @version 1.0.0
// @description Session-managing gateway for the Activity & Wellness Tracker API
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := telemetry.Setup(ctx, cfg.Telemetry, logr)
	if err := telemetry.InitSentry(cfg.Telemetry, cfg.Env); err != nil {
		logr.Warn("sentry disabled", zap.Error(err))
	}
	defer telemetry.FlushSentry()

	store, ready, closeStore, err := openSessionStore(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("session store unavailable", zap.Error(err))
	}
	defer closeStore()

	metricsSvc := service.NewMetricsService()
	validate := service.NewValidator()
	httpClient := &http.Client{
		Timeout:   cfg.Upstream.Timeout,
		Transport: telemetry.Transport(http.DefaultTransport),
	}

	clients := service.NewSessionClientFactory(httpClient, service.SessionClientConfig{
		BaseURL:      cfg.Upstream.BaseURL,
		RefreshPath:  cfg.Endpoints.Refresh,
		DedupRefresh: cfg.Session.DedupRefresh,
	}, logr, metricsSvc)
	trackerAPI := service.NewTrackerAPI(store, clients, cfg.Endpoints)
	authSvc := service.NewAuthService(store, trackerAPI, httpClient, validate, logr, metricsSvc, service.AuthConfig{
		BaseURL:   cfg.Upstream.BaseURL,
		Endpoints: cfg.Endpoints,
	})
	statsSvc := service.NewStatsService()
	dashboardSvc := service.NewDashboardService(trackerAPI, statsSvc)
	recordSvc := service.NewRecordService(trackerAPI, validate, logr)
	exportSvc := service.NewExportService(dashboardSvc, statsSvc, cfg.Exports.Enabled, logr, export.NewCSVExporter(), export.NewPDFExporter())

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(logr))
	r.Use(reqidmiddleware.Middleware())
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Session(cfg.Session))
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metricsSvc, ready)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r.Group(cfg.APIPrefix), handler.Handlers{
		Auth:     handler.NewAuthHandler(authSvc, cfg.Session),
		Activity: handler.NewActivityHandler(dashboardSvc, recordSvc, exportSvc),
		Wellness: handler.NewWellnessHandler(dashboardSvc, recordSvc, exportSvc),
		Admin:    handler.NewAdminHandler(dashboardSvc, recordSvc),
	}, authSvc)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           telemetry.Handler(r, cfg.Telemetry.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "upstream", cfg.Upstream.BaseURL, "session_store", cfg.Session.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logr.Warn("tracer shutdown failed", zap.Error(err))
	}
}

type readinessProbe interface {
	Ping(ctx context.Context) error
}

func openSessionStore(ctx context.Context, cfg *config.Config, logr *zap.Logger) (repository.SessionStore, readinessProbe, func(), error) {
	if cfg.Session.Store != config.SessionStoreRedis {
		return repository.NewMemorySessionStore(cfg.Session.IdleTTL), nil, func() {}, nil
	}

	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, nil, err
	}
	store := repository.NewRedisSessionStore(client, cfg.Session.KeyPrefix, cfg.Session.IdleTTL, logr)
	return store, store, func() {
		if err := store.Close(); err != nil {
			logr.Warn("close session store", zap.Error(err))
		}
	}, nil
}
