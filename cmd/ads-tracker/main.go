package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trafficpulse/ads-tracker/internal/auth"
	"github.com/trafficpulse/ads-tracker/internal/cache"
	"github.com/trafficpulse/ads-tracker/internal/config"
	"github.com/trafficpulse/ads-tracker/internal/database"
	"github.com/trafficpulse/ads-tracker/internal/httpserver"
	"github.com/trafficpulse/ads-tracker/internal/meta"
	"github.com/trafficpulse/ads-tracker/internal/metrics"
	"github.com/trafficpulse/ads-tracker/internal/storage"
	"github.com/trafficpulse/ads-tracker/internal/tracker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg)
	defer logger.Sync()

	logger.Info("starting ads-tracker",
		zap.String("env", cfg.Server.Env),
		zap.String("addr", cfg.Server.Addr),
	)

	ctx := context.Background()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics("ads_tracker")
	}

	// Try to connect to PostgreSQL; fall back to in-memory sales storage.
	var saleRepo storage.SaleRepo
	db, err := database.NewPostgresDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Warn("PostgreSQL not available, using in-memory sales storage", zap.Error(err))
		db = nil
		saleRepo = storage.NewInMemorySaleRepo()
	} else {
		defer db.Close()
		saleRepo = storage.NewPostgresSaleRepo(db.Pool)
	}

	// Try to connect to Redis; fall back to in-process sessions.
	var sessions auth.SessionStore
	redis, err := database.NewRedisDB(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis not available, sessions will not survive restarts", zap.Error(err))
		sessions = auth.NewMemoryService(cfg.Auth, logger, m)
	} else {
		defer redis.Close()
		sessions = auth.NewService(cfg.Auth, redis.Client, logger, m)
	}

	graph := meta.NewClient(cfg.Meta, logger, m)
	fetchCache := cache.New(cfg.Cache.TTL)

	dashboard := tracker.NewDashboard(
		graph,
		saleRepo,
		fetchCache,
		cfg.Meta.PrimaryAccountID,
		cfg.Meta.AccountIDs,
		logger,
		m,
	)
	mutator := tracker.NewMutator(graph, logger, m)

	handler := httpserver.NewServer(&httpserver.Dependencies{
		Config:    cfg,
		Logger:    logger,
		Metrics:   m,
		DB:        db,
		Sessions:  sessions,
		Dashboard: dashboard,
		Mutator:   mutator,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func setupLogger(cfg *config.Config) *zap.Logger {
	var zapCfg zap.Config

	if cfg.IsDevelopment() {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	switch cfg.Log.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}
