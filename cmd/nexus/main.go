package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/radiusdt/nexus-backend/internal/config"
	"github.com/radiusdt/nexus-backend/internal/database"
	"github.com/radiusdt/nexus-backend/internal/httpserver"
	"github.com/radiusdt/nexus-backend/internal/metrics"
	"github.com/radiusdt/nexus-backend/internal/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := middleware.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting NEXUS backend",
		zap.String("env", cfg.Server.Env),
		zap.String("addr", cfg.Server.Addr),
		zap.String("override_store", cfg.Overrides.Driver),
	)

	// Create context for background work
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize PostgreSQL
	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := database.NewPostgresDB(connectCtx, cfg.Database, logger)
	connectCancel()
	if err != nil {
		logger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()

	// Initialize Redis only when overrides live there
	var redis *database.RedisDB
	if cfg.Overrides.Driver == config.OverrideDriverRedis {
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		redis, err = database.NewRedisDB(connectCtx, cfg.Redis, logger)
		connectCancel()
		if err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer redis.Close()
	} else {
		logger.Warn("campaign overrides are kept in memory and lost on restart")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics("nexus", registry)

	handler := httpserver.NewServer(&httpserver.Dependencies{
		DB:       db,
		Redis:    redis,
		Config:   cfg,
		Logger:   logger,
		Metrics:  m,
		Gatherer: registry,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		logger.Info("HTTP server starting", zap.String("addr", cfg.Server.Addr))
		for _, e := range httpserver.Endpoints {
			logger.Info("endpoint",
				zap.String("method", e.Method),
				zap.String("path", e.Path),
				zap.String("description", e.Description),
			)
		}
		if cfg.Metrics.Enabled {
			logger.Info("endpoint",
				zap.String("method", http.MethodGet),
				zap.String("path", cfg.Metrics.Path),
				zap.String("description", "Prometheus metrics"),
			)
		}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Publish connection pool stats
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.UpdateDBStats(db.PoolStats())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	// Cancel main context to stop background goroutines
	cancel()

	logger.Info("server stopped")
}
