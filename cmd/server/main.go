// Package main is the entry point for the hwshop API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hwshop/internal/app"
	"hwshop/internal/config"
	"hwshop/internal/infrastructure/cache"
	v1 "hwshop/internal/infrastructure/http/v1"
	"hwshop/internal/infrastructure/http/v1/middleware"
	"hwshop/internal/infrastructure/metrics"
	"hwshop/internal/infrastructure/storage/postgres"
	"hwshop/pkg/logger"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.App.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	ctx := context.Background()
	log.Infow("starting hwshop server", "env", cfg.App.Env)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	poolCfg.MaxConns = cfg.Database.MaxConns
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txOpts := postgres.DefaultTxOptions()
	txOpts.StatementTimeout = cfg.Database.StatementTimeout
	txOpts.LockTimeout = cfg.Database.LockTimeout
	txManager := postgres.NewTxManager(pool, txOpts)

	// --- Report cache ---
	reportCache, err := cache.NewReportCache(ctx, cache.Config{
		Enabled:    cfg.Cache.Enabled,
		RedisURL:   cfg.Cache.RedisURL,
		TTLSeconds: cfg.Cache.ReportTTLSeconds,
	})
	if err != nil {
		log.Fatalw("failed to connect to report cache", "error", err)
	}
	if closer, ok := reportCache.(io.Closer); ok {
		defer closer.Close()
	}
	log.Infow("report cache initialized", "enabled", cfg.Cache.Enabled)

	// --- Metrics ---
	m := metrics.New(cfg.Metrics.Prefix)
	m.RegisterPool(cfg.Metrics.Prefix, pool.Stats)

	services := app.NewPostgres(pool, txManager, reportCache)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Services:       services,
		DB:             pool,
		Logger:         log,
		Metrics:        m,
		TokenValidator: middleware.NewJWTValidator(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer),
		AllowedOrigins: cfg.App.AllowedOrigins,
		Development:    cfg.App.Development(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
