// Package main provides the API server entry point for the portfolio dashboard service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AnkitGupta1803/portfolio-dashboard/internal/adapter"
	"github.com/AnkitGupta1803/portfolio-dashboard/internal/api"
	"github.com/AnkitGupta1803/portfolio-dashboard/internal/config"
	"github.com/AnkitGupta1803/portfolio-dashboard/internal/logging"
	"github.com/AnkitGupta1803/portfolio-dashboard/internal/service"
	"github.com/AnkitGupta1803/portfolio-dashboard/internal/storage"
	"github.com/AnkitGupta1803/portfolio-dashboard/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.GetGlobalLogger().WithError(err).Fatal("Failed to load configuration")
	}

	// Initialize structured logging
	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Load static holdings
	holdings, err := storage.NewHoldingsRepository(cfg.Holdings.FilePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load holdings")
	}
	logger.WithField("count", holdings.Count()).Info("Holdings loaded")

	// Redis is optional; without it every portfolio read rebuilds
	var reportCache *storage.ReportCache
	if cfg.Redis.Host != "" {
		redisCache, err := storage.NewRedisCache(&cfg.Redis)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisCache.Close()
		reportCache = storage.NewReportCache(redisCache, cfg.Cache.PriceTTL)
		logger.Info("Report cache connected")
	} else {
		logger.Info("Redis not configured, running without report cache")
	}

	// Initialize provider adapters
	yahoo := adapter.NewYahooClient(cfg.Providers.YahooBaseURL)
	google := adapter.NewGoogleFinanceClient(cfg.Providers.GoogleBaseURL)

	// Initialize services
	marketData, err := service.NewMarketDataService(cfg, yahoo, google)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize market data service")
	}
	reportService := service.NewReportService(holdings, marketData, reportCache)

	logger.Info("Services initialized")

	// Start the background refresh worker
	var refreshWorker *worker.RefreshWorker
	if cfg.Refresh.Enabled {
		refreshWorker, err = worker.NewRefreshWorker(&worker.RefreshWorkerConfig{
			Refresher: reportService,
			Interval:  cfg.Refresh.Interval,
		})
		if err != nil {
			logger.WithError(err).Fatal("Failed to create refresh worker")
		}
		if err := refreshWorker.Start(context.Background()); err != nil {
			logger.WithError(err).Fatal("Failed to start refresh worker")
		}
	} else {
		logger.Info("Background refresh disabled")
	}

	// Create server configuration
	serverConfig := &api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RateLimitRPS:    cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst:  cfg.RateLimit.Burst,
	}

	server := api.NewServer(serverConfig, marketData, reportService, holdings)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if refreshWorker != nil {
		if err := refreshWorker.Stop(ctx); err != nil {
			logger.WithError(err).Warn("Refresh worker did not stop cleanly")
		}
	}

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
