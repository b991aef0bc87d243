package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/config"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/database"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/handlers"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/logging"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/mqtt"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/redis"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/services"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize logger
	logger := logging.NewLogger(cfg.LogLevel)

	// Initialize database
	db, err := database.NewDatabase(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize database", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize Redis
	redisClient, err := redis.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to initialize Redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()
	logger.Info("Redis connected successfully")

	// Initialize MQTT client. The dashboard still serves history and control
	// without it; only live ingest is lost until the broker comes back.
	var relayPublisher services.CommandPublisher
	mqttClient, err := mqtt.NewClient(cfg, redisClient, logger)
	if err != nil {
		logger.Warn("MQTT broker unreachable, starting without device transport", slog.Any("error", err))
	} else {
		defer mqttClient.Disconnect()
		relayPublisher = mqttClient
	}

	// Initialize services
	syncService := services.NewSyncService(db, redisClient, cfg.RoomIDs, cfg.PowerMeterID, logger)
	historyService := services.NewHistoryService(db, logger)
	relayService := services.NewRelayService(db, redisClient, relayPublisher, logger)
	cleanupService := services.NewCleanupService(db, cfg.RetentionDays, logger)

	// Start the periodic sync pipeline
	done := make(chan struct{})
	syncService.StartScheduler(done, cfg.SyncInterval)

	// Setup HTTP server
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.CustomHTTPErrorHandler
	handlers.SetErrorLogger(logger)
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	apiHandler := handlers.NewAPIHandler(syncService, historyService, relayService, cleanupService, cfg.APIKey)
	apiHandler.RegisterRoutes(e)

	// Start server in goroutine
	go func() {
		logger.Info("Starting HTTP server", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	close(done)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", slog.Any("error", err))
	}

	logger.Info("Server stopped")
}
