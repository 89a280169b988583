package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arcade-leaderboard/internal/config"
	"github.com/arcade-leaderboard/internal/handler"
	"github.com/arcade-leaderboard/internal/kafka"
	"github.com/arcade-leaderboard/internal/postgres"
	"github.com/arcade-leaderboard/internal/redis"
	"github.com/arcade-leaderboard/internal/service"
	"github.com/arcade-leaderboard/internal/worker"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warn("failed to load config file, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Redis
	logger.Info("connecting to Redis", "addr", cfg.Redis.Addr)
	boards, err := redis.NewBoards(&cfg.Redis, logger)
	if err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer boards.Close()
	logger.Info("connected to Redis")

	assets := redis.NewAssetCache(boards.Client(), cfg.Redis.AssetTTL, logger)

	// Initialize PostgreSQL
	logger.Info("connecting to PostgreSQL", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	store, err := postgres.NewRepository(&cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("connected to PostgreSQL")

	// Run database migrations
	if err := store.RunMigrations(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize services
	rankService := service.NewRankService(store, store, logger)
	profileService := service.NewProfileService(store, store, rankService, &cfg.Profile, logger)
	shopService := service.NewShopService(store, store, logger)
	scoreService := service.NewScoreService(store, store, logger)
	scoreService.SetBoards(boards)

	// Initialize snapshot worker
	snapshotWorker := worker.NewSnapshotWorker(store, boards, assets, &cfg.Snapshot, logger)

	// Build board snapshots on startup so top-N reads work immediately
	logger.Info("building board snapshots")
	snapshotWorker.RunOnce(ctx)

	if cfg.Snapshot.Enabled {
		if err := snapshotWorker.Start(ctx); err != nil {
			logger.Error("failed to start snapshot worker", "error", err)
			os.Exit(1)
		}
	}

	// Initialize Kafka consumer for high-load score ingestion
	var kafkaConsumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		logger.Info("initializing Kafka consumer",
			"brokers", cfg.Kafka.Brokers,
			"topic", cfg.Kafka.Topic,
		)
		var err error
		kafkaConsumer, err = kafka.NewConsumer(&cfg.Kafka, scoreService, logger)
		if err != nil {
			logger.Warn("failed to create Kafka consumer, continuing without Kafka", "error", err)
		} else {
			if err := kafkaConsumer.Start(); err != nil {
				logger.Warn("failed to start Kafka consumer, continuing without Kafka", "error", err)
				kafkaConsumer = nil
			} else {
				logger.Info("Kafka consumer started successfully")
			}
		}
	}

	// Initialize HTTP handler
	httpHandler := handler.NewHandler(
		scoreService,
		profileService,
		rankService,
		shopService,
		store,
		boards,
		assets,
		snapshotWorker,
		&cfg.Board,
		logger,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop Kafka consumer
	if kafkaConsumer != nil {
		if err := kafkaConsumer.Stop(); err != nil {
			logger.Error("failed to stop Kafka consumer", "error", err)
		}
	}

	// Stop snapshot worker
	if err := snapshotWorker.Stop(); err != nil {
		logger.Error("failed to stop snapshot worker", "error", err)
	}

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	logger.Info("server stopped")
}
