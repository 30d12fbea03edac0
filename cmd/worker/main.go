package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/defermq/defermq/internal/config"
	"github.com/defermq/defermq/internal/dedupe"
	"github.com/defermq/defermq/internal/health"
	"github.com/defermq/defermq/internal/logger"
	"github.com/defermq/defermq/internal/queue"
	"github.com/defermq/defermq/internal/workers"
)

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	queueFlag := flag.String("queue", "", "Queue to consume (default: configured default queue)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	// Initialize logger
	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := logger.Sync(zapLogger); syncErr != nil {
			// Ignore sync errors on shutdown
			_ = syncErr
		}
	}()

	zapLogger.Info("Starting worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("default_queue", cfg.DefaultQueue),
	)

	// Initialize the queue adapter
	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL, cfg.QueueOptions(), zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("Failed to close RabbitMQ connection", zap.Error(err))
		}
	}()

	zapLogger.Info("Connected to RabbitMQ")

	// Optional Redis-backed dedupe guard
	var guard *dedupe.Guard
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("Invalid Redis URL", zap.Error(err))
		}
		redisClient := redis.NewClient(redisOpts)
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("Failed to close Redis connection", zap.Error(err))
			}
		}()

		guard = dedupe.NewGuard(dedupe.RedisKV{Client: redisClient}, "defermq:seen", cfg.DedupeTTL)
		zapLogger.Info("Dedupe guard enabled", zap.Duration("ttl", cfg.DedupeTTL))
	}

	// Create the runner and register handlers
	runner := workers.NewRunner(jobQueue, zapLogger, workers.RunnerOptions{
		IdleInterval: cfg.WorkerIdleInterval,
		RetryBase:    cfg.WorkerRetryBase,
		Guard:        guard,
	})
	runner.Register(workers.EchoJobType, workers.NewEchoHandler(zapLogger))

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Serve liveness/readiness endpoints
	healthServer := &http.Server{
		Addr:    cfg.HealthAddr,
		Handler: health.NewRouter(jobQueue, zapLogger),
	}
	go func() {
		zapLogger.Info("Health endpoints listening", zap.String("addr", cfg.HealthAddr))
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Error("Health server failed", zap.Error(err))
		}
	}()

	// Run the poll loop
	runnerDone := make(chan struct{})
	go func() {
		defer close(runnerDone)
		if err := runner.Run(ctx, *queueFlag); err != nil && !errors.Is(err, context.Canceled) {
			zapLogger.Error("Runner stopped with error", zap.Error(err))
		}
	}()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	zapLogger.Info("Shutdown signal received, stopping worker...")

	cancel()
	<-runnerDone

	if err := healthServer.Shutdown(context.Background()); err != nil {
		zapLogger.Warn("Failed to shut down health server", zap.Error(err))
	}

	zapLogger.Info("Worker stopped")
}
