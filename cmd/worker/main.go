package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/aora/internal/config"
	"github.com/hszk-dev/aora/internal/domain/repository"
	"github.com/hszk-dev/aora/internal/infrastructure/cache"
	"github.com/hszk-dev/aora/internal/infrastructure/queue"
	"github.com/hszk-dev/aora/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	qcfg := queue.DefaultClientConfig(cfg.RabbitMQ.URL())
	qcfg.MaxRetries = cfg.Worker.MaxRetries
	queueClient, err := queue.NewClient(ctx, qcfg, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer queueClient.Close()
	logger.Info("connected to RabbitMQ", slog.String("queue", qcfg.QueueName))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis")

	activitySvc := usecase.NewActivityService(cache.NewRedisPostListCache(redisClient), logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// In-flight events finish before shutdown.
	var wg sync.WaitGroup

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting worker, consuming activity events")
		err := queueClient.ConsumeEvents(ctx, func(event repository.ActivityEvent) error {
			wg.Add(1)
			defer wg.Done()

			if err := activitySvc.HandleEvent(ctx, event); err != nil {
				logger.Error("event handling failed",
					slog.String("event_id", event.ID.String()),
					slog.String("type", string(event.Type)),
					slog.Int("retry_count", event.RetryCount),
					slog.String("error", err.Error()),
				)
				return err
			}
			return nil
		})
		if err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("consumer error: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down worker", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer shutdownCancel()

	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("all in-flight events handled")
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, some events may not have been handled")
	}

	logger.Info("worker stopped")
	return nil
}
