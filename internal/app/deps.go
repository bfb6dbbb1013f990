// Package app wires the concrete backends behind the remote access layer.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/aora/internal/api/handler"
	"github.com/hszk-dev/aora/internal/config"
	"github.com/hszk-dev/aora/internal/domain/repository"
	"github.com/hszk-dev/aora/internal/infrastructure/auth"
	"github.com/hszk-dev/aora/internal/infrastructure/avatar"
	"github.com/hszk-dev/aora/internal/infrastructure/cache"
	"github.com/hszk-dev/aora/internal/infrastructure/postgres"
	"github.com/hszk-dev/aora/internal/infrastructure/queue"
	"github.com/hszk-dev/aora/internal/infrastructure/storage"
	"github.com/hszk-dev/aora/internal/usecase"
)

// Options toggles optional backends.
type Options struct {
	// Events connects RabbitMQ and publishes activity events.
	Events bool
}

// Dependencies are the wired services shared by the API server and the CLI.
type Dependencies struct {
	Service      usecase.Service
	HealthChecks map[string]handler.Pinger
}

type pingableStorage interface {
	repository.ObjectStorage
	handler.Pinger
}

// Build connects every backend named in cfg. The returned cleanup releases them
// in reverse order and must be called even when the caller fails later.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*Dependencies, func(), error) {
		cleanup()
		return nil, func() {}, err
	}

	pgCfg := postgres.DefaultClientConfig(cfg.Database.DSN())
	pgCfg.MaxConns = cfg.Database.MaxConns
	pg, err := postgres.NewClient(ctx, pgCfg)
	if err != nil {
		return fail(fmt.Errorf("failed to connect to postgres: %w", err))
	}
	closers = append(closers, pg.Close)

	if err := pg.Migrate(ctx); err != nil {
		return fail(fmt.Errorf("failed to migrate schema: %w", err))
	}
	logger.Info("connected to postgres", slog.String("host", cfg.Database.Host))

	docs := postgres.NewDocumentStore(pg.Pool(), cfg.Platform.DatabaseID)

	authSvc, err := auth.NewService(
		postgres.NewAccountRepository(pg.Pool()),
		postgres.NewSessionRepository(pg.Pool()),
		auth.Config{
			Secret:     []byte(cfg.Auth.JWTSecret),
			SessionTTL: cfg.Auth.SessionTTL,
			Issuer:     cfg.Platform.Endpoint,
			Audience:   cfg.Platform.ProjectID,
		},
	)
	if err != nil {
		return fail(fmt.Errorf("failed to create auth service: %w", err))
	}

	files, err := newObjectStorage(ctx, cfg, logger)
	if err != nil {
		return fail(err)
	}
	logger.Info("connected to object storage", slog.String("driver", cfg.Blob.Driver), slog.String("bucket", cfg.Platform.StorageID))

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	closers = append(closers, func() { _ = rdb.Close() })
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fail(fmt.Errorf("failed to connect to redis: %w", err))
	}
	logger.Info("connected to redis", slog.String("addr", cfg.Redis.Addr()))

	// A nil *queue.Client must not reach the service as a non-nil interface.
	var events repository.EventPublisher
	if opts.Events {
		qcfg := queue.DefaultClientConfig(cfg.RabbitMQ.URL())
		qcfg.MaxRetries = cfg.Worker.MaxRetries
		q, err := queue.NewClient(ctx, qcfg, logger)
		if err != nil {
			return fail(fmt.Errorf("failed to connect to rabbitmq: %w", err))
		}
		closers = append(closers, func() { _ = q.Close() })
		events = q
		logger.Info("connected to rabbitmq", slog.String("queue", qcfg.QueueName))
	}

	svc := usecase.NewService(docs, files, authSvc, avatar.NewGenerator(cfg.Platform.Endpoint, cfg.Platform.ProjectID), events, usecase.ServiceConfig{
		UsersCollection:  cfg.Platform.UsersCollectionID,
		VideosCollection: cfg.Platform.VideosCollectionID,
		LatestLimit:      cfg.Remote.LatestLimit,
		PreviewWidth:     cfg.Remote.PreviewWidth,
		PreviewHeight:    cfg.Remote.PreviewHeight,
		SaveMaxAttempts:  cfg.Remote.SaveMaxAttempts,
	})

	cached := usecase.NewCachedService(svc, cache.NewRedisPostListCache(rdb), usecase.CachedServiceConfig{
		CacheTTL:         cfg.Redis.CacheTTL,
		VideosCollection: cfg.Platform.VideosCollectionID,
		LatestLimit:      cfg.Remote.LatestLimit,
	})

	return &Dependencies{
		Service: cached,
		HealthChecks: map[string]handler.Pinger{
			"postgres": handler.PingFunc(pg.Ping),
			"redis":    handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
			"storage":  files,
		},
	}, cleanup, nil
}

func newObjectStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pingableStorage, error) {
	urls := storage.URLConfig{
		PublicBaseURL: cfg.Blob.PublicBaseURL,
		Expiry:        cfg.Blob.URLExpiry,
	}

	switch cfg.Blob.Driver {
	case "s3":
		client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.Platform.StorageID,
			URLs:      urls,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 client: %w", err)
		}
		return client, nil
	default:
		client, err := storage.NewClient(ctx, storage.ClientConfig{
			Endpoint:       cfg.MinIO.Endpoint,
			PublicEndpoint: cfg.MinIO.PublicEndpoint,
			AccessKey:      cfg.MinIO.AccessKey,
			SecretKey:      cfg.MinIO.SecretKey,
			Bucket:         cfg.Platform.StorageID,
			UseSSL:         cfg.MinIO.UseSSL,
			URLs:           urls,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		return client, nil
	}
}
