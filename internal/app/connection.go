package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Keerthudarshu/petandco/internal/config"
	"github.com/Keerthudarshu/petandco/internal/storage"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var retryDelay = 5 * time.Second

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func connectRedisWithRetry(ctx context.Context, cfg config.RedisConfig, maxRetries int, logger *zap.Logger) (*redis.Client, error) {
	opts, err := storage.RedisOptions(cfg)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	for i := 1; i <= maxRetries; i++ {
		if err = rdb.Ping(ctx).Err(); err == nil {
			logger.Info("connected to redis", zap.String("addr", opts.Addr))
			return rdb, nil
		}

		logger.Warn("redis connect failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
		if i < maxRetries {
			if werr := wait(ctx, retryDelay); werr != nil {
				break
			}
		}
	}

	_ = rdb.Close()
	return nil, fmt.Errorf("connect redis: %w", err)
}

// connectKafkaWithRetry only proves the broker is reachable; readers and
// writers open their own connections.
func connectKafkaWithRetry(ctx context.Context, broker string, maxRetries int, logger *zap.Logger) error {
	var err error
	for i := 1; i <= maxRetries; i++ {
		var conn *kafka.Conn
		conn, err = kafka.DialContext(ctx, "tcp", broker)
		if err == nil {
			_ = conn.Close()
			logger.Info("connected to kafka", zap.String("broker", broker))
			return nil
		}

		logger.Warn("kafka connect failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
		if i < maxRetries {
			if werr := wait(ctx, retryDelay); werr != nil {
				break
			}
		}
	}
	return fmt.Errorf("connect kafka: %w", err)
}

func attempts(cfg *config.Config) int {
	if cfg.App.ConnectAttempts <= 0 {
		return 1
	}
	return cfg.App.ConnectAttempts
}

// openStorage returns the KV backend named by the config, scoped under the
// configured namespace, and a func releasing it.
func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.KV, func() error, error) {
	var (
		kv      storage.KV
		closeFn = func() error { return nil }
	)

	switch cfg.Storage.Driver {
	case config.StorageRedis:
		rdb, err := connectRedisWithRetry(ctx, cfg.Redis, attempts(cfg), logger)
		if err != nil {
			return nil, nil, err
		}
		kv = storage.NewRedis(rdb, cfg.Redis.RecordTTL)
		closeFn = rdb.Close
	case config.StorageBolt:
		db, err := storage.OpenBolt(cfg.Storage.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("opened bolt storage", zap.String("path", cfg.Storage.BoltPath))
		kv = db
		closeFn = db.Close
	case config.StorageMemory:
		logger.Warn("using in-memory storage, visitor records do not survive restarts")
		kv = storage.NewMemory()
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Storage.Namespace != "" {
		kv = storage.Scoped(kv, cfg.Storage.Namespace)
	}
	return kv, closeFn, nil
}
