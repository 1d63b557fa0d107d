package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/MGTheTrain/admin-console/internal/pkg/config"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses settings.URL (redis:// or rediss://), applies the pool
// settings and verifies connectivity
func NewRedisClient(ctx context.Context, settings config.RedisSettings, logger logger.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(settings.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if settings.PoolSize > 0 {
		opts.PoolSize = settings.PoolSize
	}
	opts.MinIdleConns = settings.MinIdleConns
	opts.DialTimeout = durationOr(settings.DialTimeout, 5*time.Second)
	opts.ReadTimeout = durationOr(settings.ReadTimeout, 3*time.Second)
	opts.WriteTimeout = durationOr(settings.WriteTimeout, 3*time.Second)
	opts.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis client initialized for ", opts.Addr, " db ", opts.DB)
	return client, nil
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
