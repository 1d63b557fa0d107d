package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MGTheTrain/admin-console/internal/domain/notifications"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const toastPrefix = "toasts:"

type redisToastStore struct {
	client *redis.Client
	logger logger.Logger
	ttl    time.Duration
}

// NewRedisToastStore creates a ToastStore queueing toasts per session in a redis list
func NewRedisToastStore(client *redis.Client, logger logger.Logger, ttl time.Duration) (notifications.ToastStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &redisToastStore{client: client, logger: logger, ttl: ttl}, nil
}

func (s *redisToastStore) Push(ctx context.Context, sessionID string, toast *notifications.Toast) error {
	data, err := json.Marshal(toast)
	if err != nil {
		return fmt.Errorf("failed to encode toast: %w", err)
	}

	key := toastPrefix + sessionID
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to queue toast: %w", err)
	}
	return nil
}

// Pull returns the queued toasts oldest first and clears the queue atomically
func (s *redisToastStore) Pull(ctx context.Context, sessionID string) ([]*notifications.Toast, error) {
	key := toastPrefix + sessionID

	var entries *redis.StringSliceCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		entries = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to pull toasts: %w", err)
	}

	toasts := make([]*notifications.Toast, 0, len(entries.Val()))
	for _, raw := range entries.Val() {
		var toast notifications.Toast
		if err := json.Unmarshal([]byte(raw), &toast); err != nil {
			s.logger.Warn("Dropping unreadable toast: ", err)
			continue
		}
		toasts = append(toasts, &toast)
	}
	return toasts, nil
}
