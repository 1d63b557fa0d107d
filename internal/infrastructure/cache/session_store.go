package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "session:"

type redisSessionStore struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisSessionStore creates a SessionStore keeping "session:<token>" -> user ID.
// Lookups extend the session to the full ttl again.
func NewRedisSessionStore(client *redis.Client, logger logger.Logger) (rbac.SessionStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &redisSessionStore{client: client, logger: logger}, nil
}

func (s *redisSessionStore) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	token := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionPrefix+token, userID, ttl)
	// the ttl travels with the session so that lookups can extend it
	pipe.Set(ctx, sessionPrefix+token+":ttl", int64(ttl), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Debug("Created session for user ", userID)
	return token, nil
}

func (s *redisSessionStore) UserID(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", errs.ErrUnauthenticated
	}

	userID, err := s.client.Get(ctx, sessionPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", errs.ErrUnauthenticated
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}

	if ttl, err := s.client.Get(ctx, sessionPrefix+token+":ttl").Int64(); err == nil && ttl > 0 {
		pipe := s.client.Pipeline()
		pipe.Expire(ctx, sessionPrefix+token, time.Duration(ttl))
		pipe.Expire(ctx, sessionPrefix+token+":ttl", time.Duration(ttl))
		if _, err := pipe.Exec(ctx); err != nil {
			s.logger.Warn("Failed to extend session: ", err)
		}
	}
	return userID, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionPrefix+token, sessionPrefix+token+":ttl").Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
