package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const preferencePrefix = "datatable_prefs:"

type redisPreferenceStore struct {
	client *redis.Client
	logger logger.Logger
	ttl    time.Duration
}

// NewRedisPreferenceStore creates the session layer PreferenceStore. The owner is a
// session ID and entries expire after ttl.
func NewRedisPreferenceStore(client *redis.Client, logger logger.Logger, ttl time.Duration) (datatable.PreferenceStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &redisPreferenceStore{client: client, logger: logger, ttl: ttl}, nil
}

// PreferenceKey returns the redis key of the preferences of owner for entity
func PreferenceKey(owner, entity string) string {
	return preferencePrefix + owner + ":" + entity
}

func (s *redisPreferenceStore) Get(ctx context.Context, owner, entity string) (*datatable.Preferences, error) {
	data, err := s.client.Get(ctx, PreferenceKey(owner, entity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read table preferences: %w", err)
	}

	var prefs datatable.Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		// a corrupt entry is dropped and treated as missing
		s.logger.Warn("Discarding unreadable table preferences for ", entity, ": ", err)
		_ = s.client.Del(ctx, PreferenceKey(owner, entity)).Err()
		return nil, nil
	}
	return &prefs, nil
}

func (s *redisPreferenceStore) Put(ctx context.Context, owner, entity string, prefs datatable.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode table preferences: %w", err)
	}
	if err := s.client.Set(ctx, PreferenceKey(owner, entity), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store table preferences: %w", err)
	}
	return nil
}

func (s *redisPreferenceStore) Delete(ctx context.Context, owner, entity string) error {
	if err := s.client.Del(ctx, PreferenceKey(owner, entity)).Err(); err != nil {
		return fmt.Errorf("failed to delete table preferences: %w", err)
	}
	return nil
}
