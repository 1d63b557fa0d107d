//go:build integration
// +build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
	"github.com/MGTheTrain/admin-console/internal/domain/notifications"
	"github.com/MGTheTrain/admin-console/internal/pkg/config"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
	"github.com/MGTheTrain/admin-console/internal/pkg/testutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/15"
	}
	client, err := NewRedisClient(context.Background(), config.RedisSettings{URL: url}, testutil.SetupTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisSessionStore(t *testing.T) {
	client := setupRedis(t)
	store, err := NewRedisSessionStore(client, testutil.SetupTestLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	userID := uuid.NewString()
	token, err := store.Create(ctx, userID, time.Minute)
	require.NoError(t, err)
	assert.Len(t, token, 64)

	resolved, err := store.UserID(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, resolved)

	require.NoError(t, store.Delete(ctx, token))
	_, err = store.UserID(ctx, token)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)

	_, err = store.UserID(ctx, "")
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestRedisPreferenceStore(t *testing.T) {
	client := setupRedis(t)
	store, err := NewRedisPreferenceStore(client, testutil.SetupTestLogger(t), time.Minute)
	require.NoError(t, err)
	ctx := context.Background()
	owner := uuid.NewString()

	prefs, err := store.Get(ctx, owner, "users")
	require.NoError(t, err)
	assert.Nil(t, prefs)

	require.NoError(t, store.Put(ctx, owner, "users", datatable.Preferences{Sort: "email", Direction: datatable.Desc, PerPage: 50}))

	ttl, err := client.TTL(ctx, PreferenceKey(owner, "users")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	prefs, err = store.Get(ctx, owner, "users")
	require.NoError(t, err)
	require.NotNil(t, prefs)
	assert.Equal(t, "email", prefs.Sort)

	// corrupt entries read as missing
	require.NoError(t, client.Set(ctx, PreferenceKey(owner, "teams"), "{", time.Minute).Err())
	prefs, err = store.Get(ctx, owner, "teams")
	require.NoError(t, err)
	assert.Nil(t, prefs)

	require.NoError(t, store.Delete(ctx, owner, "users"))
	prefs, err = store.Get(ctx, owner, "users")
	require.NoError(t, err)
	assert.Nil(t, prefs)
}

func TestRedisToastStore(t *testing.T) {
	client := setupRedis(t)
	store, err := NewRedisToastStore(client, testutil.SetupTestLogger(t), time.Minute)
	require.NoError(t, err)
	ctx := context.Background()
	session := uuid.NewString()

	require.NoError(t, store.Push(ctx, session, &notifications.Toast{ID: "1", Level: notifications.LevelSuccess, Title: "Saved"}))
	require.NoError(t, store.Push(ctx, session, &notifications.Toast{ID: "2", Level: notifications.LevelError, Title: "Failed"}))

	toasts, err := store.Pull(ctx, session)
	require.NoError(t, err)
	require.Len(t, toasts, 2)
	assert.Equal(t, "Saved", toasts[0].Title)
	assert.Equal(t, "Failed", toasts[1].Title)

	toasts, err = store.Pull(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, toasts)
}

func TestRedisBroadcaster(t *testing.T) {
	client := setupRedis(t)
	b, err := NewRedisBroadcaster(client, testutil.SetupTestLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	userID := uuid.NewString()

	events, err := b.Subscribe(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, userID, &notifications.Event{Kind: notifications.EventRead, UnreadCount: 3}))

	select {
	case event := <-events:
		assert.Equal(t, notifications.EventRead, event.Kind)
		assert.Equal(t, int64(3), event.UnreadCount)
	case <-time.After(5 * time.Second):
		t.Fatal("event not received")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}
