package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MGTheTrain/admin-console/internal/domain/notifications"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// UserChannel returns the private pub/sub channel of a user
func UserChannel(userID string) string {
	return "notifications.user." + userID
}

type redisBroadcaster struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisBroadcaster creates a Broadcaster publishing events on per-user redis channels
func NewRedisBroadcaster(client *redis.Client, logger logger.Logger) (notifications.Broadcaster, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &redisBroadcaster{client: client, logger: logger}, nil
}

func (b *redisBroadcaster) Publish(ctx context.Context, userID string, event *notifications.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := b.client.Publish(ctx, UserChannel(userID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe streams the events of userID until ctx is done; the channel is closed then
func (b *redisBroadcaster) Subscribe(ctx context.Context, userID string) (<-chan *notifications.Event, error) {
	pubsub := b.client.Subscribe(ctx, UserChannel(userID))
	// wait for the subscription confirmation so that no event published afterwards is lost
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	events := make(chan *notifications.Event, 16)
	go func() {
		defer close(events)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event notifications.Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.logger.Warn("Dropping unreadable event on ", msg.Channel, ": ", err)
					continue
				}
				select {
				case events <- &event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}
