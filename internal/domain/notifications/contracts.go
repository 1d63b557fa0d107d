package notifications

import (
	"context"
	"time"
)

// ListQuery pages through a user's notifications
type ListQuery struct {
	UnreadOnly bool
	Limit      int `validate:"min=0,max=100"`
	Offset     int `validate:"min=0"`
}

// Service delivers and manages notifications
type Service interface {
	// Send delivers msg to recipients over channels (all channels when none are given)
	Send(ctx context.Context, msg *Message, recipients []Recipient, channels ...string) error
	// Toast queues a toast for the session and pushes it to live subscribers of userID
	Toast(ctx context.Context, sessionID, userID string, level Level, title, message string) error
	// PullToasts returns and clears the queued toasts of a session
	PullToasts(ctx context.Context, sessionID string) ([]*Toast, error)
	List(ctx context.Context, userID string, query *ListQuery) ([]*Notification, int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	// Subscribe streams live events of userID until ctx is done
	Subscribe(ctx context.Context, userID string) (<-chan *Event, error)
	// PruneRead deletes read notifications older than olderThan
	PruneRead(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Repository persists notifications
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	List(ctx context.Context, userID string, query *ListQuery) ([]*Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
	DeleteReadBefore(ctx context.Context, t time.Time) (int64, error)
}

// ToastStore queues toasts per session
type ToastStore interface {
	Push(ctx context.Context, sessionID string, toast *Toast) error
	Pull(ctx context.Context, sessionID string) ([]*Toast, error)
}

// Broadcaster publishes live events per user
type Broadcaster interface {
	Publish(ctx context.Context, userID string, event *Event) error
	Subscribe(ctx context.Context, userID string) (<-chan *Event, error)
}
