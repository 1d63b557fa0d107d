package errorlog

import (
	"context"
	"time"
)

// Reporter dispatches reported errors to the configured channels
type Reporter interface {
	// Report sends the error to every enabled channel that accepts its kind and returns
	// the reference shown to the user
	Report(ctx context.Context, report *Report) string
}

// Channel receives error reports
type Channel interface {
	Name() string
	// External channels leave the application (slack, email) and never see errors
	// of the configured dont_report kinds
	External() bool
	Send(ctx context.Context, entry *ErrorLog, report *Report) error
}

// Service manages stored errors
type Service interface {
	GetByID(ctx context.Context, id string) (*ErrorLog, error)
	Resolve(ctx context.Context, ids []string, userID string) (int64, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
	PruneResolved(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Repository persists error logs
type Repository interface {
	Create(ctx context.Context, entry *ErrorLog) error
	GetByID(ctx context.Context, id string) (*ErrorLog, error)
	Resolve(ctx context.Context, ids []string, userID string, at time.Time) (int64, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
	DeleteResolvedBefore(ctx context.Context, t time.Time) (int64, error)
}
