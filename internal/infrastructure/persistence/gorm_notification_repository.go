package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/MGTheTrain/admin-console/internal/domain/notifications"
	"github.com/MGTheTrain/admin-console/internal/infrastructure/persistence/models"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"
	"github.com/MGTheTrain/admin-console/internal/pkg/validators"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormNotificationRepository struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormNotificationRepository creates a new GORM-based notification Repository implementation
func NewGormNotificationRepository(db *gorm.DB, logger logger.Logger) (notifications.Repository, error) {
	return &gormNotificationRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *gormNotificationRepository) Create(ctx context.Context, n *notifications.Notification) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	model := &models.NotificationModel{}
	model.FromDomain(n)

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	n.CreatedAt = model.CreatedAt
	return nil
}

func (r *gormNotificationRepository) List(ctx context.Context, userID string, query *notifications.ListQuery) ([]*notifications.Notification, int64, error) {
	if query == nil {
		query = &notifications.ListQuery{}
	}
	if err := validators.ValidateStruct(query); err != nil {
		return nil, 0, fmt.Errorf("invalid query parameters: %w", err)
	}

	dbQuery := r.db.WithContext(ctx).Model(&models.NotificationModel{}).Where("notifiable_id = ?", userID)
	if query.UnreadOnly {
		dbQuery = dbQuery.Where("read_at IS NULL")
	}

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	limit := query.Limit
	if limit == 0 {
		limit = 20
	}

	var modelList []*models.NotificationModel
	err := dbQuery.Order("created_at DESC").Order("id").
		Limit(limit).Offset(query.Offset).
		Find(&modelList).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	list := make([]*notifications.Notification, len(modelList))
	for i, model := range modelList {
		list[i] = model.ToDomain()
	}
	return list, total, nil
}

func (r *gormNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("notifiable_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead sets read_at once; notifications of other users are reported as not found
func (r *gormNotificationRepository) MarkRead(ctx context.Context, userID, notificationID string, at time.Time) error {
	var model models.NotificationModel
	err := r.db.WithContext(ctx).Where("id = ? AND notifiable_id = ?", notificationID, userID).First(&model).Error
	if err != nil {
		return translateError(err, "fetch", "notification", notificationID)
	}
	if model.ReadAt != nil {
		return nil
	}

	err = r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("id = ? AND read_at IS NULL", notificationID).
		Update("read_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

func (r *gormNotificationRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("notifiable_id = ? AND read_at IS NULL", userID).
		Update("read_at", at)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormNotificationRepository) DeleteReadBefore(ctx context.Context, t time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("read_at IS NOT NULL AND read_at < ?", t).Delete(&models.NotificationModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune notifications: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		r.logger.Info("Pruned ", result.RowsAffected, " read notifications")
	}
	return result.RowsAffected, nil
}
