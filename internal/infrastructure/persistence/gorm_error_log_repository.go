package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/MGTheTrain/admin-console/internal/domain/errorlog"
	"github.com/MGTheTrain/admin-console/internal/infrastructure/persistence/models"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormErrorLogRepository struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormErrorLogRepository creates a new GORM-based error log Repository implementation
func NewGormErrorLogRepository(db *gorm.DB, logger logger.Logger) (errorlog.Repository, error) {
	return &gormErrorLogRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *gormErrorLogRepository) Create(ctx context.Context, entry *errorlog.ErrorLog) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	model := &models.ErrorLogModel{}
	model.FromDomain(entry)

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}
	entry.ID = model.ID
	entry.CreatedAt = model.CreatedAt
	return nil
}

func (r *gormErrorLogRepository) GetByID(ctx context.Context, id string) (*errorlog.ErrorLog, error) {
	var model models.ErrorLogModel
	if err := r.db.WithContext(ctx).Where("id = ? OR reference = ?", id, id).First(&model).Error; err != nil {
		return nil, translateError(err, "fetch", "error log", id)
	}
	return model.ToDomain(), nil
}

func (r *gormErrorLogRepository) Resolve(ctx context.Context, ids []string, userID string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&models.ErrorLogModel{}).
		Where("id IN ? AND resolved_at IS NULL", ids).
		Updates(map[string]interface{}{"resolved_at": at, "resolved_by": userID})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to resolve error logs: %w", result.Error)
	}

	r.logger.Info("Resolved ", result.RowsAffected, " error logs")
	return result.RowsAffected, nil
}

func (r *gormErrorLogRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.ErrorLogModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete error logs: %w", result.Error)
	}

	r.logger.Info("Deleted ", result.RowsAffected, " error logs")
	return result.RowsAffected, nil
}

func (r *gormErrorLogRepository) DeleteResolvedBefore(ctx context.Context, t time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("resolved_at IS NOT NULL AND resolved_at < ?", t).Delete(&models.ErrorLogModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune error logs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
