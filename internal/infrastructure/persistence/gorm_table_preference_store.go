package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
	"github.com/MGTheTrain/admin-console/internal/infrastructure/persistence/models"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormTablePreferenceStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormTablePreferenceStore creates the durable PreferenceStore. The owner is a user ID.
func NewGormTablePreferenceStore(db *gorm.DB, logger logger.Logger) (datatable.PreferenceStore, error) {
	return &gormTablePreferenceStore{
		db:     db,
		logger: logger,
	}, nil
}

func (s *gormTablePreferenceStore) Get(ctx context.Context, owner, entity string) (*datatable.Preferences, error) {
	var modelList []*models.TablePreferenceModel
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND entity = ?", owner, entity).
		Limit(1).
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch table preferences: %w", err)
	}
	if len(modelList) == 0 {
		return nil, nil
	}
	prefs := modelList[0].Preferences
	return &prefs, nil
}

func (s *gormTablePreferenceStore) Put(ctx context.Context, owner, entity string, prefs datatable.Preferences) error {
	model := &models.TablePreferenceModel{
		UserID:      owner,
		Entity:      entity,
		Preferences: prefs,
		UpdatedAt:   time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "entity"}},
		DoUpdates: clause.AssignmentColumns([]string{"preferences", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to store table preferences: %w", err)
	}
	return nil
}

func (s *gormTablePreferenceStore) Delete(ctx context.Context, owner, entity string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND entity = ?", owner, entity).
		Delete(&models.TablePreferenceModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete table preferences: %w", err)
	}
	return nil
}
