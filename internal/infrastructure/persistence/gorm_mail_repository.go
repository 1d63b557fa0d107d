package persistence

import (
	"context"
	"fmt"

	"github.com/MGTheTrain/admin-console/internal/domain/mail"
	"github.com/MGTheTrain/admin-console/internal/infrastructure/persistence/models"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormEmailTemplateRepository struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormEmailTemplateRepository creates a new GORM-based EmailTemplateRepository implementation
func NewGormEmailTemplateRepository(db *gorm.DB, logger logger.Logger) (mail.EmailTemplateRepository, error) {
	return &gormEmailTemplateRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *gormEmailTemplateRepository) Create(ctx context.Context, tpl *mail.EmailTemplate) error {
	if err := tpl.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	model := &models.EmailTemplateModel{}
	model.FromDomain(tpl)

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return translateError(err, "create", "email template", tpl.Key)
	}
	tpl.CreatedAt = model.CreatedAt
	tpl.UpdatedAt = model.UpdatedAt

	r.logger.Info("Created email template ", tpl.Key, " with id ", tpl.ID)
	return nil
}

func (r *gormEmailTemplateRepository) GetByID(ctx context.Context, templateID string) (*mail.EmailTemplate, error) {
	var model models.EmailTemplateModel
	if err := r.db.WithContext(ctx).Where("id = ?", templateID).First(&model).Error; err != nil {
		return nil, translateError(err, "fetch", "email template", templateID)
	}
	return model.ToDomain(), nil
}

func (r *gormEmailTemplateRepository) GetActiveByKey(ctx context.Context, key, locale string) (*mail.EmailTemplate, error) {
	var model models.EmailTemplateModel
	err := r.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).
		Where("locale = ? AND is_active = ?", locale, true).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		return nil, translateError(err, "fetch", "email template", key+"/"+locale)
	}
	return model.ToDomain(), nil
}

func (r *gormEmailTemplateRepository) List(ctx context.Context, teamID *string) ([]*mail.EmailTemplate, error) {
	var modelList []*models.EmailTemplateModel
	query := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).
		Order("locale")
	if teamID != nil && *teamID != "" {
		query = query.Where("team_id IS NULL OR team_id = ?", *teamID)
	}
	if err := query.Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch email templates: %w", err)
	}

	templates := make([]*mail.EmailTemplate, len(modelList))
	for i, model := range modelList {
		templates[i] = model.ToDomain()
	}
	return templates, nil
}

func (r *gormEmailTemplateRepository) Update(ctx context.Context, tpl *mail.EmailTemplate) error {
	if err := tpl.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	model := &models.EmailTemplateModel{}
	model.FromDomain(tpl)

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(model).Error; err != nil {
		return translateError(err, "update", "email template", tpl.ID)
	}

	r.logger.Info("Updated email template with id ", tpl.ID)
	return nil
}

func (r *gormEmailTemplateRepository) DeleteByID(ctx context.Context, templateID string) error {
	result := r.db.WithContext(ctx).Where("id = ?", templateID).Delete(&models.EmailTemplateModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete email template: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "delete", "email template", templateID)
	}

	r.logger.Info("Deleted email template with id ", templateID)
	return nil
}

type gormMailSettingsRepository struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormMailSettingsRepository creates a new GORM-based SettingsRepository implementation
func NewGormMailSettingsRepository(db *gorm.DB, logger logger.Logger) (mail.SettingsRepository, error) {
	return &gormMailSettingsRepository{
		db:     db,
		logger: logger,
	}, nil
}

// Upsert stores the settings of a scope, replacing the previous ones
func (r *gormMailSettingsRepository) Upsert(ctx context.Context, settings *mail.Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	model := &models.MailSettingsModel{}
	model.FromDomain(settings)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "scope"}, {Name: "scope_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"host", "port", "username", "password", "encryption",
			"from_address", "from_name", "is_active", "updated_at",
		}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to store mail settings: %w", err)
	}

	r.logger.Info("Stored mail settings for scope ", settings.Scope, " ", settings.ScopeID)
	return nil
}

func (r *gormMailSettingsRepository) FindActive(ctx context.Context, scope, scopeID string) (*mail.Settings, error) {
	var modelList []*models.MailSettingsModel
	err := r.db.WithContext(ctx).
		Where("scope = ? AND scope_id = ? AND is_active = ?", scope, scopeID, true).
		Limit(1).
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mail settings: %w", err)
	}
	if len(modelList) == 0 {
		return nil, nil
	}
	return modelList[0].ToDomain(), nil
}

func (r *gormMailSettingsRepository) List(ctx context.Context) ([]*mail.Settings, error) {
	var modelList []*models.MailSettingsModel
	if err := r.db.WithContext(ctx).Order("scope").Order("scope_id").Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch mail settings: %w", err)
	}

	list := make([]*mail.Settings, len(modelList))
	for i, model := range modelList {
		list[i] = model.ToDomain()
	}
	return list, nil
}
