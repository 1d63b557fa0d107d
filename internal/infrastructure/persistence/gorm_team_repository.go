package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
	"github.com/MGTheTrain/admin-console/internal/infrastructure/persistence/models"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormTeamRepository struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormTeamRepository creates a new GORM-based TeamRepository implementation
func NewGormTeamRepository(db *gorm.DB, logger logger.Logger) (rbac.TeamRepository, error) {
	return &gormTeamRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *gormTeamRepository) Create(ctx context.Context, team *rbac.Team) error {
	if err := team.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	model := &models.TeamModel{}
	model.FromDomain(team)

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return translateError(err, "create", "team", team.Name)
	}
	team.CreatedAt = model.CreatedAt
	team.UpdatedAt = model.UpdatedAt

	r.logger.Info("Created team ", team.Name, " with id ", team.ID)
	return nil
}

func (r *gormTeamRepository) GetByID(ctx context.Context, teamID string) (*rbac.Team, error) {
	var model models.TeamModel
	if err := r.db.WithContext(ctx).Where("id = ?", teamID).First(&model).Error; err != nil {
		return nil, translateError(err, "fetch", "team", teamID)
	}
	return model.ToDomain(), nil
}

func (r *gormTeamRepository) GetByName(ctx context.Context, name string) (*rbac.Team, error) {
	var model models.TeamModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		return nil, translateError(err, "fetch", "team", name)
	}
	return model.ToDomain(), nil
}

func (r *gormTeamRepository) List(ctx context.Context) ([]*rbac.Team, error) {
	var modelList []*models.TeamModel
	if err := r.db.WithContext(ctx).Order("name").Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}

	teams := make([]*rbac.Team, len(modelList))
	for i, model := range modelList {
		teams[i] = model.ToDomain()
	}
	return teams, nil
}

func (r *gormTeamRepository) DeleteByIDs(ctx context.Context, teamIDs []string) (int64, error) {
	if len(teamIDs) == 0 {
		return 0, nil
	}

	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// team scoped rows reference the team and go with it
		statements := []string{
			"DELETE FROM team_users WHERE team_id IN ?",
			"DELETE FROM role_permissions WHERE role_id IN (SELECT id FROM roles WHERE team_id IN ?)",
			"DELETE FROM user_roles WHERE role_id IN (SELECT id FROM roles WHERE team_id IN ?)",
			"DELETE FROM roles WHERE team_id IN ?",
			"DELETE FROM email_templates WHERE team_id IN ?",
		}
		for _, stmt := range statements {
			if err := tx.Exec(stmt, teamIDs).Error; err != nil {
				return fmt.Errorf("failed to delete team data: %w", err)
			}
		}
		result := tx.Where("id IN ?", teamIDs).Delete(&models.TeamModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete teams: %w", result.Error)
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Info("Deleted ", affected, " teams")
	return affected, nil
}

func (r *gormTeamRepository) AttachUsers(ctx context.Context, teamID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	users := make([]models.UserModel, len(userIDs))
	for i, id := range userIDs {
		users[i].ID = id
	}
	team := &models.TeamModel{ID: teamID}
	if err := r.db.WithContext(ctx).Model(team).Omit("Users.*").Association("Users").Append(users); err != nil {
		return fmt.Errorf("failed to attach users to team %s: %w", teamID, err)
	}
	return nil
}

func (r *gormTeamRepository) DetachUsers(ctx context.Context, teamID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Exec("DELETE FROM team_users WHERE team_id = ? AND user_id IN ?", teamID, userIDs).Error
	if err != nil {
		return fmt.Errorf("failed to detach users from team %s: %w", teamID, err)
	}
	return nil
}

func (r *gormTeamRepository) ListEmptyIDs(ctx context.Context, except ...string) ([]string, error) {
	var ids []string
	query := r.db.WithContext(ctx).Model(&models.TeamModel{}).
		Where("NOT EXISTS (SELECT 1 FROM team_users WHERE team_users.team_id = teams.id)")
	if len(except) > 0 {
		query = query.Where("name NOT IN ?", except)
	}
	if err := query.Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list empty teams: %w", err)
	}
	return ids, nil
}

func (r *gormTeamRepository) DeleteDanglingMemberships(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Exec(
		"DELETE FROM team_users WHERE NOT EXISTS (SELECT 1 FROM users WHERE users.id = team_users.user_id) " +
			"OR NOT EXISTS (SELECT 1 FROM teams WHERE teams.id = team_users.team_id)")
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete dangling memberships: %w", result.Error)
	}
	return result.RowsAffected, nil
}

type gormPasswordResetTokenRepository struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormPasswordResetTokenRepository creates a new GORM-based PasswordResetTokenRepository implementation
func NewGormPasswordResetTokenRepository(db *gorm.DB, logger logger.Logger) (rbac.PasswordResetTokenRepository, error) {
	return &gormPasswordResetTokenRepository{
		db:     db,
		logger: logger,
	}, nil
}

// Put replaces any previous token of the same email
func (r *gormPasswordResetTokenRepository) Put(ctx context.Context, token *rbac.PasswordResetToken) error {
	model := &models.PasswordResetTokenModel{}
	model.FromDomain(token)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"token_hash", "created_at"}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

func (r *gormPasswordResetTokenRepository) Get(ctx context.Context, email string) (*rbac.PasswordResetToken, error) {
	var model models.PasswordResetTokenModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		return nil, translateError(err, "fetch", "reset token", email)
	}
	return model.ToDomain(), nil
}

func (r *gormPasswordResetTokenRepository) Delete(ctx context.Context, email string) error {
	if err := r.db.WithContext(ctx).Where("email = ?", email).Delete(&models.PasswordResetTokenModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete reset token: %w", err)
	}
	return nil
}

func (r *gormPasswordResetTokenRepository) DeleteCreatedBefore(ctx context.Context, t time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", t).Delete(&models.PasswordResetTokenModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune reset tokens: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		r.logger.Info("Pruned ", result.RowsAffected, " expired reset tokens")
	}
	return result.RowsAffected, nil
}
