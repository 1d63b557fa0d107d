package persistence

import (
	"context"
	"fmt"

	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
	"github.com/MGTheTrain/admin-console/internal/infrastructure/persistence/models"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormUserRepository struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormUserRepository creates a new GORM-based UserRepository implementation
func NewGormUserRepository(db *gorm.DB, logger logger.Logger) (rbac.UserRepository, error) {
	return &gormUserRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *gormUserRepository) Create(ctx context.Context, user *rbac.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	model := &models.UserModel{}
	model.FromDomain(user)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err, "create", "user", user.Email)
	}
	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt

	r.logger.Info("Created user with id ", user.ID)
	return nil
}

func (r *gormUserRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Roles.Permissions").
		Preload("Permissions").
		Preload("Teams")
}

func (r *gormUserRepository) GetByID(ctx context.Context, userID string) (*rbac.User, error) {
	var model models.UserModel
	if err := r.preloaded(ctx).Where("id = ?", userID).First(&model).Error; err != nil {
		return nil, translateError(err, "fetch", "user", userID)
	}
	return model.ToDomain(), nil
}

func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*rbac.User, error) {
	var model models.UserModel
	if err := r.preloaded(ctx).Where("LOWER(email) = LOWER(?)", email).First(&model).Error; err != nil {
		return nil, translateError(err, "fetch", "user", email)
	}
	return model.ToDomain(), nil
}

func (r *gormUserRepository) Update(ctx context.Context, user *rbac.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	model := &models.UserModel{}
	model.FromDomain(user)

	// Omit associations so that a partially loaded user never rewrites memberships
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(model).Error; err != nil {
		return translateError(err, "update", "user", user.ID)
	}

	r.logger.Info("Updated user with id ", user.ID)
	return nil
}

func (r *gormUserRepository) DeleteByIDs(ctx context.Context, userIDs []string) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		statements := []string{
			"DELETE FROM user_roles WHERE user_id IN ?",
			"DELETE FROM user_permissions WHERE user_id IN ?",
			"DELETE FROM team_users WHERE user_id IN ?",
			"DELETE FROM notifications WHERE notifiable_id IN ?",
			"DELETE FROM table_preferences WHERE user_id IN ?",
			"UPDATE error_logs SET user_id = NULL WHERE user_id IN ?",
		}
		for _, stmt := range statements {
			if err := tx.Exec(stmt, userIDs).Error; err != nil {
				return fmt.Errorf("failed to delete user data: %w", err)
			}
		}
		result := tx.Where("id IN ?", userIDs).Delete(&models.UserModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete users: %w", result.Error)
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Info("Deleted ", affected, " users")
	return affected, nil
}

func (r *gormUserRepository) SetActive(ctx context.Context, userIDs []string, active bool) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&models.UserModel{}).Where("id IN ?", userIDs).Update("is_active", active)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update users: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormUserRepository) AttachRoles(ctx context.Context, userID string, roleIDs []uint) error {
	if len(roleIDs) == 0 {
		return nil
	}
	roles := make([]models.RoleModel, len(roleIDs))
	for i, id := range roleIDs {
		roles[i].ID = id
	}
	user := &models.UserModel{ID: userID}
	if err := r.db.WithContext(ctx).Model(user).Omit("Roles.*").Association("Roles").Append(roles); err != nil {
		return fmt.Errorf("failed to attach roles: %w", err)
	}
	return nil
}

func (r *gormUserRepository) DetachRoles(ctx context.Context, userID string, roleIDs []uint) error {
	if len(roleIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Exec("DELETE FROM user_roles WHERE user_id = ? AND role_id IN ?", userID, roleIDs).Error
	if err != nil {
		return fmt.Errorf("failed to detach roles: %w", err)
	}
	return nil
}

func (r *gormUserRepository) AttachPermissions(ctx context.Context, userID string, permissionIDs []uint) error {
	if len(permissionIDs) == 0 {
		return nil
	}
	perms := make([]models.PermissionModel, len(permissionIDs))
	for i, id := range permissionIDs {
		perms[i].ID = id
	}
	user := &models.UserModel{ID: userID}
	if err := r.db.WithContext(ctx).Model(user).Omit("Permissions.*").Association("Permissions").Append(perms); err != nil {
		return fmt.Errorf("failed to attach permissions: %w", err)
	}
	return nil
}

func (r *gormUserRepository) ListIDsWithoutTeam(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("NOT EXISTS (SELECT 1 FROM team_users WHERE team_users.user_id = users.id)").
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users without team: %w", err)
	}
	return ids, nil
}
