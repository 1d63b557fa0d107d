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

type gormRoleRepository struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormRoleRepository creates a new GORM-based RoleRepository implementation
func NewGormRoleRepository(db *gorm.DB, logger logger.Logger) (rbac.RoleRepository, error) {
	return &gormRoleRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *gormRoleRepository) Create(ctx context.Context, role *rbac.Role) error {
	if err := role.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	model := &models.RoleModel{}
	model.FromDomain(role)

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return translateError(err, "create", "role", role.Name)
	}
	role.ID = model.ID
	role.CreatedAt = model.CreatedAt
	role.UpdatedAt = model.UpdatedAt

	r.logger.Info("Created role ", role.Name, " with id ", role.ID)
	return nil
}

func (r *gormRoleRepository) GetByID(ctx context.Context, roleID uint) (*rbac.Role, error) {
	var model models.RoleModel
	if err := r.db.WithContext(ctx).Preload("Permissions").First(&model, roleID).Error; err != nil {
		return nil, translateError(err, "fetch", "role", fmt.Sprint(roleID))
	}
	return model.ToDomain(), nil
}

func (r *gormRoleRepository) GetByName(ctx context.Context, name string, teamID *string) (*rbac.Role, error) {
	var model models.RoleModel
	query := r.db.WithContext(ctx).Preload("Permissions").Where("name = ?", name)
	if teamID == nil || *teamID == "" {
		query = query.Where("team_id IS NULL")
	} else {
		query = query.Where("team_id = ?", *teamID)
	}
	if err := query.First(&model).Error; err != nil {
		return nil, translateError(err, "fetch", "role", name)
	}
	return model.ToDomain(), nil
}

func (r *gormRoleRepository) List(ctx context.Context, teamID *string) ([]*rbac.Role, error) {
	var modelList []*models.RoleModel
	query := r.db.WithContext(ctx).Preload("Permissions").Order("name")
	if teamID != nil && *teamID != "" {
		// global roles apply inside every team
		query = query.Where("team_id IS NULL OR team_id = ?", *teamID)
	}
	if err := query.Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}

	roles := make([]*rbac.Role, len(modelList))
	for i, model := range modelList {
		roles[i] = model.ToDomain()
	}
	return roles, nil
}

func (r *gormRoleRepository) SyncPermissions(ctx context.Context, roleID uint, permissionIDs []uint) error {
	perms := make([]models.PermissionModel, len(permissionIDs))
	for i, id := range permissionIDs {
		perms[i].ID = id
	}

	role := &models.RoleModel{ID: roleID}
	if err := r.db.WithContext(ctx).Model(role).Omit("Permissions.*").Association("Permissions").Replace(perms); err != nil {
		return fmt.Errorf("failed to sync permissions of role %d: %w", roleID, err)
	}

	r.logger.Info("Synced ", len(permissionIDs), " permissions of role ", roleID)
	return nil
}

func (r *gormRoleRepository) deleteWhere(ctx context.Context, where string, args ...interface{}) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&models.RoleModel{}).Where(where, args...).Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("failed to select roles: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Exec("DELETE FROM role_permissions WHERE role_id IN ?", ids).Error; err != nil {
			return fmt.Errorf("failed to detach role permissions: %w", err)
		}
		if err := tx.Exec("DELETE FROM user_roles WHERE role_id IN ?", ids).Error; err != nil {
			return fmt.Errorf("failed to detach role users: %w", err)
		}
		result := tx.Where("id IN ?", ids).Delete(&models.RoleModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete roles: %w", result.Error)
		}
		affected = result.RowsAffected
		return nil
	})
	return affected, err
}

func (r *gormRoleRepository) DeleteByTeamIDs(ctx context.Context, teamIDs []string) (int64, error) {
	if len(teamIDs) == 0 {
		return 0, nil
	}
	affected, err := r.deleteWhere(ctx, "team_id IN ?", teamIDs)
	if err != nil {
		return 0, err
	}
	r.logger.Info("Deleted ", affected, " team roles")
	return affected, nil
}

func (r *gormRoleRepository) DeleteOrphaned(ctx context.Context) (int64, error) {
	affected, err := r.deleteWhere(ctx, "team_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM teams WHERE teams.id = roles.team_id)")
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		r.logger.Info("Deleted ", affected, " orphaned roles")
	}
	return affected, nil
}

type gormPermissionRepository struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormPermissionRepository creates a new GORM-based PermissionRepository implementation
func NewGormPermissionRepository(db *gorm.DB, logger logger.Logger) (rbac.PermissionRepository, error) {
	return &gormPermissionRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *gormPermissionRepository) Ensure(ctx context.Context, names []string, guard string) ([]*rbac.Permission, error) {
	if len(names) == 0 {
		return []*rbac.Permission{}, nil
	}

	modelList := make([]*models.PermissionModel, 0, len(names))
	for _, name := range names {
		p := &rbac.Permission{Name: name, GuardName: guard}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("validation error: %w", err)
		}
		model := &models.PermissionModel{}
		model.FromDomain(p)
		modelList = append(modelList, model)
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to ensure permissions: %w", err)
	}
	return r.GetByNames(ctx, names)
}

func (r *gormPermissionRepository) GetByNames(ctx context.Context, names []string) ([]*rbac.Permission, error) {
	var modelList []*models.PermissionModel
	if len(names) > 0 {
		if err := r.db.WithContext(ctx).Where("name IN ?", names).Order("name").Find(&modelList).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch permissions: %w", err)
		}
	}

	perms := make([]*rbac.Permission, len(modelList))
	for i, model := range modelList {
		perms[i] = model.ToDomain()
	}
	return perms, nil
}

func (r *gormPermissionRepository) List(ctx context.Context) ([]*rbac.Permission, error) {
	var modelList []*models.PermissionModel
	if err := r.db.WithContext(ctx).Order("name").Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch permissions: %w", err)
	}

	perms := make([]*rbac.Permission, len(modelList))
	for i, model := range modelList {
		perms[i] = model.ToDomain()
	}
	return perms, nil
}
