package models

import (
	"time"

	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
)

// RoleModel is the GORM database model for roles
type RoleModel struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"`
	Name      string  `gorm:"not null;type:varchar(100);uniqueIndex:idx_roles_name_team"`
	GuardName string  `gorm:"not null;default:web;type:varchar(20)"`
	TeamID    *string `gorm:"type:varchar(36);uniqueIndex:idx_roles_name_team"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Team        *TeamModel        `gorm:"foreignKey:TeamID"`
	Permissions []PermissionModel `gorm:"many2many:role_permissions;joinForeignKey:RoleID;joinReferences:PermissionID"`
	Users       []UserModel       `gorm:"many2many:user_roles;joinForeignKey:RoleID;joinReferences:UserID"`
}

// TableName specifies the table name for GORM
func (RoleModel) TableName() string {
	return "roles"
}

// ToDomain converts GORM model to domain entity
func (m *RoleModel) ToDomain() *rbac.Role {
	r := &rbac.Role{
		ID:        m.ID,
		Name:      m.Name,
		GuardName: m.GuardName,
		TeamID:    m.TeamID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	for i := range m.Permissions {
		r.Permissions = append(r.Permissions, *m.Permissions[i].ToDomain())
	}
	return r
}

// FromDomain converts domain entity to GORM model
func (m *RoleModel) FromDomain(r *rbac.Role) {
	m.ID = r.ID
	m.Name = r.Name
	m.GuardName = r.GuardName
	m.TeamID = r.TeamID
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt
}

// PermissionModel is the GORM database model for permissions
type PermissionModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"not null;uniqueIndex;type:varchar(100)"`
	GuardName string `gorm:"not null;default:web;type:varchar(20)"`
	CreatedAt time.Time
}

// TableName specifies the table name for GORM
func (PermissionModel) TableName() string {
	return "permissions"
}

// ToDomain converts GORM model to domain entity
func (m *PermissionModel) ToDomain() *rbac.Permission {
	return &rbac.Permission{
		ID:        m.ID,
		Name:      m.Name,
		GuardName: m.GuardName,
		CreatedAt: m.CreatedAt,
	}
}

// FromDomain converts domain entity to GORM model
func (m *PermissionModel) FromDomain(p *rbac.Permission) {
	m.ID = p.ID
	m.Name = p.Name
	m.GuardName = p.GuardName
	m.CreatedAt = p.CreatedAt
}

// PasswordResetTokenModel is the GORM database model for password reset tokens
type PasswordResetTokenModel struct {
	Email     string    `gorm:"primaryKey;type:varchar(255)"`
	TokenHash string    `gorm:"not null;type:varchar(255)"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for GORM
func (PasswordResetTokenModel) TableName() string {
	return "password_reset_tokens"
}

// ToDomain converts GORM model to domain entity
func (m *PasswordResetTokenModel) ToDomain() *rbac.PasswordResetToken {
	return &rbac.PasswordResetToken{
		Email:     m.Email,
		TokenHash: m.TokenHash,
		CreatedAt: m.CreatedAt,
	}
}

// FromDomain converts domain entity to GORM model
func (m *PasswordResetTokenModel) FromDomain(t *rbac.PasswordResetToken) {
	m.Email = t.Email
	m.TokenHash = t.TokenHash
	m.CreatedAt = t.CreatedAt
}
