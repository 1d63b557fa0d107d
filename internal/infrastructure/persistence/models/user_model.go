package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
)

// UserModel is the GORM database model for users
type UserModel struct {
	ID              string     `gorm:"primaryKey;type:varchar(36)"`
	Name            string     `gorm:"not null;type:varchar(255)"`
	Email           string     `gorm:"not null;uniqueIndex;type:varchar(255)"`
	PasswordHash    string     `gorm:"not null;type:varchar(255)"`
	Locale          string     `gorm:"not null;default:en;type:varchar(10)"`
	IsActive        bool       `gorm:"not null;default:true"`
	EmailVerifiedAt *time.Time `gorm:"index"`
	LastLoginAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Roles       []RoleModel       `gorm:"many2many:user_roles;joinForeignKey:UserID;joinReferences:RoleID"`
	Permissions []PermissionModel `gorm:"many2many:user_permissions;joinForeignKey:UserID;joinReferences:PermissionID"`
	Teams       []TeamModel       `gorm:"many2many:team_users;joinForeignKey:UserID;joinReferences:TeamID"`
}

// TableName specifies the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID when none is set
func (m *UserModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// ToDomain converts GORM model to domain entity
func (m *UserModel) ToDomain() *rbac.User {
	u := &rbac.User{
		ID:              m.ID,
		Name:            m.Name,
		Email:           m.Email,
		PasswordHash:    m.PasswordHash,
		Locale:          m.Locale,
		IsActive:        m.IsActive,
		EmailVerifiedAt: m.EmailVerifiedAt,
		LastLoginAt:     m.LastLoginAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	for i := range m.Roles {
		u.Roles = append(u.Roles, *m.Roles[i].ToDomain())
	}
	for i := range m.Permissions {
		u.Permissions = append(u.Permissions, *m.Permissions[i].ToDomain())
	}
	for i := range m.Teams {
		u.Teams = append(u.Teams, *m.Teams[i].ToDomain())
	}
	return u
}

// FromDomain converts domain entity to GORM model. Associations are managed
// through the repository and not copied.
func (m *UserModel) FromDomain(u *rbac.User) {
	m.ID = u.ID
	m.Name = u.Name
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.Locale = u.Locale
	m.IsActive = u.IsActive
	m.EmailVerifiedAt = u.EmailVerifiedAt
	m.LastLoginAt = u.LastLoginAt
	m.CreatedAt = u.CreatedAt
	m.UpdatedAt = u.UpdatedAt
}
