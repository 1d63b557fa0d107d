package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
)

// TeamModel is the GORM database model for teams
type TeamModel struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	Name        string `gorm:"not null;uniqueIndex;type:varchar(255)"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Users []UserModel `gorm:"many2many:team_users;joinForeignKey:TeamID;joinReferences:UserID"`
	Roles []RoleModel `gorm:"foreignKey:TeamID"`
}

// TableName specifies the table name for GORM
func (TeamModel) TableName() string {
	return "teams"
}

// BeforeCreate assigns a UUID when none is set
func (m *TeamModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// ToDomain converts GORM model to domain entity
func (m *TeamModel) ToDomain() *rbac.Team {
	return &rbac.Team{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromDomain converts domain entity to GORM model
func (m *TeamModel) FromDomain(t *rbac.Team) {
	m.ID = t.ID
	m.Name = t.Name
	m.Description = t.Description
	m.CreatedAt = t.CreatedAt
	m.UpdatedAt = t.UpdatedAt
}
