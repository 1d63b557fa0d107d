package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MGTheTrain/admin-console/internal/domain/notifications"
)

// NotificationModel is the GORM database model for database notifications
type NotificationModel struct {
	ID           string                 `gorm:"primaryKey;type:varchar(36)"`
	Type         string                 `gorm:"not null;type:varchar(255)"`
	NotifiableID string                 `gorm:"not null;index;type:varchar(36)"`
	Title        string                 `gorm:"not null;type:varchar(255)"`
	Message      string                 `gorm:"type:text"`
	Level        string                 `gorm:"not null;type:varchar(20)"`
	Data         map[string]interface{} `gorm:"serializer:json;type:text"`
	ReadAt       *time.Time             `gorm:"index"`
	CreatedAt    time.Time              `gorm:"index"`

	Notifiable *UserModel `gorm:"foreignKey:NotifiableID"`
}

// TableName specifies the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// BeforeCreate assigns a UUID when none is set
func (m *NotificationModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// ToDomain converts GORM model to domain entity
func (m *NotificationModel) ToDomain() *notifications.Notification {
	return &notifications.Notification{
		ID:           m.ID,
		Type:         m.Type,
		NotifiableID: m.NotifiableID,
		Title:        m.Title,
		Message:      m.Message,
		Level:        notifications.Level(m.Level),
		Data:         m.Data,
		ReadAt:       m.ReadAt,
		CreatedAt:    m.CreatedAt,
	}
}

// FromDomain converts domain entity to GORM model
func (m *NotificationModel) FromDomain(n *notifications.Notification) {
	m.ID = n.ID
	m.Type = n.Type
	m.NotifiableID = n.NotifiableID
	m.Title = n.Title
	m.Message = n.Message
	m.Level = string(n.Level)
	m.Data = n.Data
	m.ReadAt = n.ReadAt
	m.CreatedAt = n.CreatedAt
}
