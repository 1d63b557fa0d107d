package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MGTheTrain/admin-console/internal/domain/errorlog"
)

// ErrorLogModel is the GORM database model for reported errors
type ErrorLogModel struct {
	ID         string                 `gorm:"primaryKey;type:varchar(36)"`
	Reference  string                 `gorm:"not null;uniqueIndex;type:varchar(12)"`
	Level      string                 `gorm:"not null;index;type:varchar(20)"`
	Kind       string                 `gorm:"not null;index;type:varchar(50)"`
	Message    string                 `gorm:"not null;type:text"`
	ErrorType  string                 `gorm:"type:varchar(255)"`
	Stack      string                 `gorm:"type:text"`
	URL        string                 `gorm:"type:text"`
	Method     string                 `gorm:"type:varchar(10)"`
	IP         string                 `gorm:"type:varchar(45)"`
	UserID     *string                `gorm:"type:varchar(36);index"`
	Context    map[string]interface{} `gorm:"serializer:json;type:text"`
	ResolvedAt *time.Time             `gorm:"index"`
	ResolvedBy *string                `gorm:"type:varchar(36)"`
	CreatedAt  time.Time              `gorm:"index"`

	User *UserModel `gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for GORM
func (ErrorLogModel) TableName() string {
	return "error_logs"
}

// BeforeCreate assigns a UUID when none is set
func (m *ErrorLogModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// ToDomain converts GORM model to domain entity
func (m *ErrorLogModel) ToDomain() *errorlog.ErrorLog {
	return &errorlog.ErrorLog{
		ID:         m.ID,
		Reference:  m.Reference,
		Level:      m.Level,
		Kind:       m.Kind,
		Message:    m.Message,
		ErrorType:  m.ErrorType,
		Stack:      m.Stack,
		URL:        m.URL,
		Method:     m.Method,
		IP:         m.IP,
		UserID:     m.UserID,
		Context:    m.Context,
		ResolvedAt: m.ResolvedAt,
		ResolvedBy: m.ResolvedBy,
		CreatedAt:  m.CreatedAt,
	}
}

// FromDomain converts domain entity to GORM model
func (m *ErrorLogModel) FromDomain(e *errorlog.ErrorLog) {
	m.ID = e.ID
	m.Reference = e.Reference
	m.Level = e.Level
	m.Kind = e.Kind
	m.Message = e.Message
	m.ErrorType = e.ErrorType
	m.Stack = e.Stack
	m.URL = e.URL
	m.Method = e.Method
	m.IP = e.IP
	m.UserID = e.UserID
	m.Context = e.Context
	m.ResolvedAt = e.ResolvedAt
	m.ResolvedBy = e.ResolvedBy
	m.CreatedAt = e.CreatedAt
}
