package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MGTheTrain/admin-console/internal/domain/mail"
)

// EmailTemplateModel is the GORM database model for email templates
type EmailTemplateModel struct {
	ID        string   `gorm:"primaryKey;type:varchar(36)"`
	Key       string   `gorm:"not null;type:varchar(100);uniqueIndex:idx_email_templates_key_locale_team"`
	Name      string   `gorm:"not null;type:varchar(255)"`
	Subject   string   `gorm:"not null;type:varchar(255)"`
	Body      string   `gorm:"not null;type:text"`
	Locale    string   `gorm:"not null;type:varchar(10);uniqueIndex:idx_email_templates_key_locale_team"`
	Entities  []string `gorm:"serializer:json;type:text"`
	IsActive  bool     `gorm:"not null;default:true"`
	TeamID    *string  `gorm:"type:varchar(36);uniqueIndex:idx_email_templates_key_locale_team"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Team *TeamModel `gorm:"foreignKey:TeamID"`
}

// TableName specifies the table name for GORM
func (EmailTemplateModel) TableName() string {
	return "email_templates"
}

// BeforeCreate assigns a UUID when none is set
func (m *EmailTemplateModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// ToDomain converts GORM model to domain entity
func (m *EmailTemplateModel) ToDomain() *mail.EmailTemplate {
	return &mail.EmailTemplate{
		ID:        m.ID,
		Key:       m.Key,
		Name:      m.Name,
		Subject:   m.Subject,
		Body:      m.Body,
		Locale:    m.Locale,
		Entities:  m.Entities,
		IsActive:  m.IsActive,
		TeamID:    m.TeamID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain converts domain entity to GORM model
func (m *EmailTemplateModel) FromDomain(t *mail.EmailTemplate) {
	m.ID = t.ID
	m.Key = t.Key
	m.Name = t.Name
	m.Subject = t.Subject
	m.Body = t.Body
	m.Locale = t.Locale
	m.Entities = t.Entities
	m.IsActive = t.IsActive
	m.TeamID = t.TeamID
	m.CreatedAt = t.CreatedAt
	m.UpdatedAt = t.UpdatedAt
}

// MailSettingsModel is the GORM database model for scoped mail credentials
type MailSettingsModel struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	Scope       string `gorm:"not null;type:varchar(10);uniqueIndex:idx_mail_settings_scope"`
	ScopeID     string `gorm:"not null;default:'';type:varchar(36);uniqueIndex:idx_mail_settings_scope"`
	Host        string `gorm:"not null;type:varchar(255)"`
	Port        int    `gorm:"not null"`
	Username    string `gorm:"type:varchar(255)"`
	Password    string `gorm:"type:varchar(255)"`
	Encryption  string `gorm:"not null;type:varchar(10)"`
	FromAddress string `gorm:"not null;type:varchar(255)"`
	FromName    string `gorm:"type:varchar(255)"`
	IsActive    bool   `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (MailSettingsModel) TableName() string {
	return "mail_settings"
}

// BeforeCreate assigns a UUID when none is set
func (m *MailSettingsModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// ToDomain converts GORM model to domain entity
func (m *MailSettingsModel) ToDomain() *mail.Settings {
	return &mail.Settings{
		ID:          m.ID,
		Scope:       m.Scope,
		ScopeID:     m.ScopeID,
		Host:        m.Host,
		Port:        m.Port,
		Username:    m.Username,
		Password:    m.Password,
		Encryption:  m.Encryption,
		FromAddress: m.FromAddress,
		FromName:    m.FromName,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromDomain converts domain entity to GORM model
func (m *MailSettingsModel) FromDomain(s *mail.Settings) {
	m.ID = s.ID
	m.Scope = s.Scope
	m.ScopeID = s.ScopeID
	m.Host = s.Host
	m.Port = s.Port
	m.Username = s.Username
	m.Password = s.Password
	m.Encryption = s.Encryption
	m.FromAddress = s.FromAddress
	m.FromName = s.FromName
	m.IsActive = s.IsActive
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt
}
