package models

import (
	"time"

	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
)

// TablePreferenceModel stores the table preferences of a user, one row per entity
type TablePreferenceModel struct {
	UserID      string                `gorm:"primaryKey;type:varchar(36)"`
	Entity      string                `gorm:"primaryKey;type:varchar(100)"`
	Preferences datatable.Preferences `gorm:"serializer:json;type:text;not null"`
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (TablePreferenceModel) TableName() string {
	return "table_preferences"
}

// All returns every model migrated on startup
func All() []interface{} {
	return []interface{}{
		&TeamModel{},
		&PermissionModel{},
		&RoleModel{},
		&UserModel{},
		&PasswordResetTokenModel{},
		&ErrorLogModel{},
		&NotificationModel{},
		&EmailTemplateModel{},
		&MailSettingsModel{},
		&TablePreferenceModel{},
	}
}
