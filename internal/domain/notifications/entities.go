package notifications

import (
	"time"

	"github.com/MGTheTrain/admin-console/internal/pkg/validators"
)

// Level of a notification or toast
type Level string

// Levels
const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Delivery channels
const (
	ChannelDatabase  = "database"
	ChannelBroadcast = "broadcast"
	ChannelToast     = "toast"
	ChannelMail      = "mail"
)

// Notification entity stored for a user
type Notification struct {
	ID           string                 `json:"id" validate:"required,uuid4"`
	Type         string                 `json:"type" validate:"required,max=255"`
	NotifiableID string                 `json:"notifiable_id" validate:"required,uuid4"`
	Title        string                 `json:"title" validate:"required,max=255"`
	Message      string                 `json:"message"`
	Level        Level                  `json:"level" validate:"required,oneof=success info warning error"`
	Data         map[string]interface{} `json:"data,omitempty"`
	ReadAt       *time.Time             `json:"read_at"`
	CreatedAt    time.Time              `json:"created_at"`
}

// Validate for validating Notification struct
func (n *Notification) Validate() error {
	return validators.ValidateStruct(n)
}

// IsRead reports whether the notification was read
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// Toast is a one-shot message shown on the next page render
type Toast struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is what a sender hands to the notification service
type Message struct {
	Type    string                 `json:"type" validate:"required,max=255"`
	Title   string                 `json:"title" validate:"required,max=255"`
	Body    string                 `json:"body"`
	Level   Level                  `json:"level" validate:"required,oneof=success info warning error"`
	Data    map[string]interface{} `json:"data,omitempty"`
	// MailTemplate sends this email template on the mail channel instead of a plain message
	MailTemplate string `json:"mail_template,omitempty"`
}

// Validate for validating Message struct
func (m *Message) Validate() error {
	return validators.ValidateStruct(m)
}

// Event is published to live subscribers
type Event struct {
	Kind         string        `json:"kind"`
	Notification *Notification `json:"notification,omitempty"`
	Toast        *Toast        `json:"toast,omitempty"`
	UnreadCount  int64         `json:"unread_count"`
}

// Event kinds
const (
	EventNotification = "notification"
	EventToast        = "toast"
	EventRead         = "read"
)

// Recipient is a notification target
type Recipient struct {
	UserID    string
	Email     string
	Locale    string
	SessionID string
}
