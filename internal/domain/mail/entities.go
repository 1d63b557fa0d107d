package mail

import (
	"time"

	"github.com/MGTheTrain/admin-console/internal/pkg/validators"
)

// Mail settings scopes, most specific first
const (
	ScopeUser = "user"
	ScopeTeam = "team"
	ScopeApp  = "app"
)

// Encryption modes
const (
	EncryptionTLS  = "tls"
	EncryptionSSL  = "ssl"
	EncryptionNone = "none"
)

// EmailTemplate entity
type EmailTemplate struct {
	ID       string `validate:"required,uuid4"`
	Key      string `validate:"required,min=1,max=100"`
	Name     string `validate:"required,min=1,max=255"`
	Subject  string `validate:"required,min=1,max=255"`
	Body     string `validate:"required"`
	Locale   string `validate:"required,min=2,max=10"`
	Entities []string
	IsActive bool
	// TeamID scopes the template to a team; nil templates are shared
	TeamID    *string `validate:"omitempty,uuid4"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate for validating EmailTemplate struct
func (t *EmailTemplate) Validate() error {
	return validators.ValidateStruct(t)
}

// Settings holds SMTP credentials for one scope
type Settings struct {
	ID          string `validate:"required,uuid4"`
	Scope       string `validate:"required,oneof=app team user"`
	ScopeID     string `validate:"mailScope"`
	Host        string `validate:"required,hostname_rfc1123|ip"`
	Port        int    `validate:"required,min=1,max=65535"`
	Username    string
	Password    string
	Encryption  string `validate:"required,oneof=tls ssl none"`
	FromAddress string `validate:"required,email"`
	FromName    string `validate:"max=255"`
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate for validating Settings struct
func (s *Settings) Validate() error {
	return validators.ValidateStruct(s)
}

// Redacted returns a copy without the password
func (s *Settings) Redacted() *Settings {
	c := *s
	if c.Password != "" {
		c.Password = "********"
	}
	return &c
}

// Credentials are resolved SMTP settings ready for a mailer
type Credentials struct {
	Driver      string
	Host        string
	Port        int
	Username    string
	Password    string
	Encryption  string
	FromAddress string
	FromName    string
	// Source names where the credentials came from: user, team, app or config
	Source string
}

// Message is an outgoing email
type Message struct {
	To      []string `validate:"required,min=1,dive,email"`
	Cc      []string `validate:"dive,email"`
	Subject string   `validate:"required"`
	HTML    string
	Text    string
}

// Validate for validating Message struct
func (m *Message) Validate() error {
	return validators.ValidateStruct(m)
}
