package mail

import "context"

// EntityRef names a model instance to merge into a template, e.g. {"user": "<id>"}
type EntityRef map[string]string

// TemplateInput carries the editable fields of a template
type TemplateInput struct {
	Key      string   `json:"key" validate:"required,min=1,max=100"`
	Name     string   `json:"name" validate:"required,min=1,max=255"`
	Subject  string   `json:"subject" validate:"required,min=1,max=255"`
	Body     string   `json:"body" validate:"required"`
	Locale   string   `json:"locale" validate:"required,min=2,max=10"`
	Entities []string `json:"entities"`
	IsActive bool     `json:"is_active"`
	TeamID   *string  `json:"team_id" validate:"omitempty,uuid4"`
}

// SendRequest addresses a template to recipients
type SendRequest struct {
	TemplateKey string
	Locale      string
	To          []string
	Entities    map[string]interface{}
	// UserID and TeamID select the mail credentials
	UserID string
	TeamID string
}

// EmailTemplateService manages templates and sends them
type EmailTemplateService interface {
	Create(ctx context.Context, input *TemplateInput) (*EmailTemplate, error)
	Update(ctx context.Context, templateID string, input *TemplateInput) (*EmailTemplate, error)
	GetByID(ctx context.Context, templateID string) (*EmailTemplate, error)
	List(ctx context.Context, teamID *string) ([]*EmailTemplate, error)
	DeleteByID(ctx context.Context, templateID string) error
	// Preview renders a template against stored models
	Preview(ctx context.Context, templateID string, refs EntityRef) (*Rendered, error)
	// Send renders the active template for key and locale and mails it
	Send(ctx context.Context, req *SendRequest) (*Rendered, error)
	// AvailableTags lists the merge tags an entity type offers
	AvailableTags(entity string) ([]string, error)
}

// SettingsService stores mail settings and resolves credentials
type SettingsService interface {
	Save(ctx context.Context, settings *Settings) (*Settings, error)
	List(ctx context.Context) ([]*Settings, error)
	// Resolve returns the most specific active credentials: user, team, app, config
	Resolve(ctx context.Context, userID, teamID string) (*Credentials, error)
}

// Mailer delivers messages with resolved credentials
type Mailer interface {
	Send(ctx context.Context, creds *Credentials, msg *Message) error
}

// EmailTemplateRepository persists templates
type EmailTemplateRepository interface {
	Create(ctx context.Context, tpl *EmailTemplate) error
	GetByID(ctx context.Context, templateID string) (*EmailTemplate, error)
	// GetActiveByKey finds the active template for key and locale
	GetActiveByKey(ctx context.Context, key, locale string) (*EmailTemplate, error)
	List(ctx context.Context, teamID *string) ([]*EmailTemplate, error)
	Update(ctx context.Context, tpl *EmailTemplate) error
	DeleteByID(ctx context.Context, templateID string) error
}

// SettingsRepository persists mail settings
type SettingsRepository interface {
	Upsert(ctx context.Context, settings *Settings) error
	// FindActive returns the active settings of a scope or nil
	FindActive(ctx context.Context, scope, scopeID string) (*Settings, error)
	List(ctx context.Context) ([]*Settings, error)
}

// EntityLoader loads merge tag sources by entity type and id
type EntityLoader interface {
	Load(ctx context.Context, entity, id string) (interface{}, error)
	// Attributes lists the resolvable paths of an entity type
	Attributes(entity string) ([]string, error)
}
