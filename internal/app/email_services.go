package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/MGTheTrain/admin-console/internal/domain/mail"
	"github.com/MGTheTrain/admin-console/internal/pkg/config"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"
	"github.com/MGTheTrain/admin-console/internal/pkg/validators"
)

// emailTemplateService implements the mail.EmailTemplateService interface
type emailTemplateService struct {
	templates      mail.EmailTemplateRepository
	loader         mail.EntityLoader
	resolver       mail.AttributeResolver
	settings       mail.SettingsService
	mailer         mail.Mailer
	fallbackLocale string
	logger         logger.Logger
}

// NewEmailTemplateService creates a new instance of EmailTemplateService. Sends for a
// locale without an active template fall back to fallbackLocale.
func NewEmailTemplateService(
	templates mail.EmailTemplateRepository,
	loader mail.EntityLoader,
	resolver mail.AttributeResolver,
	settings mail.SettingsService,
	mailer mail.Mailer,
	fallbackLocale string,
	logger logger.Logger,
) (mail.EmailTemplateService, error) {
	if fallbackLocale == "" {
		fallbackLocale = "en"
	}
	return &emailTemplateService{
		templates:      templates,
		loader:         loader,
		resolver:       resolver,
		settings:       settings,
		mailer:         mailer,
		fallbackLocale: fallbackLocale,
		logger:         logger,
	}, nil
}

// Create validates and stores a template
func (s *emailTemplateService) Create(ctx context.Context, input *mail.TemplateInput) (*mail.EmailTemplate, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	tpl := &mail.EmailTemplate{ID: uuid.NewString()}
	applyTemplateInput(tpl, input)
	if err := s.templates.Create(ctx, tpl); err != nil {
		return nil, err
	}

	s.logger.Info("Created email template ", tpl.Key, " with id ", tpl.ID)
	return tpl, nil
}

// Update replaces the editable fields of a template
func (s *emailTemplateService) Update(ctx context.Context, templateID string, input *mail.TemplateInput) (*mail.EmailTemplate, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	tpl, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	applyTemplateInput(tpl, input)
	if err := s.templates.Update(ctx, tpl); err != nil {
		return nil, err
	}

	s.logger.Info("Updated email template with id ", tpl.ID)
	return tpl, nil
}

// GetByID loads a template
func (s *emailTemplateService) GetByID(ctx context.Context, templateID string) (*mail.EmailTemplate, error) {
	return s.templates.GetByID(ctx, templateID)
}

// List lists shared templates and those of teamID
func (s *emailTemplateService) List(ctx context.Context, teamID *string) ([]*mail.EmailTemplate, error) {
	return s.templates.List(ctx, teamID)
}

// DeleteByID deletes a template
func (s *emailTemplateService) DeleteByID(ctx context.Context, templateID string) error {
	if err := s.templates.DeleteByID(ctx, templateID); err != nil {
		return err
	}
	s.logger.Info("Deleted email template with id ", templateID)
	return nil
}

// Preview renders a template against stored models
func (s *emailTemplateService) Preview(ctx context.Context, templateID string, refs mail.EntityRef) (*mail.Rendered, error) {
	tpl, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	entities := make(map[string]interface{}, len(refs))
	for entity, id := range refs {
		model, err := s.loader.Load(ctx, entity, id)
		if err != nil {
			return nil, err
		}
		entities[entity] = model
	}
	return mail.Render(tpl, entities, s.resolver), nil
}

// Send renders the active template for the key and locale and mails it with the
// credentials resolved for the sender. String entity values are loaded as ids.
func (s *emailTemplateService) Send(ctx context.Context, req *mail.SendRequest) (*mail.Rendered, error) {
	if req == nil || req.TemplateKey == "" {
		return nil, errs.Invalid("template key is required")
	}

	tpl, err := s.activeTemplate(ctx, req.TemplateKey, req.Locale)
	if err != nil {
		return nil, err
	}

	entities := make(map[string]interface{}, len(req.Entities))
	for entity, value := range req.Entities {
		if id, ok := value.(string); ok {
			model, err := s.loader.Load(ctx, entity, id)
			if err != nil {
				return nil, err
			}
			value = model
		}
		entities[entity] = value
	}

	rendered := mail.Render(tpl, entities, s.resolver)
	if len(rendered.Unresolved) > 0 {
		s.logger.Warn("Email template ", tpl.Key, " left unresolved tags: ", strings.Join(rendered.Unresolved, ", "))
	}

	creds, err := s.settings.Resolve(ctx, req.UserID, req.TeamID)
	if err != nil {
		return nil, err
	}
	msg := &mail.Message{
		To:      req.To,
		Subject: rendered.Subject,
		HTML:    rendered.HTML,
		Text:    htmlToText(rendered.HTML),
	}
	if err := s.mailer.Send(ctx, creds, msg); err != nil {
		return nil, fmt.Errorf("failed to send email template %s: %w", tpl.Key, err)
	}

	s.logger.Info("Sent email template ", tpl.Key, " (", tpl.Locale, ") to ", len(req.To), " recipients")
	return rendered, nil
}

// AvailableTags lists the merge tags of an entity type as "entity.path"
func (s *emailTemplateService) AvailableTags(entity string) ([]string, error) {
	attrs, err := s.loader.Attributes(entity)
	if err != nil {
		return nil, err
	}
	tags := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		tags = append(tags, entity+"."+attr)
	}
	sort.Strings(tags)
	return tags, nil
}

func (s *emailTemplateService) activeTemplate(ctx context.Context, key, locale string) (*mail.EmailTemplate, error) {
	if locale == "" {
		locale = s.fallbackLocale
	}
	tpl, err := s.templates.GetActiveByKey(ctx, key, locale)
	if errors.Is(err, errs.ErrNotFound) && locale != s.fallbackLocale {
		return s.templates.GetActiveByKey(ctx, key, s.fallbackLocale)
	}
	return tpl, err
}

func (s *emailTemplateService) validateInput(input *mail.TemplateInput) error {
	if input == nil {
		return errs.Invalid("template input is required")
	}
	if err := validators.ValidateStruct(input); err != nil {
		return err
	}
	for _, entity := range input.Entities {
		if _, err := s.loader.Attributes(entity); err != nil {
			return errs.Validation(fmt.Sprintf("unknown entity %s", entity), map[string]string{"Entities": "oneof"})
		}
	}
	return nil
}

func applyTemplateInput(tpl *mail.EmailTemplate, input *mail.TemplateInput) {
	tpl.Key = strings.TrimSpace(input.Key)
	tpl.Name = strings.TrimSpace(input.Name)
	tpl.Subject = input.Subject
	tpl.Body = input.Body
	tpl.Locale = input.Locale
	tpl.Entities = input.Entities
	tpl.IsActive = input.IsActive
	tpl.TeamID = input.TeamID
}

var (
	htmlTagPattern   = regexp.MustCompile(`<[^>]*>`)
	blankLinePattern = regexp.MustCompile(`\n{3,}`)
)

// htmlToText derives the plain text alternative of a rendered body
func htmlToText(s string) string {
	s = strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n", "</p>", "\n\n").Replace(s)
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&#34;", `"`, "&#39;", "'", "&amp;", "&").Replace(s)
	return strings.TrimSpace(blankLinePattern.ReplaceAllString(s, "\n\n"))
}

// mailSettingsService implements the mail.SettingsService interface
type mailSettingsService struct {
	settings mail.SettingsRepository
	defaults config.MailSettings
	logger   logger.Logger
}

// NewMailSettingsService creates a new instance of SettingsService falling back to
// the configured mail settings
func NewMailSettingsService(settings mail.SettingsRepository, defaults config.MailSettings, logger logger.Logger) (mail.SettingsService, error) {
	return &mailSettingsService{
		settings: settings,
		defaults: defaults,
		logger:   logger,
	}, nil
}

// Save creates or replaces the settings of a scope. The returned copy is redacted.
func (s *mailSettingsService) Save(ctx context.Context, settings *mail.Settings) (*mail.Settings, error) {
	if settings.ID == "" {
		settings.ID = uuid.NewString()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := s.settings.Upsert(ctx, settings); err != nil {
		return nil, err
	}

	s.logger.Info("Saved ", settings.Scope, " mail settings")
	return settings.Redacted(), nil
}

// List lists all stored settings redacted
func (s *mailSettingsService) List(ctx context.Context) ([]*mail.Settings, error) {
	all, err := s.settings.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*mail.Settings, 0, len(all))
	for _, settings := range all {
		out = append(out, settings.Redacted())
	}
	return out, nil
}

// Resolve returns the first active settings of the user, the team and the app,
// and the configured defaults when none is stored
func (s *mailSettingsService) Resolve(ctx context.Context, userID, teamID string) (*mail.Credentials, error) {
	candidates := []struct{ scope, id string }{
		{mail.ScopeUser, userID},
		{mail.ScopeTeam, teamID},
		{mail.ScopeApp, ""},
	}
	for _, c := range candidates {
		if c.scope != mail.ScopeApp && c.id == "" {
			continue
		}
		settings, err := s.settings.FindActive(ctx, c.scope, c.id)
		if err != nil {
			return nil, err
		}
		if settings != nil {
			return &mail.Credentials{
				Driver:      config.MailDriverSMTP,
				Host:        settings.Host,
				Port:        settings.Port,
				Username:    settings.Username,
				Password:    settings.Password,
				Encryption:  settings.Encryption,
				FromAddress: settings.FromAddress,
				FromName:    settings.FromName,
				Source:      c.scope,
			}, nil
		}
	}

	return &mail.Credentials{
		Driver:      s.defaults.Driver,
		Host:        s.defaults.Host,
		Port:        s.defaults.Port,
		Username:    s.defaults.Username,
		Password:    s.defaults.Password,
		Encryption:  s.defaults.Encryption,
		FromAddress: s.defaults.FromAddress,
		FromName:    s.defaults.FromName,
		Source:      "config",
	}, nil
}
