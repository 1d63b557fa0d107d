package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/MGTheTrain/admin-console/internal/domain/errorlog"
	"github.com/MGTheTrain/admin-console/internal/domain/mail"
	"github.com/MGTheTrain/admin-console/internal/domain/notifications"
	"github.com/MGTheTrain/admin-console/internal/pkg/config"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"
)

// ToastMessage is what the user sees for an error of kind. Internal errors only
// show their reference.
func ToastMessage(entry *errorlog.ErrorLog) (string, string) {
	switch entry.Kind {
	case errs.KindInternal:
		return "Something went wrong", fmt.Sprintf("Please contact support with reference %s.", entry.Reference)
	case errs.KindAuthentication:
		return "Authentication required", entry.Message
	case errs.KindAuthorization:
		return "Not allowed", entry.Message
	case errs.KindNotFound:
		return "Not found", entry.Message
	default:
		return "Please check your input", entry.Message
	}
}

// toastErrorChannel shows errors to the session they happened in
type toastErrorChannel struct {
	notifications notifications.Service
}

// NewToastErrorChannel creates the toast channel
func NewToastErrorChannel(service notifications.Service) errorlog.Channel {
	return &toastErrorChannel{notifications: service}
}

func (c *toastErrorChannel) Name() string   { return config.ErrorChannelToast }
func (c *toastErrorChannel) External() bool { return false }

func (c *toastErrorChannel) Send(ctx context.Context, entry *errorlog.ErrorLog, report *errorlog.Report) error {
	if report.SessionID == "" && report.UserID == "" {
		return nil
	}
	level := notifications.LevelError
	if entry.Level == errorlog.LevelWarning {
		level = notifications.LevelWarning
	}
	title, message := ToastMessage(entry)
	return c.notifications.Toast(ctx, report.SessionID, report.UserID, level, title, message)
}

// logErrorChannel writes errors to the application log
type logErrorChannel struct {
	logger logger.Logger
}

// NewLogErrorChannel creates the log channel
func NewLogErrorChannel(logger logger.Logger) errorlog.Channel {
	return &logErrorChannel{logger: logger}
}

func (c *logErrorChannel) Name() string   { return config.ErrorChannelLog }
func (c *logErrorChannel) External() bool { return false }

func (c *logErrorChannel) Send(_ context.Context, entry *errorlog.ErrorLog, _ *errorlog.Report) error {
	attrs := []interface{}{"reference", entry.Reference, "kind", entry.Kind, "level", entry.Level}
	if entry.Method != "" {
		attrs = append(attrs, "method", entry.Method, "url", entry.URL)
	}
	if entry.UserID != nil {
		attrs = append(attrs, "user_id", *entry.UserID)
	}
	log := c.logger.With(attrs...)

	switch entry.Level {
	case errorlog.LevelWarning:
		log.Warn(entry.Message)
	default:
		log.Error(entry.Message)
	}
	if entry.Stack != "" {
		log.Debug("stack: ", entry.Stack)
	}
	return nil
}

// databaseErrorChannel stores errors in the error_logs table
type databaseErrorChannel struct {
	repo errorlog.Repository
}

// NewDatabaseErrorChannel creates the database channel
func NewDatabaseErrorChannel(repo errorlog.Repository) errorlog.Channel {
	return &databaseErrorChannel{repo: repo}
}

func (c *databaseErrorChannel) Name() string   { return config.ErrorChannelDatabase }
func (c *databaseErrorChannel) External() bool { return false }

func (c *databaseErrorChannel) Send(ctx context.Context, entry *errorlog.ErrorLog, _ *errorlog.Report) error {
	return c.repo.Create(ctx, entry)
}

// slackErrorChannel posts errors to a Slack incoming webhook
type slackErrorChannel struct {
	webhookURL string
	client     *http.Client
}

// NewSlackErrorChannel creates the slack channel. A nil client uses a client with a
// ten second timeout.
func NewSlackErrorChannel(webhookURL string, client *http.Client) errorlog.Channel {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &slackErrorChannel{webhookURL: webhookURL, client: client}
}

func (c *slackErrorChannel) Name() string   { return config.ErrorChannelSlack }
func (c *slackErrorChannel) External() bool { return true }

func (c *slackErrorChannel) Send(ctx context.Context, entry *errorlog.ErrorLog, _ *errorlog.Report) error {
	text := fmt.Sprintf("*%s* `%s` %s\n%s %s", strings.ToUpper(entry.Level), entry.Reference, entry.Message, entry.Method, entry.URL)
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to encode slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// emailErrorChannel mails errors to the configured recipients
type emailErrorChannel struct {
	recipients []string
	settings   mail.SettingsService
	mailer     mail.Mailer
}

// NewEmailErrorChannel creates the email channel. It sends with the app level
// mail credentials.
func NewEmailErrorChannel(recipients []string, settings mail.SettingsService, mailer mail.Mailer) errorlog.Channel {
	return &emailErrorChannel{recipients: recipients, settings: settings, mailer: mailer}
}

func (c *emailErrorChannel) Name() string   { return config.ErrorChannelEmail }
func (c *emailErrorChannel) External() bool { return true }

func (c *emailErrorChannel) Send(ctx context.Context, entry *errorlog.ErrorLog, _ *errorlog.Report) error {
	creds, err := c.settings.Resolve(ctx, "", "")
	if err != nil {
		return err
	}

	text := fmt.Sprintf("Reference: %s\nLevel: %s\nKind: %s\nRequest: %s %s\n\n%s\n\n%s",
		entry.Reference, entry.Level, entry.Kind, entry.Method, entry.URL, entry.Message, entry.Stack)
	return c.mailer.Send(ctx, creds, &mail.Message{
		To:      c.recipients,
		Subject: fmt.Sprintf("[%s] %s", strings.ToUpper(entry.Level), entry.Reference),
		Text:    text,
		HTML:    "<pre>" + html.EscapeString(text) + "</pre>",
	})
}

// NewErrorChannels builds every channel enabled in settings
func NewErrorChannels(
	settings *config.ErrorHandlingSettings,
	notificationService notifications.Service,
	repo errorlog.Repository,
	mailSettings mail.SettingsService,
	mailer mail.Mailer,
	logger logger.Logger,
) []errorlog.Channel {
	var channels []errorlog.Channel
	for _, name := range settings.Channels {
		switch name {
		case config.ErrorChannelToast:
			channels = append(channels, NewToastErrorChannel(notificationService))
		case config.ErrorChannelLog:
			channels = append(channels, NewLogErrorChannel(logger))
		case config.ErrorChannelDatabase:
			channels = append(channels, NewDatabaseErrorChannel(repo))
		case config.ErrorChannelSlack:
			channels = append(channels, NewSlackErrorChannel(settings.SlackWebhookURL, nil))
		case config.ErrorChannelEmail:
			channels = append(channels, NewEmailErrorChannel(settings.EmailRecipients, mailSettings, mailer))
		}
	}
	return channels
}
