package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Error channel constants
const (
	ErrorChannelToast    = "toast"
	ErrorChannelSlack    = "slack"
	ErrorChannelEmail    = "email"
	ErrorChannelLog      = "log"
	ErrorChannelDatabase = "database"
)

// ErrorHandlingSettings configures where reported errors are sent
type ErrorHandlingSettings struct {
	Channels        []string `mapstructure:"channels" validate:"dive,oneof=toast slack email log database"`
	SlackWebhookURL string   `mapstructure:"slack_webhook_url" validate:"omitempty,url"`
	EmailRecipients []string `mapstructure:"email_recipients" validate:"dive,email"`
	// DontReport lists error kinds that only reach the toast channel
	DontReport []string `mapstructure:"dont_report"`
	// ShowDetails exposes error messages of unexpected errors in API responses
	ShowDetails bool `mapstructure:"show_details"`
}

// Validate checks that all fields in ErrorHandlingSettings are valid
func (s *ErrorHandlingSettings) Validate() error {
	validate := validator.New()

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for ErrorHandlingSettings: %w", err)
	}

	for _, channel := range s.Channels {
		if channel == ErrorChannelSlack && s.SlackWebhookURL == "" {
			return fmt.Errorf("slack webhook url is required for the slack channel")
		}
		if channel == ErrorChannelEmail && len(s.EmailRecipients) == 0 {
			return fmt.Errorf("at least one recipient is required for the email channel")
		}
	}
	return nil
}

// Enabled reports whether the channel is configured
func (s *ErrorHandlingSettings) Enabled(channel string) bool {
	for _, c := range s.Channels {
		if c == channel {
			return true
		}
	}
	return false
}
