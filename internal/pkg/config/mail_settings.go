package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Mail driver constants
const (
	MailDriverSMTP = "smtp"
	MailDriverLog  = "log"
)

// MailSettings holds the fallback mail credentials used when no mail settings row
// exists in the database
type MailSettings struct {
	Driver      string `mapstructure:"driver" validate:"required,oneof=smtp log"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	Encryption  string `mapstructure:"encryption" validate:"omitempty,oneof=tls ssl none"`
	FromAddress string `mapstructure:"from_address" validate:"required,email"`
	FromName    string `mapstructure:"from_name"`
	// PasswordResetURL is the front-end URL the reset token is appended to
	PasswordResetURL string `mapstructure:"password_reset_url"`
}

// Validate checks that all fields in MailSettings are valid
func (s *MailSettings) Validate() error {
	validate := validator.New()

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for MailSettings: %w", err)
	}

	if s.Driver == MailDriverSMTP && (s.Host == "" || s.Port == 0) {
		return fmt.Errorf("host and port are required for the smtp mail driver")
	}
	return nil
}
