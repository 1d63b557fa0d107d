package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// RedisSettings holds the connection settings of the redis instance backing sessions,
// toasts, table preferences and notification broadcasts
type RedisSettings struct {
	URL          string        `mapstructure:"url" validate:"required"`
	PoolSize     int           `mapstructure:"pool_size" validate:"omitempty,min=1,max=1000"`
	MinIdleConns int           `mapstructure:"min_idle_conns" validate:"omitempty,min=0"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Validate checks that all fields in RedisSettings are valid
func (s *RedisSettings) Validate() error {
	validate := validator.New()

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for RedisSettings: %w", err)
	}
	return nil
}

// SessionSettings configures login sessions and the session layer of table preferences
type SessionSettings struct {
	Lifetime       time.Duration `mapstructure:"lifetime" validate:"required"`
	PreferencesTTL time.Duration `mapstructure:"preferences_ttl" validate:"required"`
	ToastTTL       time.Duration `mapstructure:"toast_ttl" validate:"required"`
}

// Validate checks that all fields in SessionSettings are valid
func (s *SessionSettings) Validate() error {
	validate := validator.New()

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for SessionSettings: %w", err)
	}
	if s.Lifetime < time.Minute {
		return fmt.Errorf("session lifetime must be at least one minute")
	}
	return nil
}
