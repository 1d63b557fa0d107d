package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Log level constants
const (
	LogLevelInfo     = "info"
	LogLevelDebug    = "debug"
	LogLevelError    = "error"
	LogLevelWarning  = "warning"
	LogLevelCritical = "critical"
)

// Log type constants
const (
	LogTypeConsole = "console"
	LogTypeFile    = "file"
)

// Log format constants. An empty format picks text on the console and json in files.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// LoggerSettings configures the application logger. Rotation limits only apply to the file logger.
type LoggerSettings struct {
	LogLevel   string `mapstructure:"log_level" validate:"required,oneof=info debug error warning critical"`
	LogType    string `mapstructure:"log_type" validate:"required,oneof=console file"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=text json"`
	FilePath   string `mapstructure:"file_path" validate:"required_if=LogType file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// rotationLimits bounds the lumberjack settings of a file logger
type rotationLimits struct {
	MaxSize    int `validate:"min=1,max=100"`
	MaxBackups int `validate:"min=1,max=10"`
	MaxAge     int `validate:"min=1,max=365"`
}

// Validate checks the logger settings, including the rotation limits of a file logger
func (s *LoggerSettings) Validate() error {
	validate := validator.New()

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for LoggerSettings: %w", err)
	}
	if s.LogType != LogTypeFile {
		return nil
	}

	limits := rotationLimits{MaxSize: s.MaxSize, MaxBackups: s.MaxBackups, MaxAge: s.MaxAge}
	if err := validate.Struct(limits); err != nil {
		return fmt.Errorf("invalid rotation settings for file logger %s: %w", s.FilePath, err)
	}
	return nil
}

// JSON reports whether records are written as JSON
func (s *LoggerSettings) JSON() bool {
	if s.Format == "" {
		return s.LogType == LogTypeFile
	}
	return s.Format == LogFormatJSON
}
