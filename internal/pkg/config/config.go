package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding file settings,
// e.g. ADMIN_DATABASE_DSN overrides database.dsn
const EnvPrefix = "ADMIN"

// Config aggregates the settings of the REST API and the CLI
type Config struct {
	Port          string                `mapstructure:"port"`
	AllowOrigins  []string              `mapstructure:"allow_origins"`
	Logger        LoggerSettings        `mapstructure:"logger"`
	Database      DatabaseSettings      `mapstructure:"database"`
	Redis         RedisSettings         `mapstructure:"redis"`
	Session       SessionSettings       `mapstructure:"session"`
	Mail          MailSettings          `mapstructure:"mail"`
	ErrorHandling ErrorHandlingSettings `mapstructure:"error_handling"`
	I18n          I18nSettings          `mapstructure:"i18n"`
	Tenancy       TenancySettings       `mapstructure:"tenancy"`
	DataTable     DataTableSettings     `mapstructure:"datatable"`
	// PasswordResetExpiry is the lifetime of password reset tokens
	PasswordResetExpiry time.Duration `mapstructure:"password_reset_expiry"`
}

// InitializeConfig reads the YAML file at path, applies environment overrides and
// validates the result. An empty path loads defaults and environment only.
func InitializeConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates every settings section
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}

	validators := []interface{ Validate() error }{
		&c.Logger,
		&c.Database,
		&c.Redis,
		&c.Session,
		&c.Mail,
		&c.ErrorHandling,
		&c.I18n,
		&c.Tenancy,
		&c.DataTable,
	}
	for _, s := range validators {
		if err := s.Validate(); err != nil {
			return err
		}
	}

	if c.PasswordResetExpiry <= 0 {
		return fmt.Errorf("password reset expiry must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("allow_origins", []string{"*"})

	v.SetDefault("logger.log_level", LogLevelInfo)
	v.SetDefault("logger.log_type", LogTypeConsole)
	v.SetDefault("logger.file_path", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.format", "")
	v.SetDefault("logger.compress", true)

	v.SetDefault("database.type", SqliteDbType)
	v.SetDefault("database.dsn", "admin-console.db")
	v.SetDefault("database.name", "")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("session.lifetime", 2*time.Hour)
	v.SetDefault("session.preferences_ttl", 2*time.Hour)
	v.SetDefault("session.toast_ttl", 5*time.Minute)

	v.SetDefault("mail.driver", MailDriverLog)
	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.encryption", "tls")
	v.SetDefault("mail.from_address", "no-reply@example.com")
	v.SetDefault("mail.from_name", "Admin Console")
	v.SetDefault("mail.password_reset_url", "http://localhost:3000/reset-password")

	v.SetDefault("error_handling.channels", []string{ErrorChannelToast, ErrorChannelLog, ErrorChannelDatabase})
	v.SetDefault("error_handling.slack_webhook_url", "")
	v.SetDefault("error_handling.email_recipients", []string{})
	v.SetDefault("error_handling.dont_report", []string{"validation", "authentication", "authorization", "not_found"})
	v.SetDefault("error_handling.show_details", false)

	v.SetDefault("i18n.locales_dir", "locales")
	v.SetDefault("i18n.base_locale", "en")
	v.SetDefault("i18n.locales", []string{"en"})
	v.SetDefault("i18n.scan_paths", []string{"internal", "cmd", "templates"})
	v.SetDefault("i18n.scan_exclude", []string{"_test.go"})

	v.SetDefault("tenancy.enabled", false)
	v.SetDefault("tenancy.default_team", "Default")

	v.SetDefault("datatable.per_page_options", []int{10, 25, 50, 100})
	v.SetDefault("datatable.default_per_page", 25)

	v.SetDefault("password_reset_expiry", time.Hour)
}
