// Package bootstrap assembles repositories, stores and application services from a
// Config. The REST API and the CLI share it.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/MGTheTrain/admin-console/internal/app"
	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
	"github.com/MGTheTrain/admin-console/internal/domain/errorlog"
	"github.com/MGTheTrain/admin-console/internal/domain/mail"
	"github.com/MGTheTrain/admin-console/internal/domain/notifications"
	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
	"github.com/MGTheTrain/admin-console/internal/infrastructure/cache"
	"github.com/MGTheTrain/admin-console/internal/infrastructure/mailer"
	"github.com/MGTheTrain/admin-console/internal/infrastructure/persistence"
	"github.com/MGTheTrain/admin-console/internal/pkg/config"
	"github.com/MGTheTrain/admin-console/internal/pkg/i18n"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"
)

// Dependencies holds all initialized application components
type Dependencies struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Logger logger.Logger

	Users          rbac.UserService
	Authorization  rbac.AuthorizationService
	Teams          rbac.TeamService
	Auth           rbac.AuthService
	PasswordResets rbac.PasswordResetService
	Tenancy        rbac.TenancyService

	EmailTemplates mail.EmailTemplateService
	MailSettings   mail.SettingsService
	Notifications  notifications.Service

	Reporter  errorlog.Reporter
	ErrorLogs errorlog.Service

	Tables        *datatable.Registry
	TableServices app.TableServices
	Translations  app.TranslationService
	Negotiator    *i18n.Negotiator
	Catalog       *i18n.Catalog
}

type repositories struct {
	users        rbac.UserRepository
	roles        rbac.RoleRepository
	permissions  rbac.PermissionRepository
	teams        rbac.TeamRepository
	resetTokens  rbac.PasswordResetTokenRepository
	templates    mail.EmailTemplateRepository
	mailSettings mail.SettingsRepository
	notices      notifications.Repository
	errorLogs    errorlog.Repository
	preferences  datatable.PreferenceStore
}

type stores struct {
	sessions    rbac.SessionStore
	preferences datatable.PreferenceStore
	toasts      notifications.ToastStore
	broadcaster notifications.Broadcaster
}

// New connects to the database and redis and builds every service. The schema is
// migrated when the database settings ask for it.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*Dependencies, error) {
	db, err := persistence.NewDBConnection(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create db connection: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := persistence.Migrate(db); err != nil {
			return nil, err
		}
		log.Info("Database migrations completed successfully")
	}

	repos, err := initializeRepositories(db, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	st, err := initializeStores(redisClient, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize stores: %w", err)
	}

	catalog, err := i18n.Load(cfg.I18n.LocalesDir, cfg.I18n.BaseLocale, cfg.I18n.Locales...)
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}
	if err := catalog.Register(); err != nil {
		return nil, fmt.Errorf("failed to register translations: %w", err)
	}

	deps := &Dependencies{
		Config:     cfg,
		DB:         db,
		Redis:      redisClient,
		Logger:     log,
		Negotiator: i18n.NewNegotiator(cfg.I18n.Locales),
		Catalog:    catalog,
	}
	if err := deps.initializeServices(db, repos, st); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return deps, nil
}

// Close releases the database and redis connections
func (d *Dependencies) Close() error {
	var firstErr error
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close redis client: %w", err)
		}
	}
	if d.DB != nil {
		if err := persistence.CloseDB(d.DB); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func initializeRepositories(db *gorm.DB, log logger.Logger) (*repositories, error) {
	var (
		r   repositories
		err error
	)
	if r.users, err = persistence.NewGormUserRepository(db, log); err != nil {
		return nil, fmt.Errorf("failed to create user repository: %w", err)
	}
	if r.roles, err = persistence.NewGormRoleRepository(db, log); err != nil {
		return nil, fmt.Errorf("failed to create role repository: %w", err)
	}
	if r.permissions, err = persistence.NewGormPermissionRepository(db, log); err != nil {
		return nil, fmt.Errorf("failed to create permission repository: %w", err)
	}
	if r.teams, err = persistence.NewGormTeamRepository(db, log); err != nil {
		return nil, fmt.Errorf("failed to create team repository: %w", err)
	}
	if r.resetTokens, err = persistence.NewGormPasswordResetTokenRepository(db, log); err != nil {
		return nil, fmt.Errorf("failed to create password reset token repository: %w", err)
	}
	if r.templates, err = persistence.NewGormEmailTemplateRepository(db, log); err != nil {
		return nil, fmt.Errorf("failed to create email template repository: %w", err)
	}
	if r.mailSettings, err = persistence.NewGormMailSettingsRepository(db, log); err != nil {
		return nil, fmt.Errorf("failed to create mail settings repository: %w", err)
	}
	if r.notices, err = persistence.NewGormNotificationRepository(db, log); err != nil {
		return nil, fmt.Errorf("failed to create notification repository: %w", err)
	}
	if r.errorLogs, err = persistence.NewGormErrorLogRepository(db, log); err != nil {
		return nil, fmt.Errorf("failed to create error log repository: %w", err)
	}
	if r.preferences, err = persistence.NewGormTablePreferenceStore(db, log); err != nil {
		return nil, fmt.Errorf("failed to create table preference store: %w", err)
	}
	return &r, nil
}

func initializeStores(client *redis.Client, cfg *config.Config, log logger.Logger) (*stores, error) {
	var (
		s   stores
		err error
	)
	if s.sessions, err = cache.NewRedisSessionStore(client, log); err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}
	if s.preferences, err = cache.NewRedisPreferenceStore(client, log, cfg.Session.PreferencesTTL); err != nil {
		return nil, fmt.Errorf("failed to create session preference store: %w", err)
	}
	if s.toasts, err = cache.NewRedisToastStore(client, log, cfg.Session.ToastTTL); err != nil {
		return nil, fmt.Errorf("failed to create toast store: %w", err)
	}
	if s.broadcaster, err = cache.NewRedisBroadcaster(client, log); err != nil {
		return nil, fmt.Errorf("failed to create broadcaster: %w", err)
	}
	return &s, nil
}

func (d *Dependencies) initializeServices(db *gorm.DB, r *repositories, s *stores) error {
	cfg, log := d.Config, d.Logger
	hasher := app.NewBcryptHasher(bcrypt.DefaultCost)

	var err error
	if d.Users, err = app.NewUserService(r.users, r.roles, r.teams, hasher, log); err != nil {
		return fmt.Errorf("failed to create user service: %w", err)
	}
	if d.Authorization, err = app.NewAuthorizationService(r.users, r.roles, r.permissions, log); err != nil {
		return fmt.Errorf("failed to create authorization service: %w", err)
	}
	if d.Teams, err = app.NewTeamService(r.teams, log); err != nil {
		return fmt.Errorf("failed to create team service: %w", err)
	}
	if d.Auth, err = app.NewAuthService(r.users, s.sessions, hasher, cfg.Session.Lifetime, log); err != nil {
		return fmt.Errorf("failed to create auth service: %w", err)
	}
	if d.Tenancy, err = app.NewTenancyService(d.Authorization, r.users, r.teams, r.roles, cfg.Tenancy.DefaultTeam, log); err != nil {
		return fmt.Errorf("failed to create tenancy service: %w", err)
	}

	mailSender, err := mailer.NewMailer(log)
	if err != nil {
		return fmt.Errorf("failed to create mailer: %w", err)
	}
	if d.MailSettings, err = app.NewMailSettingsService(r.mailSettings, cfg.Mail, log); err != nil {
		return fmt.Errorf("failed to create mail settings service: %w", err)
	}
	loader, err := persistence.NewGormEntityLoader(db, log, nil)
	if err != nil {
		return fmt.Errorf("failed to create entity loader: %w", err)
	}
	if d.EmailTemplates, err = app.NewEmailTemplateService(r.templates, loader, loader, d.MailSettings, mailSender, cfg.I18n.BaseLocale, log); err != nil {
		return fmt.Errorf("failed to create email template service: %w", err)
	}
	d.PasswordResets, err = app.NewPasswordResetService(
		r.users, r.resetTokens, hasher,
		d.EmailTemplates, d.MailSettings, mailSender,
		app.PasswordResetOptions{ResetURL: cfg.Mail.PasswordResetURL, Expiry: cfg.PasswordResetExpiry},
		log,
	)
	if err != nil {
		return fmt.Errorf("failed to create password reset service: %w", err)
	}

	d.Notifications, err = app.NewNotificationService(
		r.notices, s.toasts, s.broadcaster,
		d.EmailTemplates, d.MailSettings, mailSender, log,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification service: %w", err)
	}

	channels := app.NewErrorChannels(&cfg.ErrorHandling, d.Notifications, r.errorLogs, d.MailSettings, mailSender, log)
	if d.Reporter, err = app.NewErrorReporter(&cfg.ErrorHandling, channels, log); err != nil {
		return fmt.Errorf("failed to create error reporter: %w", err)
	}
	if d.ErrorLogs, err = app.NewErrorLogService(r.errorLogs, log); err != nil {
		return fmt.Errorf("failed to create error log service: %w", err)
	}

	queries, err := persistence.NewGormDataTableQueryBuilder(db, log)
	if err != nil {
		return fmt.Errorf("failed to create query builder: %w", err)
	}
	builder, err := app.NewDataTableBuilder(queries, log)
	if err != nil {
		return fmt.Errorf("failed to create data table builder: %w", err)
	}
	preferences, err := app.NewPreferencesService(s.preferences, r.preferences, log)
	if err != nil {
		return fmt.Errorf("failed to create preferences service: %w", err)
	}
	d.TableServices = app.TableServices{Builder: builder, Queries: queries, Preferences: preferences}

	d.Tables = datatable.NewRegistry(cfg.DataTable.PerPageOptions, cfg.DataTable.DefaultPerPage)
	err = app.RegisterTables(d.Tables, app.TableHandlers{
		Users:         d.Users,
		Teams:         d.Teams,
		ErrorLogs:     d.ErrorLogs,
		Notifications: d.Notifications,
	})
	if err != nil {
		return err
	}

	if d.Translations, err = app.NewTranslationService(&cfg.I18n, log); err != nil {
		return fmt.Errorf("failed to create translation service: %w", err)
	}

	log.Info("Application services initialized successfully")
	return nil
}
