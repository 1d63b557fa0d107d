//go:build integration
// +build integration

package app

import (
	"context"
	"testing"
	"time"

	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
	"github.com/MGTheTrain/admin-console/internal/domain/errorlog"
	"github.com/MGTheTrain/admin-console/internal/domain/mail"
	"github.com/MGTheTrain/admin-console/internal/domain/notifications"
	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
	"github.com/MGTheTrain/admin-console/internal/infrastructure/persistence"
	"github.com/MGTheTrain/admin-console/internal/pkg/config"
	"github.com/MGTheTrain/admin-console/internal/pkg/testutil"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Test constants
const (
	TestPassword     = "correct-horse-battery"
	TestDefaultTeam  = "Default"
	TestFromAddress  = "admin@example.com"
	TestResetURL     = "https://admin.example.com/reset-password"
	TestSessionID    = "session-1"
	TestErrorMailbox = "ops@example.com"
)

// TestServices holds all application services and dependencies for testing
type TestServices struct {
	// RBAC services
	Users         rbac.UserService
	Authorization rbac.AuthorizationService
	Teams         rbac.TeamService
	Auth          rbac.AuthService
	PasswordReset rbac.PasswordResetService
	Tenancy       rbac.TenancyService

	// Mail and notification services
	Templates     mail.EmailTemplateService
	MailSettings  mail.SettingsService
	Notifications notifications.Service

	// Error handling
	ErrorReporter errorlog.Reporter
	ErrorLogs     errorlog.Service

	// Tables
	Registry    *datatable.Registry
	Queries     datatable.QueryBuilder
	Builder     datatable.Builder
	Preferences datatable.PreferencesService

	// Fakes standing in for redis and SMTP
	Mailer             *recordingMailer
	Sessions           *memorySessionStore
	SessionPreferences *memoryPreferenceStore
	Toasts             *memoryToastStore
	Broadcaster        *memoryBroadcaster

	// Infrastructure
	DBContext *persistence.TestContext
}

// SetupTestServices initializes all application services for integration tests
func SetupTestServices(t *testing.T, dbType string) *TestServices {
	t.Helper()

	logger := testutil.SetupTestLogger(t)
	dbContext := persistence.SetupTestDB(t, dbType)

	s := &TestServices{
		Mailer:             &recordingMailer{},
		Sessions:           newMemorySessionStore(),
		SessionPreferences: newMemoryPreferenceStore(),
		Toasts:             newMemoryToastStore(),
		Broadcaster:        newMemoryBroadcaster(),
		DBContext:          dbContext,
	}
	hasher := NewBcryptHasher(bcrypt.MinCost)

	var err error
	s.Users, err = NewUserService(dbContext.UserRepo, dbContext.RoleRepo, dbContext.TeamRepo, hasher, logger)
	require.NoError(t, err, "Failed to create UserService")

	s.Authorization, err = NewAuthorizationService(dbContext.UserRepo, dbContext.RoleRepo, dbContext.PermissionRepo, logger)
	require.NoError(t, err, "Failed to create AuthorizationService")

	s.Teams, err = NewTeamService(dbContext.TeamRepo, logger)
	require.NoError(t, err, "Failed to create TeamService")

	s.Auth, err = NewAuthService(dbContext.UserRepo, s.Sessions, hasher, time.Hour, logger)
	require.NoError(t, err, "Failed to create AuthService")

	s.Tenancy, err = NewTenancyService(s.Authorization, dbContext.UserRepo, dbContext.TeamRepo, dbContext.RoleRepo, TestDefaultTeam, logger)
	require.NoError(t, err, "Failed to create TenancyService")

	s.MailSettings, err = NewMailSettingsService(dbContext.MailSettingsRepo, config.MailSettings{
		Driver:      config.MailDriverLog,
		FromAddress: TestFromAddress,
		FromName:    "Admin",
	}, logger)
	require.NoError(t, err, "Failed to create MailSettingsService")

	loader, err := persistence.NewGormEntityLoader(dbContext.DB, logger, nil)
	require.NoError(t, err, "Failed to create entity loader")

	s.Templates, err = NewEmailTemplateService(dbContext.TemplateRepo, loader, loader, s.MailSettings, s.Mailer, "en", logger)
	require.NoError(t, err, "Failed to create EmailTemplateService")

	s.PasswordReset, err = NewPasswordResetService(
		dbContext.UserRepo,
		dbContext.ResetTokenRepo,
		hasher,
		s.Templates,
		s.MailSettings,
		s.Mailer,
		PasswordResetOptions{ResetURL: TestResetURL, Expiry: time.Hour},
		logger,
	)
	require.NoError(t, err, "Failed to create PasswordResetService")

	s.Notifications, err = NewNotificationService(
		dbContext.NotificationRepo,
		s.Toasts,
		s.Broadcaster,
		s.Templates,
		s.MailSettings,
		s.Mailer,
		logger,
	)
	require.NoError(t, err, "Failed to create NotificationService")

	errorSettings := &config.ErrorHandlingSettings{
		Channels:        []string{config.ErrorChannelToast, config.ErrorChannelLog, config.ErrorChannelDatabase, config.ErrorChannelEmail},
		EmailRecipients: []string{TestErrorMailbox},
		DontReport:      []string{"validation", "authentication", "authorization", "not_found"},
	}
	channels := NewErrorChannels(errorSettings, s.Notifications, dbContext.ErrorLogRepo, s.MailSettings, s.Mailer, logger)
	s.ErrorReporter, err = NewErrorReporter(errorSettings, channels, logger)
	require.NoError(t, err, "Failed to create ErrorReporter")

	s.ErrorLogs, err = NewErrorLogService(dbContext.ErrorLogRepo, logger)
	require.NoError(t, err, "Failed to create ErrorLogService")

	s.Queries, err = persistence.NewGormDataTableQueryBuilder(dbContext.DB, logger)
	require.NoError(t, err, "Failed to create query builder")

	s.Builder, err = NewDataTableBuilder(s.Queries, logger)
	require.NoError(t, err, "Failed to create DataTableBuilder")

	s.Preferences, err = NewPreferencesService(s.SessionPreferences, dbContext.PreferenceStore, logger)
	require.NoError(t, err, "Failed to create PreferencesService")

	s.Registry = datatable.NewRegistry(nil, 0)
	require.NoError(t, RegisterTables(s.Registry, TableHandlers{
		Users:         s.Users,
		Teams:         s.Teams,
		ErrorLogs:     s.ErrorLogs,
		Notifications: s.Notifications,
	}))

	return s
}

// CreateUser creates an active user with TestPassword
func (s *TestServices) CreateUser(t *testing.T, name, email string, roles ...string) *rbac.User {
	t.Helper()

	user, err := s.Users.Create(context.Background(), &rbac.CreateUserInput{
		Name:     name,
		Email:    email,
		Password: TestPassword,
		Roles:    roles,
	})
	require.NoError(t, err)
	return user
}

// TableServices returns the services a table component needs
func (s *TestServices) TableServices() TableServices {
	return TableServices{
		Builder:     s.Builder,
		Queries:     s.Queries,
		Preferences: s.Preferences,
	}
}

// AllowAll is a gate granting every permission
func AllowAll(string) bool { return true }
