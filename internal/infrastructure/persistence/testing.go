//go:build integration
// +build integration

package persistence

import (
	"strings"
	"testing"
	"time"

	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
	"github.com/MGTheTrain/admin-console/internal/domain/errorlog"
	"github.com/MGTheTrain/admin-console/internal/domain/mail"
	"github.com/MGTheTrain/admin-console/internal/domain/notifications"
	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
	"github.com/MGTheTrain/admin-console/internal/pkg/config"
	"github.com/MGTheTrain/admin-console/internal/pkg/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestContext holds test database and repositories
type TestContext struct {
	DB               *gorm.DB
	UserRepo         rbac.UserRepository
	RoleRepo         rbac.RoleRepository
	PermissionRepo   rbac.PermissionRepository
	TeamRepo         rbac.TeamRepository
	ResetTokenRepo   rbac.PasswordResetTokenRepository
	TemplateRepo     mail.EmailTemplateRepository
	MailSettingsRepo mail.SettingsRepository
	NotificationRepo notifications.Repository
	ErrorLogRepo     errorlog.Repository
	PreferenceStore  datatable.PreferenceStore
}

// SetupTestDB initializes test database with automatic cleanup
func SetupTestDB(t *testing.T, dbType string) *TestContext {
	t.Helper()

	var settings config.DatabaseSettings
	var cleanupFunc func()

	switch dbType {
	case config.SqliteDbType:
		settings = config.DatabaseSettings{
			Type: config.SqliteDbType,
			DSN:  ":memory:",
		}
		cleanupFunc = func() {
			// SQLite in-memory cleanup is automatic
		}

	case config.PostgresDbType:
		uniqueDBName := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
		settings = config.DatabaseSettings{
			Type: config.PostgresDbType,
			DSN:  "user=postgres password=postgres host=localhost port=5432 sslmode=disable",
			Name: uniqueDBName,
		}
		cleanupFunc = func() {
			adminDSN := "user=postgres password=postgres host=localhost port=5432 dbname=postgres sslmode=disable"
			_ = DropDatabase(adminDSN, uniqueDBName)
		}

	default:
		t.Fatalf("Unsupported database type: %s", dbType)
	}

	db, err := NewDBConnection(settings)
	require.NoError(t, err, "Failed to create database connection")

	t.Cleanup(func() {
		_ = CloseDB(db)
		cleanupFunc()
	})

	require.NoError(t, Migrate(db), "Failed to migrate schema")

	logger := testutil.SetupTestLogger(t)
	ctx := &TestContext{DB: db}

	ctx.UserRepo, err = NewGormUserRepository(db, logger)
	require.NoError(t, err)
	ctx.RoleRepo, err = NewGormRoleRepository(db, logger)
	require.NoError(t, err)
	ctx.PermissionRepo, err = NewGormPermissionRepository(db, logger)
	require.NoError(t, err)
	ctx.TeamRepo, err = NewGormTeamRepository(db, logger)
	require.NoError(t, err)
	ctx.ResetTokenRepo, err = NewGormPasswordResetTokenRepository(db, logger)
	require.NoError(t, err)
	ctx.TemplateRepo, err = NewGormEmailTemplateRepository(db, logger)
	require.NoError(t, err)
	ctx.MailSettingsRepo, err = NewGormMailSettingsRepository(db, logger)
	require.NoError(t, err)
	ctx.NotificationRepo, err = NewGormNotificationRepository(db, logger)
	require.NoError(t, err)
	ctx.ErrorLogRepo, err = NewGormErrorLogRepository(db, logger)
	require.NoError(t, err)
	ctx.PreferenceStore, err = NewGormTablePreferenceStore(db, logger)
	require.NoError(t, err)

	return ctx
}

// CreateTestUser creates a test user with default values
func CreateTestUser(t *testing.T, name string) *rbac.User {
	t.Helper()

	return &rbac.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        strings.ToLower(name) + "-" + uuid.NewString()[:8] + "@example.com",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		Locale:       "en",
		IsActive:     true,
	}
}

// CreateTestTeam creates a test team with default values
func CreateTestTeam(t *testing.T, name string) *rbac.Team {
	t.Helper()

	return &rbac.Team{
		ID:   uuid.NewString(),
		Name: name,
	}
}

// CreateTestNotification creates an unread notification for userID
func CreateTestNotification(t *testing.T, userID, title string) *notifications.Notification {
	t.Helper()

	return &notifications.Notification{
		ID:           uuid.NewString(),
		Type:         "system",
		NotifiableID: userID,
		Title:        title,
		Level:        notifications.LevelInfo,
		CreatedAt:    time.Now().UTC(),
	}
}
