//go:build unit
// +build unit

package v1

import (
	"context"
	"time"

	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
	"github.com/MGTheTrain/admin-console/internal/domain/errorlog"
	"github.com/MGTheTrain/admin-console/internal/domain/mail"
	"github.com/MGTheTrain/admin-console/internal/domain/notifications"
	"github.com/MGTheTrain/admin-console/internal/domain/rbac"

	"github.com/stretchr/testify/mock"
)

// MockAuthService is a mock implementation of rbac.AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *rbac.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*rbac.User), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*rbac.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbac.User), args.Error(1)
}

// MockPasswordResetService is a mock implementation of rbac.PasswordResetService
type MockPasswordResetService struct {
	mock.Mock
}

func (m *MockPasswordResetService) SendResetLink(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockPasswordResetService) CreateToken(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordResetService) Reset(ctx context.Context, email, token, newPassword string) error {
	args := m.Called(ctx, email, token, newPassword)
	return args.Error(0)
}

func (m *MockPasswordResetService) PruneExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserService is a mock implementation of rbac.UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, input *rbac.CreateUserInput) (*rbac.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbac.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, userID string) (*rbac.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbac.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, userID string, input *rbac.UpdateUserInput) (*rbac.User, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbac.User), args.Error(1)
}

func (m *MockUserService) DeleteByID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserService) DeleteByIDs(ctx context.Context, userIDs []string) (int64, error) {
	args := m.Called(ctx, userIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserService) SetActive(ctx context.Context, userIDs []string, active bool) (int64, error) {
	args := m.Called(ctx, userIDs, active)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuthorizationService is a mock implementation of rbac.AuthorizationService
type MockAuthorizationService struct {
	mock.Mock
}

func (m *MockAuthorizationService) Can(ctx context.Context, userID, permission, teamID string) (bool, error) {
	args := m.Called(ctx, userID, permission, teamID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthorizationService) HasRole(ctx context.Context, userID, role, teamID string) (bool, error) {
	args := m.Called(ctx, userID, role, teamID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthorizationService) AssignRole(ctx context.Context, userID, roleName string, teamID *string) error {
	args := m.Called(ctx, userID, roleName, teamID)
	return args.Error(0)
}

func (m *MockAuthorizationService) RevokeRole(ctx context.Context, userID, roleName string, teamID *string) error {
	args := m.Called(ctx, userID, roleName, teamID)
	return args.Error(0)
}

func (m *MockAuthorizationService) GivePermission(ctx context.Context, userID string, permissions ...string) error {
	args := m.Called(ctx, userID, permissions)
	return args.Error(0)
}

func (m *MockAuthorizationService) CreateRole(ctx context.Context, name string, teamID *string, permissions []string) (*rbac.Role, error) {
	args := m.Called(ctx, name, teamID, permissions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbac.Role), args.Error(1)
}

func (m *MockAuthorizationService) SyncRolePermissions(ctx context.Context, roleID uint, permissions []string) (*rbac.Role, error) {
	args := m.Called(ctx, roleID, permissions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbac.Role), args.Error(1)
}

func (m *MockAuthorizationService) ListRoles(ctx context.Context, teamID *string) ([]*rbac.Role, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbac.Role), args.Error(1)
}

func (m *MockAuthorizationService) ListPermissions(ctx context.Context) ([]*rbac.Permission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbac.Permission), args.Error(1)
}

func (m *MockAuthorizationService) Seed(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockTeamService is a mock implementation of rbac.TeamService
type MockTeamService struct {
	mock.Mock
}

func (m *MockTeamService) Create(ctx context.Context, name, description string) (*rbac.Team, error) {
	args := m.Called(ctx, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbac.Team), args.Error(1)
}

func (m *MockTeamService) GetByID(ctx context.Context, teamID string) (*rbac.Team, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbac.Team), args.Error(1)
}

func (m *MockTeamService) List(ctx context.Context) ([]*rbac.Team, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbac.Team), args.Error(1)
}

func (m *MockTeamService) AddMembers(ctx context.Context, teamID string, userIDs []string) error {
	args := m.Called(ctx, teamID, userIDs)
	return args.Error(0)
}

func (m *MockTeamService) RemoveMembers(ctx context.Context, teamID string, userIDs []string) error {
	args := m.Called(ctx, teamID, userIDs)
	return args.Error(0)
}

func (m *MockTeamService) DeleteByID(ctx context.Context, teamID string) error {
	args := m.Called(ctx, teamID)
	return args.Error(0)
}

// MockNotificationService is a mock implementation of notifications.Service
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Send(ctx context.Context, msg *notifications.Message, recipients []notifications.Recipient, channels ...string) error {
	args := m.Called(ctx, msg, recipients, channels)
	return args.Error(0)
}

func (m *MockNotificationService) Toast(ctx context.Context, sessionID, userID string, level notifications.Level, title, message string) error {
	args := m.Called(ctx, sessionID, userID, level, title, message)
	return args.Error(0)
}

func (m *MockNotificationService) PullToasts(ctx context.Context, sessionID string) ([]*notifications.Toast, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notifications.Toast), args.Error(1)
}

func (m *MockNotificationService) List(ctx context.Context, userID string, query *notifications.ListQuery) ([]*notifications.Notification, int64, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*notifications.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

func (m *MockNotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationService) Subscribe(ctx context.Context, userID string) (<-chan *notifications.Event, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *notifications.Event), args.Error(1)
}

func (m *MockNotificationService) PruneRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockEmailTemplateService is a mock implementation of mail.EmailTemplateService
type MockEmailTemplateService struct {
	mock.Mock
}

func (m *MockEmailTemplateService) Create(ctx context.Context, input *mail.TemplateInput) (*mail.EmailTemplate, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.EmailTemplate), args.Error(1)
}

func (m *MockEmailTemplateService) Update(ctx context.Context, templateID string, input *mail.TemplateInput) (*mail.EmailTemplate, error) {
	args := m.Called(ctx, templateID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.EmailTemplate), args.Error(1)
}

func (m *MockEmailTemplateService) GetByID(ctx context.Context, templateID string) (*mail.EmailTemplate, error) {
	args := m.Called(ctx, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.EmailTemplate), args.Error(1)
}

func (m *MockEmailTemplateService) List(ctx context.Context, teamID *string) ([]*mail.EmailTemplate, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*mail.EmailTemplate), args.Error(1)
}

func (m *MockEmailTemplateService) DeleteByID(ctx context.Context, templateID string) error {
	args := m.Called(ctx, templateID)
	return args.Error(0)
}

func (m *MockEmailTemplateService) Preview(ctx context.Context, templateID string, refs mail.EntityRef) (*mail.Rendered, error) {
	args := m.Called(ctx, templateID, refs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.Rendered), args.Error(1)
}

func (m *MockEmailTemplateService) Send(ctx context.Context, req *mail.SendRequest) (*mail.Rendered, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.Rendered), args.Error(1)
}

func (m *MockEmailTemplateService) AvailableTags(entity string) ([]string, error) {
	args := m.Called(entity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockSettingsService is a mock implementation of mail.SettingsService
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Save(ctx context.Context, settings *mail.Settings) (*mail.Settings, error) {
	args := m.Called(ctx, settings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.Settings), args.Error(1)
}

func (m *MockSettingsService) List(ctx context.Context) ([]*mail.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*mail.Settings), args.Error(1)
}

func (m *MockSettingsService) Resolve(ctx context.Context, userID, teamID string) (*mail.Credentials, error) {
	args := m.Called(ctx, userID, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.Credentials), args.Error(1)
}

// MockErrorLogService is a mock implementation of errorlog.Service
type MockErrorLogService struct {
	mock.Mock
}

func (m *MockErrorLogService) GetByID(ctx context.Context, id string) (*errorlog.ErrorLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*errorlog.ErrorLog), args.Error(1)
}

func (m *MockErrorLogService) Resolve(ctx context.Context, ids []string, userID string) (int64, error) {
	args := m.Called(ctx, ids, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockErrorLogService) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockErrorLogService) PruneResolved(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockReporter is a mock implementation of errorlog.Reporter
type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) Report(ctx context.Context, report *errorlog.Report) string {
	args := m.Called(ctx, report)
	return args.String(0)
}

// MockQueryBuilder is a mock implementation of datatable.QueryBuilder
type MockQueryBuilder struct {
	mock.Mock
}

func (m *MockQueryBuilder) Execute(ctx context.Context, def datatable.Definition, req datatable.Request) (*datatable.Page, error) {
	args := m.Called(ctx, def, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*datatable.Page), args.Error(1)
}

func (m *MockQueryBuilder) CountAll(ctx context.Context, def datatable.Definition) (int64, error) {
	args := m.Called(ctx, def)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQueryBuilder) FindByIDs(ctx context.Context, def datatable.Definition, ids []string) ([]datatable.Record, error) {
	args := m.Called(ctx, def, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]datatable.Record), args.Error(1)
}

func (m *MockQueryBuilder) MatchingIDs(ctx context.Context, def datatable.Definition, req datatable.Request) ([]string, error) {
	args := m.Called(ctx, def, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockPreferencesService is a mock implementation of datatable.PreferencesService
type MockPreferencesService struct {
	mock.Mock
}

func (m *MockPreferencesService) Load(ctx context.Context, def datatable.Definition, scope datatable.Scope) (datatable.Preferences, error) {
	args := m.Called(ctx, def, scope)
	return args.Get(0).(datatable.Preferences), args.Error(1)
}

func (m *MockPreferencesService) Save(ctx context.Context, def datatable.Definition, scope datatable.Scope, prefs datatable.Preferences) (datatable.Preferences, error) {
	args := m.Called(ctx, def, scope, prefs)
	return args.Get(0).(datatable.Preferences), args.Error(1)
}

func (m *MockPreferencesService) Clear(ctx context.Context, def datatable.Definition, scope datatable.Scope) error {
	args := m.Called(ctx, def, scope)
	return args.Error(0)
}
