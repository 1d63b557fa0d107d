//go:build integration
// +build integration

package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
	"github.com/MGTheTrain/admin-console/internal/pkg/config"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
)

func TestUserService_Create_Success(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	ctx := context.Background()
	require.NoError(t, services.Authorization.Seed(ctx))

	user := services.CreateUser(t, "Ada Lovelace", " Ada@Example.com ", rbac.RoleAdmin)

	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "en", user.Locale)
	assert.NotEqual(t, TestPassword, user.PasswordHash)
	require.Len(t, user.Roles, 1)
	assert.Equal(t, rbac.RoleAdmin, user.Roles[0].Name)
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	services.CreateUser(t, "Ada", "ada@example.com")

	_, err := services.Users.Create(context.Background(), &rbac.CreateUserInput{
		Name:     "Other Ada",
		Email:    "ADA@example.com",
		Password: TestPassword,
	})
	require.Error(t, err)

	var verr *errs.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "unique", verr.Fields["Email"])
}

func TestUserService_Create_UnknownRole(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)

	_, err := services.Users.Create(context.Background(), &rbac.CreateUserInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: TestPassword,
		Roles:    []string{"wizard"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestUserService_UpdateAndDelete(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	ctx := context.Background()
	user := services.CreateUser(t, "Ada", "ada@example.com")

	name, locale := "Ada King", "de"
	updated, err := services.Users.Update(ctx, user.ID, &rbac.UpdateUserInput{Name: &name, Locale: &locale})
	require.NoError(t, err)
	assert.Equal(t, "Ada King", updated.Name)
	assert.Equal(t, "de", updated.Locale)

	n, err := services.Users.SetActive(ctx, []string{user.ID}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, services.Users.DeleteByID(ctx, user.ID))
	err = services.Users.DeleteByID(ctx, user.ID)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestAuthorizationService_SeedAndCan(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	ctx := context.Background()
	require.NoError(t, services.Authorization.Seed(ctx))
	require.NoError(t, services.Authorization.Seed(ctx), "seeding twice is harmless")

	admin := services.CreateUser(t, "Admin", "admin@example.com", rbac.RoleAdmin)
	member := services.CreateUser(t, "Member", "member@example.com", rbac.RoleMember)
	root := services.CreateUser(t, "Root", "root@example.com", rbac.RoleSuperAdmin)

	can := func(userID, permission string) bool {
		ok, err := services.Authorization.Can(ctx, userID, permission, "")
		require.NoError(t, err)
		return ok
	}

	assert.True(t, can(admin.ID, rbac.PermUsersDelete))
	assert.False(t, can(admin.ID, rbac.PermRolesDelete))
	assert.True(t, can(member.ID, rbac.PermUsersView))
	assert.False(t, can(member.ID, rbac.PermUsersEdit))
	assert.True(t, can(root.ID, rbac.PermRolesDelete))
	assert.False(t, can("00000000-0000-4000-8000-000000000000", rbac.PermUsersView))

	require.NoError(t, services.Authorization.GivePermission(ctx, member.ID, rbac.PermUsersEdit))
	assert.True(t, can(member.ID, rbac.PermUsersEdit))

	require.NoError(t, services.Authorization.RevokeRole(ctx, admin.ID, rbac.RoleAdmin, nil))
	assert.False(t, can(admin.ID, rbac.PermUsersDelete))

	hasRole, err := services.Authorization.HasRole(ctx, root.ID, rbac.RoleSuperAdmin, "")
	require.NoError(t, err)
	assert.True(t, hasRole)
}

func TestAuthorizationService_TeamScopedRole(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	ctx := context.Background()
	require.NoError(t, services.Authorization.Seed(ctx))

	team, err := services.Teams.Create(ctx, "Support", "")
	require.NoError(t, err)
	other, err := services.Teams.Create(ctx, "Sales", "")
	require.NoError(t, err)

	role, err := services.Authorization.CreateRole(ctx, "agent", &team.ID, []string{rbac.PermErrorLogsResolve})
	require.NoError(t, err)
	require.Len(t, role.Permissions, 1)

	_, err = services.Authorization.CreateRole(ctx, "agent", &team.ID, nil)
	assert.True(t, errors.Is(err, errs.ErrConflict))

	_, err = services.Authorization.CreateRole(ctx, "ghost", nil, []string{"nothing.here"})
	assert.True(t, errors.Is(err, errs.ErrValidation))

	user := services.CreateUser(t, "Agent", "agent@example.com")
	require.NoError(t, services.Authorization.AssignRole(ctx, user.ID, "agent", &team.ID))

	ok, err := services.Authorization.Can(ctx, user.ID, rbac.PermErrorLogsResolve, team.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = services.Authorization.Can(ctx, user.ID, rbac.PermErrorLogsResolve, other.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	synced, err := services.Authorization.SyncRolePermissions(ctx, role.ID, []string{rbac.PermErrorLogsView})
	require.NoError(t, err)
	require.Len(t, synced.Permissions, 1)
	assert.Equal(t, rbac.PermErrorLogsView, synced.Permissions[0].Name)
}

func TestTeamService(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	ctx := context.Background()

	team, err := services.Teams.Create(ctx, " Support ", "first line")
	require.NoError(t, err)
	assert.Equal(t, "Support", team.Name)

	_, err = services.Teams.Create(ctx, "Support", "")
	assert.True(t, errors.Is(err, errs.ErrValidation))

	user := services.CreateUser(t, "Ada", "ada@example.com")
	require.NoError(t, services.Teams.AddMembers(ctx, team.ID, []string{user.ID}))

	loaded, err := services.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Teams, 1)
	assert.Equal(t, team.ID, loaded.Teams[0].ID)

	err = services.Teams.AddMembers(ctx, "00000000-0000-4000-8000-000000000000", []string{user.ID})
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	require.NoError(t, services.Teams.DeleteByID(ctx, team.ID))
	err = services.Teams.DeleteByID(ctx, team.ID)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestAuthService_LoginLogout(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	ctx := context.Background()
	user := services.CreateUser(t, "Ada", "ada@example.com")

	_, _, err := services.Auth.Login(ctx, "ada@example.com", "wrong-password")
	assert.True(t, errors.Is(err, errs.ErrUnauthenticated))

	_, _, err = services.Auth.Login(ctx, "nobody@example.com", TestPassword)
	assert.True(t, errors.Is(err, errs.ErrUnauthenticated))

	token, loggedIn, err := services.Auth.Login(ctx, "ada@example.com", TestPassword)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)

	authenticated, err := services.Auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authenticated.ID)
	assert.NotNil(t, authenticated.LastLoginAt)

	require.NoError(t, services.Auth.Logout(ctx, token))
	_, err = services.Auth.Authenticate(ctx, token)
	assert.True(t, errors.Is(err, errs.ErrUnauthenticated))
}

func TestAuthService_InactiveUser(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	ctx := context.Background()
	user := services.CreateUser(t, "Ada", "ada@example.com")

	token, _, err := services.Auth.Login(ctx, "ada@example.com", TestPassword)
	require.NoError(t, err)

	_, err = services.Users.SetActive(ctx, []string{user.ID}, false)
	require.NoError(t, err)

	_, _, err = services.Auth.Login(ctx, "ada@example.com", TestPassword)
	assert.True(t, errors.Is(err, errs.ErrUnauthenticated))
	_, err = services.Auth.Authenticate(ctx, token)
	assert.True(t, errors.Is(err, errs.ErrUnauthenticated))
}

func TestTenancyService_SetupAndCleanup(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	ctx := context.Background()

	loner := services.CreateUser(t, "Loner", "loner@example.com")
	empty, err := services.Teams.Create(ctx, "Empty", "")
	require.NoError(t, err)

	result, err := services.Tenancy.Setup(ctx)
	require.NoError(t, err)
	assert.True(t, result.CreatedTeam)
	assert.Equal(t, 1, result.AttachedUsers)

	again, err := services.Tenancy.Setup(ctx)
	require.NoError(t, err)
	assert.False(t, again.CreatedTeam)
	assert.Equal(t, result.DefaultTeamID, again.DefaultTeamID)
	assert.Zero(t, again.AttachedUsers)

	loaded, err := services.Users.GetByID(ctx, loner.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Teams, 1)
	assert.Equal(t, result.DefaultTeamID, loaded.Teams[0].ID)

	_, err = services.Authorization.CreateRole(ctx, "temp", &empty.ID, nil)
	require.NoError(t, err)

	dry, err := services.Tenancy.Cleanup(ctx, true)
	require.NoError(t, err)
	assert.True(t, dry.DryRun)
	assert.Equal(t, []string{empty.ID}, dry.RemovedTeams)
	_, err = services.Teams.GetByID(ctx, empty.ID)
	require.NoError(t, err, "dry run changes nothing")

	cleaned, err := services.Tenancy.Cleanup(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{empty.ID}, cleaned.RemovedTeams)
	assert.Equal(t, int64(1), cleaned.RemovedRoles)

	_, err = services.Teams.GetByID(ctx, empty.ID)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	_, err = services.Teams.GetByID(ctx, result.DefaultTeamID)
	assert.NoError(t, err, "the default team survives even when empty")
}
