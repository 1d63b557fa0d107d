//go:build integration
// +build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
	"github.com/MGTheTrain/admin-console/internal/pkg/config"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserSqliteRepository_CreateAndGet(t *testing.T) {
	ctx := SetupTestDB(t, config.SqliteDbType)

	user := CreateTestUser(t, "Ada")
	require.NoError(t, ctx.UserRepo.Create(context.Background(), user))

	fetched, err := ctx.UserRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, fetched.Email)
	assert.True(t, fetched.IsActive)

	byEmail, err := ctx.UserRepo.GetByEmail(context.Background(), user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserSqliteRepository_DuplicateEmail(t *testing.T) {
	ctx := SetupTestDB(t, config.SqliteDbType)

	user := CreateTestUser(t, "Ada")
	require.NoError(t, ctx.UserRepo.Create(context.Background(), user))

	dup := CreateTestUser(t, "Ada")
	dup.Email = user.Email
	err := ctx.UserRepo.Create(context.Background(), dup)
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestUserSqliteRepository_NotFound(t *testing.T) {
	ctx := SetupTestDB(t, config.SqliteDbType)

	_, err := ctx.UserRepo.GetByID(context.Background(), "7b0c5a3e-2f5e-4b8a-9d0b-0b9d1b3c4d5e")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserSqliteRepository_RolesAndPermissions(t *testing.T) {
	ctx := SetupTestDB(t, config.SqliteDbType)
	bg := context.Background()

	perms, err := ctx.PermissionRepo.Ensure(bg, []string{"users.view", "users.edit"}, rbac.GuardWeb)
	require.NoError(t, err)
	require.Len(t, perms, 2)

	// Ensure is idempotent
	perms, err = ctx.PermissionRepo.Ensure(bg, []string{"users.view", "users.edit"}, rbac.GuardWeb)
	require.NoError(t, err)
	require.Len(t, perms, 2)

	role := &rbac.Role{Name: rbac.RoleAdmin, GuardName: rbac.GuardWeb}
	require.NoError(t, ctx.RoleRepo.Create(bg, role))
	require.NotZero(t, role.ID)
	require.NoError(t, ctx.RoleRepo.SyncPermissions(bg, role.ID, []uint{perms[0].ID, perms[1].ID}))

	user := CreateTestUser(t, "Ada")
	require.NoError(t, ctx.UserRepo.Create(bg, user))
	require.NoError(t, ctx.UserRepo.AttachRoles(bg, user.ID, []uint{role.ID}))

	fetched, err := ctx.UserRepo.GetByID(bg, user.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Roles, 1)
	assert.Equal(t, rbac.RoleAdmin, fetched.Roles[0].Name)
	assert.Len(t, fetched.Roles[0].Permissions, 2)

	require.NoError(t, ctx.UserRepo.DetachRoles(bg, user.ID, []uint{role.ID}))
	fetched, err = ctx.UserRepo.GetByID(bg, user.ID)
	require.NoError(t, err)
	assert.Empty(t, fetched.Roles)
}

func TestUserSqliteRepository_BulkOperations(t *testing.T) {
	ctx := SetupTestDB(t, config.SqliteDbType)
	bg := context.Background()

	a, b := CreateTestUser(t, "Ada"), CreateTestUser(t, "Bob")
	require.NoError(t, ctx.UserRepo.Create(bg, a))
	require.NoError(t, ctx.UserRepo.Create(bg, b))

	n, err := ctx.UserRepo.SetActive(bg, []string{a.ID, b.ID}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	fetched, err := ctx.UserRepo.GetByID(bg, a.ID)
	require.NoError(t, err)
	assert.False(t, fetched.IsActive)

	n, err = ctx.UserRepo.DeleteByIDs(bg, []string{a.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = ctx.UserRepo.GetByID(bg, a.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRoleSqliteRepository_TeamScope(t *testing.T) {
	ctx := SetupTestDB(t, config.SqliteDbType)
	bg := context.Background()

	team := CreateTestTeam(t, "Acme")
	require.NoError(t, ctx.TeamRepo.Create(bg, team))

	global := &rbac.Role{Name: rbac.RoleMember, GuardName: rbac.GuardWeb}
	scoped := &rbac.Role{Name: rbac.RoleMember, GuardName: rbac.GuardWeb, TeamID: &team.ID}
	require.NoError(t, ctx.RoleRepo.Create(bg, global))
	require.NoError(t, ctx.RoleRepo.Create(bg, scoped))

	found, err := ctx.RoleRepo.GetByName(bg, rbac.RoleMember, nil)
	require.NoError(t, err)
	assert.Equal(t, global.ID, found.ID)

	found, err = ctx.RoleRepo.GetByName(bg, rbac.RoleMember, &team.ID)
	require.NoError(t, err)
	assert.Equal(t, scoped.ID, found.ID)

	roles, err := ctx.RoleRepo.List(bg, &team.ID)
	require.NoError(t, err)
	assert.Len(t, roles, 2)

	n, err := ctx.RoleRepo.DeleteByTeamIDs(bg, []string{team.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestTeamSqliteRepository_Cleanup(t *testing.T) {
	ctx := SetupTestDB(t, config.SqliteDbType)
	bg := context.Background()

	main := CreateTestTeam(t, "Main")
	empty := CreateTestTeam(t, "Empty")
	require.NoError(t, ctx.TeamRepo.Create(bg, main))
	require.NoError(t, ctx.TeamRepo.Create(bg, empty))

	user := CreateTestUser(t, "Ada")
	loner := CreateTestUser(t, "Bob")
	require.NoError(t, ctx.UserRepo.Create(bg, user))
	require.NoError(t, ctx.UserRepo.Create(bg, loner))
	require.NoError(t, ctx.TeamRepo.AttachUsers(bg, main.ID, []string{user.ID}))

	ids, err := ctx.UserRepo.ListIDsWithoutTeam(bg)
	require.NoError(t, err)
	assert.Equal(t, []string{loner.ID}, ids)

	ids, err = ctx.TeamRepo.ListEmptyIDs(bg)
	require.NoError(t, err)
	assert.Equal(t, []string{empty.ID}, ids)

	ids, err = ctx.TeamRepo.ListEmptyIDs(bg, "Empty")
	require.NoError(t, err)
	assert.Empty(t, ids)

	// remove the user row directly to leave a dangling membership behind
	require.NoError(t, ctx.DB.Exec("DELETE FROM users WHERE id = ?", user.ID).Error)
	n, err := ctx.TeamRepo.DeleteDanglingMemberships(bg)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPasswordResetTokenSqliteRepository(t *testing.T) {
	ctx := SetupTestDB(t, config.SqliteDbType)
	bg := context.Background()

	old := &rbac.PasswordResetToken{Email: "ada@example.com", TokenHash: "first", CreatedAt: time.Now().Add(-2 * time.Hour)}
	require.NoError(t, ctx.ResetTokenRepo.Put(bg, old))

	fresh := &rbac.PasswordResetToken{Email: "ada@example.com", TokenHash: "second", CreatedAt: time.Now()}
	require.NoError(t, ctx.ResetTokenRepo.Put(bg, fresh))

	fetched, err := ctx.ResetTokenRepo.Get(bg, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "second", fetched.TokenHash)

	n, err := ctx.ResetTokenRepo.DeleteCreatedBefore(bg, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, ctx.ResetTokenRepo.Delete(bg, "ada@example.com"))
	_, err = ctx.ResetTokenRepo.Get(bg, "ada@example.com")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
