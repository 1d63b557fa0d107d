//go:build integration
// +build integration

package persistence

import (
	"context"
	"testing"

	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
	"github.com/MGTheTrain/admin-console/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPostgresRepository_CreateWithRoles(t *testing.T) {
	ctx := SetupTestDB(t, config.PostgresDbType)
	bg := context.Background()

	perms, err := ctx.PermissionRepo.Ensure(bg, []string{"users.view"}, rbac.GuardWeb)
	require.NoError(t, err)

	role := &rbac.Role{Name: rbac.RoleAdmin, GuardName: rbac.GuardWeb}
	require.NoError(t, ctx.RoleRepo.Create(bg, role))
	require.NoError(t, ctx.RoleRepo.SyncPermissions(bg, role.ID, []uint{perms[0].ID}))

	user := CreateTestUser(t, "Ada")
	require.NoError(t, ctx.UserRepo.Create(bg, user))
	require.NoError(t, ctx.UserRepo.AttachRoles(bg, user.ID, []uint{role.ID}))

	fetched, err := ctx.UserRepo.GetByID(bg, user.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Roles, 1)
	assert.True(t, rbac.Authorize(fetched, "users.view", ""))
}

func TestTeamPostgresRepository_DeleteCascadesTeamData(t *testing.T) {
	ctx := SetupTestDB(t, config.PostgresDbType)
	bg := context.Background()

	team := CreateTestTeam(t, "Acme")
	require.NoError(t, ctx.TeamRepo.Create(bg, team))
	require.NoError(t, ctx.RoleRepo.Create(bg, &rbac.Role{Name: rbac.RoleMember, GuardName: rbac.GuardWeb, TeamID: &team.ID}))

	user := CreateTestUser(t, "Ada")
	require.NoError(t, ctx.UserRepo.Create(bg, user))
	require.NoError(t, ctx.TeamRepo.AttachUsers(bg, team.ID, []string{user.ID}))

	n, err := ctx.TeamRepo.DeleteByIDs(bg, []string{team.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	roles, err := ctx.RoleRepo.List(bg, nil)
	require.NoError(t, err)
	assert.Empty(t, roles)
}
