package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"
)

// tenancyService implements the rbac.TenancyService interface
type tenancyService struct {
	authz       rbac.AuthorizationService
	users       rbac.UserRepository
	teams       rbac.TeamRepository
	roles       rbac.RoleRepository
	defaultTeam string
	logger      logger.Logger
}

// NewTenancyService creates a new instance of TenancyService around the named default team
func NewTenancyService(
	authz rbac.AuthorizationService,
	users rbac.UserRepository,
	teams rbac.TeamRepository,
	roles rbac.RoleRepository,
	defaultTeam string,
	logger logger.Logger,
) (rbac.TenancyService, error) {
	if defaultTeam == "" {
		return nil, fmt.Errorf("default team name is required")
	}
	return &tenancyService{
		authz:       authz,
		users:       users,
		teams:       teams,
		roles:       roles,
		defaultTeam: defaultTeam,
		logger:      logger,
	}, nil
}

// Setup is idempotent
func (s *tenancyService) Setup(ctx context.Context) (*rbac.SetupResult, error) {
	if err := s.authz.Seed(ctx); err != nil {
		return nil, err
	}

	result := &rbac.SetupResult{}
	team, err := s.teams.GetByName(ctx, s.defaultTeam)
	if errors.Is(err, errs.ErrNotFound) {
		team = &rbac.Team{ID: uuid.NewString(), Name: s.defaultTeam, Description: "Default team"}
		if err = s.teams.Create(ctx, team); err == nil {
			result.CreatedTeam = true
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to ensure default team: %w", err)
	}
	result.DefaultTeamID = team.ID

	userIDs, err := s.users.ListIDsWithoutTeam(ctx)
	if err != nil {
		return nil, err
	}
	if len(userIDs) > 0 {
		if err := s.teams.AttachUsers(ctx, team.ID, userIDs); err != nil {
			return nil, err
		}
	}
	result.AttachedUsers = len(userIDs)

	s.logger.Info("Tenancy setup done: default team ", team.ID, ", attached ", len(userIDs), " users")
	return result, nil
}

// Cleanup reports what it would remove without changing anything when dryRun is set
func (s *tenancyService) Cleanup(ctx context.Context, dryRun bool) (*rbac.CleanupResult, error) {
	emptyIDs, err := s.teams.ListEmptyIDs(ctx, s.defaultTeam)
	if err != nil {
		return nil, err
	}
	result := &rbac.CleanupResult{RemovedTeams: emptyIDs, DryRun: dryRun}
	if result.RemovedTeams == nil {
		result.RemovedTeams = []string{}
	}
	if dryRun {
		return result, nil
	}

	if len(emptyIDs) > 0 {
		n, err := s.roles.DeleteByTeamIDs(ctx, emptyIDs)
		if err != nil {
			return nil, err
		}
		result.RemovedRoles += n
		if _, err := s.teams.DeleteByIDs(ctx, emptyIDs); err != nil {
			return nil, err
		}
	}

	orphaned, err := s.roles.DeleteOrphaned(ctx)
	if err != nil {
		return nil, err
	}
	result.RemovedRoles += orphaned

	result.RemovedMemberships, err = s.teams.DeleteDanglingMemberships(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Tenancy cleanup removed ", len(emptyIDs), " teams, ", result.RemovedRoles, " roles and ", result.RemovedMemberships, " memberships")
	return result, nil
}
