package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"
	"github.com/MGTheTrain/admin-console/internal/pkg/validators"
)

// bcryptHasher implements rbac.PasswordHasher with bcrypt
type bcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a PasswordHasher. A cost of zero uses bcrypt.DefaultCost.
func NewBcryptHasher(cost int) rbac.PasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

// Hash returns the bcrypt hash of secret
func (h *bcryptHasher) Hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hash), nil
}

// Compare reports whether secret matches hash
func (h *bcryptHasher) Compare(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// userService implements the rbac.UserService interface
type userService struct {
	users  rbac.UserRepository
	roles  rbac.RoleRepository
	teams  rbac.TeamRepository
	hasher rbac.PasswordHasher
	logger logger.Logger
}

// NewUserService creates a new instance of UserService
func NewUserService(users rbac.UserRepository, roles rbac.RoleRepository, teams rbac.TeamRepository, hasher rbac.PasswordHasher, logger logger.Logger) (rbac.UserService, error) {
	return &userService{
		users:  users,
		roles:  roles,
		teams:  teams,
		hasher: hasher,
		logger: logger,
	}, nil
}

// Create validates input, hashes the password and stores the user with its roles and teams
func (s *userService) Create(ctx context.Context, input *rbac.CreateUserInput) (*rbac.User, error) {
	if err := validators.ValidateStruct(input); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	locale := input.Locale
	if locale == "" {
		locale = "en"
	}
	user := &rbac.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Locale:       locale,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if len(input.Roles) > 0 {
		roleIDs := make([]uint, 0, len(input.Roles))
		for _, name := range input.Roles {
			role, err := s.roles.GetByName(ctx, name, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to assign role %s: %w", name, err)
			}
			roleIDs = append(roleIDs, role.ID)
		}
		if err := s.users.AttachRoles(ctx, user.ID, roleIDs); err != nil {
			return nil, err
		}
	}
	for _, teamID := range input.TeamIDs {
		if err := s.teams.AttachUsers(ctx, teamID, []string{user.ID}); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Created user with id ", user.ID)
	return s.users.GetByID(ctx, user.ID)
}

// GetByID loads a user with roles, permissions and teams
func (s *userService) GetByID(ctx context.Context, userID string) (*rbac.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Update applies the set fields of input
func (s *userService) Update(ctx context.Context, userID string, input *rbac.UpdateUserInput) (*rbac.User, error) {
	if err := validators.ValidateStruct(input); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
			user.Email = email
			user.EmailVerifiedAt = nil
		}
	}
	if input.Password != nil {
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if input.Locale != nil {
		user.Locale = *input.Locale
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("Updated user with id ", user.ID)
	return user, nil
}

// DeleteByID deletes one user
func (s *userService) DeleteByID(ctx context.Context, userID string) error {
	n, err := s.users.DeleteByIDs(ctx, []string{userID})
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.NotFound("user with ID %s", userID)
	}
	return nil
}

// DeleteByIDs deletes users and returns how many were removed
func (s *userService) DeleteByIDs(ctx context.Context, userIDs []string) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	return s.users.DeleteByIDs(ctx, userIDs)
}

// SetActive activates or deactivates users
func (s *userService) SetActive(ctx context.Context, userIDs []string, active bool) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	return s.users.SetActive(ctx, userIDs, active)
}

func (s *userService) ensureEmailFree(ctx context.Context, email, ownID string) error {
	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != ownID:
		return errs.Validation("email already taken", map[string]string{"Email": "unique"})
	}
	return nil
}

// authorizationService implements the rbac.AuthorizationService interface
type authorizationService struct {
	users       rbac.UserRepository
	roles       rbac.RoleRepository
	permissions rbac.PermissionRepository
	logger      logger.Logger
}

// NewAuthorizationService creates a new instance of AuthorizationService
func NewAuthorizationService(users rbac.UserRepository, roles rbac.RoleRepository, permissions rbac.PermissionRepository, logger logger.Logger) (rbac.AuthorizationService, error) {
	return &authorizationService{
		users:       users,
		roles:       roles,
		permissions: permissions,
		logger:      logger,
	}, nil
}

// Can reports whether the user holds permission inside teamID
func (s *authorizationService) Can(ctx context.Context, userID, permission, teamID string) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return rbac.Authorize(user, permission, teamID), nil
}

// HasRole reports whether the user holds role inside teamID
func (s *authorizationService) HasRole(ctx context.Context, userID, role, teamID string) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return rbac.HasRole(user, role, teamID), nil
}

// AssignRole gives the user the named role of teamID, or the global role when teamID is nil
func (s *authorizationService) AssignRole(ctx context.Context, userID, roleName string, teamID *string) error {
	role, err := s.roles.GetByName(ctx, roleName, teamID)
	if err != nil {
		return err
	}
	if err := s.users.AttachRoles(ctx, userID, []uint{role.ID}); err != nil {
		return err
	}
	s.logger.Info("Assigned role ", roleName, " to user ", userID)
	return nil
}

// RevokeRole removes the named role from the user
func (s *authorizationService) RevokeRole(ctx context.Context, userID, roleName string, teamID *string) error {
	role, err := s.roles.GetByName(ctx, roleName, teamID)
	if err != nil {
		return err
	}
	if err := s.users.DetachRoles(ctx, userID, []uint{role.ID}); err != nil {
		return err
	}
	s.logger.Info("Revoked role ", roleName, " from user ", userID)
	return nil
}

// GivePermission grants permissions directly to the user
func (s *authorizationService) GivePermission(ctx context.Context, userID string, permissions ...string) error {
	perms, err := s.lookupPermissions(ctx, permissions)
	if err != nil {
		return err
	}
	return s.users.AttachPermissions(ctx, userID, permissionIDs(perms))
}

// CreateRole creates a role with the given permissions
func (s *authorizationService) CreateRole(ctx context.Context, name string, teamID *string, permissions []string) (*rbac.Role, error) {
	role := &rbac.Role{
		Name:      strings.TrimSpace(name),
		GuardName: rbac.GuardWeb,
		TeamID:    teamID,
	}
	if err := role.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.roles.GetByName(ctx, role.Name, teamID); err == nil {
		return nil, errs.Conflict("role %s already exists", role.Name)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	perms, err := s.lookupPermissions(ctx, permissions)
	if err != nil {
		return nil, err
	}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, err
	}
	if len(perms) > 0 {
		if err := s.roles.SyncPermissions(ctx, role.ID, permissionIDs(perms)); err != nil {
			return nil, err
		}
	}
	s.logger.Info("Created role ", role.Name, " with id ", role.ID)
	return s.roles.GetByID(ctx, role.ID)
}

// SyncRolePermissions replaces the permissions of a role
func (s *authorizationService) SyncRolePermissions(ctx context.Context, roleID uint, permissions []string) (*rbac.Role, error) {
	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		return nil, err
	}
	perms, err := s.lookupPermissions(ctx, permissions)
	if err != nil {
		return nil, err
	}
	if err := s.roles.SyncPermissions(ctx, roleID, permissionIDs(perms)); err != nil {
		return nil, err
	}
	return s.roles.GetByID(ctx, roleID)
}

// ListRoles lists the global roles and those of teamID
func (s *authorizationService) ListRoles(ctx context.Context, teamID *string) ([]*rbac.Role, error) {
	return s.roles.List(ctx, teamID)
}

// ListPermissions lists the permission catalogue
func (s *authorizationService) ListPermissions(ctx context.Context) ([]*rbac.Permission, error) {
	return s.permissions.List(ctx)
}

// Seed creates the permission catalogue and the built-in global roles. Running it
// again restores the default permissions of the built-in roles.
func (s *authorizationService) Seed(ctx context.Context) error {
	all, err := s.permissions.Ensure(ctx, rbac.AllPermissions, rbac.GuardWeb)
	if err != nil {
		return fmt.Errorf("failed to seed permissions: %w", err)
	}
	byName := make(map[string]uint, len(all))
	for _, p := range all {
		byName[p.Name] = p.ID
	}

	for _, name := range []string{rbac.RoleSuperAdmin, rbac.RoleAdmin, rbac.RoleMember} {
		role, err := s.roles.GetByName(ctx, name, nil)
		if errors.Is(err, errs.ErrNotFound) {
			role = &rbac.Role{Name: name, GuardName: rbac.GuardWeb}
			err = s.roles.Create(ctx, role)
		}
		if err != nil {
			return fmt.Errorf("failed to seed role %s: %w", name, err)
		}

		ids := make([]uint, 0, len(rbac.DefaultRolePermissions[name]))
		for _, perm := range rbac.DefaultRolePermissions[name] {
			ids = append(ids, byName[perm])
		}
		if err := s.roles.SyncPermissions(ctx, role.ID, ids); err != nil {
			return fmt.Errorf("failed to seed permissions of role %s: %w", name, err)
		}
	}

	s.logger.Info("Seeded ", len(all), " permissions and the built-in roles")
	return nil
}

func (s *authorizationService) lookupPermissions(ctx context.Context, names []string) ([]*rbac.Permission, error) {
	if len(names) == 0 {
		return nil, nil
	}
	perms, err := s.permissions.GetByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(perms))
	for _, p := range perms {
		found[p.Name] = true
	}
	var missing []string
	for _, name := range names {
		if !found[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errs.Invalid("unknown permissions: %s", strings.Join(missing, ", "))
	}
	return perms, nil
}

func permissionIDs(perms []*rbac.Permission) []uint {
	ids := make([]uint, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.ID)
	}
	return ids
}

// teamService implements the rbac.TeamService interface
type teamService struct {
	teams  rbac.TeamRepository
	logger logger.Logger
}

// NewTeamService creates a new instance of TeamService
func NewTeamService(teams rbac.TeamRepository, logger logger.Logger) (rbac.TeamService, error) {
	return &teamService{teams: teams, logger: logger}, nil
}

// Create creates a team with a unique name
func (s *teamService) Create(ctx context.Context, name, description string) (*rbac.Team, error) {
	team := &rbac.Team{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		Description: description,
	}
	if err := team.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.teams.GetByName(ctx, team.Name); err == nil {
		return nil, errs.Validation("team name already taken", map[string]string{"Name": "unique"})
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	if err := s.teams.Create(ctx, team); err != nil {
		return nil, err
	}
	s.logger.Info("Created team ", team.Name, " with id ", team.ID)
	return team, nil
}

// GetByID loads a team
func (s *teamService) GetByID(ctx context.Context, teamID string) (*rbac.Team, error) {
	return s.teams.GetByID(ctx, teamID)
}

// List lists all teams
func (s *teamService) List(ctx context.Context) ([]*rbac.Team, error) {
	return s.teams.List(ctx)
}

// AddMembers adds users to a team
func (s *teamService) AddMembers(ctx context.Context, teamID string, userIDs []string) error {
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return err
	}
	return s.teams.AttachUsers(ctx, teamID, userIDs)
}

// RemoveMembers removes users from a team
func (s *teamService) RemoveMembers(ctx context.Context, teamID string, userIDs []string) error {
	return s.teams.DetachUsers(ctx, teamID, userIDs)
}

// DeleteByID deletes a team together with its roles and memberships
func (s *teamService) DeleteByID(ctx context.Context, teamID string) error {
	n, err := s.teams.DeleteByIDs(ctx, []string{teamID})
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.NotFound("team with ID %s", teamID)
	}
	s.logger.Info("Deleted team with id ", teamID)
	return nil
}

// authService implements the rbac.AuthService interface
type authService struct {
	users    rbac.UserRepository
	sessions rbac.SessionStore
	hasher   rbac.PasswordHasher
	lifetime time.Duration
	logger   logger.Logger
}

// NewAuthService creates a new instance of AuthService issuing sessions valid for lifetime
func NewAuthService(users rbac.UserRepository, sessions rbac.SessionStore, hasher rbac.PasswordHasher, lifetime time.Duration, logger logger.Logger) (rbac.AuthService, error) {
	if lifetime <= 0 {
		return nil, fmt.Errorf("session lifetime must be positive")
	}
	return &authService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		lifetime: lifetime,
		logger:   logger,
	}, nil
}

// Login verifies email and password and opens a session. Unknown emails, wrong
// passwords and inactive users all fail with errs.ErrUnauthenticated.
func (s *authService) Login(ctx context.Context, email, password string) (string, *rbac.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", nil, fmt.Errorf("invalid credentials: %w", errs.ErrUnauthenticated)
		}
		return "", nil, err
	}
	if !s.hasher.Compare(user.PasswordHash, password) {
		return "", nil, fmt.Errorf("invalid credentials: %w", errs.ErrUnauthenticated)
	}
	if !user.IsActive {
		return "", nil, fmt.Errorf("account disabled: %w", errs.ErrUnauthenticated)
	}

	token, err := s.sessions.Create(ctx, user.ID, s.lifetime)
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Warn("Failed to record login of user ", user.ID, ": ", err)
	}

	s.logger.Info("User ", user.ID, " logged in")
	return token, user, nil
}

// Logout ends the session
func (s *authService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Authenticate resolves a session token to an active user
func (s *authService) Authenticate(ctx context.Context, token string) (*rbac.User, error) {
	userID, err := s.sessions.UserID(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("session user gone: %w", errs.ErrUnauthenticated)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account disabled: %w", errs.ErrUnauthenticated)
	}
	return user, nil
}
