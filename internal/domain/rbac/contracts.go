package rbac

import (
	"context"
	"time"
)

// CreateUserInput carries the fields of a new user
type CreateUserInput struct {
	Name     string   `json:"name" validate:"required,min=1,max=255"`
	Email    string   `json:"email" validate:"required,email,max=255"`
	Password string   `json:"password" validate:"required,min=8,max=72"`
	Locale   string   `json:"locale" validate:"omitempty,min=2,max=10"`
	Roles    []string `json:"roles"`
	TeamIDs  []string `json:"team_ids" validate:"dive,uuid4"`
}

// UpdateUserInput carries the changed fields of a user; nil fields are left untouched
type UpdateUserInput struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=255"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
	Locale   *string `json:"locale" validate:"omitempty,min=2,max=10"`
	IsActive *bool   `json:"is_active"`
}

// UserService manages users
type UserService interface {
	Create(ctx context.Context, input *CreateUserInput) (*User, error)
	GetByID(ctx context.Context, userID string) (*User, error)
	Update(ctx context.Context, userID string, input *UpdateUserInput) (*User, error)
	DeleteByID(ctx context.Context, userID string) error
	DeleteByIDs(ctx context.Context, userIDs []string) (int64, error)
	SetActive(ctx context.Context, userIDs []string, active bool) (int64, error)
}

// AuthorizationService answers permission checks and manages role assignments
type AuthorizationService interface {
	// Can reports whether the user holds permission inside teamID
	Can(ctx context.Context, userID, permission, teamID string) (bool, error)
	HasRole(ctx context.Context, userID, role, teamID string) (bool, error)
	AssignRole(ctx context.Context, userID, roleName string, teamID *string) error
	RevokeRole(ctx context.Context, userID, roleName string, teamID *string) error
	GivePermission(ctx context.Context, userID string, permissions ...string) error
	CreateRole(ctx context.Context, name string, teamID *string, permissions []string) (*Role, error)
	SyncRolePermissions(ctx context.Context, roleID uint, permissions []string) (*Role, error)
	ListRoles(ctx context.Context, teamID *string) ([]*Role, error)
	ListPermissions(ctx context.Context) ([]*Permission, error)
	// Seed creates the permission catalogue and the built-in roles
	Seed(ctx context.Context) error
}

// TeamService manages teams and memberships
type TeamService interface {
	Create(ctx context.Context, name, description string) (*Team, error)
	GetByID(ctx context.Context, teamID string) (*Team, error)
	List(ctx context.Context) ([]*Team, error)
	AddMembers(ctx context.Context, teamID string, userIDs []string) error
	RemoveMembers(ctx context.Context, teamID string, userIDs []string) error
	DeleteByID(ctx context.Context, teamID string) error
}

// AuthService authenticates users with email and password
type AuthService interface {
	// Login verifies the credentials and opens a session
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a session token to its user
	Authenticate(ctx context.Context, token string) (*User, error)
}

// PasswordResetService issues and redeems password reset tokens
type PasswordResetService interface {
	// SendResetLink creates a token and mails it. Unknown emails are not reported.
	SendResetLink(ctx context.Context, email string) error
	// CreateToken creates a token for email and returns the plain value
	CreateToken(ctx context.Context, email string) (string, error)
	Reset(ctx context.Context, email, token, newPassword string) error
	// PruneExpired deletes expired tokens and returns how many were removed
	PruneExpired(ctx context.Context) (int64, error)
}

// UserRepository persists users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	// GetByID loads the user with roles, role permissions, direct permissions and teams
	GetByID(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	DeleteByIDs(ctx context.Context, userIDs []string) (int64, error)
	SetActive(ctx context.Context, userIDs []string, active bool) (int64, error)
	AttachRoles(ctx context.Context, userID string, roleIDs []uint) error
	DetachRoles(ctx context.Context, userID string, roleIDs []uint) error
	AttachPermissions(ctx context.Context, userID string, permissionIDs []uint) error
	// ListIDsWithoutTeam returns users not member of any team
	ListIDsWithoutTeam(ctx context.Context) ([]string, error)
}

// RoleRepository persists roles
type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	GetByID(ctx context.Context, roleID uint) (*Role, error)
	// GetByName finds a role by name inside teamID; a nil teamID finds global roles
	GetByName(ctx context.Context, name string, teamID *string) (*Role, error)
	List(ctx context.Context, teamID *string) ([]*Role, error)
	SyncPermissions(ctx context.Context, roleID uint, permissionIDs []uint) error
	DeleteByTeamIDs(ctx context.Context, teamIDs []string) (int64, error)
	// DeleteOrphaned removes team scoped roles whose team no longer exists
	DeleteOrphaned(ctx context.Context) (int64, error)
}

// PermissionRepository persists permissions
type PermissionRepository interface {
	// Ensure creates the missing permissions and returns all of them
	Ensure(ctx context.Context, names []string, guard string) ([]*Permission, error)
	GetByNames(ctx context.Context, names []string) ([]*Permission, error)
	List(ctx context.Context) ([]*Permission, error)
}

// TeamRepository persists teams
type TeamRepository interface {
	Create(ctx context.Context, team *Team) error
	GetByID(ctx context.Context, teamID string) (*Team, error)
	GetByName(ctx context.Context, name string) (*Team, error)
	List(ctx context.Context) ([]*Team, error)
	DeleteByIDs(ctx context.Context, teamIDs []string) (int64, error)
	AttachUsers(ctx context.Context, teamID string, userIDs []string) error
	DetachUsers(ctx context.Context, teamID string, userIDs []string) error
	// ListEmptyIDs returns teams without members, except the named ones
	ListEmptyIDs(ctx context.Context, except ...string) ([]string, error)
	// DeleteDanglingMemberships removes memberships pointing at missing users or teams
	DeleteDanglingMemberships(ctx context.Context) (int64, error)
}

// PasswordResetTokenRepository persists reset tokens, one per email
type PasswordResetTokenRepository interface {
	Put(ctx context.Context, token *PasswordResetToken) error
	Get(ctx context.Context, email string) (*PasswordResetToken, error)
	Delete(ctx context.Context, email string) error
	DeleteCreatedBefore(ctx context.Context, t time.Time) (int64, error)
}

// SessionStore keeps login sessions
type SessionStore interface {
	Create(ctx context.Context, userID string, ttl time.Duration) (string, error)
	// UserID resolves a session token; errs.ErrUnauthenticated when unknown or expired
	UserID(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

// PasswordHasher hashes and verifies secrets
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Compare(hash, secret string) bool
}

// SetupResult summarises a tenancy setup run
type SetupResult struct {
	DefaultTeamID string `json:"default_team_id"`
	CreatedTeam   bool   `json:"created_team"`
	AttachedUsers int    `json:"attached_users"`
}

// CleanupResult summarises a tenancy cleanup run
type CleanupResult struct {
	RemovedTeams       []string `json:"removed_teams"`
	RemovedRoles       int64    `json:"removed_roles"`
	RemovedMemberships int64    `json:"removed_memberships"`
	DryRun             bool     `json:"dry_run"`
}

// TenancyService prepares and tidies team scoping
type TenancyService interface {
	// Setup seeds permissions and roles, ensures the default team and moves users
	// without a team into it
	Setup(ctx context.Context) (*SetupResult, error)
	// Cleanup removes teams without members except the default team, their roles,
	// orphaned team roles and dangling memberships
	Cleanup(ctx context.Context, dryRun bool) (*CleanupResult, error)
}
