package rbac

import (
	"time"

	"github.com/MGTheTrain/admin-console/internal/pkg/validators"
)

// User entity
type User struct {
	ID              string     `validate:"required,uuid4"`
	Name            string     `validate:"required,min=1,max=255"`
	Email           string     `validate:"required,email,max=255"`
	PasswordHash    string     `validate:"required"`
	Locale          string     `validate:"omitempty,min=2,max=10"`
	IsActive        bool
	EmailVerifiedAt *time.Time
	LastLoginAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Roles       []Role
	Permissions []Permission
	Teams       []Team
}

// Validate for validating User struct
func (u *User) Validate() error {
	return validators.ValidateStruct(u)
}

// RoleNames returns the names of the loaded roles
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Team entity
type Team struct {
	ID          string `validate:"required,uuid4"`
	Name        string `validate:"required,min=1,max=255"`
	Description string `validate:"max=1000"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate for validating Team struct
func (t *Team) Validate() error {
	return validators.ValidateStruct(t)
}

// Role entity. A role without TeamID is global.
type Role struct {
	ID          uint
	Name        string  `validate:"required,min=1,max=100"`
	GuardName   string  `validate:"required,oneof=web api"`
	TeamID      *string `validate:"omitempty,uuid4"`
	Permissions []Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate for validating Role struct
func (r *Role) Validate() error {
	return validators.ValidateStruct(r)
}

// AppliesTo reports whether the role is effective inside teamID
func (r *Role) AppliesTo(teamID string) bool {
	return r.TeamID == nil || *r.TeamID == "" || *r.TeamID == teamID
}

// Permission entity
type Permission struct {
	ID        uint
	Name      string `validate:"required,permissionName"`
	GuardName string `validate:"required,oneof=web api"`
	CreatedAt time.Time
}

// Validate for validating Permission struct
func (p *Permission) Validate() error {
	return validators.ValidateStruct(p)
}

// PasswordResetToken stores the bcrypt hash of a single use reset token
type PasswordResetToken struct {
	Email     string `validate:"required,email"`
	TokenHash string `validate:"required"`
	CreatedAt time.Time
}

// Expired reports whether the token is older than lifetime at now
func (t *PasswordResetToken) Expired(now time.Time, lifetime time.Duration) bool {
	return now.Sub(t.CreatedAt) > lifetime
}
