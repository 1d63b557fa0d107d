package v1

import (
	"time"

	"github.com/MGTheTrain/admin-console/internal/domain/errorlog"
	"github.com/MGTheTrain/admin-console/internal/domain/mail"
	"github.com/MGTheTrain/admin-console/internal/domain/notifications"
	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
	"github.com/MGTheTrain/admin-console/internal/pkg/validators"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Message string `json:"message"`
	// Reference identifies the reported error in the error log
	Reference string            `json:"reference,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// InfoResponse acknowledges a request without a resource
type InfoResponse struct {
	Message string `json:"message"`
}

// CountResponse reports how many rows an operation touched
type CountResponse struct {
	Count int64 `json:"count"`
}

// LoginRequest carries credentials
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate for validating LoginRequest struct
func (r *LoginRequest) Validate() error {
	return validators.ValidateStruct(r)
}

// LoginResponse returns the session token and the logged in user
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ForgotPasswordRequest asks for a reset link
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Validate for validating ForgotPasswordRequest struct
func (r *ForgotPasswordRequest) Validate() error {
	return validators.ValidateStruct(r)
}

// ResetPasswordRequest redeems a reset token
type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Validate for validating ResetPasswordRequest struct
func (r *ResetPasswordRequest) Validate() error {
	return validators.ValidateStruct(r)
}

// RoleRef names a role with its team
type RoleRef struct {
	Name   string  `json:"name"`
	TeamID *string `json:"team_id"`
}

// TeamRef names a team
type TeamRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Locale          string     `json:"locale"`
	IsActive        bool       `json:"is_active"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	LastLoginAt     *time.Time `json:"last_login_at"`
	CreatedAt       time.Time  `json:"created_at"`
	Roles           []RoleRef  `json:"roles"`
	Teams           []TeamRef  `json:"teams"`
}

// NewUserResponse maps a user without its password hash
func NewUserResponse(u *rbac.User) UserResponse {
	resp := UserResponse{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Locale:          u.Locale,
		IsActive:        u.IsActive,
		EmailVerifiedAt: u.EmailVerifiedAt,
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
		Roles:           []RoleRef{},
		Teams:           []TeamRef{},
	}
	for _, r := range u.Roles {
		resp.Roles = append(resp.Roles, RoleRef{Name: r.Name, TeamID: r.TeamID})
	}
	for _, t := range u.Teams {
		resp.Teams = append(resp.Teams, TeamRef{ID: t.ID, Name: t.Name})
	}
	return resp
}

// AssignRoleRequest assigns or revokes a role
type AssignRoleRequest struct {
	Role   string  `json:"role" validate:"required"`
	TeamID *string `json:"team_id" validate:"omitempty,uuid4"`
}

// Validate for validating AssignRoleRequest struct
func (r *AssignRoleRequest) Validate() error {
	return validators.ValidateStruct(r)
}

// CreateRoleRequest creates a role
type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	TeamID      *string  `json:"team_id" validate:"omitempty,uuid4"`
	Permissions []string `json:"permissions"`
}

// Validate for validating CreateRoleRequest struct
func (r *CreateRoleRequest) Validate() error {
	return validators.ValidateStruct(r)
}

// SyncPermissionsRequest replaces the permissions of a role
type SyncPermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

// RoleResponse is the public view of a role
type RoleResponse struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	GuardName   string   `json:"guard_name"`
	TeamID      *string  `json:"team_id"`
	Permissions []string `json:"permissions"`
}

// NewRoleResponse maps a role
func NewRoleResponse(r *rbac.Role) RoleResponse {
	resp := RoleResponse{ID: r.ID, Name: r.Name, GuardName: r.GuardName, TeamID: r.TeamID, Permissions: []string{}}
	for _, p := range r.Permissions {
		resp.Permissions = append(resp.Permissions, p.Name)
	}
	return resp
}

// CreateTeamRequest creates a team
type CreateTeamRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=1000"`
}

// Validate for validating CreateTeamRequest struct
func (r *CreateTeamRequest) Validate() error {
	return validators.ValidateStruct(r)
}

// MembersRequest adds or removes team members
type MembersRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1,dive,uuid4"`
}

// Validate for validating MembersRequest struct
func (r *MembersRequest) Validate() error {
	return validators.ValidateStruct(r)
}

// TeamResponse is the public view of a team
type TeamResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewTeamResponse maps a team
func NewTeamResponse(t *rbac.Team) TeamResponse {
	return TeamResponse{ID: t.ID, Name: t.Name, Description: t.Description, CreatedAt: t.CreatedAt}
}

// BulkActionRequest selects the rows of a bulk action. All selects every row matching
// the query parameters of the request instead of IDs.
type BulkActionRequest struct {
	IDs []string `json:"ids"`
	All bool     `json:"all"`
}

// ActionResponse reports the outcome of a table action
type ActionResponse struct {
	Message  string `json:"message"`
	Affected int    `json:"affected"`
}

// NotificationListResponse pages through notifications
type NotificationListResponse struct {
	Data   []*notifications.Notification `json:"data"`
	Total  int64                         `json:"total"`
	Unread int64                         `json:"unread"`
}

// PreviewRequest picks the models a template preview is rendered with
type PreviewRequest struct {
	Entities mail.EntityRef `json:"entities"`
}

// SendTestRequest mails a template to one address
type SendTestRequest struct {
	To       string         `json:"to" validate:"required,email"`
	Locale   string         `json:"locale" validate:"omitempty,min=2,max=10"`
	Entities mail.EntityRef `json:"entities"`
}

// Validate for validating SendTestRequest struct
func (r *SendTestRequest) Validate() error {
	return validators.ValidateStruct(r)
}

// MailSettingsRequest stores SMTP credentials for a scope
type MailSettingsRequest struct {
	Scope       string `json:"scope" validate:"required,oneof=app team user"`
	ScopeID     string `json:"scope_id"`
	Host        string `json:"host" validate:"required"`
	Port        int    `json:"port" validate:"required,min=1,max=65535"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Encryption  string `json:"encryption" validate:"omitempty,oneof=tls ssl none"`
	FromAddress string `json:"from_address" validate:"required,email"`
	FromName    string `json:"from_name"`
	IsActive    bool   `json:"is_active"`
}

// Validate for validating MailSettingsRequest struct
func (r *MailSettingsRequest) Validate() error {
	return validators.ValidateStruct(r)
}

// ToSettings maps the request to mail settings
func (r *MailSettingsRequest) ToSettings() *mail.Settings {
	return &mail.Settings{
		Scope:       r.Scope,
		ScopeID:     r.ScopeID,
		Host:        r.Host,
		Port:        r.Port,
		Username:    r.Username,
		Password:    r.Password,
		Encryption:  r.Encryption,
		FromAddress: r.FromAddress,
		FromName:    r.FromName,
		IsActive:    r.IsActive,
	}
}

// ResolveRequest resolves error logs
type ResolveRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid4"`
}

// Validate for validating ResolveRequest struct
func (r *ResolveRequest) Validate() error {
	return validators.ValidateStruct(r)
}

// ErrorLogResponse is the admin view of a reported error
type ErrorLogResponse struct {
	ID         string                 `json:"id"`
	Reference  string                 `json:"reference"`
	Level      string                 `json:"level"`
	Kind       string                 `json:"kind"`
	Message    string                 `json:"message"`
	ErrorType  string                 `json:"error_type"`
	Stack      string                 `json:"stack"`
	URL        string                 `json:"url"`
	Method     string                 `json:"method"`
	IP         string                 `json:"ip"`
	UserID     *string                `json:"user_id"`
	Context    map[string]interface{} `json:"context"`
	ResolvedAt *time.Time             `json:"resolved_at"`
	ResolvedBy *string                `json:"resolved_by"`
	CreatedAt  time.Time              `json:"created_at"`
}

// NewErrorLogResponse maps an error log
func NewErrorLogResponse(e *errorlog.ErrorLog) ErrorLogResponse {
	return ErrorLogResponse{
		ID:         e.ID,
		Reference:  e.Reference,
		Level:      e.Level,
		Kind:       e.Kind,
		Message:    e.Message,
		ErrorType:  e.ErrorType,
		Stack:      e.Stack,
		URL:        e.URL,
		Method:     e.Method,
		IP:         e.IP,
		UserID:     e.UserID,
		Context:    e.Context,
		ResolvedAt: e.ResolvedAt,
		ResolvedBy: e.ResolvedBy,
		CreatedAt:  e.CreatedAt,
	}
}
