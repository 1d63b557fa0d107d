package rbac

import "strings"

// Guard names
const (
	GuardWeb = "web"
	GuardAPI = "api"
)

// Built-in role names
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleMember     = "member"
)

// Permission names
const (
	PermUsersView   = "users.view"
	PermUsersCreate = "users.create"
	PermUsersEdit   = "users.edit"
	PermUsersDelete = "users.delete"

	PermRolesView   = "roles.view"
	PermRolesCreate = "roles.create"
	PermRolesEdit   = "roles.edit"
	PermRolesDelete = "roles.delete"

	PermTeamsView   = "teams.view"
	PermTeamsCreate = "teams.create"
	PermTeamsEdit   = "teams.edit"
	PermTeamsDelete = "teams.delete"

	PermErrorLogsView    = "error_logs.view"
	PermErrorLogsResolve = "error_logs.resolve"
	PermErrorLogsDelete  = "error_logs.delete"

	PermMailSettingsView = "mail_settings.view"
	PermMailSettingsEdit = "mail_settings.edit"

	PermEmailTemplatesView   = "email_templates.view"
	PermEmailTemplatesCreate = "email_templates.create"
	PermEmailTemplatesEdit   = "email_templates.edit"
	PermEmailTemplatesDelete = "email_templates.delete"
	PermEmailTemplatesSend   = "email_templates.send"

	PermNotificationsSend = "notifications.send"
)

// AllPermissions is the permission catalogue seeded on setup
var AllPermissions = []string{
	PermUsersView, PermUsersCreate, PermUsersEdit, PermUsersDelete,
	PermRolesView, PermRolesCreate, PermRolesEdit, PermRolesDelete,
	PermTeamsView, PermTeamsCreate, PermTeamsEdit, PermTeamsDelete,
	PermErrorLogsView, PermErrorLogsResolve, PermErrorLogsDelete,
	PermMailSettingsView, PermMailSettingsEdit,
	PermEmailTemplatesView, PermEmailTemplatesCreate, PermEmailTemplatesEdit,
	PermEmailTemplatesDelete, PermEmailTemplatesSend,
	PermNotificationsSend,
}

// DefaultRolePermissions lists the permissions seeded for the built-in roles.
// super_admin is absent: it passes every check.
var DefaultRolePermissions = map[string][]string{
	RoleAdmin: {
		PermUsersView, PermUsersCreate, PermUsersEdit, PermUsersDelete,
		PermRolesView, PermTeamsView, PermTeamsEdit,
		PermErrorLogsView, PermErrorLogsResolve,
		PermMailSettingsView, PermMailSettingsEdit,
		PermEmailTemplatesView, PermEmailTemplatesCreate, PermEmailTemplatesEdit, PermEmailTemplatesSend,
		PermNotificationsSend,
	},
	RoleMember: {
		PermUsersView, PermTeamsView,
	},
}

// Matches reports whether granted covers the requested permission. A granted
// "users.*" covers every users permission.
func Matches(granted, requested string) bool {
	if granted == requested {
		return true
	}
	if strings.HasSuffix(granted, ".*") {
		return strings.HasPrefix(requested, strings.TrimSuffix(granted, "*"))
	}
	return false
}

// Authorize evaluates requested against a user with loaded roles, role permissions
// and direct permissions inside teamID.
func Authorize(u *User, requested, teamID string) bool {
	if u == nil || !u.IsActive {
		return false
	}

	for _, p := range u.Permissions {
		if Matches(p.Name, requested) {
			return true
		}
	}

	for _, r := range u.Roles {
		if !r.AppliesTo(teamID) {
			continue
		}
		if r.Name == RoleSuperAdmin {
			return true
		}
		for _, p := range r.Permissions {
			if Matches(p.Name, requested) {
				return true
			}
		}
	}
	return false
}

// HasRole reports whether u holds role inside teamID
func HasRole(u *User, role, teamID string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r.Name == role && r.AppliesTo(teamID) {
			return true
		}
	}
	return false
}
