package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/MGTheTrain/admin-console/internal/app"
	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
	"github.com/MGTheTrain/admin-console/internal/domain/errorlog"
	"github.com/MGTheTrain/admin-console/internal/domain/mail"
	"github.com/MGTheTrain/admin-console/internal/domain/notifications"
	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
	"github.com/MGTheTrain/admin-console/internal/pkg/i18n"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"
)

// Services bundles what the version 1 routes are served by
type Services struct {
	Auth           rbac.AuthService
	PasswordResets rbac.PasswordResetService
	Users          rbac.UserService
	Authorization  rbac.AuthorizationService
	Teams          rbac.TeamService
	Notifications  notifications.Service
	EmailTemplates mail.EmailTemplateService
	MailSettings   mail.SettingsService
	ErrorLogs      errorlog.Service
	Reporter       errorlog.Reporter
	Tables         *datatable.Registry
	TableServices  app.TableServices
	Negotiator     *i18n.Negotiator
	// Catalog translates response messages; keys are returned when nil
	Catalog *i18n.Catalog
	// ShowErrorDetails exposes messages of unexpected errors to clients
	ShowErrorDetails bool
	Logger           logger.Logger
}

// SetupRoutes sets up all the API routes for version 1.
func SetupRoutes(r *gin.Engine, s Services) {
	r.Use(Recovery(s.Reporter, s.ShowErrorDetails))
	r.Use(ErrorHandler(s.Reporter, s.ShowErrorDetails))
	r.Use(Locale(s.Negotiator))

	v1 := r.Group(BasePath) // lookup in version file
	can := func(permission string) gin.HandlerFunc {
		return RequirePermission(s.Authorization, permission)
	}

	// Public auth routes
	authHandler := NewAuthHandler(s.Auth, s.PasswordResets, s.Catalog)
	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/auth/forgot-password", authHandler.ForgotPassword)
	v1.POST("/auth/reset-password", authHandler.ResetPassword)

	secured := v1.Group("", Authenticate(s.Auth), TeamContext(s.Authorization))
	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/auth/me", authHandler.Me)

	// Users Routes
	userHandler := NewUserHandler(s.Users, s.Authorization)
	secured.POST("/users", can(rbac.PermUsersCreate), userHandler.Create)
	secured.GET("/users/:id", can(rbac.PermUsersView), userHandler.GetByID)
	secured.PATCH("/users/:id", can(rbac.PermUsersEdit), userHandler.Update)
	secured.DELETE("/users/:id", can(rbac.PermUsersDelete), userHandler.DeleteByID)
	secured.POST("/users/:id/roles", can(rbac.PermRolesEdit), userHandler.AssignRole)
	secured.DELETE("/users/:id/roles", can(rbac.PermRolesEdit), userHandler.RevokeRole)

	// Teams, Roles and Permissions Routes
	teamHandler := NewTeamHandler(s.Teams, s.Authorization)
	secured.GET("/teams", can(rbac.PermTeamsView), teamHandler.ListTeams)
	secured.POST("/teams", can(rbac.PermTeamsCreate), teamHandler.CreateTeam)
	secured.GET("/teams/:id", can(rbac.PermTeamsView), teamHandler.GetTeam)
	secured.DELETE("/teams/:id", can(rbac.PermTeamsDelete), teamHandler.DeleteTeam)
	secured.POST("/teams/:id/members", can(rbac.PermTeamsEdit), teamHandler.AddMembers)
	secured.DELETE("/teams/:id/members", can(rbac.PermTeamsEdit), teamHandler.RemoveMembers)
	secured.GET("/roles", can(rbac.PermRolesView), teamHandler.ListRoles)
	secured.POST("/roles", can(rbac.PermRolesCreate), teamHandler.CreateRole)
	secured.PUT("/roles/:id/permissions", can(rbac.PermRolesEdit), teamHandler.SyncRolePermissions)
	secured.GET("/permissions", can(rbac.PermRolesView), teamHandler.ListPermissions)

	// Tables Routes; permissions are checked per table definition
	tableHandler := NewTableHandler(s.Tables, s.TableServices, s.Authorization, s.Notifications, s.Catalog, s.Logger)
	secured.GET("/tables", tableHandler.List)
	secured.GET("/tables/:entity", tableHandler.Render)
	secured.GET("/tables/:entity/config", tableHandler.Config)
	secured.POST("/tables/:entity/actions/:action/:id", tableHandler.ExecuteAction)
	secured.POST("/tables/:entity/bulk-actions/:action", tableHandler.ExecuteBulkAction)
	secured.GET("/tables/:entity/preferences", tableHandler.GetPreferences)
	secured.PUT("/tables/:entity/preferences", tableHandler.SavePreferences)
	secured.DELETE("/tables/:entity/preferences", tableHandler.ResetPreferences)

	// Notifications Routes
	notificationHandler := NewNotificationHandler(s.Notifications, s.Logger)
	secured.GET("/notifications", notificationHandler.List)
	secured.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	secured.GET("/notifications/stream", notificationHandler.Stream)
	secured.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	secured.POST("/notifications/:id/read", notificationHandler.MarkRead)
	secured.GET("/toasts", notificationHandler.PullToasts)

	// Email Routes
	emailHandler := NewEmailHandler(s.EmailTemplates, s.MailSettings)
	secured.GET("/email-templates", can(rbac.PermEmailTemplatesView), emailHandler.ListTemplates)
	secured.POST("/email-templates", can(rbac.PermEmailTemplatesCreate), emailHandler.CreateTemplate)
	secured.GET("/email-templates/tags/:entity", can(rbac.PermEmailTemplatesView), emailHandler.Tags)
	secured.GET("/email-templates/:id", can(rbac.PermEmailTemplatesView), emailHandler.GetTemplate)
	secured.PUT("/email-templates/:id", can(rbac.PermEmailTemplatesEdit), emailHandler.UpdateTemplate)
	secured.DELETE("/email-templates/:id", can(rbac.PermEmailTemplatesDelete), emailHandler.DeleteTemplate)
	secured.POST("/email-templates/:id/preview", can(rbac.PermEmailTemplatesView), emailHandler.Preview)
	secured.POST("/email-templates/:id/send-test", can(rbac.PermEmailTemplatesSend), emailHandler.SendTest)
	secured.GET("/mail-settings", can(rbac.PermMailSettingsView), emailHandler.ListSettings)
	secured.PUT("/mail-settings", can(rbac.PermMailSettingsEdit), emailHandler.SaveSettings)

	// Error Logs Routes
	errorLogHandler := NewErrorLogHandler(s.ErrorLogs)
	secured.GET("/error-logs/:id", can(rbac.PermErrorLogsView), errorLogHandler.GetByID)
	secured.POST("/error-logs/resolve", can(rbac.PermErrorLogsResolve), errorLogHandler.Resolve)
	secured.DELETE("/error-logs", can(rbac.PermErrorLogsDelete), errorLogHandler.DeleteByIDs)
}
