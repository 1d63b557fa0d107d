package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
	"github.com/MGTheTrain/admin-console/internal/domain/errorlog"
	"github.com/MGTheTrain/admin-console/internal/domain/notifications"
	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
	"github.com/MGTheTrain/admin-console/internal/infrastructure/persistence/models"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
)

// Table entities served by the admin console
const (
	UsersTable         = "users"
	RolesTable         = "roles"
	TeamsTable         = "teams"
	ErrorLogsTable     = "error_logs"
	NotificationsTable = "notifications"
)

// TableHandlers are the services row and bulk actions delegate to
type TableHandlers struct {
	Users         rbac.UserService
	Teams         rbac.TeamService
	ErrorLogs     errorlog.Service
	Notifications notifications.Service
}

// RegisterTables registers every admin table with registry
func RegisterTables(registry *datatable.Registry, h TableHandlers) error {
	tables := []datatable.Definition{
		NewUsersTable(h.Users),
		NewRolesTable(),
		NewTeamsTable(h.Teams),
		NewErrorLogsTable(h.ErrorLogs),
		NewNotificationsTable(h.Notifications),
	}
	for _, t := range tables {
		if err := registry.Register(t); err != nil {
			return fmt.Errorf("failed to register table: %w", err)
		}
	}
	return nil
}

// NewUsersTable lists the users of the current team
func NewUsersTable(users rbac.UserService) *datatable.Table {
	return datatable.NewTable(UsersTable, &models.UserModel{}).
		Can(rbac.PermUsersView).
		WithColumns(
			datatable.NewColumn("name").Sortable().Searchable(),
			datatable.NewColumn("email").Sortable().Searchable(),
			datatable.NewColumn("roles.name").Label("Roles").Searchable(),
			datatable.NewColumn("teams.name").Label("Teams").Searchable().Hidden(),
			datatable.NewColumn("is_active").Label("Active").Sortable(),
			datatable.NewColumn("email_verified_at").Label("Verified").FormatUsing(formatTime),
			datatable.NewColumn("last_login_at").Label("Last login").Sortable().FormatUsing(formatTime),
			datatable.NewColumn("created_at").Sortable().FormatUsing(formatTime),
		).
		WithFilters(
			datatable.NewFilter("active").On("is_active").Type(datatable.FilterBoolean).
				Options(datatable.Option{Value: "1", Label: "Active"}, datatable.Option{Value: "0", Label: "Inactive"}),
			datatable.NewFilter("verified").On("email_verified_at").Type(datatable.FilterBoolean).
				Options(datatable.Option{Value: "1", Label: "Verified"}, datatable.Option{Value: "0", Label: "Unverified"}).
				MapValues(map[string]interface{}{"1": datatable.NotNullValue, "0": datatable.NullValue}),
			datatable.NewFilter("role").On("roles.name").Type(datatable.FilterMultiSelect).
				Options(
					datatable.Option{Value: rbac.RoleSuperAdmin, Label: "Super admin"},
					datatable.Option{Value: rbac.RoleAdmin, Label: "Admin"},
					datatable.Option{Value: rbac.RoleMember, Label: "Member"},
				),
			datatable.NewFilter("team").On("teams.id"),
			datatable.NewFilter("created").On("created_at").Type(datatable.FilterDateRange),
		).
		WithActions(
			datatable.NewAction("deactivate").Icon("user-x").Can(rbac.PermUsersEdit).
				VisibleWhen(func(row interface{}) bool { return userRow(row).IsActive }).
				Handle(func(ctx context.Context, row interface{}) error {
					_, err := users.SetActive(ctx, []string{userRow(row).ID}, false)
					return err
				}),
			datatable.NewAction("activate").Icon("user-check").Can(rbac.PermUsersEdit).
				VisibleWhen(func(row interface{}) bool { return !userRow(row).IsActive }).
				Handle(func(ctx context.Context, row interface{}) error {
					_, err := users.SetActive(ctx, []string{userRow(row).ID}, true)
					return err
				}),
			datatable.NewAction("delete").Icon("trash").Variant("danger").Can(rbac.PermUsersDelete).
				Confirm("Delete this user?").
				VisibleWhen(func(row interface{}) bool { return userRow(row).ID != "" }).
				Handle(func(ctx context.Context, row interface{}) error {
					u := userRow(row)
					if u.ID == UserFromContext(ctx) {
						return errs.Invalid("you cannot delete yourself")
					}
					return users.DeleteByID(ctx, u.ID)
				}),
		).
		WithBulkActions(
			datatable.NewBulkAction("activate").Can(rbac.PermUsersEdit).
				Handle(func(ctx context.Context, ids []string) error {
					_, err := users.SetActive(ctx, ids, true)
					return err
				}),
			datatable.NewBulkAction("deactivate").Can(rbac.PermUsersEdit).
				Handle(func(ctx context.Context, ids []string) error {
					_, err := users.SetActive(ctx, withoutActor(ctx, ids), false)
					return err
				}),
			datatable.NewBulkAction("delete").Variant("danger").Can(rbac.PermUsersDelete).
				Confirm("Delete the selected users?").
				Handle(func(ctx context.Context, ids []string) error {
					_, err := users.DeleteByIDs(ctx, withoutActor(ctx, ids))
					return err
				}),
		).
		DefaultSort("name", datatable.Asc).
		SearchPlaceholder("Search users").
		Scope(func(db *gorm.DB) *gorm.DB {
			teamID := TeamFromContext(db.Statement.Context)
			if teamID == "" {
				return db
			}
			return db.Where("EXISTS (SELECT 1 FROM team_users WHERE team_users.user_id = users.id AND team_users.team_id = ?)", teamID)
		})
}

// NewRolesTable lists global roles and the roles of the current team
func NewRolesTable() *datatable.Table {
	return datatable.NewTable(RolesTable, &models.RoleModel{}).
		Can(rbac.PermRolesView).
		WithColumns(
			datatable.NewColumn("name").Sortable().Searchable(),
			datatable.NewColumn("guard_name").Label("Guard"),
			datatable.NewColumn("team.name").Label("Team").Sortable().Searchable(),
			datatable.NewColumn("permissions.name").Label("Permissions").Searchable(),
			datatable.NewColumn("created_at").Sortable().FormatUsing(formatTime),
		).
		WithFilters(
			datatable.NewFilter("scope").On("team_id").
				Options(datatable.Option{Value: "global", Label: "Global"}, datatable.Option{Value: "team", Label: "Team"}).
				MapValues(map[string]interface{}{"global": datatable.NullValue, "team": datatable.NotNullValue}),
			datatable.NewFilter("permission").On("permissions.name").Type(datatable.FilterMultiSelect),
		).
		DefaultSort("name", datatable.Asc).
		Scope(func(db *gorm.DB) *gorm.DB {
			teamID := TeamFromContext(db.Statement.Context)
			if teamID == "" {
				return db
			}
			return db.Where("roles.team_id IS NULL OR roles.team_id = ?", teamID)
		}).
		TransformUsing(func(row interface{}, values map[string]interface{}) map[string]interface{} {
			if r, ok := row.(*models.RoleModel); ok {
				values["global"] = r.TeamID == nil
			}
			return values
		})
}

// NewTeamsTable lists teams with their members
func NewTeamsTable(teams rbac.TeamService) *datatable.Table {
	return datatable.NewTable(TeamsTable, &models.TeamModel{}).
		Can(rbac.PermTeamsView).
		WithColumns(
			datatable.NewColumn("name").Sortable().Searchable(),
			datatable.NewColumn("description").Searchable(),
			datatable.NewColumn("users.email").Label("Members").Searchable().Hidden(),
			datatable.NewColumn("created_at").Sortable().FormatUsing(formatTime),
		).
		WithFilters(
			datatable.NewFilter("member").On("users.id"),
			datatable.NewFilter("created").On("created_at").Type(datatable.FilterDateRange),
		).
		WithActions(
			datatable.NewAction("delete").Icon("trash").Variant("danger").Can(rbac.PermTeamsDelete).
				Confirm("Delete this team and its roles?").
				Handle(func(ctx context.Context, row interface{}) error {
					t, ok := row.(*models.TeamModel)
					if !ok {
						return fmt.Errorf("unexpected row type %T", row)
					}
					return teams.DeleteByID(ctx, t.ID)
				}),
		).
		DefaultSort("name", datatable.Asc).
		TransformUsing(func(row interface{}, values map[string]interface{}) map[string]interface{} {
			if t, ok := row.(*models.TeamModel); ok {
				values["members_count"] = len(t.Users)
			}
			return values
		})
}

// NewErrorLogsTable lists reported errors, newest first
func NewErrorLogsTable(logs errorlog.Service) *datatable.Table {
	return datatable.NewTable(ErrorLogsTable, &models.ErrorLogModel{}).
		Can(rbac.PermErrorLogsView).
		WithColumns(
			datatable.NewColumn("reference").Searchable(),
			datatable.NewColumn("level").Sortable(),
			datatable.NewColumn("kind").Sortable(),
			datatable.NewColumn("message").Searchable(),
			datatable.NewColumn("url").Label("URL").Searchable().Hidden(),
			datatable.NewColumn("user.email").Label("User").Sortable().Searchable(),
			datatable.NewColumn("resolved_at").Label("Resolved").Sortable().FormatUsing(formatTime),
			datatable.NewColumn("created_at").Label("Reported").Sortable().FormatUsing(formatTime),
		).
		WithFilters(
			datatable.NewFilter("level").Type(datatable.FilterMultiSelect).
				Options(
					datatable.Option{Value: errorlog.LevelWarning, Label: "Warning"},
					datatable.Option{Value: errorlog.LevelError, Label: "Error"},
					datatable.Option{Value: errorlog.LevelCritical, Label: "Critical"},
				),
			datatable.NewFilter("kind"),
			datatable.NewFilter("resolved").On("resolved_at").Type(datatable.FilterBoolean).
				Options(datatable.Option{Value: "1", Label: "Resolved"}, datatable.Option{Value: "0", Label: "Open"}).
				MapValues(map[string]interface{}{"1": datatable.NotNullValue, "0": datatable.NullValue}),
			datatable.NewFilter("reported").On("created_at").Type(datatable.FilterDateRange),
		).
		WithActions(
			datatable.NewAction("resolve").Icon("check").Can(rbac.PermErrorLogsResolve).
				VisibleWhen(func(row interface{}) bool {
					e, ok := row.(*models.ErrorLogModel)
					return ok && e.ResolvedAt == nil
				}).
				Handle(func(ctx context.Context, row interface{}) error {
					e, ok := row.(*models.ErrorLogModel)
					if !ok {
						return fmt.Errorf("unexpected row type %T", row)
					}
					_, err := logs.Resolve(ctx, []string{e.ID}, UserFromContext(ctx))
					return err
				}),
		).
		WithBulkActions(
			datatable.NewBulkAction("resolve").Can(rbac.PermErrorLogsResolve).
				Handle(func(ctx context.Context, ids []string) error {
					_, err := logs.Resolve(ctx, ids, UserFromContext(ctx))
					return err
				}),
			datatable.NewBulkAction("delete").Variant("danger").Can(rbac.PermErrorLogsDelete).
				Confirm("Delete the selected errors?").
				Handle(func(ctx context.Context, ids []string) error {
					_, err := logs.DeleteByIDs(ctx, ids)
					return err
				}),
		).
		DefaultSort("created_at", datatable.Desc)
}

// NewNotificationsTable lists the notifications of the acting user
func NewNotificationsTable(service notifications.Service) *datatable.Table {
	return datatable.NewTable(NotificationsTable, &models.NotificationModel{}).
		WithColumns(
			datatable.NewColumn("title").Sortable().Searchable(),
			datatable.NewColumn("message").Searchable(),
			datatable.NewColumn("level").Sortable(),
			datatable.NewColumn("read_at").Label("Read").Sortable().FormatUsing(formatTime),
			datatable.NewColumn("created_at").Label("Received").Sortable().FormatUsing(formatTime),
		).
		WithFilters(
			datatable.NewFilter("unread").On("read_at").Type(datatable.FilterBoolean).
				Options(datatable.Option{Value: "1", Label: "Unread"}, datatable.Option{Value: "0", Label: "Read"}).
				MapValues(map[string]interface{}{"1": datatable.NullValue, "0": datatable.NotNullValue}),
			datatable.NewFilter("level").Type(datatable.FilterMultiSelect),
		).
		WithActions(
			datatable.NewAction("mark_read").Label("Mark as read").Icon("check").
				VisibleWhen(func(row interface{}) bool {
					n, ok := row.(*models.NotificationModel)
					return ok && n.ReadAt == nil
				}).
				Handle(func(ctx context.Context, row interface{}) error {
					n, ok := row.(*models.NotificationModel)
					if !ok {
						return fmt.Errorf("unexpected row type %T", row)
					}
					return service.MarkRead(ctx, n.NotifiableID, n.ID)
				}),
		).
		WithBulkActions(
			datatable.NewBulkAction("mark_read").Label("Mark as read").
				Handle(func(ctx context.Context, ids []string) error {
					userID := UserFromContext(ctx)
					for _, id := range ids {
						if err := service.MarkRead(ctx, userID, id); err != nil {
							return err
						}
					}
					return nil
				}),
		).
		DefaultSort("created_at", datatable.Desc).
		Scope(func(db *gorm.DB) *gorm.DB {
			return db.Where("notifications.notifiable_id = ?", UserFromContext(db.Statement.Context))
		})
}

func userRow(row interface{}) *models.UserModel {
	if u, ok := row.(*models.UserModel); ok && u != nil {
		return u
	}
	return &models.UserModel{}
}

// withoutActor drops the acting user from ids
func withoutActor(ctx context.Context, ids []string) []string {
	actor := UserFromContext(ctx)
	if actor == "" {
		return ids
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != actor {
			out = append(out, id)
		}
	}
	return out
}

func formatTime(value interface{}, _ interface{}) interface{} {
	switch t := value.(type) {
	case time.Time:
		if t.IsZero() {
			return nil
		}
		return t.UTC().Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC().Format(time.RFC3339)
	}
	return value
}
