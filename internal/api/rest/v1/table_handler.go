package v1

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MGTheTrain/admin-console/internal/app"
	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
	"github.com/MGTheTrain/admin-console/internal/domain/notifications"
	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
	"github.com/MGTheTrain/admin-console/internal/pkg/i18n"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"
)

// TableHandler defines the interface for the data table endpoints
type TableHandler interface {
	List(ctx *gin.Context)
	Render(ctx *gin.Context)
	Config(ctx *gin.Context)
	ExecuteAction(ctx *gin.Context)
	ExecuteBulkAction(ctx *gin.Context)
	GetPreferences(ctx *gin.Context)
	SavePreferences(ctx *gin.Context)
	ResetPreferences(ctx *gin.Context)
}

type tableHandler struct {
	registry      *datatable.Registry
	services      app.TableServices
	authz         rbac.AuthorizationService
	notifications notifications.Service
	logger        logger.Logger
	translator
}

// NewTableHandler creates a new TableHandler
func NewTableHandler(
	registry *datatable.Registry,
	services app.TableServices,
	authz rbac.AuthorizationService,
	notificationService notifications.Service,
	catalog *i18n.Catalog,
	logger logger.Logger,
) TableHandler {
	return &tableHandler{
		registry:      registry,
		services:      services,
		authz:         authz,
		notifications: notificationService,
		logger:        logger,
		translator:    translator{catalog: catalog},
	}
}

func (handler *tableHandler) definition(ctx *gin.Context) (datatable.Definition, bool) {
	entity := ctx.Param("entity")
	def, ok := handler.registry.Get(entity)
	if !ok {
		abortWithError(ctx, errs.NotFound("table %s", entity))
		return nil, false
	}
	return def, true
}

func (handler *tableHandler) scope(ctx *gin.Context) datatable.Scope {
	scope := datatable.Scope{SessionID: ctx.GetString(tokenKey)}
	if user := currentUser(ctx); user != nil {
		scope.UserID = user.ID
	}
	return scope
}

// component builds a table component from the stored preferences and the query
// parameters of the request
func (handler *tableHandler) component(ctx *gin.Context) (*app.TableComponent, datatable.Definition, bool) {
	def, ok := handler.definition(ctx)
	if !ok {
		return nil, nil, false
	}

	gate := requestGate(ctx, handler.authz, handler.logger)
	component, err := app.NewTableComponent(ctx.Request.Context(), def, handler.services, handler.scope(ctx), gate)
	if err != nil {
		abortWithError(ctx, err)
		return nil, nil, false
	}
	component.ApplyQueryParams(ctx.Request.URL.Query())
	return component, def, true
}

// List returns the tables the user may view
// @Summary List data tables
// @Tags Table
// @Produce json
// @Success 200 {array} string
// @Router /tables [get]
func (handler *tableHandler) List(ctx *gin.Context) {
	gate := requestGate(ctx, handler.authz, handler.logger)
	entities := []string{}
	for _, entity := range handler.registry.Entities() {
		def, _ := handler.registry.Get(entity)
		if app.AuthorizeTable(def, gate) == nil {
			entities = append(entities, entity)
		}
	}
	ctx.JSON(http.StatusOK, entities)
}

// Render handles the GET request for one page of a table. Sort, direction, per page
// and filters given as query parameters are remembered for the user.
// @Summary Render a data table page
// @Tags Table
// @Produce json
// @Param entity path string true "Table"
// @Param search query string false "Search term"
// @Param sort query string false "Sort column"
// @Param direction query string false "asc or desc"
// @Param page query int false "Page"
// @Param per_page query int false "Rows per page"
// @Success 200 {object} datatable.Response
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tables/{entity} [get]
func (handler *tableHandler) Render(ctx *gin.Context) {
	component, def, ok := handler.component(ctx)
	if !ok {
		return
	}

	query := ctx.Request.URL.Query()
	if query.Has(app.ParamSort) || query.Has(app.ParamPerPage) || hasFilterParams(query) {
		prefs := datatable.FromRequest(component.Request())
		if _, err := handler.services.Preferences.Save(ctx.Request.Context(), def, handler.scope(ctx), prefs); err != nil {
			abortWithError(ctx, err)
			return
		}
	}

	resp, err := component.Render(ctx.Request.Context())
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

func hasFilterParams(query url.Values) bool {
	return app.ParseTableQuery(query).Filters != nil
}

// Config handles the GET request for the description of a table
// @Summary Describe a data table
// @Tags Table
// @Produce json
// @Param entity path string true "Table"
// @Success 200 {object} datatable.Config
// @Router /tables/{entity}/config [get]
func (handler *tableHandler) Config(ctx *gin.Context) {
	def, ok := handler.definition(ctx)
	if !ok {
		return
	}

	gate := requestGate(ctx, handler.authz, handler.logger)
	if err := app.AuthorizeTable(def, gate); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, handler.services.Builder.Config(def, gate))
}

// ExecuteAction handles the POST request running a row action
// @Summary Run a row action
// @Tags Table
// @Produce json
// @Param entity path string true "Table"
// @Param action path string true "Action"
// @Param id path string true "Row ID"
// @Success 200 {object} ActionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tables/{entity}/actions/{action}/{id} [post]
func (handler *tableHandler) ExecuteAction(ctx *gin.Context) {
	component, def, ok := handler.component(ctx)
	if !ok {
		return
	}

	key := ctx.Param("action")
	if err := component.ExecuteAction(ctx.Request.Context(), key, ctx.Param("id")); err != nil {
		abortWithError(ctx, err)
		return
	}

	label := key
	if action, found := datatable.FindAction(def, key); found {
		label = action.Describe().Label
	}
	message := handler.T(ctx, "tables.action_completed", map[string]string{"action": label})
	handler.toast(ctx, message)
	ctx.JSON(http.StatusOK, ActionResponse{Message: message, Affected: 1})
}

// ExecuteBulkAction handles the POST request running a bulk action over the given
// IDs, or over every row matching the query parameters when all is set
// @Summary Run a bulk action
// @Tags Table
// @Accept json
// @Produce json
// @Param entity path string true "Table"
// @Param action path string true "Bulk action"
// @Param requestBody body BulkActionRequest true "Selection"
// @Success 200 {object} ActionResponse
// @Failure 422 {object} ErrorResponse
// @Router /tables/{entity}/bulk-actions/{action} [post]
func (handler *tableHandler) ExecuteBulkAction(ctx *gin.Context) {
	var request BulkActionRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		abortWithError(ctx, errs.Invalid("invalid request body: %v", err))
		return
	}

	component, def, ok := handler.component(ctx)
	if !ok {
		return
	}

	if request.All {
		if err := component.SelectAll(ctx.Request.Context()); err != nil {
			abortWithError(ctx, err)
			return
		}
	} else {
		component.Select(request.IDs...)
	}
	affected := component.SelectedCount()

	key := ctx.Param("action")
	if err := component.ExecuteBulkAction(ctx.Request.Context(), key); err != nil {
		abortWithError(ctx, err)
		return
	}

	label := key
	if action, found := datatable.FindBulkAction(def, key); found {
		label = action.Describe().Label
	}
	message := handler.T(ctx, "tables.bulk_action_completed", map[string]string{
		"action": label,
		"count":  strconv.Itoa(affected),
	})
	handler.toast(ctx, message)
	ctx.JSON(http.StatusOK, ActionResponse{Message: message, Affected: affected})
}

func (handler *tableHandler) toast(ctx *gin.Context, message string) {
	token := ctx.GetString(tokenKey)
	if token == "" || handler.notifications == nil {
		return
	}
	if err := handler.notifications.Toast(ctx.Request.Context(), token, "", notifications.LevelSuccess, handler.T(ctx, "tables.done", nil), message); err != nil {
		handler.logger.Warn("Failed to queue toast: ", err)
	}
}

// GetPreferences returns the effective preferences of a table
// @Summary Get table preferences
// @Tags Table
// @Produce json
// @Param entity path string true "Table"
// @Success 200 {object} datatable.Preferences
// @Router /tables/{entity}/preferences [get]
func (handler *tableHandler) GetPreferences(ctx *gin.Context) {
	def, ok := handler.definition(ctx)
	if !ok {
		return
	}
	prefs, err := handler.services.Preferences.Load(ctx.Request.Context(), def, handler.scope(ctx))
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, prefs)
}

// SavePreferences stores the preferences of a table. Invalid values are normalized.
// @Summary Save table preferences
// @Tags Table
// @Accept json
// @Produce json
// @Param entity path string true "Table"
// @Param requestBody body datatable.Preferences true "Preferences"
// @Success 200 {object} datatable.Preferences
// @Router /tables/{entity}/preferences [put]
func (handler *tableHandler) SavePreferences(ctx *gin.Context) {
	var request datatable.Preferences
	if err := ctx.ShouldBindJSON(&request); err != nil {
		abortWithError(ctx, errs.Invalid("invalid request body: %v", err))
		return
	}

	def, ok := handler.definition(ctx)
	if !ok {
		return
	}
	saved, err := handler.services.Preferences.Save(ctx.Request.Context(), def, handler.scope(ctx), request)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, saved)
}

// ResetPreferences drops the stored preferences and returns the defaults
// @Summary Reset table preferences
// @Tags Table
// @Produce json
// @Param entity path string true "Table"
// @Success 200 {object} datatable.Preferences
// @Router /tables/{entity}/preferences [delete]
func (handler *tableHandler) ResetPreferences(ctx *gin.Context) {
	def, ok := handler.definition(ctx)
	if !ok {
		return
	}
	if err := handler.services.Preferences.Clear(ctx.Request.Context(), def, handler.scope(ctx)); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, datatable.DefaultPreferences(def))
}
