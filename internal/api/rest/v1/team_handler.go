package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
)

// TeamHandler defines the interface for teams, roles and permissions
type TeamHandler interface {
	ListTeams(ctx *gin.Context)
	CreateTeam(ctx *gin.Context)
	GetTeam(ctx *gin.Context)
	DeleteTeam(ctx *gin.Context)
	AddMembers(ctx *gin.Context)
	RemoveMembers(ctx *gin.Context)
	ListRoles(ctx *gin.Context)
	CreateRole(ctx *gin.Context)
	SyncRolePermissions(ctx *gin.Context)
	ListPermissions(ctx *gin.Context)
}

type teamHandler struct {
	teamService          rbac.TeamService
	authorizationService rbac.AuthorizationService
}

// NewTeamHandler creates a new TeamHandler
func NewTeamHandler(teamService rbac.TeamService, authorizationService rbac.AuthorizationService) TeamHandler {
	return &teamHandler{
		teamService:          teamService,
		authorizationService: authorizationService,
	}
}

// ListTeams handles the GET request listing teams
// @Summary List teams
// @Tags Team
// @Produce json
// @Success 200 {array} TeamResponse
// @Router /teams [get]
func (handler *teamHandler) ListTeams(ctx *gin.Context) {
	teams, err := handler.teamService.List(ctx.Request.Context())
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	listResponse := []TeamResponse{}
	for _, team := range teams {
		listResponse = append(listResponse, NewTeamResponse(team))
	}
	ctx.JSON(http.StatusOK, listResponse)
}

// CreateTeam handles the POST request creating a team
// @Summary Create a team
// @Tags Team
// @Accept json
// @Produce json
// @Param requestBody body CreateTeamRequest true "Team"
// @Success 201 {object} TeamResponse
// @Failure 422 {object} ErrorResponse
// @Router /teams [post]
func (handler *teamHandler) CreateTeam(ctx *gin.Context) {
	var request CreateTeamRequest
	if !bindJSON(ctx, &request) {
		return
	}

	team, err := handler.teamService.Create(ctx.Request.Context(), request.Name, request.Description)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, NewTeamResponse(team))
}

// GetTeam handles the GET request for one team
// @Summary Get a team
// @Tags Team
// @Produce json
// @Param id path string true "Team ID"
// @Success 200 {object} TeamResponse
// @Failure 404 {object} ErrorResponse
// @Router /teams/{id} [get]
func (handler *teamHandler) GetTeam(ctx *gin.Context) {
	team, err := handler.teamService.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, NewTeamResponse(team))
}

// DeleteTeam handles the DELETE request for a team
// @Summary Delete a team
// @Tags Team
// @Param id path string true "Team ID"
// @Success 204
// @Router /teams/{id} [delete]
func (handler *teamHandler) DeleteTeam(ctx *gin.Context) {
	if err := handler.teamService.DeleteByID(ctx.Request.Context(), ctx.Param("id")); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// AddMembers handles the POST request adding users to a team
// @Summary Add team members
// @Tags Team
// @Accept json
// @Param id path string true "Team ID"
// @Param requestBody body MembersRequest true "Users"
// @Success 204
// @Router /teams/{id}/members [post]
func (handler *teamHandler) AddMembers(ctx *gin.Context) {
	var request MembersRequest
	if !bindJSON(ctx, &request) {
		return
	}

	if err := handler.teamService.AddMembers(ctx.Request.Context(), ctx.Param("id"), request.UserIDs); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// RemoveMembers handles the DELETE request removing users from a team
// @Summary Remove team members
// @Tags Team
// @Accept json
// @Param id path string true "Team ID"
// @Param requestBody body MembersRequest true "Users"
// @Success 204
// @Router /teams/{id}/members [delete]
func (handler *teamHandler) RemoveMembers(ctx *gin.Context) {
	var request MembersRequest
	if !bindJSON(ctx, &request) {
		return
	}

	if err := handler.teamService.RemoveMembers(ctx.Request.Context(), ctx.Param("id"), request.UserIDs); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ListRoles handles the GET request listing global roles and those of the current team
// @Summary List roles
// @Tags Role
// @Produce json
// @Success 200 {array} RoleResponse
// @Router /roles [get]
func (handler *teamHandler) ListRoles(ctx *gin.Context) {
	var teamID *string
	if id := ctx.GetString(teamKey); id != "" {
		teamID = &id
	}

	roles, err := handler.authorizationService.ListRoles(ctx.Request.Context(), teamID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	listResponse := []RoleResponse{}
	for _, role := range roles {
		listResponse = append(listResponse, NewRoleResponse(role))
	}
	ctx.JSON(http.StatusOK, listResponse)
}

// CreateRole handles the POST request creating a role
// @Summary Create a role
// @Tags Role
// @Accept json
// @Produce json
// @Param requestBody body CreateRoleRequest true "Role"
// @Success 201 {object} RoleResponse
// @Failure 409 {object} ErrorResponse
// @Router /roles [post]
func (handler *teamHandler) CreateRole(ctx *gin.Context) {
	var request CreateRoleRequest
	if !bindJSON(ctx, &request) {
		return
	}

	role, err := handler.authorizationService.CreateRole(ctx.Request.Context(), request.Name, request.TeamID, request.Permissions)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, NewRoleResponse(role))
}

// SyncRolePermissions handles the PUT request replacing the permissions of a role
// @Summary Replace role permissions
// @Tags Role
// @Accept json
// @Produce json
// @Param id path int true "Role ID"
// @Param requestBody body SyncPermissionsRequest true "Permissions"
// @Success 200 {object} RoleResponse
// @Router /roles/{id}/permissions [put]
func (handler *teamHandler) SyncRolePermissions(ctx *gin.Context) {
	roleID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		abortWithError(ctx, errs.NotFound("role %s", ctx.Param("id")))
		return
	}

	var request SyncPermissionsRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		abortWithError(ctx, errs.Invalid("invalid request body: %v", err))
		return
	}

	role, err := handler.authorizationService.SyncRolePermissions(ctx.Request.Context(), uint(roleID), request.Permissions)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, NewRoleResponse(role))
}

// ListPermissions handles the GET request listing the permission catalogue
// @Summary List permissions
// @Tags Role
// @Produce json
// @Success 200 {array} string
// @Router /permissions [get]
func (handler *teamHandler) ListPermissions(ctx *gin.Context) {
	permissions, err := handler.authorizationService.ListPermissions(ctx.Request.Context())
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	names := []string{}
	for _, p := range permissions {
		names = append(names, p.Name)
	}
	ctx.JSON(http.StatusOK, names)
}
