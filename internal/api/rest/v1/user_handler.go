package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
)

// UserHandler defines the interface for handling user operations
type UserHandler interface {
	Create(ctx *gin.Context)
	GetByID(ctx *gin.Context)
	Update(ctx *gin.Context)
	DeleteByID(ctx *gin.Context)
	AssignRole(ctx *gin.Context)
	RevokeRole(ctx *gin.Context)
}

type userHandler struct {
	userService          rbac.UserService
	authorizationService rbac.AuthorizationService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService rbac.UserService, authorizationService rbac.AuthorizationService) UserHandler {
	return &userHandler{
		userService:          userService,
		authorizationService: authorizationService,
	}
}

// Create handles the POST request to create a user
// @Summary Create a user
// @Tags User
// @Accept json
// @Produce json
// @Param requestBody body rbac.CreateUserInput true "User"
// @Success 201 {object} UserResponse
// @Failure 422 {object} ErrorResponse
// @Router /users [post]
func (handler *userHandler) Create(ctx *gin.Context) {
	var request rbac.CreateUserInput
	if err := ctx.ShouldBindJSON(&request); err != nil {
		abortWithError(ctx, errs.Invalid("invalid user data: %v", err))
		return
	}

	user, err := handler.userService.Create(ctx.Request.Context(), &request)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, NewUserResponse(user))
}

// GetByID handles the GET request for one user
// @Summary Get a user
// @Tags User
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (handler *userHandler) GetByID(ctx *gin.Context) {
	user, err := handler.userService.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, NewUserResponse(user))
}

// Update handles the PATCH request changing a user
// @Summary Update a user
// @Tags User
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param requestBody body rbac.UpdateUserInput true "Changed fields"
// @Success 200 {object} UserResponse
// @Failure 422 {object} ErrorResponse
// @Router /users/{id} [patch]
func (handler *userHandler) Update(ctx *gin.Context) {
	var request rbac.UpdateUserInput
	if err := ctx.ShouldBindJSON(&request); err != nil {
		abortWithError(ctx, errs.Invalid("invalid user data: %v", err))
		return
	}

	user, err := handler.userService.Update(ctx.Request.Context(), ctx.Param("id"), &request)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, NewUserResponse(user))
}

// DeleteByID handles the DELETE request for a user. Users cannot delete themselves.
// @Summary Delete a user
// @Tags User
// @Param id path string true "User ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [delete]
func (handler *userHandler) DeleteByID(ctx *gin.Context) {
	id := ctx.Param("id")
	if user := currentUser(ctx); user != nil && user.ID == id {
		abortWithError(ctx, errs.Invalid("you cannot delete yourself"))
		return
	}

	if err := handler.userService.DeleteByID(ctx.Request.Context(), id); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// AssignRole handles the POST request assigning a role to a user
// @Summary Assign a role
// @Tags User
// @Accept json
// @Param id path string true "User ID"
// @Param requestBody body AssignRoleRequest true "Role"
// @Success 204
// @Router /users/{id}/roles [post]
func (handler *userHandler) AssignRole(ctx *gin.Context) {
	var request AssignRoleRequest
	if !bindJSON(ctx, &request) {
		return
	}

	if err := handler.authorizationService.AssignRole(ctx.Request.Context(), ctx.Param("id"), request.Role, request.TeamID); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// RevokeRole handles the DELETE request removing a role from a user
// @Summary Revoke a role
// @Tags User
// @Accept json
// @Param id path string true "User ID"
// @Param requestBody body AssignRoleRequest true "Role"
// @Success 204
// @Router /users/{id}/roles [delete]
func (handler *userHandler) RevokeRole(ctx *gin.Context) {
	var request AssignRoleRequest
	if !bindJSON(ctx, &request) {
		return
	}

	if err := handler.authorizationService.RevokeRole(ctx.Request.Context(), ctx.Param("id"), request.Role, request.TeamID); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
