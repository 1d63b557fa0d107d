package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
	"github.com/MGTheTrain/admin-console/internal/pkg/i18n"
)

// AuthHandler defines the interface for session and password endpoints
type AuthHandler interface {
	Login(ctx *gin.Context)
	Logout(ctx *gin.Context)
	Me(ctx *gin.Context)
	ForgotPassword(ctx *gin.Context)
	ResetPassword(ctx *gin.Context)
}

type authHandler struct {
	authService          rbac.AuthService
	passwordResetService rbac.PasswordResetService
	translator
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService rbac.AuthService, passwordResetService rbac.PasswordResetService, catalog *i18n.Catalog) AuthHandler {
	return &authHandler{
		authService:          authService,
		passwordResetService: passwordResetService,
		translator:           translator{catalog: catalog},
	}
}

// bindJSON decodes and validates a request body
func bindJSON(ctx *gin.Context, request interface{ Validate() error }) bool {
	if err := ctx.ShouldBindJSON(request); err != nil {
		abortWithError(ctx, errs.Invalid("invalid request body: %v", err))
		return false
	}
	if err := request.Validate(); err != nil {
		abortWithError(ctx, err)
		return false
	}
	return true
}

// Login handles the POST request opening a session
// @Summary Log in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param requestBody body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /auth/login [post]
func (handler *authHandler) Login(ctx *gin.Context) {
	var request LoginRequest
	if !bindJSON(ctx, &request) {
		return
	}

	token, user, err := handler.authService.Login(ctx.Request.Context(), request.Email, request.Password)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(SessionCookie, token, 0, "/", "", false, true)
	ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: NewUserResponse(user)})
}

// Logout handles the POST request closing the current session
// @Summary Log out
// @Tags Auth
// @Success 204
// @Router /auth/logout [post]
func (handler *authHandler) Logout(ctx *gin.Context) {
	if err := handler.authService.Logout(ctx.Request.Context(), ctx.GetString(tokenKey)); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	ctx.Status(http.StatusNoContent)
}

// Me returns the logged in user
// @Summary Current user
// @Tags Auth
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (handler *authHandler) Me(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		abortWithError(ctx, errs.ErrUnauthenticated)
		return
	}
	ctx.JSON(http.StatusOK, NewUserResponse(user))
}

// ForgotPassword mails a reset link. The answer is the same for unknown emails.
// @Summary Request a password reset link
// @Tags Auth
// @Accept json
// @Produce json
// @Param requestBody body ForgotPasswordRequest true "Email"
// @Success 202 {object} InfoResponse
// @Router /auth/forgot-password [post]
func (handler *authHandler) ForgotPassword(ctx *gin.Context) {
	var request ForgotPasswordRequest
	if !bindJSON(ctx, &request) {
		return
	}

	if err := handler.passwordResetService.SendResetLink(ctx.Request.Context(), request.Email); err != nil {
		abortWithError(ctx, fmt.Errorf("failed to send reset link: %w", err))
		return
	}
	ctx.JSON(http.StatusAccepted, InfoResponse{Message: handler.T(ctx, "auth.reset_link_sent", nil)})
}

// ResetPassword sets a new password with a reset token
// @Summary Reset a password
// @Tags Auth
// @Accept json
// @Produce json
// @Param requestBody body ResetPasswordRequest true "Token and new password"
// @Success 200 {object} InfoResponse
// @Failure 422 {object} ErrorResponse
// @Router /auth/reset-password [post]
func (handler *authHandler) ResetPassword(ctx *gin.Context) {
	var request ResetPasswordRequest
	if !bindJSON(ctx, &request) {
		return
	}

	if err := handler.passwordResetService.Reset(ctx.Request.Context(), request.Email, request.Token, request.Password); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, InfoResponse{Message: handler.T(ctx, "auth.password_reset", nil)})
}
