package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MGTheTrain/admin-console/internal/domain/errorlog"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
)

// ErrorLogHandler defines the interface for stored errors
type ErrorLogHandler interface {
	GetByID(ctx *gin.Context)
	Resolve(ctx *gin.Context)
	DeleteByIDs(ctx *gin.Context)
}

type errorLogHandler struct {
	errorLogService errorlog.Service
}

// NewErrorLogHandler creates a new ErrorLogHandler
func NewErrorLogHandler(errorLogService errorlog.Service) ErrorLogHandler {
	return &errorLogHandler{errorLogService: errorLogService}
}

// GetByID handles the GET request for an error by id or reference
// @Summary Get a reported error
// @Tags ErrorLog
// @Produce json
// @Param id path string true "Error ID or reference"
// @Success 200 {object} ErrorLogResponse
// @Failure 404 {object} ErrorResponse
// @Router /error-logs/{id} [get]
func (handler *errorLogHandler) GetByID(ctx *gin.Context) {
	entry, err := handler.errorLogService.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, NewErrorLogResponse(entry))
}

// Resolve handles the POST request marking errors as resolved by the current user
// @Summary Resolve reported errors
// @Tags ErrorLog
// @Accept json
// @Produce json
// @Param requestBody body ResolveRequest true "Error IDs"
// @Success 200 {object} CountResponse
// @Router /error-logs/resolve [post]
func (handler *errorLogHandler) Resolve(ctx *gin.Context) {
	var request ResolveRequest
	if !bindJSON(ctx, &request) {
		return
	}

	user := currentUser(ctx)
	if user == nil {
		abortWithError(ctx, errs.ErrUnauthenticated)
		return
	}

	count, err := handler.errorLogService.Resolve(ctx.Request.Context(), request.IDs, user.ID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, CountResponse{Count: count})
}

// DeleteByIDs handles the DELETE request removing errors
// @Summary Delete reported errors
// @Tags ErrorLog
// @Accept json
// @Produce json
// @Param requestBody body ResolveRequest true "Error IDs"
// @Success 200 {object} CountResponse
// @Router /error-logs [delete]
func (handler *errorLogHandler) DeleteByIDs(ctx *gin.Context) {
	var request ResolveRequest
	if !bindJSON(ctx, &request) {
		return
	}

	count, err := handler.errorLogService.DeleteByIDs(ctx.Request.Context(), request.IDs)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, CountResponse{Count: count})
}
