package v1

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MGTheTrain/admin-console/internal/domain/notifications"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"
)

// keepAliveInterval spaces the comments keeping idle event streams open
const keepAliveInterval = 25 * time.Second

// NotificationHandler defines the interface for notifications and toasts
type NotificationHandler interface {
	List(ctx *gin.Context)
	UnreadCount(ctx *gin.Context)
	MarkRead(ctx *gin.Context)
	MarkAllRead(ctx *gin.Context)
	PullToasts(ctx *gin.Context)
	Stream(ctx *gin.Context)
}

type notificationHandler struct {
	notificationService notifications.Service
	logger              logger.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService notifications.Service, logger logger.Logger) NotificationHandler {
	return &notificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// List handles the GET request for the notifications of the current user
// @Summary List notifications
// @Tags Notification
// @Produce json
// @Param unread query bool false "Only unread notifications"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} NotificationListResponse
// @Router /notifications [get]
func (handler *notificationHandler) List(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		abortWithError(ctx, errs.ErrUnauthenticated)
		return
	}

	query := &notifications.ListQuery{Limit: 20}
	if v := ctx.Query("unread"); v != "" {
		query.UnreadOnly, _ = strconv.ParseBool(v)
	}
	if v := ctx.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			abortWithError(ctx, errs.Invalid("limit must be a number"))
			return
		}
		query.Limit = limit
	}
	if v := ctx.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			abortWithError(ctx, errs.Invalid("offset must be a number"))
			return
		}
		query.Offset = offset
	}

	list, total, err := handler.notificationService.List(ctx.Request.Context(), user.ID, query)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	unread, err := handler.notificationService.UnreadCount(ctx.Request.Context(), user.ID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	if list == nil {
		list = []*notifications.Notification{}
	}
	ctx.JSON(http.StatusOK, NotificationListResponse{Data: list, Total: total, Unread: unread})
}

// UnreadCount handles the GET request for the unread badge
// @Summary Count unread notifications
// @Tags Notification
// @Produce json
// @Success 200 {object} CountResponse
// @Router /notifications/unread-count [get]
func (handler *notificationHandler) UnreadCount(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		abortWithError(ctx, errs.ErrUnauthenticated)
		return
	}

	count, err := handler.notificationService.UnreadCount(ctx.Request.Context(), user.ID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, CountResponse{Count: count})
}

// MarkRead handles the POST request marking one notification as read
// @Summary Mark a notification as read
// @Tags Notification
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /notifications/{id}/read [post]
func (handler *notificationHandler) MarkRead(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		abortWithError(ctx, errs.ErrUnauthenticated)
		return
	}

	if err := handler.notificationService.MarkRead(ctx.Request.Context(), user.ID, ctx.Param("id")); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// MarkAllRead handles the POST request marking every notification as read
// @Summary Mark all notifications as read
// @Tags Notification
// @Produce json
// @Success 200 {object} CountResponse
// @Router /notifications/read-all [post]
func (handler *notificationHandler) MarkAllRead(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		abortWithError(ctx, errs.ErrUnauthenticated)
		return
	}

	count, err := handler.notificationService.MarkAllRead(ctx.Request.Context(), user.ID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, CountResponse{Count: count})
}

// PullToasts returns and clears the toasts queued for the session
// @Summary Pull queued toasts
// @Tags Notification
// @Produce json
// @Success 200 {array} notifications.Toast
// @Router /toasts [get]
func (handler *notificationHandler) PullToasts(ctx *gin.Context) {
	toasts, err := handler.notificationService.PullToasts(ctx.Request.Context(), ctx.GetString(tokenKey))
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	if toasts == nil {
		toasts = []*notifications.Toast{}
	}
	ctx.JSON(http.StatusOK, toasts)
}

// Stream pushes live notification events as server-sent events until the client
// disconnects
// @Summary Stream live notifications
// @Tags Notification
// @Produce text/event-stream
// @Success 200
// @Router /notifications/stream [get]
func (handler *notificationHandler) Stream(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		abortWithError(ctx, errs.ErrUnauthenticated)
		return
	}

	events, err := handler.notificationService.Subscribe(ctx.Request.Context(), user.ID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	handler.logger.Info("Notification stream opened for user ", user.ID)
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("X-Accel-Buffering", "no")
	ctx.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			ctx.SSEvent(event.Kind, event)
			return true
		case <-ticker.C:
			_, _ = io.WriteString(w, ": keep-alive\n\n")
			return true
		case <-ctx.Request.Context().Done():
			return false
		}
	})
	handler.logger.Info("Notification stream closed for user ", user.ID)
}
