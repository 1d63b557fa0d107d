package v1

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MGTheTrain/admin-console/internal/app"
	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
	"github.com/MGTheTrain/admin-console/internal/domain/errorlog"
	"github.com/MGTheTrain/admin-console/internal/domain/rbac"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
	"github.com/MGTheTrain/admin-console/internal/pkg/i18n"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"
)

// Keys of values stored on the gin context
const (
	userKey   = "user"
	tokenKey  = "session_token"
	teamKey   = "team_id"
	localeKey = "locale"
)

// Request headers and cookies
const (
	TeamHeader    = "X-Team-ID"
	SessionCookie = "session"
)

// abortWithError stops the chain and leaves err for ErrorHandler
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler renders the last error of a request as JSON with the status of its
// kind and reports it. Messages of unexpected errors are hidden unless showDetails.
func ErrorHandler(reporter errorlog.Reporter, showDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		writeError(c, reporter, showDetails, &errorlog.Report{Err: c.Errors.Last().Err})
	}
}

// Recovery turns panics into reported critical errors
func Recovery(reporter errorlog.Reporter, showDetails bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("%v", recovered)
		}
		writeError(c, reporter, showDetails, &errorlog.Report{
			Err:   err,
			Stack: string(debug.Stack()),
			Panic: true,
		})
	})
}

func writeError(c *gin.Context, reporter errorlog.Reporter, showDetails bool, report *errorlog.Report) {
	err := report.Err
	report.URL = c.Request.URL.String()
	report.Method = c.Request.Method
	report.IP = c.ClientIP()
	report.SessionID = c.GetString(tokenKey)
	if user := currentUser(c); user != nil {
		report.UserID = user.ID
	}

	resp := ErrorResponse{
		Message:   err.Error(),
		Reference: reporter.Report(c.Request.Context(), report),
	}
	status := errs.Status(err)
	if status == http.StatusInternalServerError && !showDetails {
		resp.Message = "Server Error"
	}

	var verr *errs.ValidationError
	if errors.As(err, &verr) {
		resp.Errors = verr.Fields
	}
	c.AbortWithStatusJSON(status, resp)
}

// sessionToken reads the bearer token or the session cookie
func sessionToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// Authenticate resolves the session token of the request to its user
func Authenticate(auth rbac.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			abortWithError(c, fmt.Errorf("missing session token: %w", errs.ErrUnauthenticated))
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(userKey, user)
		c.Set(tokenKey, token)
		c.Request = c.Request.WithContext(app.WithUser(c.Request.Context(), user.ID))
		c.Next()
	}
}

// TeamContext selects the team of the request from the X-Team-ID header, falling
// back to the first team of the user. Only super admins may select teams they are
// not a member of.
func TeamContext(authz rbac.AuthorizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.Next()
			return
		}

		teamID := strings.TrimSpace(c.GetHeader(TeamHeader))
		switch {
		case teamID == "" && len(user.Teams) > 0:
			teamID = user.Teams[0].ID
		case teamID != "" && !memberOf(user, teamID):
			ok, err := authz.HasRole(c.Request.Context(), user.ID, rbac.RoleSuperAdmin, "")
			if err != nil {
				abortWithError(c, err)
				return
			}
			if !ok {
				abortWithError(c, errs.Forbidden("not a member of team %s", teamID))
				return
			}
		}

		if teamID != "" {
			c.Set(teamKey, teamID)
			c.Request = c.Request.WithContext(app.WithTeam(c.Request.Context(), teamID))
		}
		c.Next()
	}
}

func memberOf(user *rbac.User, teamID string) bool {
	for _, t := range user.Teams {
		if t.ID == teamID {
			return true
		}
	}
	return false
}

// Locale negotiates the locale of the request from the lang query parameter, the
// locale cookie and the Accept-Language header
func Locale(negotiator *i18n.Negotiator) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(i18n.LangCookie)
		locale := negotiator.Negotiate(c.Query(i18n.LangParam), cookie, c.GetHeader("Accept-Language"))
		c.Set(localeKey, locale)
		c.Header("Content-Language", locale)
		c.Next()
	}
}

// RequirePermission rejects users without permission in the current team
func RequirePermission(authz rbac.AuthorizationService, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			abortWithError(c, errs.ErrUnauthenticated)
			return
		}
		ok, err := authz.Can(c.Request.Context(), user.ID, permission, c.GetString(teamKey))
		if err != nil {
			abortWithError(c, err)
			return
		}
		if !ok {
			abortWithError(c, errs.Forbidden("%s permission required", permission))
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *rbac.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*rbac.User)
	return user
}

func currentLocale(c *gin.Context) string {
	return c.GetString(localeKey)
}

// requestGate answers permission checks for the current user and team. Answers are
// memoized for the request; lookup failures deny.
func requestGate(c *gin.Context, authz rbac.AuthorizationService, log logger.Logger) datatable.Gate {
	user := currentUser(c)
	teamID := c.GetString(teamKey)
	answers := make(map[string]bool)

	return func(permission string) bool {
		if permission == "" {
			return true
		}
		if user == nil {
			return false
		}
		if ok, seen := answers[permission]; seen {
			return ok
		}
		ok, err := authz.Can(c.Request.Context(), user.ID, permission, teamID)
		if err != nil {
			log.Warn("Permission check ", permission, " failed for user ", user.ID, ": ", err)
			ok = false
		}
		answers[permission] = ok
		return ok
	}
}
