package app

import "context"

type (
	teamContextKey struct{}
	userContextKey struct{}
)

// WithTeam returns a context carrying the current team
func WithTeam(ctx context.Context, teamID string) context.Context {
	return context.WithValue(ctx, teamContextKey{}, teamID)
}

// TeamFromContext returns the current team, empty outside a team
func TeamFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	teamID, _ := ctx.Value(teamContextKey{}).(string)
	return teamID
}

// WithUser returns a context carrying the acting user
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userContextKey{}, userID)
}

// UserFromContext returns the acting user, empty for anonymous requests
func UserFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	userID, _ := ctx.Value(userContextKey{}).(string)
	return userID
}
