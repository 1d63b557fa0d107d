package datatable

import "context"

// QueryBuilder runs table requests against the relational store
type QueryBuilder interface {
	// Execute applies search, filters, sorting and pagination. The requested page is
	// clamped to the last page of the filtered result.
	Execute(ctx context.Context, def Definition, req Request) (*Page, error)
	// CountAll counts the rows of the base query, ignoring search and filters
	CountAll(ctx context.Context, def Definition) (int64, error)
	// FindByIDs loads rows of the base query by primary key
	FindByIDs(ctx context.Context, def Definition, ids []string) ([]Record, error)
	// MatchingIDs returns the primary keys of every row matching search and filters
	MatchingIDs(ctx context.Context, def Definition, req Request) ([]string, error)
}

// Builder renders tables
type Builder interface {
	// Build runs req and returns rows, pagination, stats and the table config
	Build(ctx context.Context, def Definition, req Request, gate Gate) (*Response, error)
	// Config serializes def for a user
	Config(def Definition, gate Gate) Config
}

// Scope identifies whose preferences are read or written. UserID is empty for
// anonymous sessions.
type Scope struct {
	SessionID string
	UserID    string
}

// PreferenceStore persists preferences for one layer. Get returns nil without error
// when nothing is stored.
type PreferenceStore interface {
	Get(ctx context.Context, owner, entity string) (*Preferences, error)
	Put(ctx context.Context, owner, entity string, prefs Preferences) error
	Delete(ctx context.Context, owner, entity string) error
}

// PreferencesService layers preferences across the session and the database
type PreferencesService interface {
	Load(ctx context.Context, def Definition, scope Scope) (Preferences, error)
	Save(ctx context.Context, def Definition, scope Scope, prefs Preferences) (Preferences, error)
	Clear(ctx context.Context, def Definition, scope Scope) error
}
