package app

import (
	"context"

	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"
)

// preferencesService implements datatable.PreferencesService over a session layer
// and a user layer
type preferencesService struct {
	session datatable.PreferenceStore
	user    datatable.PreferenceStore
	logger  logger.Logger
}

// NewPreferencesService creates a new instance of PreferencesService. session is
// keyed by session id, user by user id.
func NewPreferencesService(session, user datatable.PreferenceStore, logger logger.Logger) (datatable.PreferencesService, error) {
	return &preferencesService{session: session, user: user, logger: logger}, nil
}

// Load reads the session layer first and the user layer on a miss. A user layer hit
// is copied into the session. The result is merged over the table defaults and
// sanitized. A failing session layer is logged and skipped.
func (s *preferencesService) Load(ctx context.Context, def datatable.Definition, scope datatable.Scope) (datatable.Preferences, error) {
	var stored *datatable.Preferences

	if scope.SessionID != "" {
		p, err := s.session.Get(ctx, scope.SessionID, def.Entity())
		if err != nil {
			s.logger.Warn("Failed to read session preferences of ", def.Entity(), ": ", err)
		} else {
			stored = p
		}
	}

	if stored == nil && scope.UserID != "" {
		p, err := s.user.Get(ctx, scope.UserID, def.Entity())
		if err != nil {
			return datatable.Preferences{}, err
		}
		if p != nil && scope.SessionID != "" {
			if err := s.session.Put(ctx, scope.SessionID, def.Entity(), *p); err != nil {
				s.logger.Warn("Failed to cache preferences of ", def.Entity(), " in session: ", err)
			}
		}
		stored = p
	}

	return mergePreferences(datatable.DefaultPreferences(def), stored).Sanitize(def), nil
}

// Save sanitizes prefs and writes the session layer and, for known users, the user layer
func (s *preferencesService) Save(ctx context.Context, def datatable.Definition, scope datatable.Scope, prefs datatable.Preferences) (datatable.Preferences, error) {
	clean := prefs.Sanitize(def)

	if scope.SessionID != "" {
		if err := s.session.Put(ctx, scope.SessionID, def.Entity(), clean); err != nil {
			return datatable.Preferences{}, err
		}
	}
	if scope.UserID != "" {
		if err := s.user.Put(ctx, scope.UserID, def.Entity(), clean); err != nil {
			return datatable.Preferences{}, err
		}
	}
	return clean, nil
}

// Clear removes the preferences from both layers
func (s *preferencesService) Clear(ctx context.Context, def datatable.Definition, scope datatable.Scope) error {
	if scope.SessionID != "" {
		if err := s.session.Delete(ctx, scope.SessionID, def.Entity()); err != nil {
			return err
		}
	}
	if scope.UserID != "" {
		if err := s.user.Delete(ctx, scope.UserID, def.Entity()); err != nil {
			return err
		}
	}
	return nil
}

func mergePreferences(defaults datatable.Preferences, stored *datatable.Preferences) datatable.Preferences {
	if stored == nil {
		return defaults
	}
	out := defaults
	if stored.Sort != "" {
		out.Sort = stored.Sort
		out.Direction = stored.Direction
	}
	if stored.PerPage != 0 {
		out.PerPage = stored.PerPage
	}
	if stored.Filters != nil {
		out.Filters = stored.Filters
	}
	return out
}
