//go:build unit
// +build unit

package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindAndStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   string
		status int
	}{
		{"validation", Validation("bad", map[string]string{"Email": "email"}), KindValidation, http.StatusUnprocessableEntity},
		{"wrapped validation", fmt.Errorf("create user: %w", Invalid("name taken")), KindValidation, http.StatusUnprocessableEntity},
		{"unauthenticated", ErrUnauthenticated, KindAuthentication, http.StatusUnauthorized},
		{"forbidden", Forbidden("missing %s", "users.delete"), KindAuthorization, http.StatusForbidden},
		{"not found", NotFound("user %s", "42"), KindNotFound, http.StatusNotFound},
		{"conflict", Conflict("email taken"), KindConflict, http.StatusConflict},
		{"internal", errors.New("db down"), KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, Kind(tt.err))
			assert.Equal(t, tt.status, Status(tt.err))
		})
	}
}

func TestKind_Nil(t *testing.T) {
	assert.Equal(t, "", Kind(nil))
}

func TestNotFound_Message(t *testing.T) {
	err := NotFound("user with ID %s", "abc")
	assert.Equal(t, "user with ID abc: not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
}
