//go:build unit
// +build unit

package datatable

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAction_Authorization(t *testing.T) {
	open := NewAction("view")
	restricted := NewAction("delete").Can("users.delete")

	deny := Gate(func(string) bool { return false })
	allow := Gate(func(p string) bool { return p == "users.delete" })

	assert.True(t, open.Authorized(nil))
	assert.False(t, restricted.Authorized(nil))
	assert.False(t, restricted.Authorized(deny))
	assert.True(t, restricted.Authorized(allow))
}

func TestAction_VisibilityAndExecute(t *testing.T) {
	var executed interface{}
	a := NewAction("resolve").
		Confirm("Resolve this error?").
		VisibleWhen(func(row interface{}) bool { return row.(string) != "resolved" }).
		Handle(func(_ context.Context, row interface{}) error {
			executed = row
			return nil
		})

	assert.True(t, a.RequiresConfirmation())
	assert.True(t, a.VisibleFor("open"))
	assert.False(t, a.VisibleFor("resolved"))

	require.NoError(t, a.Execute(context.Background(), "open"))
	assert.Equal(t, "open", executed)

	assert.ErrorIs(t, NewAction("noop").Execute(context.Background(), nil), ErrNoHandler)
}

func TestBulkAction_Execute(t *testing.T) {
	boom := errors.New("boom")
	b := NewBulkAction("delete").Variant("danger").Can("users.delete").
		Handle(func(_ context.Context, ids []string) error {
			if len(ids) == 0 {
				return boom
			}
			return nil
		})

	require.NoError(t, b.Execute(context.Background(), []string{"1"}))
	assert.ErrorIs(t, b.Execute(context.Background(), nil), boom)
	assert.Equal(t, BulkActionConfig{Key: "delete", Label: "Delete", Variant: "danger"}, b.Describe())
}
