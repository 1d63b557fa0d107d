//go:build unit
// +build unit

package datatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreferences_Sanitize(t *testing.T) {
	def := newFixtureTable()

	prefs := Preferences{
		Sort:      "created_at",
		Direction: Desc,
		PerPage:   1000,
		Filters:   map[string]interface{}{"status": "active", "gone": "x"},
	}

	assert.Equal(t, Preferences{
		Sort:      "name",
		Direction: Asc,
		PerPage:   25,
		Filters:   map[string]interface{}{"status": "active"},
	}, prefs.Sanitize(def))
}

func TestPreferences_Apply(t *testing.T) {
	prefs := Preferences{Sort: "team.name", Direction: Desc, PerPage: 50, Filters: map[string]interface{}{"status": "active"}}

	req := prefs.Apply(Request{Page: 2})
	assert.Equal(t, "team.name", req.Sort)
	assert.Equal(t, Desc, req.Direction)
	assert.Equal(t, 50, req.PerPage)
	assert.Equal(t, "active", req.Filters["status"])

	explicit := prefs.Apply(Request{Sort: "name", Direction: Asc, PerPage: 10, Filters: map[string]interface{}{}})
	assert.Equal(t, "name", explicit.Sort)
	assert.Equal(t, Asc, explicit.Direction)
	assert.Equal(t, 10, explicit.PerPage)
	assert.Empty(t, explicit.Filters)

	sortOnly := prefs.Apply(Request{Sort: "name"})
	assert.Equal(t, "name", sortOnly.Sort)
	assert.Equal(t, Desc, sortOnly.Direction)
}

func TestDefaultPreferencesAndFromRequest(t *testing.T) {
	def := newFixtureTable()
	assert.Equal(t, Preferences{Sort: "name", Direction: Asc, PerPage: 25, Filters: map[string]interface{}{}}, DefaultPreferences(def))

	req := Request{Sort: "name", Direction: Desc, PerPage: 10, Filters: map[string]interface{}{"status": "x"}}
	p := FromRequest(req)
	req.Filters["status"] = "changed"
	assert.Equal(t, "x", p.Filters["status"])
}
