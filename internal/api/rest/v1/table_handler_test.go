//go:build unit
// +build unit

package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
	"github.com/MGTheTrain/admin-console/internal/domain/notifications"
)

type gadget struct {
	ID   string
	Name string
}

func newGadgetsTable(archived *[]string) *datatable.Table {
	return datatable.NewTable("gadgets", &gadget{}).
		WithColumns(
			datatable.NewColumn("name").Sortable().Searchable(),
		).
		WithActions(
			datatable.NewAction("archive").Label("Archive").Can("gadgets.archive").
				Handle(func(_ context.Context, row interface{}) error {
					*archived = append(*archived, row.(*gadget).ID)
					return nil
				}),
		).
		DefaultSort("name", datatable.Asc).
		PerPage(10, 10, 25)
}

func gadgetPage() *datatable.Page {
	g := &gadget{ID: "g1", Name: "Gizmo"}
	return &datatable.Page{
		Records: []datatable.Record{{ID: g.ID, Model: g, Values: map[string]interface{}{"name": g.Name}}},
		Filtered: 1,
		Page:     1,
		PerPage:  10,
	}
}

func TestTableHandler_RenderPersistsQueryPreferences(t *testing.T) {
	var archived []string
	def := newGadgetsTable(&archived)
	f := newRouteFixture(t, def)
	f.allow("gadgets.archive")

	f.preferences.On("Load", mock.Anything, def, mock.Anything).Return(datatable.DefaultPreferences(def), nil)
	f.preferences.On("Save", mock.Anything, def, datatable.Scope{SessionID: testToken, UserID: testUserID},
		mock.MatchedBy(func(p datatable.Preferences) bool {
			return p.Sort == "name" && p.Direction == datatable.Desc && p.PerPage == 25
		})).Return(datatable.Preferences{}, nil).Once()
	f.queries.On("Execute", mock.Anything, def, mock.Anything).Return(gadgetPage(), nil)
	f.queries.On("CountAll", mock.Anything, def).Return(int64(7), nil)

	w := f.do("GET", "/api/v1/tables/gadgets?sort=name&direction=desc&per_page=25", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp datatable.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, int64(7), resp.Stats.Total)
	assert.Equal(t, datatable.Desc, resp.Applied.Direction)
	f.preferences.AssertExpectations(t)
}

func TestTableHandler_RenderWithoutQueryKeepsPreferences(t *testing.T) {
	var archived []string
	def := newGadgetsTable(&archived)
	f := newRouteFixture(t, def)
	f.allow("gadgets.archive")

	f.preferences.On("Load", mock.Anything, def, mock.Anything).Return(datatable.DefaultPreferences(def), nil)
	f.queries.On("Execute", mock.Anything, def, mock.Anything).Return(gadgetPage(), nil)
	f.queries.On("CountAll", mock.Anything, def).Return(int64(1), nil)

	w := f.do("GET", "/api/v1/tables/gadgets?page=2", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	f.preferences.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTableHandler_UnknownTable(t *testing.T) {
	f := newRouteFixture(t)

	w := f.do("GET", "/api/v1/tables/nothing", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTableHandler_ExecuteAction(t *testing.T) {
	var archived []string
	def := newGadgetsTable(&archived)
	f := newRouteFixture(t, def)
	f.allow("gadgets.archive")

	f.preferences.On("Load", mock.Anything, def, mock.Anything).Return(datatable.DefaultPreferences(def), nil)
	f.queries.On("FindByIDs", mock.Anything, def, []string{"g1"}).Return(gadgetPage().Records, nil)
	f.notifications.On("Toast", mock.Anything, testToken, "", notifications.LevelSuccess, "Done", "Archive completed").Return(nil)

	w := f.do("POST", "/api/v1/tables/gadgets/actions/archive/g1", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ActionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Archive completed", resp.Message)
	assert.Equal(t, 1, resp.Affected)
	assert.Equal(t, []string{"g1"}, archived)
	f.notifications.AssertExpectations(t)
}

func TestTableHandler_ActionForbidden(t *testing.T) {
	var archived []string
	def := newGadgetsTable(&archived)
	f := newRouteFixture(t, def)
	f.authz.On("Can", mock.Anything, testUserID, "gadgets.archive", testTeamID).Return(false, nil)

	f.preferences.On("Load", mock.Anything, def, mock.Anything).Return(datatable.DefaultPreferences(def), nil)

	w := f.do("POST", "/api/v1/tables/gadgets/actions/archive/g1", nil, true)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, archived)
}

func TestTableHandler_ResetPreferences(t *testing.T) {
	var archived []string
	def := newGadgetsTable(&archived)
	f := newRouteFixture(t, def)
	f.preferences.On("Clear", mock.Anything, def, datatable.Scope{SessionID: testToken, UserID: testUserID}).Return(nil)

	w := f.do("DELETE", "/api/v1/tables/gadgets/preferences", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	var prefs datatable.Preferences
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prefs))
	assert.Equal(t, "name", prefs.Sort)
	assert.Equal(t, 10, prefs.PerPage)
}
