//go:build unit
// +build unit

package datatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func TestColumn_Builder(t *testing.T) {
	c := NewColumn("address.city.name").Label("City").Sortable().Searchable().Hidden()

	assert.Equal(t, "address.city.name", c.Key())
	assert.Equal(t, "City", c.Title())
	assert.Equal(t, "address.city", c.Relation())
	assert.Equal(t, "name", c.Attribute())
	assert.True(t, c.IsSortable())
	assert.True(t, c.IsSearchable())
	assert.True(t, c.IsHidden())
	assert.Equal(t, ColumnConfig{Key: "address.city.name", Label: "City", Sortable: true, Searchable: true, Hidden: true}, c.Describe())
}

func TestColumn_DefaultLabel(t *testing.T) {
	assert.Equal(t, "Created at", NewColumn("created_at").Title())
	assert.Equal(t, "Team name", NewColumn("team.name").Title())
	assert.Equal(t, "", NewColumn("name").Relation())
}

func TestColumn_CallbacksImplyCapabilities(t *testing.T) {
	c := NewColumn("full_name").
		SortUsing(func(db *gorm.DB, d Direction) *gorm.DB { return db }).
		SearchUsing(func(term string) clause.Expression { return clause.Expr{SQL: "1 = 1"} })

	assert.True(t, c.IsSortable())
	assert.True(t, c.IsSearchable())
	assert.NotNil(t, c.SortFunc())
	assert.NotNil(t, c.SearchFunc())
}

func TestColumn_Format(t *testing.T) {
	plain := NewColumn("name")
	assert.Equal(t, "x", plain.Format("x", nil))

	upper := NewColumn("name").FormatUsing(func(v interface{}, _ interface{}) interface{} {
		return "<" + v.(string) + ">"
	})
	assert.Equal(t, "<x>", upper.Format("x", nil))
}

func TestDirection(t *testing.T) {
	assert.Equal(t, Desc, ParseDirection("DESC"))
	assert.Equal(t, Asc, ParseDirection("sideways"))
	assert.Equal(t, Desc, Asc.Toggle())
	assert.Equal(t, Asc, Desc.Toggle())
	assert.False(t, Direction("up").Valid())
}

func TestAlias(t *testing.T) {
	assert.Equal(t, "address__city", Alias("address.city"))
	assert.Equal(t, "team", Alias("team"))
}
