//go:build unit
// +build unit

package datatable

type fixtureModel struct {
	ID   uint
	Name string
}

func newFixtureTable() *Table {
	t := NewTable("fixtures", &fixtureModel{}).
		WithColumns(
			NewColumn("name").Sortable().Searchable(),
			NewColumn("team.name").Label("Team").Sortable(),
			NewColumn("created_at"),
		).
		WithFilters(
			NewFilter("status").Options(Option{Value: "active", Label: "Active"}),
			NewFilter("verified").Type(FilterBoolean).On("email_verified_at").
				MapValues(map[string]interface{}{"1": NotNullValue, "0": NullValue}),
		).
		DefaultSort("name", Asc).
		PerPage(25, 10, 25, 50)
	return t
}
