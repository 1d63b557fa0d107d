//go:build unit || integration
// +build unit integration

package persistence

import (
	"time"

	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
)

type testCountry struct {
	ID   uint
	Name string
}

func (testCountry) TableName() string { return "countries" }

type testCity struct {
	ID        uint
	Name      string
	CountryID *uint
	Country   *testCountry
}

func (testCity) TableName() string { return "cities" }

type testAddress struct {
	ID         uint
	Street     string
	CustomerID uint
	CityID     *uint
	City       *testCity
}

func (testAddress) TableName() string { return "addresses" }

type testOrder struct {
	ID         uint
	CustomerID uint
	Total      int
}

func (testOrder) TableName() string { return "orders" }

type testTag struct {
	ID    uint
	Label string
}

func (testTag) TableName() string { return "tags" }

type testNote struct {
	ID        uint
	Body      string
	OwnerID   uint
	OwnerType string
}

func (testNote) TableName() string { return "notes" }

type testCustomer struct {
	ID        uint
	Name      string
	Email     *string
	Active    bool
	CreatedAt time.Time

	Address *testAddress `gorm:"foreignKey:CustomerID"`
	Orders  []testOrder  `gorm:"foreignKey:CustomerID"`
	Tags    []testTag    `gorm:"many2many:customer_tags;joinForeignKey:CustomerID;joinReferences:TagID"`
	Notes   []testNote   `gorm:"polymorphic:Owner"`
}

func (testCustomer) TableName() string { return "customers" }

func newCustomerTable() *datatable.Table {
	return datatable.NewTable("customers", &testCustomer{}).
		WithColumns(
			datatable.NewColumn("name").Sortable().Searchable(),
			datatable.NewColumn("email").Searchable(),
			datatable.NewColumn("address.street").Searchable(),
			datatable.NewColumn("address.city.name").Label("City").Sortable().Searchable(),
			datatable.NewColumn("address.city.country.name").Label("Country").Sortable(),
			datatable.NewColumn("orders.total").Label("Order totals").Sortable(),
			datatable.NewColumn("tags.label").Label("Tags").Sortable(),
			datatable.NewColumn("created_at").Sortable(),
		).
		WithFilters(
			datatable.NewFilter("active").Type(datatable.FilterBoolean),
			datatable.NewFilter("has_email").Type(datatable.FilterBoolean).On("email").
				MapValues(map[string]interface{}{"true": datatable.NotNullValue, "false": datatable.NullValue}),
			datatable.NewFilter("tag").On("tags.label").Type(datatable.FilterMultiSelect),
			datatable.NewFilter("country").On("address.city.country.name"),
			datatable.NewFilter("note").On("notes.body").Type(datatable.FilterText),
			datatable.NewFilter("created").On("created_at").Type(datatable.FilterDateRange),
		).
		DefaultSort("name", datatable.Asc).
		PerPage(10, 10, 25)
}
