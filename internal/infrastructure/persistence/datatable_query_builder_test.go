//go:build unit
// +build unit

package persistence

import (
	"strings"
	"sync"
	"testing"

	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
	"github.com/MGTheTrain/admin-console/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

// renderTableQuery returns the SQL loading one page of req
func renderTableQuery(t *testing.T, def datatable.Definition, req datatable.Request) string {
	t.Helper()

	db := newDryRunDB(t)
	b := &gormDataTableQueryBuilder{db: db, logger: testutil.SetupTestLogger(t), schemas: &sync.Map{}}
	q, err := b.plan(def, req.Normalize(def))
	require.NoError(t, err)

	return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []*testCustomer
		return q.ordered(q.filtered(tx)).Limit(10).Find(&rows)
	})
}

func TestTableQuery_DefaultSortWithoutJoins(t *testing.T) {
	sql := renderTableQuery(t, newCustomerTable(), datatable.Request{})

	assert.NotContains(t, sql, "JOIN")
	assert.Contains(t, sql, `ORDER BY "customers"."name","customers"."id"`)
}

func TestTableQuery_SortOnNestedBelongsTo(t *testing.T) {
	sql := renderTableQuery(t, newCustomerTable(), datatable.Request{Sort: "address.city.name", Direction: datatable.Desc})

	assert.Contains(t, sql, `SELECT "customers".* FROM "customers"`)
	assert.Contains(t, sql, `LEFT JOIN "addresses" "address" ON "address"."customer_id" = "customers"."id"`)
	assert.Contains(t, sql, `LEFT JOIN "cities" "address__city" ON "address__city"."id" = "address"."city_id"`)
	assert.Contains(t, sql, `ORDER BY "address__city"."name" DESC`)
	assert.NotContains(t, sql, "GROUP BY")
}

func TestTableQuery_JoinsAreDeduplicated(t *testing.T) {
	sql := renderTableQuery(t, newCustomerTable(), datatable.Request{
		Search: "berlin",
		Sort:   "address.city.country.name",
	})

	assert.Equal(t, 1, strings.Count(sql, `JOIN "addresses"`))
	assert.Equal(t, 1, strings.Count(sql, `JOIN "cities"`))
	assert.Equal(t, 1, strings.Count(sql, `JOIN "countries"`))
	assert.Contains(t, sql, `LEFT JOIN "countries" "address__city__country" ON "address__city__country"."id" = "address__city"."country_id"`)
}

func TestTableQuery_SearchAcrossColumns(t *testing.T) {
	sql := renderTableQuery(t, newCustomerTable(), datatable.Request{Search: "Ber"})

	assert.Contains(t, sql, `LOWER("customers"."name") LIKE '%ber%'`)
	assert.Contains(t, sql, `LOWER("customers"."email") LIKE '%ber%'`)
	assert.Contains(t, sql, `LOWER("address"."street") LIKE '%ber%'`)
	assert.Contains(t, sql, `LOWER("address__city"."name") LIKE '%ber%' ESCAPE '\'`)
	assert.Contains(t, sql, " OR ")
}

func TestTableQuery_SearchEscapesWildcards(t *testing.T) {
	sql := renderTableQuery(t, newCustomerTable(), datatable.Request{Search: "50%_Off"})

	assert.Contains(t, sql, `LOWER("customers"."name") LIKE '%50\%\_off%' ESCAPE '\'`)
	assert.NotContains(t, sql, `LIKE '%50%_off%'`)
}

func TestTableQuery_CustomSearch(t *testing.T) {
	def := newCustomerTable().SearchUsing(func(db *gorm.DB, term string) *gorm.DB {
		return db.Where("customers.name = ?", term)
	})

	sql := renderTableQuery(t, def, datatable.Request{Search: "exact"})

	assert.Contains(t, sql, `customers.name = 'exact'`)
	assert.NotContains(t, sql, "LIKE")
}

func TestTableQuery_ColumnSearchCallback(t *testing.T) {
	def := datatable.NewTable("customers", &testCustomer{}).
		WithColumns(datatable.NewColumn("name").Searchable().SearchUsing(func(term string) clause.Expression {
			return clause.Expr{SQL: "customers.name ILIKE ?", Vars: []interface{}{term + "%"}}
		}))

	sql := renderTableQuery(t, def, datatable.Request{Search: "jo"})

	assert.Contains(t, sql, `customers.name ILIKE 'jo%'`)
}

func TestTableQuery_ToManySortGroupsAndAggregates(t *testing.T) {
	tests := []struct {
		name      string
		direction datatable.Direction
		expected  string
	}{
		{"ascending uses MIN", datatable.Asc, `ORDER BY MIN("orders"."total")`},
		{"descending uses MAX", datatable.Desc, `ORDER BY MAX("orders"."total") DESC`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := renderTableQuery(t, newCustomerTable(), datatable.Request{Sort: "orders.total", Direction: tt.direction})

			assert.Contains(t, sql, `LEFT JOIN "orders" "orders" ON "orders"."customer_id" = "customers"."id"`)
			assert.Contains(t, sql, "GROUP BY")
			assert.Contains(t, sql, tt.expected)
		})
	}
}

func TestTableQuery_BelongsToManySortJoinsPivot(t *testing.T) {
	sql := renderTableQuery(t, newCustomerTable(), datatable.Request{Sort: "tags.label"})

	assert.Contains(t, sql, `LEFT JOIN "customer_tags" "tags__pivot" ON "tags__pivot"."customer_id" = "customers"."id"`)
	assert.Contains(t, sql, `LEFT JOIN "tags" "tags" ON "tags"."id" = "tags__pivot"."tag_id"`)
	assert.Contains(t, sql, `MIN("tags"."label")`)
}

func TestTableQuery_Filters(t *testing.T) {
	tests := []struct {
		name     string
		filters  map[string]interface{}
		expected []string
	}{
		{
			name:     "boolean",
			filters:  map[string]interface{}{"active": "1"},
			expected: []string{`"customers"."active" = true`},
		},
		{
			name:     "mapped to null",
			filters:  map[string]interface{}{"has_email": "false"},
			expected: []string{`"customers"."email" IS NULL`},
		},
		{
			name:     "mapped to not null",
			filters:  map[string]interface{}{"has_email": "true"},
			expected: []string{`"customers"."email" IS NOT NULL`},
		},
		{
			name:    "belongs to many through exists",
			filters: map[string]interface{}{"tag": []interface{}{"vip", "new"}},
			expected: []string{
				`EXISTS (SELECT 1 FROM "customer_tags" "wh_tags_0__pivot" INNER JOIN "tags" "wh_tags_0" ON "wh_tags_0"."id" = "wh_tags_0__pivot"."tag_id"`,
				`WHERE "wh_tags_0__pivot"."customer_id" = "customers"."id" AND "wh_tags_0"."label" IN ('vip','new'))`,
			},
		},
		{
			name:    "nested relation through exists",
			filters: map[string]interface{}{"country": "DE"},
			expected: []string{
				`EXISTS (SELECT 1 FROM "addresses" "wh_address__city__country_0"`,
				`INNER JOIN "cities" "wh_address__city__country_1" ON "wh_address__city__country_1"."id" = "wh_address__city__country_0"."city_id"`,
				`"wh_address__city__country_2"."name" = 'DE'`,
			},
		},
		{
			name:    "polymorphic relation",
			filters: map[string]interface{}{"note": "Urgent"},
			expected: []string{
				`"wh_notes_0"."owner_id" = "customers"."id"`,
				`"wh_notes_0"."owner_type" = 'customers'`,
				`LOWER("wh_notes_0"."body") LIKE '%urgent%' ESCAPE '\'`,
			},
		},
		{
			name:    "date range",
			filters: map[string]interface{}{"created": map[string]interface{}{"from": "2024-01-01", "to": "2024-01-31"}},
			expected: []string{
				`"customers"."created_at" >= '2024-01-01 00:00:00`,
				`"customers"."created_at" < '2024-02-01 00:00:00`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := renderTableQuery(t, newCustomerTable(), datatable.Request{Filters: tt.filters})

			for _, fragment := range tt.expected {
				assert.Contains(t, sql, fragment)
			}
			assert.NotContains(t, sql, "LEFT JOIN")
		})
	}
}

func TestTableQuery_FilterWithNullAmongValues(t *testing.T) {
	def := datatable.NewTable("customers", &testCustomer{}).
		WithColumns(datatable.NewColumn("name")).
		WithFilters(datatable.NewFilter("email").Type(datatable.FilterMultiSelect))

	sql := renderTableQuery(t, def, datatable.Request{Filters: map[string]interface{}{
		"email": []interface{}{"a@example.com", datatable.NullValue},
	}})

	assert.Contains(t, sql, `("customers"."email" IN ('a@example.com') OR "customers"."email" IS NULL)`)
}

func TestTableQuery_CustomFilterQuery(t *testing.T) {
	def := newCustomerTable().WithFilters(
		datatable.NewFilter("big_spender").QueryUsing(func(db *gorm.DB, value interface{}) *gorm.DB {
			return db.Where("customers.id IN (SELECT customer_id FROM orders WHERE total > ?)", value)
		}),
	)

	sql := renderTableQuery(t, def, datatable.Request{Filters: map[string]interface{}{"big_spender": "100"}})

	assert.Contains(t, sql, `customers.id IN (SELECT customer_id FROM orders WHERE total > '100')`)
}

func TestTableQuery_UnknownPaths(t *testing.T) {
	db := newDryRunDB(t)
	b := &gormDataTableQueryBuilder{db: db, logger: testutil.SetupTestLogger(t), schemas: &sync.Map{}}

	def := datatable.NewTable("customers", &testCustomer{}).
		WithColumns(datatable.NewColumn("wallet.balance").Sortable())
	_, err := b.plan(def, datatable.Request{Sort: "wallet.balance"})
	assert.ErrorIs(t, err, ErrUnknownRelation)

	def = datatable.NewTable("customers", &testCustomer{}).
		WithColumns(datatable.NewColumn("nickname").Sortable())
	_, err = b.plan(def, datatable.Request{Sort: "nickname"})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestRelationFieldPath(t *testing.T) {
	db := newDryRunDB(t)
	b := &gormDataTableQueryBuilder{db: db, logger: testutil.SetupTestLogger(t), schemas: &sync.Map{}}
	sch, err := b.parse(&testCustomer{})
	require.NoError(t, err)

	path, err := relationFieldPath(sch, "address.city.country", db.NamingStrategy)
	require.NoError(t, err)
	assert.Equal(t, "Address.City.Country", path)

	_, err = relationFieldPath(sch, "address.planet", db.NamingStrategy)
	assert.ErrorIs(t, err, ErrUnknownRelation)
}
