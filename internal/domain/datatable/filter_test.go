//go:build unit
// +build unit

package datatable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_Resolve(t *testing.T) {
	tests := []struct {
		name    string
		filter  *Filter
		raw     interface{}
		applied bool
		want    Condition
	}{
		{
			name:   "empty string is ignored",
			filter: NewFilter("status"),
			raw:    "  ",
		},
		{
			name:   "empty slice is ignored",
			filter: NewFilter("status"),
			raw:    []string{"", ""},
		},
		{
			name:    "select equals",
			filter:  NewFilter("status"),
			raw:     "active",
			applied: true,
			want:    Condition{Op: OpEquals, Value: "active"},
		},
		{
			name:    "value mapping",
			filter:  NewFilter("status").MapValues(map[string]interface{}{"active": 1}),
			raw:     "active",
			applied: true,
			want:    Condition{Op: OpEquals, Value: 1},
		},
		{
			name:    "null sentinel",
			filter:  NewFilter("team_id"),
			raw:     NullValue,
			applied: true,
			want:    Condition{Op: OpNull},
		},
		{
			name:    "mapped not null sentinel",
			filter:  NewFilter("verified").Type(FilterBoolean).MapValues(map[string]interface{}{"1": NotNullValue}),
			raw:     "1",
			applied: true,
			want:    Condition{Op: OpNotNull},
		},
		{
			name:    "boolean",
			filter:  NewFilter("active").Type(FilterBoolean),
			raw:     "yes",
			applied: true,
			want:    Condition{Op: OpEquals, Value: true},
		},
		{
			name:    "text",
			filter:  NewFilter("email").Type(FilterText),
			raw:     "example",
			applied: true,
			want:    Condition{Op: OpLike, Value: "%example%"},
		},
		{
			name:    "text with wildcards",
			filter:  NewFilter("code").Type(FilterText),
			raw:     `50%_off\`,
			applied: true,
			want:    Condition{Op: OpLike, Value: `%50\%\_off\\%`},
		},
		{
			name:    "multiple values",
			filter:  NewFilter("status"),
			raw:     []string{"a", "b"},
			applied: true,
			want:    Condition{Op: OpIn, Values: []interface{}{"a", "b"}},
		},
		{
			name:    "multiple values with null",
			filter:  NewFilter("team_id").Type(FilterMultiSelect),
			raw:     []interface{}{"t1", NullValue},
			applied: true,
			want:    Condition{Op: OpIn, Values: []interface{}{"t1"}, OrNull: true},
		},
		{
			name:    "multiselect with single value",
			filter:  NewFilter("role").Type(FilterMultiSelect),
			raw:     "admin",
			applied: true,
			want:    Condition{Op: OpIn, Values: []interface{}{"admin"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, applied, err := tt.filter.Resolve(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.applied, applied)
			if tt.applied {
				assert.Equal(t, tt.want, cond)
			}
		})
	}
}

func TestFilter_ResolveErrors(t *testing.T) {
	_, _, err := NewFilter("active").Type(FilterBoolean).Resolve("maybe")
	assert.Error(t, err)

	_, _, err = NewFilter("team_id").Resolve([]string{"a", NotNullValue})
	assert.Error(t, err)

	_, _, err = NewFilter("created_at").Type(FilterDateRange).Resolve(map[string]interface{}{"from": "yesterday"})
	assert.Error(t, err)

	_, _, err = NewFilter("created_at").Type(FilterDateRange).Resolve("2024-02-01,2024-01-01")
	assert.Error(t, err)
}

func TestFilter_ResolveDateRange(t *testing.T) {
	f := NewFilter("created_at").Type(FilterDateRange)

	cond, applied, err := f.Resolve(map[string]interface{}{"from": "2024-01-01", "to": "2024-01-31"})
	require.NoError(t, err)
	require.True(t, applied)
	assert.Equal(t, OpRange, cond.Op)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *cond.From)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *cond.To)

	cond, applied, err = f.Resolve([]string{"", "2024-01-31"})
	require.NoError(t, err)
	require.True(t, applied)
	assert.Nil(t, cond.From)
	assert.NotNil(t, cond.To)

	_, applied, err = f.Resolve(map[string]string{"from": "", "to": ""})
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestFilter_Describe(t *testing.T) {
	f := NewFilter("role").Label("Role").On("roles.name").Type(FilterMultiSelect).
		Options(Option{Value: "admin", Label: "Admin"})

	assert.Equal(t, "roles", f.Relation())
	assert.Equal(t, "name", f.Attribute())
	assert.Equal(t, FilterConfig{
		Key:     "role",
		Label:   "Role",
		Type:    FilterMultiSelect,
		Options: []Option{{Value: "admin", Label: "Admin"}},
	}, f.Describe())
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%gear%", ContainsPattern("gear"))
	assert.Equal(t, `%100\%%`, ContainsPattern("100%"))
	assert.Equal(t, `%first\_name%`, ContainsPattern("first_name"))
	assert.Equal(t, `%c:\\tmp%`, ContainsPattern(`c:\tmp`))
}
