package datatable

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Direction is a sort direction
type Direction string

// Sort directions
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection parses s case-insensitively and falls back to Asc
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Valid reports whether d is asc or desc
func (d Direction) Valid() bool {
	return d == Asc || d == Desc
}

// Toggle returns the opposite direction
func (d Direction) Toggle() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// SortFunc orders the query for a column
type SortFunc func(db *gorm.DB, direction Direction) *gorm.DB

// SearchFunc builds the condition a column contributes to a search. Joined relations
// are addressable by their alias: the dot path with dots replaced by "__".
type SearchFunc func(term string) clause.Expression

// FormatFunc formats an extracted column value for output
type FormatFunc func(value interface{}, row interface{}) interface{}

// Column describes one table column. Key is a dot path into the model, e.g.
// "name" or "team.name".
type Column struct {
	key        string
	label      string
	sortable   bool
	searchable bool
	hidden     bool
	sortFn     SortFunc
	searchFn   SearchFunc
	formatFn   FormatFunc
}

// NewColumn creates a column for the given dot path
func NewColumn(key string) *Column {
	return &Column{
		key:   key,
		label: Humanize(key),
	}
}

// Label sets the column heading
func (c *Column) Label(label string) *Column {
	c.label = label
	return c
}

// Sortable marks the column sortable
func (c *Column) Sortable() *Column {
	c.sortable = true
	return c
}

// Searchable marks the column searchable
func (c *Column) Searchable() *Column {
	c.searchable = true
	return c
}

// Hidden hides the column from the rendered table; it can still be sorted,
// searched and filtered.
func (c *Column) Hidden() *Column {
	c.hidden = true
	return c
}

// SortUsing sets a custom sort callback and marks the column sortable
func (c *Column) SortUsing(fn SortFunc) *Column {
	c.sortFn = fn
	c.sortable = true
	return c
}

// SearchUsing sets a custom search callback and marks the column searchable
func (c *Column) SearchUsing(fn SearchFunc) *Column {
	c.searchFn = fn
	c.searchable = true
	return c
}

// FormatUsing sets the value formatter
func (c *Column) FormatUsing(fn FormatFunc) *Column {
	c.formatFn = fn
	return c
}

// Key returns the dot path
func (c *Column) Key() string { return c.key }

// Title returns the heading
func (c *Column) Title() string { return c.label }

// IsSortable reports whether the column can be sorted
func (c *Column) IsSortable() bool { return c.sortable }

// IsSearchable reports whether the column takes part in searches
func (c *Column) IsSearchable() bool { return c.searchable }

// IsHidden reports whether the column is hidden
func (c *Column) IsHidden() bool { return c.hidden }

// SortFunc returns the custom sort callback, if any
func (c *Column) SortFunc() SortFunc { return c.sortFn }

// SearchFunc returns the custom search callback, if any
func (c *Column) SearchFunc() SearchFunc { return c.searchFn }

// Relation returns the relationship path of the column, empty for own attributes
func (c *Column) Relation() string {
	return RelationOf(c.key)
}

// Attribute returns the last path segment
func (c *Column) Attribute() string {
	return AttributeOf(c.key)
}

// Format applies the formatter to an extracted value
func (c *Column) Format(value interface{}, row interface{}) interface{} {
	if c.formatFn == nil {
		return value
	}
	return c.formatFn(value, row)
}

// ColumnConfig is the serialized form of a Column
type ColumnConfig struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Sortable   bool   `json:"sortable"`
	Searchable bool   `json:"searchable"`
	Hidden     bool   `json:"hidden"`
}

// Describe serializes the column
func (c *Column) Describe() ColumnConfig {
	return ColumnConfig{
		Key:        c.key,
		Label:      c.label,
		Sortable:   c.sortable,
		Searchable: c.searchable,
		Hidden:     c.hidden,
	}
}

// RelationOf returns everything before the last dot of path
func RelationOf(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[:i]
	}
	return ""
}

// AttributeOf returns the last segment of path
func AttributeOf(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Alias returns the SQL alias used for a joined relationship path
func Alias(relationPath string) string {
	return strings.ReplaceAll(relationPath, ".", "__")
}

// Humanize turns a dot path such as "team.created_at" into "Team created at"
func Humanize(path string) string {
	s := strings.NewReplacer(".", " ", "_", " ").Replace(path)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
