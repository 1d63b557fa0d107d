package datatable

import (
	"fmt"
	"sort"
	"sync"

	"gorm.io/gorm"
)

// Default pagination used when neither the table nor the registry set one
var (
	DefaultPerPageOptions = []int{10, 25, 50, 100}
	DefaultPerPage        = 25
)

// SearchQueryFunc replaces the default search of a table
type SearchQueryFunc func(db *gorm.DB, term string) *gorm.DB

// TransformFunc turns a loaded model into an output row. values holds the formatted
// column values keyed by column key.
type TransformFunc func(row interface{}, values map[string]interface{}) map[string]interface{}

// Options are table level settings
type Options struct {
	DefaultSort       string
	DefaultDirection  Direction
	PerPageOptions    []int
	DefaultPerPage    int
	Search            SearchQueryFunc
	SearchPlaceholder string
	// Permission is required to view the table
	Permission string
}

// AllowsPerPage reports whether n is one of the per page options
func (o Options) AllowsPerPage(n int) bool {
	for _, v := range o.PerPageOptions {
		if v == n {
			return true
		}
	}
	return false
}

// Definition describes a table over a gorm model
type Definition interface {
	// Entity is the table name used in routes and preferences
	Entity() string
	// Model returns a pointer to a zero model value, e.g. &models.UserModel{}
	Model() interface{}
	Columns() []*Column
	Filters() []*Filter
	Actions() []*Action
	BulkActions() []*BulkAction
	Options() Options
	// BaseQuery scopes the rows of the table, e.g. to the current team
	BaseQuery(db *gorm.DB) *gorm.DB
	// Transform builds the output row
	Transform(row interface{}, values map[string]interface{}) map[string]interface{}
}

// Table is the standard Definition implementation assembled with its fluent setters
type Table struct {
	entity      string
	model       interface{}
	columns     []*Column
	filters     []*Filter
	actions     []*Action
	bulkActions []*BulkAction
	options     Options
	scope       func(db *gorm.DB) *gorm.DB
	transform   TransformFunc
}

// NewTable creates a table for entity over model
func NewTable(entity string, model interface{}) *Table {
	return &Table{
		entity: entity,
		model:  model,
		options: Options{
			DefaultDirection: Asc,
		},
	}
}

// WithColumns appends columns
func (t *Table) WithColumns(columns ...*Column) *Table {
	t.columns = append(t.columns, columns...)
	return t
}

// WithFilters appends filters
func (t *Table) WithFilters(filters ...*Filter) *Table {
	t.filters = append(t.filters, filters...)
	return t
}

// WithActions appends row actions
func (t *Table) WithActions(actions ...*Action) *Table {
	t.actions = append(t.actions, actions...)
	return t
}

// WithBulkActions appends bulk actions
func (t *Table) WithBulkActions(actions ...*BulkAction) *Table {
	t.bulkActions = append(t.bulkActions, actions...)
	return t
}

// DefaultSort sets the default sort column and direction
func (t *Table) DefaultSort(column string, direction Direction) *Table {
	t.options.DefaultSort = column
	t.options.DefaultDirection = direction
	return t
}

// PerPage sets the per page options and default
func (t *Table) PerPage(defaultPerPage int, options ...int) *Table {
	t.options.DefaultPerPage = defaultPerPage
	t.options.PerPageOptions = options
	return t
}

// SearchUsing replaces the default search
func (t *Table) SearchUsing(fn SearchQueryFunc) *Table {
	t.options.Search = fn
	return t
}

// SearchPlaceholder sets the search input placeholder
func (t *Table) SearchPlaceholder(placeholder string) *Table {
	t.options.SearchPlaceholder = placeholder
	return t
}

// Can restricts the table to users holding permission
func (t *Table) Can(permission string) *Table {
	t.options.Permission = permission
	return t
}

// Scope sets the base query
func (t *Table) Scope(fn func(db *gorm.DB) *gorm.DB) *Table {
	t.scope = fn
	return t
}

// TransformUsing sets the row transformer
func (t *Table) TransformUsing(fn TransformFunc) *Table {
	t.transform = fn
	return t
}

// ApplyDefaults fills unset pagination options
func (t *Table) ApplyDefaults(perPageOptions []int, defaultPerPage int) {
	if len(t.options.PerPageOptions) == 0 {
		t.options.PerPageOptions = append([]int(nil), perPageOptions...)
	}
	if t.options.DefaultPerPage == 0 || !t.options.AllowsPerPage(t.options.DefaultPerPage) {
		t.options.DefaultPerPage = defaultPerPage
		if !t.options.AllowsPerPage(defaultPerPage) && len(t.options.PerPageOptions) > 0 {
			t.options.DefaultPerPage = t.options.PerPageOptions[0]
		}
	}
}

// Entity implements Definition
func (t *Table) Entity() string { return t.entity }

// Model implements Definition
func (t *Table) Model() interface{} { return t.model }

// Columns implements Definition
func (t *Table) Columns() []*Column { return t.columns }

// Filters implements Definition
func (t *Table) Filters() []*Filter { return t.filters }

// Actions implements Definition
func (t *Table) Actions() []*Action { return t.actions }

// BulkActions implements Definition
func (t *Table) BulkActions() []*BulkAction { return t.bulkActions }

// Options implements Definition
func (t *Table) Options() Options { return t.options }

// BaseQuery implements Definition
func (t *Table) BaseQuery(db *gorm.DB) *gorm.DB {
	if t.scope == nil {
		return db
	}
	return t.scope(db)
}

// Transform implements Definition
func (t *Table) Transform(row interface{}, values map[string]interface{}) map[string]interface{} {
	if t.transform == nil {
		return values
	}
	return t.transform(row, values)
}

// FindColumn looks up a column by key
func FindColumn(def Definition, key string) (*Column, bool) {
	for _, c := range def.Columns() {
		if c.Key() == key {
			return c, true
		}
	}
	return nil, false
}

// FindFilter looks up a filter by key
func FindFilter(def Definition, key string) (*Filter, bool) {
	for _, f := range def.Filters() {
		if f.Key() == key {
			return f, true
		}
	}
	return nil, false
}

// FindAction looks up a row action by key
func FindAction(def Definition, key string) (*Action, bool) {
	for _, a := range def.Actions() {
		if a.Key() == key {
			return a, true
		}
	}
	return nil, false
}

// FindBulkAction looks up a bulk action by key
func FindBulkAction(def Definition, key string) (*BulkAction, bool) {
	for _, a := range def.BulkActions() {
		if a.Key() == key {
			return a, true
		}
	}
	return nil, false
}

// Registry maps entity names to table definitions
type Registry struct {
	mu             sync.RWMutex
	tables         map[string]Definition
	perPageOptions []int
	defaultPerPage int
}

// NewRegistry creates a registry applying the given pagination defaults to tables
// that don't set their own
func NewRegistry(perPageOptions []int, defaultPerPage int) *Registry {
	if len(perPageOptions) == 0 {
		perPageOptions = DefaultPerPageOptions
	}
	if defaultPerPage == 0 {
		defaultPerPage = DefaultPerPage
	}
	return &Registry{
		tables:         make(map[string]Definition),
		perPageOptions: perPageOptions,
		defaultPerPage: defaultPerPage,
	}
}

// Register adds a definition. Registering an entity twice is an error.
func (r *Registry) Register(def Definition) error {
	if def.Entity() == "" {
		return fmt.Errorf("table entity must not be empty")
	}
	if def.Model() == nil {
		return fmt.Errorf("table %s has no model", def.Entity())
	}

	if d, ok := def.(interface{ ApplyDefaults([]int, int) }); ok {
		d.ApplyDefaults(r.perPageOptions, r.defaultPerPage)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tables[def.Entity()]; exists {
		return fmt.Errorf("table %s already registered", def.Entity())
	}
	r.tables[def.Entity()] = def
	return nil
}

// Get returns the definition of entity
func (r *Registry) Get(entity string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.tables[entity]
	return def, ok
}

// Entities returns the registered entity names in order
func (r *Registry) Entities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
