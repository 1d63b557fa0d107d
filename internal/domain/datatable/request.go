package datatable

import (
	"strings"
)

// Request is a table query as sent by a client
type Request struct {
	Search    string                 `json:"search"`
	Filters   map[string]interface{} `json:"filters"`
	Sort      string                 `json:"sort"`
	Direction Direction              `json:"direction"`
	Page      int                    `json:"page"`
	PerPage   int                    `json:"per_page"`
}

// Normalize returns a copy of r with every field checked against def: unknown or
// non-sortable sort columns fall back to the default sort, invalid per page values to
// the default per page, pages below one to one, and unknown filters are dropped.
func (r Request) Normalize(def Definition) Request {
	opts := def.Options()
	out := Request{
		Search:    strings.TrimSpace(r.Search),
		Sort:      r.Sort,
		Direction: r.Direction,
		Page:      r.Page,
		PerPage:   r.PerPage,
		Filters:   make(map[string]interface{}, len(r.Filters)),
	}

	if out.Sort != "" {
		if c, ok := FindColumn(def, out.Sort); !ok || !c.IsSortable() {
			out.Sort = ""
		}
	}
	if out.Sort == "" {
		out.Sort = opts.DefaultSort
		out.Direction = opts.DefaultDirection
	}
	if !out.Direction.Valid() {
		out.Direction = opts.DefaultDirection
		if !out.Direction.Valid() {
			out.Direction = Asc
		}
	}

	if !opts.AllowsPerPage(out.PerPage) {
		out.PerPage = opts.DefaultPerPage
	}
	if out.PerPage < 1 {
		out.PerPage = DefaultPerPage
	}
	if out.Page < 1 {
		out.Page = 1
	}

	for key, value := range r.Filters {
		if _, ok := FindFilter(def, key); ok && !IsEmptyValue(value) {
			out.Filters[key] = value
		}
	}
	return out
}

// Offset returns the row offset of the page
func (r Request) Offset() int {
	return (r.Page - 1) * r.PerPage
}

// LastPage returns the last page for total rows, at least one
func LastPage(total int64, perPage int) int {
	if perPage < 1 || total <= 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// ClampPage keeps page within [1, LastPage]
func ClampPage(page int, total int64, perPage int) int {
	if page < 1 {
		return 1
	}
	if last := LastPage(total, perPage); page > last {
		return last
	}
	return page
}

// Record is a loaded row together with its extracted column values
type Record struct {
	ID     string
	Model  interface{}
	Values map[string]interface{}
}

// Page is the result of executing a Request
type Page struct {
	Records  []Record
	Filtered int64
	// Page is the page actually loaded after clamping
	Page    int
	PerPage int
}

// Meta is the pagination block of a Response
type Meta struct {
	Total       int64 `json:"total"`
	PerPage     int   `json:"per_page"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	From        int   `json:"from"`
	To          int   `json:"to"`
}

// NewMeta computes pagination for count rows loaded on page out of total
func NewMeta(total int64, page, perPage, count int) Meta {
	meta := Meta{
		Total:       total,
		PerPage:     perPage,
		CurrentPage: page,
		LastPage:    LastPage(total, perPage),
	}
	if count > 0 {
		meta.From = (page-1)*perPage + 1
		meta.To = meta.From + count - 1
	}
	return meta
}

// Stats counts rows before and after search and filters
type Stats struct {
	Total    int64 `json:"total"`
	Filtered int64 `json:"filtered"`
}

// Config is the serialized table description sent to clients
type Config struct {
	Entity            string             `json:"entity"`
	Columns           []ColumnConfig     `json:"columns"`
	Filters           []FilterConfig     `json:"filters"`
	Actions           []ActionConfig     `json:"actions"`
	BulkActions       []BulkActionConfig `json:"bulk_actions"`
	PerPageOptions    []int              `json:"per_page_options"`
	DefaultPerPage    int                `json:"default_per_page"`
	DefaultSort       string             `json:"default_sort,omitempty"`
	DefaultDirection  Direction          `json:"default_direction"`
	Searchable        bool               `json:"searchable"`
	SearchPlaceholder string             `json:"search_placeholder,omitempty"`
}

// Row is an output row; "id" and "_actions" are always present
type Row map[string]interface{}

// Response is the result of rendering a table
type Response struct {
	Data   []Row   `json:"data"`
	Meta   Meta    `json:"meta"`
	Stats  Stats   `json:"stats"`
	Config *Config `json:"config,omitempty"`
	// Applied echoes the normalized request
	Applied Request `json:"applied"`
}

// Searchable reports whether any column or a custom callback supports search
func Searchable(def Definition) bool {
	if def.Options().Search != nil {
		return true
	}
	for _, c := range def.Columns() {
		if c.IsSearchable() {
			return true
		}
	}
	return false
}
