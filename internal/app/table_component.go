package app

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
)

// Query parameter names of a table
const (
	ParamSearch    = "search"
	ParamSort      = "sort"
	ParamDirection = "direction"
	ParamPage      = "page"
	ParamPerPage   = "per_page"
	paramFilter    = "filters["
)

// TableServices are the collaborators of a TableComponent
type TableServices struct {
	Builder     datatable.Builder
	Queries     datatable.QueryBuilder
	Preferences datatable.PreferencesService
}

// TableState is the client visible state of a TableComponent
type TableState struct {
	Search        string                 `json:"search"`
	Sort          string                 `json:"sort"`
	Direction     datatable.Direction    `json:"direction"`
	Page          int                    `json:"page"`
	PerPage       int                    `json:"per_page"`
	Filters       map[string]interface{} `json:"filters"`
	Selected      []string               `json:"selected"`
	SelectedCount int                    `json:"selected_count"`
}

// TableComponent holds the interactive state of one table for one user: sorting,
// pagination, filters, search and row selection. Sort, direction, filters and per
// page changes are persisted through the preferences service.
type TableComponent struct {
	def      datatable.Definition
	services TableServices
	scope    datatable.Scope
	gate     datatable.Gate

	search    string
	sort      string
	direction datatable.Direction
	page      int
	perPage   int
	filters   map[string]interface{}

	selected    map[string]bool
	selectOrder []string
	pageIDs     []string
}

// NewTableComponent creates a component starting from the stored preferences
func NewTableComponent(ctx context.Context, def datatable.Definition, services TableServices, scope datatable.Scope, gate datatable.Gate) (*TableComponent, error) {
	if err := AuthorizeTable(def, gate); err != nil {
		return nil, err
	}
	prefs, err := services.Preferences.Load(ctx, def, scope)
	if err != nil {
		return nil, err
	}

	t := &TableComponent{
		def:      def,
		services: services,
		scope:    scope,
		gate:     gate,
		page:     1,
		selected: make(map[string]bool),
	}
	t.applyPreferences(prefs)
	return t, nil
}

func (t *TableComponent) applyPreferences(p datatable.Preferences) {
	t.sort = p.Sort
	t.direction = p.Direction
	t.perPage = p.PerPage
	t.filters = make(map[string]interface{}, len(p.Filters))
	for k, v := range p.Filters {
		t.filters[k] = v
	}
}

// Request returns the table request for the current state
func (t *TableComponent) Request() datatable.Request {
	filters := make(map[string]interface{}, len(t.filters))
	for k, v := range t.filters {
		filters[k] = v
	}
	return datatable.Request{
		Search:    t.search,
		Filters:   filters,
		Sort:      t.sort,
		Direction: t.direction,
		Page:      t.page,
		PerPage:   t.perPage,
	}
}

func (t *TableComponent) persist(ctx context.Context) error {
	prefs, err := t.services.Preferences.Save(ctx, t.def, t.scope, datatable.FromRequest(t.Request().Normalize(t.def)))
	if err != nil {
		return err
	}
	t.applyPreferences(prefs)
	return nil
}

// SortBy sorts by column. Sorting the current column again toggles the direction,
// a new column starts ascending. Non-sortable columns are ignored.
func (t *TableComponent) SortBy(ctx context.Context, column string) error {
	c, ok := datatable.FindColumn(t.def, column)
	if !ok || !c.IsSortable() {
		return nil
	}
	if t.sort == column {
		t.direction = t.direction.Toggle()
	} else {
		t.sort = column
		t.direction = datatable.Asc
	}
	t.page = 1
	return t.persist(ctx)
}

// SetPerPage changes the page size to one of the per page options
func (t *TableComponent) SetPerPage(ctx context.Context, perPage int) error {
	if !t.def.Options().AllowsPerPage(perPage) {
		return errs.Validation(fmt.Sprintf("per page must be one of %v", t.def.Options().PerPageOptions), map[string]string{"PerPage": "oneof"})
	}
	t.perPage = perPage
	t.page = 1
	return t.persist(ctx)
}

// GotoPage moves to page; the page is clamped to the result on the next render
func (t *TableComponent) GotoPage(page int) {
	if page < 1 {
		page = 1
	}
	t.page = page
}

// NextPage moves one page forward
func (t *TableComponent) NextPage() {
	t.GotoPage(t.page + 1)
}

// PreviousPage moves one page back
func (t *TableComponent) PreviousPage() {
	t.GotoPage(t.page - 1)
}

// SetSearch changes the search term and returns to the first page
func (t *TableComponent) SetSearch(term string) {
	t.search = strings.TrimSpace(term)
	t.page = 1
}

// SetFilter sets or, for empty values, removes a filter
func (t *TableComponent) SetFilter(ctx context.Context, key string, value interface{}) error {
	if _, ok := datatable.FindFilter(t.def, key); !ok {
		return errs.Invalid("unknown filter %s", key)
	}
	if datatable.IsEmptyValue(value) {
		delete(t.filters, key)
	} else {
		t.filters[key] = value
	}
	t.page = 1
	return t.persist(ctx)
}

// ClearFilters removes every filter
func (t *TableComponent) ClearFilters(ctx context.Context) error {
	t.filters = make(map[string]interface{})
	t.page = 1
	return t.persist(ctx)
}

// ResetPreferences drops the stored preferences and returns to the defaults
func (t *TableComponent) ResetPreferences(ctx context.Context) error {
	if err := t.services.Preferences.Clear(ctx, t.def, t.scope); err != nil {
		return err
	}
	t.applyPreferences(datatable.DefaultPreferences(t.def))
	t.page = 1
	return nil
}

// ToggleSelection selects or unselects one row
func (t *TableComponent) ToggleSelection(id string) {
	if t.selected[id] {
		t.unselect(id)
		return
	}
	t.Select(id)
}

// Select adds rows to the selection
func (t *TableComponent) Select(ids ...string) {
	for _, id := range ids {
		if id == "" || t.selected[id] {
			continue
		}
		t.selected[id] = true
		t.selectOrder = append(t.selectOrder, id)
	}
}

func (t *TableComponent) unselect(id string) {
	delete(t.selected, id)
	for i, v := range t.selectOrder {
		if v == id {
			t.selectOrder = append(t.selectOrder[:i], t.selectOrder[i+1:]...)
			break
		}
	}
}

// SelectPage selects the rows of the last render
func (t *TableComponent) SelectPage() {
	t.Select(t.pageIDs...)
}

// SelectAll selects every row matching the current search and filters
func (t *TableComponent) SelectAll(ctx context.Context) error {
	ids, err := t.services.Queries.MatchingIDs(ctx, t.def, t.Request())
	if err != nil {
		return err
	}
	t.Select(ids...)
	return nil
}

// ClearSelection unselects every row
func (t *TableComponent) ClearSelection() {
	t.selected = make(map[string]bool)
	t.selectOrder = nil
}

// SelectedIDs returns the selection in selection order
func (t *TableComponent) SelectedIDs() []string {
	return append([]string{}, t.selectOrder...)
}

// SelectedCount counts the selected rows
func (t *TableComponent) SelectedCount() int {
	return len(t.selectOrder)
}

// ExecuteAction runs a row action on the row with primary key id
func (t *TableComponent) ExecuteAction(ctx context.Context, key, id string) error {
	action, ok := datatable.FindAction(t.def, key)
	if !ok {
		return errs.NotFound("action %s of table %s", key, t.def.Entity())
	}
	if !action.Authorized(t.gate) {
		return errs.Forbidden("action %s requires %s", key, action.Permission())
	}

	records, err := t.services.Queries.FindByIDs(ctx, t.def, []string{id})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return errs.NotFound("%s with ID %s", t.def.Entity(), id)
	}
	if !action.VisibleFor(records[0].Model) {
		return errs.Forbidden("action %s is not available for %s %s", key, t.def.Entity(), id)
	}
	return action.Execute(ctx, records[0].Model)
}

// ExecuteBulkAction runs a bulk action over the selection and clears it on success
func (t *TableComponent) ExecuteBulkAction(ctx context.Context, key string) error {
	action, ok := datatable.FindBulkAction(t.def, key)
	if !ok {
		return errs.NotFound("bulk action %s of table %s", key, t.def.Entity())
	}
	if !action.Authorized(t.gate) {
		return errs.Forbidden("bulk action %s requires %s", key, action.Permission())
	}
	if t.SelectedCount() == 0 {
		return errs.Invalid("no rows selected")
	}
	if err := action.Execute(ctx, t.SelectedIDs()); err != nil {
		return err
	}
	t.ClearSelection()
	return nil
}

// Render builds the current page. The page is clamped to the last page.
func (t *TableComponent) Render(ctx context.Context) (*datatable.Response, error) {
	resp, err := t.services.Builder.Build(ctx, t.def, t.Request(), t.gate)
	if err != nil {
		return nil, err
	}

	t.page = resp.Applied.Page
	t.pageIDs = t.pageIDs[:0]
	for _, row := range resp.Data {
		t.pageIDs = append(t.pageIDs, fmt.Sprint(row["id"]))
	}
	return resp, nil
}

// State returns the client visible state
func (t *TableComponent) State() TableState {
	req := t.Request()
	selected := t.SelectedIDs()
	return TableState{
		Search:        req.Search,
		Sort:          req.Sort,
		Direction:     req.Direction,
		Page:          req.Page,
		PerPage:       req.PerPage,
		Filters:       req.Filters,
		Selected:      selected,
		SelectedCount: len(selected),
	}
}

// QueryParams encodes the state as query parameters
func (t *TableComponent) QueryParams() url.Values {
	return EncodeTableQuery(t.Request())
}

// ApplyQueryParams replaces search, sort, filters and pagination with those of values.
// Parameters absent from values keep their current state.
func (t *TableComponent) ApplyQueryParams(values url.Values) {
	current := t.Request()
	req := datatable.FromRequest(current).Apply(ParseTableQuery(values))
	if !values.Has(ParamSearch) {
		req.Search = current.Search
	}
	if req.Page == 0 {
		req.Page = current.Page
	}

	normalized := req.Normalize(t.def)
	t.search = normalized.Search
	t.sort, t.direction, t.perPage, t.page, t.filters = normalized.Sort, normalized.Direction, normalized.PerPage, normalized.Page, normalized.Filters
}

// ParseTableQuery reads a table request from query parameters. Filters are read from
// repeatable filters[<key>] parameters; several values become a list. Filters is nil
// when no filter parameter is present.
func ParseTableQuery(values url.Values) datatable.Request {
	req := datatable.Request{
		Search: values.Get(ParamSearch),
		Sort:   values.Get(ParamSort),
	}
	if d := values.Get(ParamDirection); d != "" {
		req.Direction = datatable.ParseDirection(d)
	}
	req.Page, _ = strconv.Atoi(values.Get(ParamPage))
	req.PerPage, _ = strconv.Atoi(values.Get(ParamPerPage))

	for name, vals := range values {
		if !strings.HasPrefix(name, paramFilter) || !strings.HasSuffix(name, "]") {
			continue
		}
		key := strings.TrimSuffix(strings.TrimPrefix(name, paramFilter), "]")
		if key == "" {
			continue
		}
		if req.Filters == nil {
			req.Filters = make(map[string]interface{})
		}
		if len(vals) == 1 {
			req.Filters[key] = vals[0]
			continue
		}
		list := make([]interface{}, len(vals))
		for i, v := range vals {
			list[i] = v
		}
		req.Filters[key] = list
	}
	return req
}

// EncodeTableQuery is the inverse of ParseTableQuery. Date ranges are written as
// "from,to".
func EncodeTableQuery(req datatable.Request) url.Values {
	values := url.Values{}
	if req.Search != "" {
		values.Set(ParamSearch, req.Search)
	}
	if req.Sort != "" {
		values.Set(ParamSort, req.Sort)
		values.Set(ParamDirection, string(req.Direction))
	}
	if req.Page > 1 {
		values.Set(ParamPage, strconv.Itoa(req.Page))
	}
	if req.PerPage > 0 {
		values.Set(ParamPerPage, strconv.Itoa(req.PerPage))
	}

	keys := make([]string, 0, len(req.Filters))
	for k := range req.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name := paramFilter + k + "]"
		switch v := req.Filters[k].(type) {
		case []interface{}:
			for _, item := range v {
				values.Add(name, fmt.Sprint(item))
			}
		case []string:
			for _, item := range v {
				values.Add(name, item)
			}
		case map[string]interface{}:
			values.Set(name, fmt.Sprintf("%v,%v", stringOrEmpty(v["from"]), stringOrEmpty(v["to"])))
		case map[string]string:
			values.Set(name, v["from"]+","+v["to"])
		default:
			values.Set(name, fmt.Sprint(v))
		}
	}
	return values
}

func stringOrEmpty(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
