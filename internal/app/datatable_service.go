package app

import (
	"context"
	"fmt"

	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"
)

// dataTableBuilder implements the datatable.Builder interface on top of a QueryBuilder
type dataTableBuilder struct {
	queries datatable.QueryBuilder
	logger  logger.Logger
}

// NewDataTableBuilder creates a new instance of datatable.Builder
func NewDataTableBuilder(queries datatable.QueryBuilder, logger logger.Logger) (datatable.Builder, error) {
	if queries == nil {
		return nil, fmt.Errorf("query builder is required")
	}
	return &dataTableBuilder{queries: queries, logger: logger}, nil
}

// Build runs req against def. The table permission is checked against gate; rows
// carry the keys of the row actions gate allows and the row passes.
func (b *dataTableBuilder) Build(ctx context.Context, def datatable.Definition, req datatable.Request, gate datatable.Gate) (*datatable.Response, error) {
	if err := AuthorizeTable(def, gate); err != nil {
		return nil, err
	}

	req = req.Normalize(def)
	page, err := b.queries.Execute(ctx, def, req)
	if err != nil {
		return nil, err
	}

	total, err := b.queries.CountAll(ctx, def)
	if err != nil {
		return nil, err
	}

	actions := authorizedActions(def, gate)
	rows := make([]datatable.Row, 0, len(page.Records))
	for _, rec := range page.Records {
		rows = append(rows, buildRow(rec, actions))
	}

	req.Page = page.Page
	cfg := b.Config(def, gate)
	return &datatable.Response{
		Data:    rows,
		Meta:    datatable.NewMeta(page.Filtered, page.Page, page.PerPage, len(rows)),
		Stats:   datatable.Stats{Total: total, Filtered: page.Filtered},
		Config:  &cfg,
		Applied: req,
	}, nil
}

// Config serializes def with the actions gate allows
func (b *dataTableBuilder) Config(def datatable.Definition, gate datatable.Gate) datatable.Config {
	opts := def.Options()
	cfg := datatable.Config{
		Entity:            def.Entity(),
		Columns:           []datatable.ColumnConfig{},
		Filters:           []datatable.FilterConfig{},
		Actions:           []datatable.ActionConfig{},
		BulkActions:       []datatable.BulkActionConfig{},
		PerPageOptions:    opts.PerPageOptions,
		DefaultPerPage:    opts.DefaultPerPage,
		DefaultSort:       opts.DefaultSort,
		DefaultDirection:  opts.DefaultDirection,
		Searchable:        datatable.Searchable(def),
		SearchPlaceholder: opts.SearchPlaceholder,
	}
	for _, c := range def.Columns() {
		if !c.IsHidden() {
			cfg.Columns = append(cfg.Columns, c.Describe())
		}
	}
	for _, f := range def.Filters() {
		cfg.Filters = append(cfg.Filters, f.Describe())
	}
	for _, a := range authorizedActions(def, gate) {
		cfg.Actions = append(cfg.Actions, a.Describe())
	}
	for _, a := range def.BulkActions() {
		if a.Authorized(gate) {
			cfg.BulkActions = append(cfg.BulkActions, a.Describe())
		}
	}
	return cfg
}

// AuthorizeTable rejects gates lacking the view permission of def
func AuthorizeTable(def datatable.Definition, gate datatable.Gate) error {
	perm := def.Options().Permission
	if perm == "" || (gate != nil && gate(perm)) {
		return nil
	}
	return errs.Forbidden("table %s requires %s", def.Entity(), perm)
}

func authorizedActions(def datatable.Definition, gate datatable.Gate) []*datatable.Action {
	var out []*datatable.Action
	for _, a := range def.Actions() {
		if a.Authorized(gate) {
			out = append(out, a)
		}
	}
	return out
}

func buildRow(rec datatable.Record, actions []*datatable.Action) datatable.Row {
	row := make(datatable.Row, len(rec.Values)+2)
	for k, v := range rec.Values {
		row[k] = v
	}
	row["id"] = rec.ID

	keys := make([]string, 0, len(actions))
	for _, a := range actions {
		if a.VisibleFor(rec.Model) {
			keys = append(keys, a.Key())
		}
	}
	row["_actions"] = keys
	return row
}
