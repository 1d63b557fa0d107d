package persistence

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

type gormDataTableQueryBuilder struct {
	db      *gorm.DB
	logger  logger.Logger
	schemas *sync.Map
}

// NewGormDataTableQueryBuilder creates a QueryBuilder that infers joins from the
// dot paths of table columns and filters
func NewGormDataTableQueryBuilder(db *gorm.DB, logger logger.Logger) (datatable.QueryBuilder, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	return &gormDataTableQueryBuilder{
		db:      db,
		logger:  logger,
		schemas: &sync.Map{},
	}, nil
}

// tableQuery is the plan of one request: joins, where conditions and order
type tableQuery struct {
	def      datatable.Definition
	schema   *schema.Schema
	pk       clause.Column
	planner  *joinPlanner
	where    []clause.Expression
	scopes   []func(*gorm.DB) *gorm.DB
	orderCol *resolvedColumn
	orderFn  datatable.SortFunc
	desc     bool
}

func (b *gormDataTableQueryBuilder) parse(model interface{}) (*schema.Schema, error) {
	sch, err := schema.Parse(model, b.schemas, b.db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("failed to parse model schema: %w", err)
	}
	if sch.PrioritizedPrimaryField == nil {
		return nil, fmt.Errorf("model %s has no primary key", sch.Name)
	}
	return sch, nil
}

func (b *gormDataTableQueryBuilder) plan(def datatable.Definition, req datatable.Request) (*tableQuery, error) {
	sch, err := b.parse(def.Model())
	if err != nil {
		return nil, err
	}

	q := &tableQuery{
		def:     def,
		schema:  sch,
		pk:      clause.Column{Table: sch.Table, Name: sch.PrioritizedPrimaryField.DBName},
		planner: newJoinPlanner(sch, b.db.NamingStrategy),
	}

	if err := q.planSearch(req.Search); err != nil {
		return nil, err
	}
	if err := q.planFilters(req.Filters); err != nil {
		return nil, err
	}
	if err := q.planSort(req.Sort, req.Direction); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *tableQuery) planSearch(term string) error {
	if term == "" {
		return nil
	}
	if fn := q.def.Options().Search; fn != nil {
		q.scopes = append(q.scopes, func(tx *gorm.DB) *gorm.DB { return fn(tx, term) })
		return nil
	}

	var exprs []clause.Expression
	for _, c := range q.def.Columns() {
		if !c.IsSearchable() {
			continue
		}
		if fn := c.SearchFunc(); fn != nil {
			if expr := fn(term); expr != nil {
				exprs = append(exprs, expr)
			}
			continue
		}
		col, err := q.planner.resolve(c.Key())
		if err != nil {
			return fmt.Errorf("search column %s: %w", c.Key(), err)
		}
		exprs = append(exprs, searchExpr(col.column, col.field, term))
	}
	if len(exprs) > 0 {
		q.where = append(q.where, clause.Or(exprs...))
	}
	return nil
}

func (q *tableQuery) planFilters(values map[string]interface{}) error {
	// sorted keys keep the generated SQL stable
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		f, ok := datatable.FindFilter(q.def, key)
		if !ok {
			continue
		}
		raw := values[key]

		if fn := f.QueryFunc(); fn != nil {
			if datatable.IsEmptyValue(raw) {
				continue
			}
			value := raw
			q.scopes = append(q.scopes, func(tx *gorm.DB) *gorm.DB { return fn(tx, value) })
			continue
		}

		cond, apply, err := f.Resolve(raw)
		if err != nil {
			return err
		}
		if !apply {
			continue
		}

		if f.Relation() != "" {
			expr, err := existsExpr(q.schema, q.planner.namer, f.Path(), cond)
			if err != nil {
				return fmt.Errorf("filter %s: %w", key, err)
			}
			q.where = append(q.where, expr)
			continue
		}

		field := q.schema.LookUpField(f.Attribute())
		if field == nil || field.DBName == "" {
			return fmt.Errorf("filter %s: %w %q on %s", key, ErrUnknownColumn, f.Attribute(), q.schema.Name)
		}
		expr, err := conditionExpr(clause.Column{Table: q.schema.Table, Name: field.DBName}, cond)
		if err != nil {
			return fmt.Errorf("filter %s: %w", key, err)
		}
		q.where = append(q.where, expr)
	}
	return nil
}

func (q *tableQuery) planSort(key string, direction datatable.Direction) error {
	q.desc = direction == datatable.Desc
	if key == "" {
		return nil
	}
	if c, ok := datatable.FindColumn(q.def, key); ok {
		if fn := c.SortFunc(); fn != nil {
			q.orderFn = fn
			return nil
		}
	}
	col, err := q.planner.resolve(key)
	if err != nil {
		return fmt.Errorf("sort column %s: %w", key, err)
	}
	q.orderCol = col
	return nil
}

// filtered applies the base query, joins, search and filters to tx
func (q *tableQuery) filtered(tx *gorm.DB) *gorm.DB {
	tx = q.def.BaseQuery(tx.Model(q.def.Model()))
	tx = q.planner.apply(tx)
	for _, expr := range q.where {
		tx = tx.Where(expr)
	}
	for _, scope := range q.scopes {
		tx = scope(tx)
	}
	return tx
}

// ordered selects base rows only, collapsing duplicates introduced by to-many joins,
// and applies the sort with a primary key tie-breaker
func (q *tableQuery) ordered(tx *gorm.DB) *gorm.DB {
	if len(q.planner.sql) > 0 {
		tx = tx.Select("?.*", clause.Table{Name: q.schema.Table})
	}
	if q.planner.toMany {
		tx = tx.Group(qualified(q.pk))
	}

	switch {
	case q.orderFn != nil:
		dir := datatable.Asc
		if q.desc {
			dir = datatable.Desc
		}
		tx = q.orderFn(tx, dir)
	case q.orderCol != nil:
		expr := quotedColumn(tx, q.orderCol.column)
		if q.planner.toMany && q.orderCol.joined {
			// grouped rows sort on the first related value in the requested direction
			if q.desc {
				expr = "MAX(" + expr + ")"
			} else {
				expr = "MIN(" + expr + ")"
			}
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: expr, Raw: true}, Desc: q.desc})
	}

	if q.orderCol == nil || q.orderCol.column != q.pk {
		tx = tx.Order(clause.OrderByColumn{Column: q.pk})
	}
	return tx
}

func (b *gormDataTableQueryBuilder) Execute(ctx context.Context, def datatable.Definition, req datatable.Request) (*datatable.Page, error) {
	req = req.Normalize(def)
	q, err := b.plan(def, req)
	if err != nil {
		return nil, err
	}

	var filtered int64
	if err := q.filtered(b.db.WithContext(ctx)).Distinct(qualified(q.pk)).Count(&filtered).Error; err != nil {
		return nil, fmt.Errorf("failed to count %s: %w", def.Entity(), err)
	}

	page := datatable.ClampPage(req.Page, filtered, req.PerPage)
	req.Page = page

	rows := reflect.New(reflect.SliceOf(reflect.TypeOf(def.Model())))
	tx := q.ordered(q.filtered(b.db.WithContext(ctx)))
	tx = b.preload(tx, q.schema, def)
	if err := tx.Offset(req.Offset()).Limit(req.PerPage).Find(rows.Interface()).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", def.Entity(), err)
	}

	records, err := b.records(ctx, q.schema, def, rows.Elem())
	if err != nil {
		return nil, err
	}

	b.logger.Debug("Executed table query for ", def.Entity(), ": ", filtered, " matches, page ", page)
	return &datatable.Page{
		Records:  records,
		Filtered: filtered,
		Page:     page,
		PerPage:  req.PerPage,
	}, nil
}

func (b *gormDataTableQueryBuilder) CountAll(ctx context.Context, def datatable.Definition) (int64, error) {
	sch, err := b.parse(def.Model())
	if err != nil {
		return 0, err
	}
	pk := clause.Column{Table: sch.Table, Name: sch.PrioritizedPrimaryField.DBName}

	var total int64
	tx := def.BaseQuery(b.db.WithContext(ctx).Model(def.Model()))
	if err := tx.Distinct(qualified(pk)).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", def.Entity(), err)
	}
	return total, nil
}

func (b *gormDataTableQueryBuilder) FindByIDs(ctx context.Context, def datatable.Definition, ids []string) ([]datatable.Record, error) {
	if len(ids) == 0 {
		return []datatable.Record{}, nil
	}
	sch, err := b.parse(def.Model())
	if err != nil {
		return nil, err
	}
	pk := clause.Column{Table: sch.Table, Name: sch.PrioritizedPrimaryField.DBName}

	rows := reflect.New(reflect.SliceOf(reflect.TypeOf(def.Model())))
	tx := def.BaseQuery(b.db.WithContext(ctx).Model(def.Model())).
		Where(clause.IN{Column: pk, Values: stringsToValues(ids)}).
		Order(clause.OrderByColumn{Column: pk})
	tx = b.preload(tx, sch, def)
	if err := tx.Find(rows.Interface()).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", def.Entity(), err)
	}
	return b.records(ctx, sch, def, rows.Elem())
}

func (b *gormDataTableQueryBuilder) MatchingIDs(ctx context.Context, def datatable.Definition, req datatable.Request) ([]string, error) {
	req = req.Normalize(def)
	req.Sort = ""
	q, err := b.plan(def, req)
	if err != nil {
		return nil, err
	}

	var ids []string
	tx := q.filtered(b.db.WithContext(ctx)).Distinct(qualified(q.pk))
	if err := tx.Pluck(qualified(q.pk), &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to collect %s ids: %w", def.Entity(), err)
	}
	return ids, nil
}

// preload eager loads every relation referenced by a visible column
func (b *gormDataTableQueryBuilder) preload(tx *gorm.DB, sch *schema.Schema, def datatable.Definition) *gorm.DB {
	seen := make(map[string]bool)
	for _, c := range def.Columns() {
		if c.IsHidden() || c.Relation() == "" {
			continue
		}
		path, err := relationFieldPath(sch, c.Relation(), b.db.NamingStrategy)
		if err != nil {
			// the column may be computed by a transform
			b.logger.Debug("Skipping preload of column ", c.Key(), " on ", def.Entity(), ": ", err)
			continue
		}
		if !seen[path] {
			seen[path] = true
			tx = tx.Preload(path)
		}
	}
	return tx
}

func stringsToValues(ids []string) []interface{} {
	values := make([]interface{}, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return values
}

// qualified renders col as "table.column" for the string based gorm helpers
func qualified(col clause.Column) string {
	return col.Table + "." + col.Name
}
