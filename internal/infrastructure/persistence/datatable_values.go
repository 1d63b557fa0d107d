package persistence

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/MGTheTrain/admin-console/internal/domain/datatable"

	"gorm.io/gorm/schema"
)

// records extracts the column values of every loaded row
func (b *gormDataTableQueryBuilder) records(ctx context.Context, sch *schema.Schema, def datatable.Definition, rows reflect.Value) ([]datatable.Record, error) {
	records := make([]datatable.Record, 0, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		row := rows.Index(i)
		model := row.Interface()
		value := reflect.Indirect(row)
		if !value.IsValid() {
			continue
		}

		id, _ := sch.PrioritizedPrimaryField.ValueOf(ctx, value)
		values := make(map[string]interface{}, len(def.Columns()))
		for _, c := range def.Columns() {
			v := extractValue(ctx, sch, value, strings.Split(c.Key(), "."), b.db.NamingStrategy)
			values[c.Key()] = c.Format(v, model)
		}

		records = append(records, datatable.Record{
			ID:     fmt.Sprint(id),
			Model:  model,
			Values: def.Transform(model, values),
		})
	}
	return records, nil
}

// extractValue walks path through loaded relations. To-many relations yield a slice
// with one value per related row; unknown or unloaded paths yield nil.
func extractValue(ctx context.Context, sch *schema.Schema, rv reflect.Value, path []string, namer schema.Namer) interface{} {
	v, _ := attributeValue(ctx, sch, rv, path, namer)
	return v
}

// attributeValue is extractValue reporting whether path names a known attribute
func attributeValue(ctx context.Context, sch *schema.Schema, rv reflect.Value, path []string, namer schema.Namer) (interface{}, bool) {
	if sch == nil || len(path) == 0 {
		return nil, false
	}

	if len(path) == 1 {
		field := sch.LookUpField(path[0])
		if field == nil {
			return nil, false
		}
		if !rv.IsValid() || rv.Kind() != reflect.Struct {
			return nil, true
		}
		v, zero := field.ValueOf(ctx, rv)
		if zero && field.FieldType.Kind() == reflect.Ptr {
			return nil, true
		}
		return indirectValue(v), true
	}

	rel, ok := findRelation(sch, path[0], namer)
	if !ok {
		return nil, false
	}
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return nil, true
	}
	related := reflect.Indirect(rel.Field.ReflectValueOf(ctx, rv))
	if !related.IsValid() {
		return nil, true
	}

	if related.Kind() == reflect.Slice || related.Kind() == reflect.Array {
		out := make([]interface{}, 0, related.Len())
		known := true
		for i := 0; i < related.Len(); i++ {
			v, ok := attributeValue(ctx, rel.FieldSchema, reflect.Indirect(related.Index(i)), path[1:], namer)
			known = known && ok
			if nested, isSlice := v.([]interface{}); isSlice {
				out = append(out, nested...)
				continue
			}
			if v != nil {
				out = append(out, v)
			}
		}
		return out, known
	}
	return attributeValue(ctx, rel.FieldSchema, related, path[1:], namer)
}

func indirectValue(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr {
		return v
	}
	if rv.IsNil() {
		return nil
	}
	return rv.Elem().Interface()
}
