package persistence

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/MGTheTrain/admin-console/internal/domain/mail"
	"github.com/MGTheTrain/admin-console/internal/infrastructure/persistence/models"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// MergeTagEntities maps the entity names usable in merge tags to their models
var MergeTagEntities = map[string]interface{}{
	"user":         &models.UserModel{},
	"team":         &models.TeamModel{},
	"role":         &models.RoleModel{},
	"notification": &models.NotificationModel{},
	"error_log":    &models.ErrorLogModel{},
}

// EntityLoader loads merge tag entities and resolves paths on them
type EntityLoader interface {
	mail.EntityLoader
	mail.AttributeResolver
}

type gormEntityLoader struct {
	db       *gorm.DB
	logger   logger.Logger
	schemas  *sync.Map
	entities map[string]interface{}
}

// NewGormEntityLoader creates an EntityLoader over the given entity models. The
// returned loader also resolves merge tag paths on the models it loads.
func NewGormEntityLoader(db *gorm.DB, logger logger.Logger, entities map[string]interface{}) (EntityLoader, error) {
	if len(entities) == 0 {
		entities = MergeTagEntities
	}
	return &gormEntityLoader{
		db:       db,
		logger:   logger,
		schemas:  &sync.Map{},
		entities: entities,
	}, nil
}

func (l *gormEntityLoader) schemaOf(model interface{}) (*schema.Schema, error) {
	sch, err := schema.Parse(model, l.schemas, l.db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("failed to parse model schema: %w", err)
	}
	return sch, nil
}

// Load fetches one row of entity with its direct relations
func (l *gormEntityLoader) Load(ctx context.Context, entity, id string) (interface{}, error) {
	model, ok := l.entities[entity]
	if !ok {
		return nil, errs.Invalid("unknown entity %q", entity)
	}

	row := reflect.New(reflect.Indirect(reflect.ValueOf(model)).Type()).Interface()
	if err := l.db.WithContext(ctx).Preload(clause.Associations).Where("id = ?", id).First(row).Error; err != nil {
		return nil, translateError(err, "fetch", entity, id)
	}
	return row, nil
}

// Attributes lists the columns of entity plus the columns of its to-one relations
func (l *gormEntityLoader) Attributes(entity string) ([]string, error) {
	model, ok := l.entities[entity]
	if !ok {
		return nil, errs.Invalid("unknown entity %q", entity)
	}
	sch, err := l.schemaOf(model)
	if err != nil {
		return nil, err
	}

	attrs := columnNames(sch, "")
	for name, rel := range sch.Relationships.Relations {
		if isToMany(rel) {
			continue
		}
		attrs = append(attrs, columnNames(rel.FieldSchema, l.db.NamingStrategy.ColumnName("", name)+".")...)
	}
	sort.Strings(attrs)
	return attrs, nil
}

func columnNames(sch *schema.Schema, prefix string) []string {
	names := make([]string, 0, len(sch.DBNames))
	for _, name := range sch.DBNames {
		if mail.HiddenAttributes[name] {
			continue
		}
		names = append(names, prefix+name)
	}
	return names
}

// Resolve reads a dot path of column and relation names from a loaded model. Paths
// ending on a hidden column never resolve, whether named by column or field name.
func (l *gormEntityLoader) Resolve(model interface{}, path string) (interface{}, bool) {
	if model == nil {
		return nil, false
	}
	sch, err := l.schemaOf(model)
	if err != nil {
		l.logger.Debug("Cannot resolve merge tag on ", reflect.TypeOf(model), ": ", err)
		return nil, false
	}

	segments := strings.Split(path, ".")
	if hiddenPath(sch, segments, l.db.NamingStrategy) {
		return nil, false
	}
	return attributeValue(context.Background(), sch, reflect.Indirect(reflect.ValueOf(model)), segments, l.db.NamingStrategy)
}

// hiddenPath follows the relations of path and reports whether its last segment is
// a hidden column
func hiddenPath(sch *schema.Schema, path []string, namer schema.Namer) bool {
	for i, segment := range path {
		if sch == nil {
			return false
		}
		if i == len(path)-1 {
			field := sch.LookUpField(segment)
			return field != nil && (mail.HiddenAttributes[field.DBName] || mail.IsHiddenAttribute(field.Name))
		}
		rel, ok := findRelation(sch, segment, namer)
		if !ok {
			return false
		}
		sch = rel.FieldSchema
	}
	return false
}
