package persistence

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
)

// Errors returned while resolving dot paths against a model schema
var (
	ErrUnknownRelation = fmt.Errorf("unknown relation")
	ErrUnknownColumn   = fmt.Errorf("unknown column")
)

// resolvedColumn is a dot path resolved to a qualified column
type resolvedColumn struct {
	column clause.Column
	field  *schema.Field
	// joined is set when the column lives on a joined relation
	joined bool
	toMany bool
}

// joinPlanner infers LEFT JOINs from dot paths. Every relationship is joined once,
// keyed by "parentAlias.RelationName".
type joinPlanner struct {
	root      *schema.Schema
	rootAlias string
	namer     schema.Namer
	visited   map[string]string
	sql       []string
	vars      []interface{}
	toMany    bool
}

func newJoinPlanner(root *schema.Schema, namer schema.Namer) *joinPlanner {
	return &joinPlanner{
		root:      root,
		rootAlias: root.Table,
		namer:     namer,
		visited:   make(map[string]string),
	}
}

// resolve returns the qualified column of path, planning the joins it needs
func (p *joinPlanner) resolve(path string) (*resolvedColumn, error) {
	current := p.root
	parentAlias := p.rootAlias
	toMany := false

	relationPath := datatable.RelationOf(path)
	if relationPath != "" {
		walked := make([]string, 0, 4)
		for _, segment := range strings.Split(relationPath, ".") {
			rel, ok := findRelation(current, segment, p.namer)
			if !ok {
				return nil, fmt.Errorf("%w %q on %s", ErrUnknownRelation, segment, current.Name)
			}
			walked = append(walked, segment)

			alias := p.join(rel, parentAlias, datatable.Alias(strings.Join(walked, ".")))
			if isToMany(rel) {
				toMany = true
			}
			current = rel.FieldSchema
			parentAlias = alias
		}
	}

	attribute := datatable.AttributeOf(path)
	field := current.LookUpField(attribute)
	if field == nil || field.DBName == "" {
		return nil, fmt.Errorf("%w %q on %s", ErrUnknownColumn, attribute, current.Name)
	}

	return &resolvedColumn{
		column: clause.Column{Table: parentAlias, Name: field.DBName},
		field:  field,
		joined: relationPath != "",
		toMany: toMany,
	}, nil
}

// join plans the join of rel below parentAlias and returns the alias it is reachable
// under. A relationship already joined from the same parent is reused.
func (p *joinPlanner) join(rel *schema.Relationship, parentAlias, alias string) string {
	key := parentAlias + "." + rel.Name
	if existing, ok := p.visited[key]; ok {
		return existing
	}
	if alias == p.rootAlias {
		alias += "_rel"
	}
	p.visited[key] = alias

	if isToMany(rel) {
		p.toMany = true
	}

	sqlParts, vars := relationJoinSQL(rel, parentAlias, alias, "LEFT JOIN")
	p.sql = append(p.sql, sqlParts...)
	p.vars = append(p.vars, vars...)
	return alias
}

// apply adds the planned joins to tx
func (p *joinPlanner) apply(tx *gorm.DB) *gorm.DB {
	if len(p.sql) == 0 {
		return tx
	}
	return tx.Joins(strings.Join(p.sql, " "), p.vars...)
}

// relationJoinSQL renders the join of rel from parentAlias as alias. Many2Many
// relations join the pivot table first under alias + "__pivot".
func relationJoinSQL(rel *schema.Relationship, parentAlias, alias, joinType string) ([]string, []interface{}) {
	if rel.Type == schema.Many2Many && rel.JoinTable != nil {
		pivotAlias := alias + "__pivot"

		var pivotConds, relatedConds []string
		var pivotVars, relatedVars []interface{}
		for _, ref := range rel.References {
			if ref.PrimaryKey == nil || ref.ForeignKey == nil {
				continue
			}
			if ref.OwnPrimaryKey {
				pivotConds = append(pivotConds, "? = ?")
				pivotVars = append(pivotVars,
					clause.Column{Table: pivotAlias, Name: ref.ForeignKey.DBName},
					clause.Column{Table: parentAlias, Name: ref.PrimaryKey.DBName})
			} else {
				relatedConds = append(relatedConds, "? = ?")
				relatedVars = append(relatedVars,
					clause.Column{Table: alias, Name: ref.PrimaryKey.DBName},
					clause.Column{Table: pivotAlias, Name: ref.ForeignKey.DBName})
			}
		}

		sqlParts := []string{
			joinType + " ? ON " + strings.Join(pivotConds, " AND "),
			joinType + " ? ON " + strings.Join(relatedConds, " AND "),
		}
		vars := append([]interface{}{clause.Table{Name: rel.JoinTable.Table, Alias: pivotAlias}}, pivotVars...)
		vars = append(vars, clause.Table{Name: rel.FieldSchema.Table, Alias: alias})
		vars = append(vars, relatedVars...)
		return sqlParts, vars
	}

	conds, condVars := relationConditions(rel, parentAlias, alias)
	vars := append([]interface{}{clause.Table{Name: rel.FieldSchema.Table, Alias: alias}}, condVars...)
	return []string{joinType + " ? ON " + strings.Join(conds, " AND ")}, vars
}

// relationConditions renders the conditions linking a non-pivot relation at alias
// to its parent
func relationConditions(rel *schema.Relationship, parentAlias, alias string) ([]string, []interface{}) {
	var conds []string
	var vars []interface{}
	for _, ref := range rel.References {
		switch {
		case ref.ForeignKey == nil:
			continue
		case ref.PrimaryKey == nil:
			// polymorphic type constraint
			conds = append(conds, "? = ?")
			vars = append(vars, clause.Column{Table: alias, Name: ref.ForeignKey.DBName}, ref.PrimaryValue)
		case ref.OwnPrimaryKey:
			// has one / has many: the foreign key lives on the related table
			conds = append(conds, "? = ?")
			vars = append(vars,
				clause.Column{Table: alias, Name: ref.ForeignKey.DBName},
				clause.Column{Table: parentAlias, Name: ref.PrimaryKey.DBName})
		default:
			// belongs to: the foreign key lives on the parent
			conds = append(conds, "? = ?")
			vars = append(vars,
				clause.Column{Table: alias, Name: ref.PrimaryKey.DBName},
				clause.Column{Table: parentAlias, Name: ref.ForeignKey.DBName})
		}
	}
	return conds, vars
}

func findRelation(s *schema.Schema, segment string, namer schema.Namer) (*schema.Relationship, bool) {
	if rel, ok := s.Relationships.Relations[segment]; ok {
		return rel, true
	}
	for name, rel := range s.Relationships.Relations {
		if strings.EqualFold(name, segment) || namer.ColumnName("", name) == segment {
			return rel, true
		}
	}
	return nil, false
}

func isToMany(rel *schema.Relationship) bool {
	return rel.Type == schema.HasMany || rel.Type == schema.Many2Many
}

// relationFieldPath maps a dot relation path to the Go field path used by Preload,
// e.g. "address.city" to "Address.City"
func relationFieldPath(root *schema.Schema, relationPath string, namer schema.Namer) (string, error) {
	current := root
	names := make([]string, 0, 4)
	for _, segment := range strings.Split(relationPath, ".") {
		rel, ok := findRelation(current, segment, namer)
		if !ok {
			return "", fmt.Errorf("%w %q on %s", ErrUnknownRelation, segment, current.Name)
		}
		names = append(names, rel.Name)
		current = rel.FieldSchema
	}
	return strings.Join(names, "."), nil
}
