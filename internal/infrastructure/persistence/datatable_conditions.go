package persistence

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
)

// conditionExpr renders a resolved filter condition against col
func conditionExpr(col clause.Column, cond datatable.Condition) (clause.Expr, error) {
	switch cond.Op {
	case datatable.OpEquals:
		return clause.Expr{SQL: "? = ?", Vars: []interface{}{col, cond.Value}}, nil
	case datatable.OpIn:
		if cond.OrNull {
			return clause.Expr{SQL: "(? IN ? OR ? IS NULL)", Vars: []interface{}{col, cond.Values, col}}, nil
		}
		return clause.Expr{SQL: "? IN ?", Vars: []interface{}{col, cond.Values}}, nil
	case datatable.OpNull:
		return clause.Expr{SQL: "? IS NULL", Vars: []interface{}{col}}, nil
	case datatable.OpNotNull:
		return clause.Expr{SQL: "? IS NOT NULL", Vars: []interface{}{col}}, nil
	case datatable.OpLike:
		return clause.Expr{SQL: "LOWER(?) LIKE ?" + likeEscapeClause, Vars: []interface{}{col, strings.ToLower(fmt.Sprint(cond.Value))}}, nil
	case datatable.OpRange:
		var parts []string
		var vars []interface{}
		if cond.From != nil {
			parts = append(parts, "? >= ?")
			vars = append(vars, col, *cond.From)
		}
		if cond.To != nil {
			parts = append(parts, "? < ?")
			vars = append(vars, col, *cond.To)
		}
		if len(parts) == 0 {
			return clause.Expr{}, fmt.Errorf("empty range on %s", col.Name)
		}
		return clause.Expr{SQL: strings.Join(parts, " AND "), Vars: vars}, nil
	default:
		return clause.Expr{}, fmt.Errorf("unsupported operator %q", cond.Op)
	}
}

// likeEscapeClause declares the escape character used by datatable.ContainsPattern
const likeEscapeClause = " ESCAPE '" + datatable.LikeEscape + "'"

// searchExpr matches term case-insensitively and literally anywhere in the column
func searchExpr(col clause.Column, field *schema.Field, term string) clause.Expr {
	pattern := datatable.ContainsPattern(strings.ToLower(term))
	if field != nil && field.DataType == schema.String {
		return clause.Expr{SQL: "LOWER(?) LIKE ?" + likeEscapeClause, Vars: []interface{}{col, pattern}}
	}
	return clause.Expr{SQL: "LOWER(CAST(? AS TEXT)) LIKE ?" + likeEscapeClause, Vars: []interface{}{col, pattern}}
}

// existsExpr wraps cond on a relation path into a correlated EXISTS subquery so that
// filtering on to-many relations never duplicates base rows
func existsExpr(root *schema.Schema, namer schema.Namer, path string, cond datatable.Condition) (clause.Expr, error) {
	segments := strings.Split(datatable.RelationOf(path), ".")
	prefix := "wh_" + datatable.Alias(datatable.RelationOf(path))

	current := root
	parentAlias := root.Table

	var from string
	var fromVars []interface{}
	var joins []string
	var joinVars []interface{}
	var link []string
	var linkVars []interface{}

	for i, segment := range segments {
		rel, ok := findRelation(current, segment, namer)
		if !ok {
			return clause.Expr{}, fmt.Errorf("%w %q on %s", ErrUnknownRelation, segment, current.Name)
		}
		alias := fmt.Sprintf("%s_%d", prefix, i)

		if i == 0 {
			// the first relation is selected from and linked to the outer row
			from, fromVars, link, linkVars = existsRoot(rel, parentAlias, alias)
		} else {
			sqlParts, vars := relationJoinSQL(rel, parentAlias, alias, "INNER JOIN")
			joins = append(joins, sqlParts...)
			joinVars = append(joinVars, vars...)
		}
		current = rel.FieldSchema
		parentAlias = alias
	}

	attribute := datatable.AttributeOf(path)
	field := current.LookUpField(attribute)
	if field == nil || field.DBName == "" {
		return clause.Expr{}, fmt.Errorf("%w %q on %s", ErrUnknownColumn, attribute, current.Name)
	}
	inner, err := conditionExpr(clause.Column{Table: parentAlias, Name: field.DBName}, cond)
	if err != nil {
		return clause.Expr{}, err
	}

	var sql strings.Builder
	sql.WriteString("EXISTS (SELECT 1 FROM ")
	sql.WriteString(from)
	for _, j := range joins {
		sql.WriteString(" ")
		sql.WriteString(j)
	}
	sql.WriteString(" WHERE ")
	sql.WriteString(strings.Join(link, " AND "))
	sql.WriteString(" AND ")
	sql.WriteString(inner.SQL)
	sql.WriteString(")")

	vars := append([]interface{}{}, fromVars...)
	vars = append(vars, joinVars...)
	vars = append(vars, linkVars...)
	vars = append(vars, inner.Vars...)
	return clause.Expr{SQL: sql.String(), Vars: vars}, nil
}

// existsRoot renders the FROM part and the correlation conditions of the first
// relation of an EXISTS subquery
func existsRoot(rel *schema.Relationship, outerAlias, alias string) (string, []interface{}, []string, []interface{}) {
	if rel.Type == schema.Many2Many && rel.JoinTable != nil {
		pivotAlias := alias + "__pivot"
		var link, joinConds []string
		var linkVars, joinVars []interface{}
		for _, ref := range rel.References {
			if ref.PrimaryKey == nil || ref.ForeignKey == nil {
				continue
			}
			if ref.OwnPrimaryKey {
				link = append(link, "? = ?")
				linkVars = append(linkVars,
					clause.Column{Table: pivotAlias, Name: ref.ForeignKey.DBName},
					clause.Column{Table: outerAlias, Name: ref.PrimaryKey.DBName})
			} else {
				joinConds = append(joinConds, "? = ?")
				joinVars = append(joinVars,
					clause.Column{Table: alias, Name: ref.PrimaryKey.DBName},
					clause.Column{Table: pivotAlias, Name: ref.ForeignKey.DBName})
			}
		}
		from := "? INNER JOIN ? ON " + strings.Join(joinConds, " AND ")
		fromVars := append([]interface{}{
			clause.Table{Name: rel.JoinTable.Table, Alias: pivotAlias},
			clause.Table{Name: rel.FieldSchema.Table, Alias: alias},
		}, joinVars...)
		return from, fromVars, link, linkVars
	}

	link, linkVars := relationConditions(rel, outerAlias, alias)
	return "?", []interface{}{clause.Table{Name: rel.FieldSchema.Table, Alias: alias}}, link, linkVars
}

// quotedColumn renders col quoted for the dialect of tx
func quotedColumn(tx *gorm.DB, col clause.Column) string {
	return tx.Statement.Quote(col)
}
