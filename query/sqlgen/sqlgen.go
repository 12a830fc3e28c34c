// Package sqlgen renders accumulated query state into parameterized SQL.
package sqlgen

import (
	"fmt"
	"strings"
)

// Query is a SQL statement with its ordered arguments.
type Query struct {
	SQL  string
	Args []interface{}
}

// Condition is one WHERE predicate. Value is always bound as a parameter,
// never rendered into the SQL text.
type Condition struct {
	Field    string
	Operator string
	Value    interface{}
}

// WhereClause is an ordered set of conditions joined with one operator.
type WhereClause struct {
	Conditions []Condition
	Operator   string // "AND" or "OR"
}

// NewWhereClause creates an empty AND clause.
func NewWhereClause() *WhereClause {
	return &WhereClause{Operator: "AND"}
}

// AddCondition appends a condition, preserving call order.
func (w *WhereClause) AddCondition(cond Condition) {
	w.Conditions = append(w.Conditions, cond)
}

// IsEmpty reports whether the clause has any conditions.
func (w *WhereClause) IsEmpty() bool {
	return w == nil || len(w.Conditions) == 0
}

// OrderBy represents one ORDER BY term.
type OrderBy struct {
	Field     string
	Direction string // "ASC" or "DESC"
}

// Assignment is one SET column/value pair. Assignments are a slice, not a
// map, so identical state always renders identical SQL.
type Assignment struct {
	Column string
	Value  interface{}
}

// dialect abstracts the placeholder syntax of a provider.
type dialect interface {
	placeholder(n int) string
}

type postgresDialect struct{}

func (postgresDialect) placeholder(n int) string { return fmt.Sprintf("$%d", n) }

type questionDialect struct{}

func (questionDialect) placeholder(int) string { return "?" }

// Generator renders SQL for one provider.
type Generator struct {
	provider string
	dialect  dialect
}

// NewGenerator creates a generator for the given provider. Unknown providers
// fall back to postgres placeholders.
func NewGenerator(provider string) *Generator {
	switch provider {
	case "mysql", "sqlite":
		return &Generator{provider: provider, dialect: questionDialect{}}
	default:
		return &Generator{provider: "postgres", dialect: postgresDialect{}}
	}
}

// Provider returns the provider name the generator renders for.
func (g *Generator) Provider() string {
	return g.provider
}

// GenerateSelect renders a SELECT statement. A nil or empty column list
// renders as SELECT *.
func (g *Generator) GenerateSelect(table string, columns []string, where *WhereClause, orderBy []OrderBy, limit, offset *int) *Query {
	var parts []string
	var args []interface{}
	argIndex := 1

	if len(columns) == 0 {
		parts = append(parts, "SELECT *")
	} else {
		parts = append(parts, "SELECT "+strings.Join(columns, ", "))
	}
	parts = append(parts, "FROM "+table)

	if !where.IsEmpty() {
		whereSQL, whereArgs := g.buildWhere(where, &argIndex)
		parts = append(parts, "WHERE "+whereSQL)
		args = append(args, whereArgs...)
	}

	if len(orderBy) > 0 {
		parts = append(parts, "ORDER BY "+renderOrderBy(orderBy))
	}

	if limit != nil {
		parts = append(parts, "LIMIT "+g.dialect.placeholder(argIndex))
		args = append(args, *limit)
		argIndex++
	}
	if offset != nil && *offset > 0 {
		parts = append(parts, "OFFSET "+g.dialect.placeholder(argIndex))
		args = append(args, *offset)
		argIndex++
	}

	return &Query{SQL: strings.Join(parts, " "), Args: args}
}

// GenerateInsert renders one multi-row INSERT with one placeholder set per
// row. Rows must all follow the column order given in columns.
func (g *Generator) GenerateInsert(table string, columns []string, rows [][]interface{}) *Query {
	var args []interface{}
	argIndex := 1

	valueParts := make([]string, len(rows))
	for i, row := range rows {
		placeholders := make([]string, len(row))
		for j := range row {
			placeholders[j] = g.dialect.placeholder(argIndex)
			args = append(args, row[j])
			argIndex++
		}
		valueParts[i] = "(" + strings.Join(placeholders, ", ") + ")"
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table, strings.Join(columns, ", "), strings.Join(valueParts, ", "))
	return &Query{SQL: sql, Args: args}
}

// GenerateUpdate renders an UPDATE from an ordered assignment list.
func (g *Generator) GenerateUpdate(table string, set []Assignment, where *WhereClause) *Query {
	var args []interface{}
	argIndex := 1

	setParts := make([]string, len(set))
	for i, a := range set {
		setParts[i] = fmt.Sprintf("%s = %s", a.Column, g.dialect.placeholder(argIndex))
		args = append(args, a.Value)
		argIndex++
	}

	parts := []string{
		"UPDATE " + table,
		"SET " + strings.Join(setParts, ", "),
	}

	if !where.IsEmpty() {
		whereSQL, whereArgs := g.buildWhere(where, &argIndex)
		parts = append(parts, "WHERE "+whereSQL)
		args = append(args, whereArgs...)
	}

	return &Query{SQL: strings.Join(parts, " "), Args: args}
}

// GenerateDelete renders a DELETE. An empty WHERE clause renders a statement
// that matches no rows, so a bare Delete can never truncate a table.
func (g *Generator) GenerateDelete(table string, where *WhereClause) *Query {
	var args []interface{}
	argIndex := 1

	parts := []string{"DELETE FROM " + table}
	if !where.IsEmpty() {
		whereSQL, whereArgs := g.buildWhere(where, &argIndex)
		parts = append(parts, "WHERE "+whereSQL)
		args = append(args, whereArgs...)
	} else {
		parts = append(parts, "WHERE 1=0")
	}

	return &Query{SQL: strings.Join(parts, " "), Args: args}
}

func renderOrderBy(orderBy []OrderBy) string {
	orderParts := make([]string, len(orderBy))
	for i, ob := range orderBy {
		direction := "ASC"
		if strings.EqualFold(ob.Direction, "DESC") {
			direction = "DESC"
		}
		orderParts[i] = ob.Field + " " + direction
	}
	return strings.Join(orderParts, ", ")
}
