package sqlgen

import (
	"fmt"
	"strings"
)

// AggregateFunction is one aggregation term with its output alias.
type AggregateFunction struct {
	Function string // COUNT, SUM, AVG, MIN, MAX
	Field    string
	Alias    string
}

// GroupBy lists the grouping columns.
type GroupBy struct {
	Fields []string
}

// GenerateAggregate renders an aggregation SELECT. Grouping columns are
// selected ahead of the aggregate terms and repeated in the GROUP BY clause;
// ordering and pagination render after it, in the same form as plain SELECTs.
func (g *Generator) GenerateAggregate(table string, aggregates []AggregateFunction, where *WhereClause, groupBy *GroupBy, orderBy []OrderBy, limit, offset *int) *Query {
	var args []interface{}
	argIndex := 1

	var selectParts []string
	if groupBy != nil {
		selectParts = append(selectParts, groupBy.Fields...)
	}
	for _, agg := range aggregates {
		alias := agg.Alias
		if alias == "" {
			alias = defaultAlias(agg)
		}
		selectParts = append(selectParts, fmt.Sprintf("%s(%s) AS %s", agg.Function, agg.Field, alias))
	}

	parts := []string{
		"SELECT " + strings.Join(selectParts, ", "),
		"FROM " + table,
	}

	if !where.IsEmpty() {
		whereSQL, whereArgs := g.buildWhere(where, &argIndex)
		parts = append(parts, "WHERE "+whereSQL)
		args = append(args, whereArgs...)
	}

	if groupBy != nil && len(groupBy.Fields) > 0 {
		parts = append(parts, "GROUP BY "+strings.Join(groupBy.Fields, ", "))
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

// defaultAlias derives a stable alias like count_id or sum_salary.
func defaultAlias(agg AggregateFunction) string {
	field := agg.Field
	if field == "*" {
		field = "all"
	}
	return strings.ToLower(agg.Function) + "_" + field
}
