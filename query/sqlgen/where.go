package sqlgen

import (
	"fmt"
	"strings"
)

// buildWhere renders the conditions of a clause in order, advancing argIndex
// for every bound value.
func (g *Generator) buildWhere(where *WhereClause, argIndex *int) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	op := "AND"
	if strings.EqualFold(where.Operator, "OR") {
		op = "OR"
	}

	for _, cond := range where.Conditions {
		switch cond.Operator {
		case "=", "!=", ">", "<", ">=", "<=", "LIKE":
			conditions = append(conditions, fmt.Sprintf("%s %s %s", cond.Field, cond.Operator, g.dialect.placeholder(*argIndex)))
			args = append(args, cond.Value)
			(*argIndex)++
		case "IN", "NOT IN":
			values, ok := cond.Value.([]interface{})
			if !ok || len(values) == 0 {
				// IN over an empty set matches nothing, NOT IN matches
				// everything. Render the constant predicate rather than
				// dropping the condition.
				if cond.Operator == "NOT IN" {
					conditions = append(conditions, "1=1")
				} else {
					conditions = append(conditions, "1=0")
				}
				continue
			}
			placeholders := make([]string, len(values))
			for i := range values {
				placeholders[i] = g.dialect.placeholder(*argIndex)
				args = append(args, values[i])
				(*argIndex)++
			}
			conditions = append(conditions, fmt.Sprintf("%s %s (%s)", cond.Field, cond.Operator, strings.Join(placeholders, ", ")))
		case "IS NULL", "IS NOT NULL":
			conditions = append(conditions, fmt.Sprintf("%s %s", cond.Field, cond.Operator))
		}
	}

	return strings.Join(conditions, " "+op+" "), args
}
