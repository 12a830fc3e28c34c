// Package diff reconciles declared table specs against a live schema.
package diff

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abushkanya/connector/migrate/introspect"
	"github.com/abushkanya/connector/schema"
)

// ErrSchemaConflict is returned when converging would require a destructive
// change. Conflicts are reported, never applied.
var ErrSchemaConflict = errors.New("schema conflict")

// ColumnChange is one column to add to an existing table.
type ColumnChange struct {
	Table  string
	Column schema.PhysicalColumn
}

// Conflict is a declared/live mismatch that cannot be applied safely.
type Conflict struct {
	Table       string
	Column      string
	Description string
}

// Diff is the derived set of convergence actions. It is never persisted.
type Diff struct {
	TablesToCreate []*schema.Table
	ColumnsToAdd   []ColumnChange
	Conflicts      []Conflict
}

// Empty reports whether the live schema already matches the declarations.
func (d *Diff) Empty() bool {
	return len(d.TablesToCreate) == 0 && len(d.ColumnsToAdd) == 0
}

// ConflictError wraps the collected conflicts, or returns nil when none.
func (d *Diff) ConflictError() error {
	if len(d.Conflicts) == 0 {
		return nil
	}
	descriptions := make([]string, len(d.Conflicts))
	for i, c := range d.Conflicts {
		descriptions[i] = c.Description
	}
	return fmt.Errorf("%w: %s", ErrSchemaConflict, strings.Join(descriptions, "; "))
}

// Reconcile diffs the declared tables against the introspected schema.
// Missing tables become creates, missing columns become adds, and type or
// constraint mismatches become conflicts. Running Reconcile twice against a
// converged schema yields an empty diff.
func Reconcile(declared []*schema.Table, live *introspect.DatabaseSchema) *Diff {
	result := &Diff{}

	for _, table := range declared {
		liveTable, exists := live.TableByName(table.Name)
		if !exists {
			result.TablesToCreate = append(result.TablesToCreate, table)
			continue
		}
		for _, col := range table.Columns {
			liveCol, exists := liveTable.ColumnByName(col.Name)
			if !exists {
				result.ColumnsToAdd = append(result.ColumnsToAdd, ColumnChange{Table: table.Name, Column: col})
				continue
			}
			if !typesEqual(col.Type, liveCol.Type) {
				result.Conflicts = append(result.Conflicts, Conflict{
					Table:  table.Name,
					Column: col.Name,
					Description: fmt.Sprintf("column %s.%s declared %s but database has %s",
						table.Name, col.Name, col.Type, liveCol.Type),
				})
			}
		}
	}

	return result
}

// typesEqual normalizes provider spellings of the same type.
func typesEqual(declared, live string) bool {
	declared = strings.ToUpper(strings.TrimSpace(declared))
	live = strings.ToUpper(strings.TrimSpace(live))
	if declared == live {
		return true
	}

	equivalents := map[string][]string{
		"INTEGER":   {"INT", "INT4", "SERIAL"},
		"BIGINT":    {"INT8", "BIGSERIAL"},
		"VARCHAR":   {"CHARACTER VARYING", "TEXT"},
		"BOOLEAN":   {"BOOL", "TINYINT"},
		"FLOAT":     {"DOUBLE PRECISION", "FLOAT8", "REAL", "DOUBLE"},
		"DECIMAL":   {"NUMERIC"},
		"TIMESTAMP": {"TIMESTAMP WITHOUT TIME ZONE", "DATETIME"},
	}

	base := func(t string) string {
		if idx := strings.Index(t, "("); idx > 0 {
			return t[:idx]
		}
		return t
	}
	declared, live = base(declared), base(live)
	if declared == live {
		return true
	}

	group := func(t string) string {
		for key, variants := range equivalents {
			if t == key {
				return key
			}
			for _, v := range variants {
				if t == v {
					return key
				}
			}
		}
		return t
	}
	return group(declared) == group(live)
}
