// Package sqlgen generates convergence DDL from a schema diff.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/abushkanya/connector/migrate/diff"
	"github.com/abushkanya/connector/schema"
)

// Generator renders DDL for one provider. Destructive statements (DROP
// TABLE, DROP COLUMN, type changes) are never generated.
type Generator struct {
	provider string
}

// NewGenerator creates a DDL generator for the given provider.
func NewGenerator(provider string) *Generator {
	switch provider {
	case "postgresql":
		provider = "postgres"
	}
	return &Generator{provider: provider}
}

// GenerateDDL renders the statements that converge the live schema, in a
// stable order: creates first, then column adds.
func (g *Generator) GenerateDDL(d *diff.Diff) []string {
	var statements []string
	for _, table := range d.TablesToCreate {
		statements = append(statements, g.CreateTable(table))
	}
	for _, change := range d.ColumnsToAdd {
		statements = append(statements, g.AddColumn(change.Table, change.Column))
	}
	return statements
}

// CreateTable renders a CREATE TABLE over the expanded physical columns.
func (g *Generator) CreateTable(table *schema.Table) string {
	defs := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		defs[i] = g.columnDef(col)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table.Name, strings.Join(defs, ", "))
}

// AddColumn renders an ALTER TABLE ADD COLUMN.
func (g *Generator) AddColumn(table string, col schema.PhysicalColumn) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, g.columnDef(col))
}

func (g *Generator) columnDef(col schema.PhysicalColumn) string {
	parts := []string{col.Name, g.columnType(col)}
	if col.PrimaryKey {
		parts = append(parts, "PRIMARY KEY")
	}
	if col.Unique && !col.PrimaryKey {
		parts = append(parts, "UNIQUE")
	}
	if col.NotNull && !col.PrimaryKey {
		parts = append(parts, "NOT NULL")
	}
	return strings.Join(parts, " ")
}

// columnType maps the declared type onto the provider's spelling. Serial
// columns differ per provider; everything else passes through.
func (g *Generator) columnType(col schema.PhysicalColumn) string {
	declared := strings.ToLower(col.Type)
	if declared != "serial" {
		return col.Type
	}
	switch g.provider {
	case "mysql":
		return "INT AUTO_INCREMENT"
	case "sqlite":
		return "INTEGER"
	default:
		return "SERIAL"
	}
}
