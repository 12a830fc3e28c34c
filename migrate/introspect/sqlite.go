package introspect

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLiteIntrospector implements introspection for SQLite.
type SQLiteIntrospector struct {
	db *sql.DB
}

// Introspect reads tables, columns, and primary keys via sqlite_master and
// PRAGMA table_info.
func (i *SQLiteIntrospector) Introspect(ctx context.Context) (*DatabaseSchema, error) {
	query := `
		SELECT name FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`
	rows, err := i.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	schema := &DatabaseSchema{}
	for _, name := range names {
		table, err := i.introspectTable(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to introspect %s: %w", name, err)
		}
		schema.Tables = append(schema.Tables, *table)
	}
	return schema, nil
}

func (i *SQLiteIntrospector) introspectTable(ctx context.Context, name string) (*Table, error) {
	rows, err := i.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", name))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	table := &Table{Name: name}
	for rows.Next() {
		var cid int
		var colName, colType string
		var notNull, pk int
		var defaultValue sql.NullString
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, err
		}

		col := Column{
			Name:     colName,
			Type:     colType,
			Nullable: notNull == 0 && pk == 0,
		}
		if defaultValue.Valid {
			col.DefaultValue = &defaultValue.String
		}
		table.Columns = append(table.Columns, col)
		if pk > 0 {
			table.PrimaryKey = append(table.PrimaryKey, colName)
		}
	}
	return table, rows.Err()
}
