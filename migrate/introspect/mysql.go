package introspect

import (
	"context"
	"database/sql"
	"fmt"
)

// MySQLIntrospector implements introspection for MySQL.
type MySQLIntrospector struct {
	db *sql.DB
}

// Introspect reads tables, columns, and primary keys from the current
// database via information_schema.
func (i *MySQLIntrospector) Introspect(ctx context.Context) (*DatabaseSchema, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name
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
		table := Table{Name: name}
		table.Columns, table.PrimaryKey, err = i.introspectColumns(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to introspect %s: %w", name, err)
		}
		schema.Tables = append(schema.Tables, table)
	}
	return schema, nil
}

func (i *MySQLIntrospector) introspectColumns(ctx context.Context, tableName string) ([]Column, []string, error) {
	query := `
		SELECT column_name, data_type, is_nullable, column_default, column_key
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		ORDER BY ordinal_position
	`
	rows, err := i.db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var columns []Column
	var pk []string
	for rows.Next() {
		var col Column
		var isNullable, columnKey string
		var defaultValue sql.NullString
		if err := rows.Scan(&col.Name, &col.Type, &isNullable, &defaultValue, &columnKey); err != nil {
			return nil, nil, err
		}
		col.Nullable = isNullable == "YES"
		if defaultValue.Valid {
			col.DefaultValue = &defaultValue.String
		}
		columns = append(columns, col)
		if columnKey == "PRI" {
			pk = append(pk, col.Name)
		}
	}
	return columns, pk, rows.Err()
}
