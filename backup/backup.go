package backup

import (
	"context"
	"fmt"

	"github.com/abushkanya/connector/query/builder"
	"github.com/abushkanya/connector/runtime/client"
	"github.com/abushkanya/connector/schema"
)

// Backup snapshots every registered table of the client into a dump. Rows
// are ordered by primary key where one exists, so dumps of identical content
// are identical.
func Backup(ctx context.Context, c *client.Client) (*Dump, error) {
	tables := c.Tables()
	var locales []string
	if len(tables) > 0 {
		locales = tables[0].Locales()
	}

	dump := newDump(c.Provider(), locales)
	for _, table := range tables {
		td, err := backupTable(ctx, c, table)
		if err != nil {
			return nil, fmt.Errorf("backup %s: %w", table.Name, err)
		}
		dump.Tables = append(dump.Tables, *td)
	}
	return dump, nil
}

func backupTable(ctx context.Context, c *client.Client, table *schema.Table) (*TableDump, error) {
	query := "SELECT * FROM " + table.Name
	if pk := table.PrimaryKey(); pk != "" {
		query += " ORDER BY " + pk
	}

	rows, err := c.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	items, err := builder.ScanMaps(rows)
	if err != nil {
		return nil, err
	}

	td := &TableDump{
		Name:    table.Name,
		Spec:    table.Spec(),
		Columns: columns,
		Rows:    make([][]interface{}, 0, len(items)),
	}
	for _, item := range items {
		row := make([]interface{}, len(columns))
		for i, column := range columns {
			row[i] = item[column]
		}
		td.Rows = append(td.Rows, row)
	}
	return td, nil
}
