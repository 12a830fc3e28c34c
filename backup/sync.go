package backup

import (
	"context"
	"fmt"

	"github.com/abushkanya/connector/query/builder"
	"github.com/abushkanya/connector/runtime/client"
	"github.com/abushkanya/connector/schema"
)

// TableSync summarizes the delta applied to one table.
type TableSync struct {
	Table    string
	Inserted int64
	Updated  int64
}

// SyncReport summarizes one sync run. A run that finds no delta performs
// zero writes, which makes re-running an interrupted sync safe.
type SyncReport struct {
	Tables       []TableSync
	FailedTables []TableFailure
}

// Inserted returns the total inserted rows across tables.
func (r *SyncReport) Inserted() int64 {
	var n int64
	for _, t := range r.Tables {
		n += t.Inserted
	}
	return n
}

// Updated returns the total updated rows across tables.
func (r *SyncReport) Updated() int64 {
	var n int64
	for _, t := range r.Tables {
		n += t.Updated
	}
	return n
}

// Sync converges the target instance toward the source, table by table,
// keyed by primary key: rows missing from the target are inserted, rows
// differing in non-key values are updated, rows present only in the target
// are left alone. Deletions are never propagated. A failing table is
// reported and does not undo previously synced tables.
func Sync(ctx context.Context, source, target *client.Client) (*SyncReport, error) {
	report := &SyncReport{}

	for _, table := range source.Tables() {
		ts, err := syncTable(ctx, source, target, table)
		if err != nil {
			report.FailedTables = append(report.FailedTables, TableFailure{Table: table.Name, Reason: err.Error()})
			continue
		}
		report.Tables = append(report.Tables, *ts)
	}
	return report, nil
}

func syncTable(ctx context.Context, source, target *client.Client, table *schema.Table) (*TableSync, error) {
	pk := table.PrimaryKey()
	if pk == "" {
		return nil, fmt.Errorf("table %s has no primary key", table.Name)
	}

	if err := ensureSchema(ctx, target, table); err != nil {
		return nil, err
	}

	sourceRows, err := rowsByKey(ctx, source, table, pk)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	targetRows, err := rowsByKey(ctx, target, table, pk)
	if err != nil {
		return nil, fmt.Errorf("read target: %w", err)
	}

	ts := &TableSync{Table: table.Name}
	var pending []map[string]interface{}

	for key, row := range sourceRows {
		existing, ok := targetRows[key]
		if !ok {
			pending = append(pending, row)
			continue
		}
		changed := diffRow(row, existing, pk)
		if len(changed) == 0 {
			continue
		}
		h := builder.New(table, target.Generator(), target)
		updated, err := h.Equal(pk, row[pk]).Update(changed).Exec(ctx)
		if err != nil {
			return nil, fmt.Errorf("update %s=%v: %w", pk, row[pk], err)
		}
		ts.Updated += updated
	}

	if len(pending) > 0 {
		h := builder.New(table, target.Generator(), target)
		for _, row := range pending {
			h.Add(row)
		}
		inserted, err := h.Exec(ctx)
		if err != nil {
			return nil, fmt.Errorf("insert delta: %w", err)
		}
		ts.Inserted = inserted
	}
	return ts, nil
}

// rowsByKey reads all rows of a table keyed by their primary key value.
func rowsByKey(ctx context.Context, c *client.Client, table *schema.Table, pk string) (map[string]map[string]interface{}, error) {
	h := builder.New(table, c.Generator(), c)
	items, err := h.All().Items(ctx)
	if err != nil {
		return nil, err
	}

	keyed := make(map[string]map[string]interface{}, len(items))
	for _, row := range items {
		keyed[normalize(row[pk])] = row
	}
	return keyed, nil
}

// diffRow returns the non-key columns whose values differ, source winning.
func diffRow(source, target map[string]interface{}, pk string) map[string]interface{} {
	changed := make(map[string]interface{})
	for column, value := range source {
		if column == pk {
			continue
		}
		if normalize(value) != normalize(target[column]) {
			changed[column] = value
		}
	}
	return changed
}

// normalize flattens driver-specific value types so rows read through
// different drivers compare equal.
func normalize(v interface{}) string {
	if v == nil {
		return "<nil>"
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprint(v)
}
