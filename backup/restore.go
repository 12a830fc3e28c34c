package backup

import (
	"context"
	"fmt"

	"github.com/abushkanya/connector/migrate/diff"
	"github.com/abushkanya/connector/migrate/introspect"
	migratesql "github.com/abushkanya/connector/migrate/sqlgen"
	"github.com/abushkanya/connector/query/builder"
	"github.com/abushkanya/connector/runtime/client"
	"github.com/abushkanya/connector/schema"
)

// RowFailure records one skipped row during restore.
type RowFailure struct {
	Table    string
	RowIndex int
	Reason   string
}

// TableFailure records one table whose restore step failed entirely.
type TableFailure struct {
	Table  string
	Reason string
}

// RestoreReport summarizes a restore. Individual row failures are collected
// here rather than aborting the run.
type RestoreReport struct {
	TablesRestored int
	RowsInserted   int64
	SkippedRows    []RowFailure
	FailedTables   []TableFailure
}

// Restore loads a dump into the target instance. Schema is recreated per
// table when absent; rows go in as one batch per table, falling back to
// row-by-row insertion when the batch is rejected. A failed table does not
// roll back tables restored before it.
func Restore(ctx context.Context, target *client.Client, dump *Dump) (*RestoreReport, error) {
	report := &RestoreReport{}

	for _, td := range dump.Tables {
		table, err := schema.NewTable(td.Spec, dump.Locales)
		if err != nil {
			report.FailedTables = append(report.FailedTables, TableFailure{Table: td.Name, Reason: err.Error()})
			continue
		}
		if err := ensureSchema(ctx, target, table); err != nil {
			report.FailedTables = append(report.FailedTables, TableFailure{Table: td.Name, Reason: err.Error()})
			continue
		}

		inserted, skipped := restoreRows(ctx, target, table, &td)
		report.TablesRestored++
		report.RowsInserted += inserted
		report.SkippedRows = append(report.SkippedRows, skipped...)
	}
	return report, nil
}

// ensureSchema converges the target schema for one table.
func ensureSchema(ctx context.Context, target *client.Client, table *schema.Table) error {
	introspector, err := introspect.NewIntrospector(target.DB(), target.Provider())
	if err != nil {
		return err
	}
	live, err := introspector.Introspect(ctx)
	if err != nil {
		return fmt.Errorf("introspect target: %w", err)
	}

	d := diff.Reconcile([]*schema.Table{table}, live)
	gen := migratesql.NewGenerator(target.Provider())
	for _, stmt := range gen.GenerateDDL(d) {
		if _, err := target.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply %q: %w", stmt, err)
		}
	}
	return nil
}

// restoreRows bulk-inserts a table's rows, then retries row-by-row when the
// batch fails so one bad row does not sink the table.
func restoreRows(ctx context.Context, target *client.Client, table *schema.Table, td *TableDump) (int64, []RowFailure) {
	if len(td.Rows) == 0 {
		return 0, nil
	}

	h := builder.New(table, target.Generator(), target)
	for _, row := range td.Rows {
		h.Add(td.rowMap(row))
	}
	if inserted, err := h.Exec(ctx); err == nil {
		return inserted, nil
	}

	var inserted int64
	var skipped []RowFailure
	for i, row := range td.Rows {
		h := builder.New(table, target.Generator(), target)
		n, err := h.Add(td.rowMap(row)).Exec(ctx)
		if err != nil {
			skipped = append(skipped, RowFailure{Table: td.Name, RowIndex: i, Reason: err.Error()})
			continue
		}
		inserted += n
	}
	return inserted, skipped
}
