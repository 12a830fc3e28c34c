package builder

import (
	"context"
	"fmt"

	"github.com/abushkanya/connector/query/sqlgen"
)

// pagination derives LIMIT/OFFSET from PerPage and Page. Page defaults to 1
// when only a page size is set; a page without a page size is invalid.
func (h *TableHandle) pagination() (limit, offset *int, err error) {
	if h.perPage == nil && h.page == nil {
		return nil, nil, nil
	}
	if h.perPage == nil {
		return nil, nil, fmt.Errorf("page without per-page: %w", ErrInvalidPagination)
	}
	if *h.perPage < 1 {
		return nil, nil, fmt.Errorf("per-page %d: %w", *h.perPage, ErrInvalidPagination)
	}
	page := 1
	if h.page != nil {
		page = *h.page
	}
	if page < 1 {
		return nil, nil, fmt.Errorf("page %d: %w", page, ErrInvalidPagination)
	}
	off := (page - 1) * *h.perPage
	return h.perPage, &off, nil
}

// compile renders the accumulated state into one parameterized statement.
// Identical state always compiles to identical SQL.
func (h *TableHandle) compile() (*sqlgen.Query, error) {
	if h.err != nil {
		return nil, h.err
	}

	switch h.op {
	case opInsert:
		if len(h.batch) == 0 {
			return nil, ErrEmptyBatch
		}
		columns, rows := h.batchRows()
		return h.gen.GenerateInsert(h.table.Name, columns, rows), nil
	case opUpdate:
		if len(h.set) == 0 {
			return nil, ErrEmptyBatch
		}
		return h.gen.GenerateUpdate(h.table.Name, h.set, h.where), nil
	case opDelete:
		return h.gen.GenerateDelete(h.table.Name, h.where), nil
	case opAggregate:
		var groupBy *sqlgen.GroupBy
		if len(h.groupBy) > 0 {
			groupBy = &sqlgen.GroupBy{Fields: h.groupBy}
		}
		limit, offset, err := h.pagination()
		if err != nil {
			return nil, err
		}
		return h.gen.GenerateAggregate(h.table.Name, h.aggregates, h.where, groupBy, h.orderBy, limit, offset), nil
	default:
		limit, offset, err := h.pagination()
		if err != nil {
			return nil, err
		}
		return h.gen.GenerateSelect(h.table.Name, nil, h.where, h.orderBy, limit, offset), nil
	}
}

// reset clears the accumulation but keeps the table binding and the last
// compiled statement, so a fresh chain can start from the same handle.
func (h *TableHandle) reset() {
	h.where = sqlgen.NewWhereClause()
	h.aggregates = nil
	h.groupBy = nil
	h.orderBy = nil
	h.perPage = nil
	h.page = nil
	h.batch = nil
	h.set = nil
	h.op = opSelect
	h.err = nil
	h.state = StateExecuted
}

// mutating reports whether an operation writes.
func (op operation) mutating() bool {
	return op == opInsert || op == opUpdate || op == opDelete
}

// Items materializes the chain as a SELECT (or aggregation) immediately and
// returns the result rows keyed by column name.
func (h *TableHandle) Items(ctx context.Context) ([]map[string]interface{}, error) {
	query, err := h.compile()
	if err != nil {
		h.reset()
		return nil, err
	}
	if h.op.mutating() {
		h.reset()
		return nil, fmt.Errorf("items on a pending mutation: %w", ErrNothingToExecute)
	}

	rows, err := h.exec.QueryContext(ctx, query.SQL, query.Args...)
	if err != nil {
		h.reset()
		return nil, &ExecError{Query: query.SQL, Args: query.Args, Cause: err}
	}
	defer rows.Close()

	items, err := ScanMaps(rows)
	h.last, h.lastOp = query, h.op
	h.reset()
	if err != nil {
		return nil, err
	}
	return items, nil
}

// First returns the first matching row or ErrNotFound.
func (h *TableHandle) First(ctx context.Context) (map[string]interface{}, error) {
	one := 1
	h.perPage = &one
	items, err := h.Items(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items[0], nil
}

// Exec compiles and runs whatever the chain represents. Mutations run inside
// a transaction and report affected rows; reads report the row count.
// Calling Exec again with nothing new accumulated re-runs the previously
// compiled statement.
func (h *TableHandle) Exec(ctx context.Context) (int64, error) {
	if h.err != nil {
		err := h.err
		h.reset()
		return 0, err
	}

	query := h.last
	op := h.lastOp
	if h.state != StateEmpty && h.state != StateExecuted {
		compiled, err := h.compile()
		if err != nil {
			h.reset()
			return 0, err
		}
		query, op = compiled, h.op
	}
	if query == nil {
		return 0, ErrNothingToExecute
	}

	h.last, h.lastOp = query, op
	h.reset()

	if op.mutating() {
		return h.execMutation(ctx, query)
	}

	rows, err := h.exec.QueryContext(ctx, query.SQL, query.Args...)
	if err != nil {
		return 0, &ExecError{Query: query.SQL, Args: query.Args, Cause: err}
	}
	defer rows.Close()

	var count int64
	for rows.Next() {
		count++
	}
	return count, rows.Err()
}

// execMutation runs one statement inside a transaction so a failure leaves
// no partial writes behind.
func (h *TableHandle) execMutation(ctx context.Context, query *sqlgen.Query) (int64, error) {
	tx, err := h.exec.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	result, err := tx.ExecContext(ctx, query.SQL, query.Args...)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return 0, fmt.Errorf("rollback after %v: %w", err, rbErr)
		}
		return 0, &ExecError{Query: query.SQL, Args: query.Args, Cause: err}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}
