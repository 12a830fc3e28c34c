// Package builder implements the fluent per-table query builder.
package builder

import (
	"context"
	"database/sql"
	"strings"

	"github.com/abushkanya/connector/query/sqlgen"
	"github.com/abushkanya/connector/schema"
)

// Executor is the capability the builder needs from the database layer.
// *sql.DB satisfies it directly.
type Executor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// State tracks where a chain is in its lifecycle.
type State int

const (
	// StateEmpty is a fresh handle with nothing accumulated.
	StateEmpty State = iota
	// StateFiltering means predicates have been added.
	StateFiltering
	// StateReading means a read terminal has been requested.
	StateReading
	// StateAggregating means aggregation terms are present.
	StateAggregating
	// StateMutating means a pending insert, update, or delete.
	StateMutating
	// StateExecuted means a terminal ran and the accumulation was cleared.
	StateExecuted
)

type operation int

const (
	opSelect operation = iota
	opAggregate
	opInsert
	opUpdate
	opDelete
)

// TableHandle accumulates one chain of calls against one table. It is a
// single-owner builder: not safe for concurrent chaining.
type TableHandle struct {
	table *schema.Table
	gen   *sqlgen.Generator
	exec  Executor

	state      State
	op         operation
	where      *sqlgen.WhereClause
	aggregates []sqlgen.AggregateFunction
	groupBy    []string
	orderBy    []sqlgen.OrderBy
	perPage    *int
	page       *int
	batch      []map[string]interface{}
	set        []sqlgen.Assignment

	err    error
	last   *sqlgen.Query
	lastOp operation
}

// New creates a handle bound to one table.
func New(table *schema.Table, gen *sqlgen.Generator, exec Executor) *TableHandle {
	return &TableHandle{
		table: table,
		gen:   gen,
		exec:  exec,
		where: sqlgen.NewWhereClause(),
	}
}

// Table returns the schema this handle is bound to.
func (h *TableHandle) Table() *schema.Table {
	return h.table
}

// State returns the current chain state.
func (h *TableHandle) CurrentState() State {
	return h.state
}

// Err returns the first error recorded during chaining, if any.
func (h *TableHandle) Err() error {
	return h.err
}

// fail records the first chain error; later terminals surface it.
func (h *TableHandle) fail(err error) *TableHandle {
	if h.err == nil {
		h.err = err
	}
	return h
}

// condition resolves the column and appends one predicate in call order.
func (h *TableHandle) condition(column, operator string, value interface{}) *TableHandle {
	physical, err := h.table.ResolveColumn(column)
	if err != nil {
		return h.fail(err)
	}
	h.where.AddCondition(sqlgen.Condition{Field: physical, Operator: operator, Value: value})
	if h.state == StateEmpty || h.state == StateExecuted {
		h.state = StateFiltering
	}
	return h
}

// Equal adds an equality predicate.
func (h *TableHandle) Equal(column string, value interface{}) *TableHandle {
	return h.condition(column, "=", value)
}

// NotEqual adds a not-equals predicate.
func (h *TableHandle) NotEqual(column string, value interface{}) *TableHandle {
	return h.condition(column, "!=", value)
}

// Like adds a LIKE predicate. The value is wrapped in wildcards unless the
// caller already supplied them.
func (h *TableHandle) Like(column string, value string) *TableHandle {
	if !strings.Contains(value, "%") {
		value = "%" + value + "%"
	}
	return h.condition(column, "LIKE", value)
}

// More adds a greater-than predicate.
func (h *TableHandle) More(column string, value interface{}) *TableHandle {
	return h.condition(column, ">", value)
}

// Less adds a less-than predicate.
func (h *TableHandle) Less(column string, value interface{}) *TableHandle {
	return h.condition(column, "<", value)
}

// MoreOrEqual adds a greater-or-equal predicate.
func (h *TableHandle) MoreOrEqual(column string, value interface{}) *TableHandle {
	return h.condition(column, ">=", value)
}

// LessOrEqual adds a less-or-equal predicate.
func (h *TableHandle) LessOrEqual(column string, value interface{}) *TableHandle {
	return h.condition(column, "<=", value)
}

// In adds an IN predicate over the given values.
func (h *TableHandle) In(column string, values ...interface{}) *TableHandle {
	return h.condition(column, "IN", values)
}

// NotIn adds a NOT IN predicate over the given values.
func (h *TableHandle) NotIn(column string, values ...interface{}) *TableHandle {
	return h.condition(column, "NOT IN", values)
}

// IsNull adds an IS NULL predicate.
func (h *TableHandle) IsNull(column string) *TableHandle {
	return h.condition(column, "IS NULL", nil)
}

// IsNotNull adds an IS NOT NULL predicate.
func (h *TableHandle) IsNotNull(column string) *TableHandle {
	return h.condition(column, "IS NOT NULL", nil)
}

// Get is sugar for an equality predicate on the primary key column.
func (h *TableHandle) Get(id interface{}) *TableHandle {
	pk := h.table.PrimaryKey()
	if pk == "" {
		return h.fail(ErrNoPrimaryKey)
	}
	return h.condition(pk, "=", id)
}

// All marks the chain as a plain read; it exists so an unfiltered select
// reads naturally at call sites.
func (h *TableHandle) All() *TableHandle {
	if h.state == StateEmpty || h.state == StateExecuted {
		h.state = StateReading
	}
	return h
}

// OrderBy appends one ordering term.
func (h *TableHandle) OrderBy(column, direction string) *TableHandle {
	physical, err := h.table.ResolveColumn(column)
	if err != nil {
		return h.fail(err)
	}
	h.orderBy = append(h.orderBy, sqlgen.OrderBy{Field: physical, Direction: direction})
	return h
}

// PerPage sets the page size.
func (h *TableHandle) PerPage(n int) *TableHandle {
	h.perPage = &n
	return h
}

// Page selects the 1-based page.
func (h *TableHandle) Page(p int) *TableHandle {
	h.page = &p
	return h
}

// GroupBy appends grouping columns and switches the chain to aggregation.
func (h *TableHandle) GroupBy(columns ...string) *TableHandle {
	for _, column := range columns {
		physical, err := h.table.ResolveColumn(column)
		if err != nil {
			return h.fail(err)
		}
		h.groupBy = append(h.groupBy, physical)
	}
	h.op = opAggregate
	h.state = StateAggregating
	return h
}

// Aggregate appends one aggregation term with an explicit alias.
func (h *TableHandle) Aggregate(function, column, alias string) *TableHandle {
	field := column
	if column != "*" {
		physical, err := h.table.ResolveColumn(column)
		if err != nil {
			return h.fail(err)
		}
		field = physical
	}
	h.aggregates = append(h.aggregates, sqlgen.AggregateFunction{
		Function: function,
		Field:    field,
		Alias:    alias,
	})
	h.op = opAggregate
	h.state = StateAggregating
	return h
}

// Count adds a COUNT aggregation with a derived alias.
func (h *TableHandle) Count(column string) *TableHandle {
	return h.Aggregate("COUNT", column, "")
}

// Sum adds a SUM aggregation.
func (h *TableHandle) Sum(column string) *TableHandle {
	return h.Aggregate("SUM", column, "")
}

// Avg adds an AVG aggregation.
func (h *TableHandle) Avg(column string) *TableHandle {
	return h.Aggregate("AVG", column, "")
}

// Min adds a MIN aggregation.
func (h *TableHandle) Min(column string) *TableHandle {
	return h.Aggregate("MIN", column, "")
}

// Max adds a MAX aggregation.
func (h *TableHandle) Max(column string) *TableHandle {
	return h.Aggregate("MAX", column, "")
}
