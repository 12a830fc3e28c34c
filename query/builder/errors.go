package builder

import (
	"errors"
	"fmt"
)

// Error types for query building and execution.
var (
	// ErrInvalidPagination is returned when page or per-page is below 1, or
	// a page is requested without a page size.
	ErrInvalidPagination = errors.New("invalid pagination")

	// ErrNoPrimaryKey is returned when Get is used on a table without a
	// declared primary key.
	ErrNoPrimaryKey = errors.New("table has no primary key")

	// ErrNotFound is returned by First when no row matches.
	ErrNotFound = errors.New("record not found")

	// ErrNothingToExecute is returned when Exec is called on a handle with
	// no accumulated state and no previously compiled statement.
	ErrNothingToExecute = errors.New("nothing to execute")

	// ErrEmptyBatch is returned when a mutation compiles with no rows.
	ErrEmptyBatch = errors.New("empty mutation batch")
)

// ExecError wraps a statement rejected by the database together with the
// SQL and parameters that produced it.
type ExecError struct {
	Query string
	Args  []interface{}
	Cause error
}

// Error implements the error interface.
func (e *ExecError) Error() string {
	return fmt.Sprintf("execute %q args=%v: %v", e.Query, e.Args, e.Cause)
}

// Unwrap returns the underlying error.
func (e *ExecError) Unwrap() error {
	return e.Cause
}
