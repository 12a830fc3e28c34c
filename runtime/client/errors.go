package client

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"
)

// Error types for connection and statement execution.
var (
	// ErrConnectionFailed is returned when the database is unreachable.
	ErrConnectionFailed = errors.New("database connection failed")

	// ErrUniqueConstraint is returned when a unique constraint is violated.
	ErrUniqueConstraint = errors.New("unique constraint violation")

	// ErrForeignKeyConstraint is returned when a foreign key constraint is violated.
	ErrForeignKeyConstraint = errors.New("foreign key constraint violation")

	// ErrNullConstraint is returned when a not-null constraint is violated.
	ErrNullConstraint = errors.New("null constraint violation")

	// ErrTimeout is returned when an operation times out.
	ErrTimeout = errors.New("operation timeout")

	// ErrCanceled is returned when an operation is canceled.
	ErrCanceled = errors.New("operation canceled")

	// ErrUnknownTable is returned when a table name is not registered.
	ErrUnknownTable = errors.New("unknown table")
)

// ClassifyError maps a driver error onto the package sentinels. Unrecognized
// errors come back unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ErrCanceled
	}
	if errors.Is(err, driver.ErrBadConn) {
		return ErrConnectionFailed
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "bad connection"),
		strings.Contains(msg, "no such host"):
		return ErrConnectionFailed
	case strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "duplicate entry"):
		return ErrUniqueConstraint
	case strings.Contains(msg, "foreign key constraint"):
		return ErrForeignKeyConstraint
	case strings.Contains(msg, "not null constraint"),
		strings.Contains(msg, "null value in column"):
		return ErrNullConstraint
	}
	return err
}
