package schema

import "errors"

// Error types for schema resolution.
var (
	// ErrInvalidColumn is returned when a column is not part of the table.
	ErrInvalidColumn = errors.New("invalid column")

	// ErrUnknownLocale is returned when a locale suffix is not configured.
	ErrUnknownLocale = errors.New("unknown locale")
)
