package introspect

import "errors"

// ErrUnsupportedProvider is returned for providers without an introspector.
var ErrUnsupportedProvider = errors.New("unsupported database provider")
