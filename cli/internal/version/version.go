// Package version carries the CLI build identity.
package version

import (
	"fmt"
	"runtime"
)

// Version is overridden at build time via -ldflags.
var Version = "0.1.0"

// String formats the version together with the platform it runs on.
func String() string {
	return fmt.Sprintf("connector version %s (%s/%s %s)",
		Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
}
