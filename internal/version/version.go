package version

import (
	"fmt"
	"runtime"
)

//nolint:gochecknoglobals // Overridden via -ldflags "-X" at build time.
var (
	// Version is the semantic version of the build.
	Version = "0.1.0"
	// Commit is the short git SHA of the build, or "none".
	Commit = "none"
	// BuildTime is the UTC build timestamp, or "unknown".
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full renders the version, commit, build time and Go toolchain of binary.
func Full(binary string) string {
	return fmt.Sprintf("%s %s (commit %s, built %s, %s %s/%s)",
		binary, Version, Commit, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
