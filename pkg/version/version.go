// Package version provides build version information.
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the semantic version (set by build flags)
	Version = "dev"

	// GitCommit is the git commit hash (set by build flags)
	GitCommit = "unknown"

	// BuildDate is the build timestamp (set by build flags)
	BuildDate = "unknown"

	// GoVersion is the Go version used to build
	GoVersion = runtime.Version()
)

// Info returns the multi-line version report printed by 'futurescope version'.
func Info() string {
	return fmt.Sprintf("futurescope version %s\nGit commit: %s\nBuild date: %s\nGo version: %s\n",
		Version, GitCommit, BuildDate, GoVersion)
}
