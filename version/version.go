// Package version holds build metadata injected at link time.
package version

import "runtime"

// These are set via -ldflags at build time.
var (
	// GitRelease is the release tag (e.g., v0.3.0) or "dev".
	GitRelease = "dev"

	// GitCommit is the short commit hash of the build.
	GitCommit = "unknown"

	// GitCommitDate is the commit date of the build.
	GitCommitDate = "unknown"
)

// GoInfo reports the Go toolchain used for the build.
var GoInfo = runtime.Version()
