// Package version holds the docalign build metadata stamped in via ldflags
// on release builds.
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the build metadata for the version command and startup
// logs.
func String() string {
	return fmt.Sprintf("docalign %s (%s, built %s)", Version, Commit, Date)
}
