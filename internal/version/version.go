package version

import "fmt"

var (
	// Version is the release of the sync tool itself, not of the tracked package.
	Version = "dev"
	// Commit is the short git SHA the binary was built from.
	Commit = "none"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Short returns only the release string.
func Short() string {
	return Version
}

// Full returns the release string with commit and build time.
func Full() string {
	return fmt.Sprintf("upstream-sync %s (commit %s, built %s)", Version, Commit, BuildTime)
}
