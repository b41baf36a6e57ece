// Package version exposes build metadata for upstream-sync.
//
// Version, Commit and BuildTime are set through -ldflags by the release
// workflow and fall back to development values for local builds.
package version
