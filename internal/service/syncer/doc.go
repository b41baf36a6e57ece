// Package syncer compares the recorded upstream version with the latest
// release and, when they differ, bumps the package version, rewrites the
// manifest and the compose document, and reports the change to the CI sinks.
package syncer
