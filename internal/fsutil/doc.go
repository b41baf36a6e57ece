// Package fsutil replaces whole files on disk.
//
// The new contents are written next to the target, verified against their
// checksum and renamed over it, so a crash leaves either the old or the new
// file in place rather than a truncated one.
package fsutil
