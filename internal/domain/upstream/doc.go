// Package upstream contains the transient values of a sync run.
//
// It defines Release (what the feed reports), Manifest (what the package
// records), Result and Outputs (what the run reports back), the patch bump
// applied to the package version, and the typed failures shared by the
// release client and the sync service.
package upstream
