// Package release queries a git forge's "latest release" endpoint for the tag
// of the newest published release of the tracked project.
package release
