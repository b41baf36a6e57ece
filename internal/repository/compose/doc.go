// Package compose bumps the image tag and the upstream version variable of a
// docker-compose file.
//
// The file is treated as text: only the image line and the version variable
// line are rewritten, with their indentation kept, and every other byte is
// copied through. The result is then parsed as YAML to confirm the services
// carry the new values.
package compose
