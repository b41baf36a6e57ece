package compose

import (
	"strings"
)

const imageMarker = "image:"

// Rules name the two lines that are rewritten.
type Rules struct {
	// ImageName is the image reference without tag, e.g. "nimbus.avado.dnp.dappnode.eth".
	ImageName string
	// EnvKey is the variable carrying the upstream tag, e.g. "NIMBUS_VERSION".
	EnvKey string
}

// Changes counts the rewritten lines.
type Changes struct {
	ImageLines int
	EnvLines   int
}

// Rewrite returns content with the image tag set to packageVersion and the
// EnvKey value set to upstreamTag. A trailing newline is kept if and only if
// content had one, and CRLF line endings survive.
func Rewrite(content string, rules Rules, packageVersion, upstreamTag string) (string, Changes) {
	var changes Changes

	imageRef := rules.ImageName + ":"
	envMarker := rules.EnvKey + ":"

	lines := strings.Split(content, "\n")

	for i, line := range lines {
		body, cr := strings.CutSuffix(line, "\r")

		switch {
		case strings.Contains(body, imageMarker) && strings.Contains(body, imageRef):
			indent := body[:strings.Index(body, imageMarker)]
			body = indent + imageMarker + " '" + imageRef + packageVersion + "'"
			changes.ImageLines++
		case rules.EnvKey != "" && strings.Contains(body, envMarker):
			indent := body[:strings.Index(body, envMarker)]
			body = indent + envMarker + " " + upstreamTag
			changes.EnvLines++
		default:
			continue
		}

		if cr {
			body += "\r"
		}

		lines[i] = body
	}

	return strings.Join(lines, "\n"), changes
}
