package upstream

import (
	"math"
	"strconv"
	"strings"
)

// versionComponents is the number of dot-separated parts of a package version.
const versionComponents = 3

// IncrementPatch bumps the last component of a three-part dotted version.
// The first two components are copied as-is and are not required to be numeric.
func IncrementPatch(version string) (string, error) {
	parts := strings.Split(version, ".")
	if len(parts) != versionComponents {
		return "", &FormatError{
			Version: version,
			Reason:  "expected " + strconv.Itoa(versionComponents) + " dot-separated components, got " + strconv.Itoa(len(parts)),
		}
	}

	patchText := strings.TrimSpace(parts[versionComponents-1])

	patch, err := strconv.ParseUint(patchText, 10, 64)
	if err != nil {
		return "", &FormatError{
			Version: version,
			Reason:  "patch component " + strconv.Quote(parts[versionComponents-1]) + " is not a non-negative integer",
		}
	}

	if patch == math.MaxUint64 {
		return "", &FormatError{Version: version, Reason: "patch component overflows"}
	}

	parts[versionComponents-1] = strconv.FormatUint(patch+1, 10)

	return strings.Join(parts, "."), nil
}
