package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRateLimited is matched by a NetworkError carrying HTTP 403.
	ErrRateLimited = errors.New("rate limit exceeded or authentication required")
	// ErrInvalidVersion is matched by every FormatError.
	ErrInvalidVersion = errors.New("invalid version format")
)

// NetworkError reports a failed release feed request: transport failure,
// non-2xx status or an undecodable body.
type NetworkError struct {
	// URL is the requested feed URL.
	URL string
	// StatusCode is the HTTP status, zero when no response was received.
	StatusCode int
	// Status is the status line text, e.g. "403 Forbidden".
	Status string
	// Err is the underlying cause, if any.
	Err error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("fetch latest release from %s: %s: %v", e.URL, e.Status, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch latest release from %s: HTTP %s", e.URL, e.Status)
	default:
		return fmt.Sprintf("fetch latest release from %s: %v", e.URL, e.Err)
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrRateLimited) match 403 responses.
func (e *NetworkError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == http.StatusForbidden
}

// FormatError reports a version string that cannot be bumped.
type FormatError struct {
	// Version is the offending input.
	Version string
	// Reason says what is wrong with it.
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrInvalidVersion, e.Version, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidVersion) match any FormatError.
func (e *FormatError) Is(target error) bool {
	return target == ErrInvalidVersion
}
