package upstream

import "time"

// Release is the subset of a release feed entry the sync needs.
type Release struct {
	// TagName is used verbatim as the new upstream version, prefix included.
	TagName string `json:"tag_name"`
	// Name is the human title of the release.
	Name string `json:"name,omitempty"`
	// HTMLURL points at the release page.
	HTMLURL string `json:"html_url,omitempty"`
	// PublishedAt is when the release was published.
	PublishedAt time.Time `json:"published_at,omitzero"`
}

// Manifest holds the two version fields of the package manifest.
type Manifest struct {
	// Version is the package's own dotted version, e.g. "0.0.38".
	Version string
	// Upstream is the tracked upstream release tag, e.g. "v25.12.0".
	Upstream string
}

// Result describes the outcome of a sync run.
type Result struct {
	// Updated reports whether the files were (or, in a dry run, would be) rewritten.
	Updated bool
	// OldUpstream is the upstream tag recorded before the run.
	OldUpstream string
	// NewUpstream is the tag reported by the feed.
	NewUpstream string
	// OldPackageVersion is the package version recorded before the run.
	OldPackageVersion string
	// PackageVersion is the bumped package version; empty when nothing changed.
	PackageVersion string
}

// Output keys consumed by the CI workflow.
const (
	OutputUpdated        = "updated"
	OutputOldVersion     = "old_version"
	OutputNewVersion     = "new_version"
	OutputPackageVersion = "package_version"
)

// Pair is a single key=value output line.
type Pair struct {
	Key   string
	Value string
}

// Outputs is an ordered set of output pairs.
type Outputs []Pair

// Outputs derives the workflow outputs for the result.
func (r *Result) Outputs() Outputs {
	if !r.Updated {
		return Outputs{{Key: OutputUpdated, Value: "false"}}
	}

	return Outputs{
		{Key: OutputUpdated, Value: "true"},
		{Key: OutputOldVersion, Value: r.OldUpstream},
		{Key: OutputNewVersion, Value: r.NewUpstream},
		{Key: OutputPackageVersion, Value: r.PackageVersion},
	}
}

// Get returns the value stored under key.
func (o Outputs) Get(key string) (string, bool) {
	for _, p := range o {
		if p.Key == key {
			return p.Value, true
		}
	}

	return "", false
}
