package syncer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avado-dnp/nimbus-upstream-sync/internal/domain/upstream"
)

type fakeReleases struct {
	release *upstream.Release
	err     error
}

func (f *fakeReleases) Latest(context.Context) (*upstream.Release, error) {
	return f.release, f.err
}

type fakeManifest struct {
	current *upstream.Manifest
	saved   *upstream.Manifest
	saveErr error
}

func (f *fakeManifest) Load(context.Context) (*upstream.Manifest, error) {
	return f.current, nil
}

func (f *fakeManifest) Save(_ context.Context, m *upstream.Manifest) error {
	if f.saveErr != nil {
		return f.saveErr
	}

	f.saved = m

	return nil
}

type fakeCompose struct {
	planned []string
	updated []string
	err     error
}

func (f *fakeCompose) Plan(_ context.Context, packageVersion, upstreamTag string) ([]byte, error) {
	f.planned = append(f.planned, packageVersion, upstreamTag)
	return nil, f.err
}

func (f *fakeCompose) Update(_ context.Context, packageVersion, upstreamTag string) error {
	if f.err != nil {
		return f.err
	}

	f.updated = append(f.updated, packageVersion, upstreamTag)

	return nil
}

type fakeOutputs struct {
	written upstream.Outputs
}

func (f *fakeOutputs) Write(_ context.Context, outputs upstream.Outputs) error {
	f.written = append(f.written, outputs...)
	return nil
}

// TestSync_UpToDate verifies nothing is written and only updated=false is emitted.
func TestSync_UpToDate(t *testing.T) {
	t.Parallel()

	m := &fakeManifest{current: &upstream.Manifest{Version: "0.0.38", Upstream: "v25.12.0"}}
	c := &fakeCompose{}
	o := &fakeOutputs{}

	svc := NewService(&fakeReleases{release: &upstream.Release{TagName: "v25.12.0"}}, m, c, o)

	result, err := svc.Sync(context.Background())
	require.NoError(t, err)
	require.False(t, result.Updated)
	require.Nil(t, m.saved)
	require.Empty(t, c.updated)
	require.Empty(t, c.planned)
	require.Equal(t, upstream.Outputs{{Key: upstream.OutputUpdated, Value: "false"}}, o.written)
}

// TestSync_Updates checks the documented example end to end through the collaborators.
func TestSync_Updates(t *testing.T) {
	t.Parallel()

	m := &fakeManifest{current: &upstream.Manifest{Version: "0.0.38", Upstream: "v25.11.0"}}
	c := &fakeCompose{}
	o := &fakeOutputs{}

	svc := NewService(&fakeReleases{release: &upstream.Release{TagName: "v25.12.0"}}, m, c, o)

	result, err := svc.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, &upstream.Result{
		Updated:           true,
		OldUpstream:       "v25.11.0",
		NewUpstream:       "v25.12.0",
		OldPackageVersion: "0.0.38",
		PackageVersion:    "0.0.39",
	}, result)

	require.Equal(t, &upstream.Manifest{Version: "0.0.39", Upstream: "v25.12.0"}, m.saved)
	require.Equal(t, []string{"0.0.39", "v25.12.0"}, c.updated)
	require.Equal(t, upstream.Outputs{
		{Key: upstream.OutputUpdated, Value: "true"},
		{Key: upstream.OutputOldVersion, Value: "v25.11.0"},
		{Key: upstream.OutputNewVersion, Value: "v25.12.0"},
		{Key: upstream.OutputPackageVersion, Value: "0.0.39"},
	}, o.written)
}

// TestSync_CaseSensitiveAndDowngrade ensures any textual difference triggers an update.
func TestSync_CaseSensitiveAndDowngrade(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct{ recorded, latest string }{
		{"v25.12.0", "V25.12.0"},
		{"v25.12.0", "v25.11.0"},
		{"v25.12.0", ""},
		{"nightly", "stable"},
	} {
		m := &fakeManifest{current: &upstream.Manifest{Version: "1.2.3", Upstream: tc.recorded}}
		svc := NewService(&fakeReleases{release: &upstream.Release{TagName: tc.latest}}, m, &fakeCompose{}, &fakeOutputs{})

		result, err := svc.Sync(context.Background())
		require.NoError(t, err, tc)
		require.True(t, result.Updated, tc)
		require.Equal(t, "1.2.4", m.saved.Version, tc)
		require.Equal(t, tc.latest, m.saved.Upstream, tc)
	}
}

// TestSync_InvalidVersionWritesNothing verifies a malformed package version aborts before any write.
func TestSync_InvalidVersionWritesNothing(t *testing.T) {
	t.Parallel()

	m := &fakeManifest{current: &upstream.Manifest{Version: "0.38", Upstream: "v25.11.0"}}
	c := &fakeCompose{}
	o := &fakeOutputs{}

	svc := NewService(&fakeReleases{release: &upstream.Release{TagName: "v25.12.0"}}, m, c, o)

	result, err := svc.Sync(context.Background())
	require.ErrorIs(t, err, upstream.ErrInvalidVersion)
	require.Nil(t, result)
	require.Nil(t, m.saved)
	require.Empty(t, c.updated)
	require.Empty(t, o.written)
}

// TestSync_FetchFailure ensures feed errors propagate untouched and nothing is written.
func TestSync_FetchFailure(t *testing.T) {
	t.Parallel()

	feedErr := &upstream.NetworkError{URL: "https://example.test", StatusCode: 403, Status: "403 Forbidden"}
	m := &fakeManifest{current: &upstream.Manifest{Version: "0.0.38", Upstream: "v25.11.0"}}
	o := &fakeOutputs{}

	svc := NewService(&fakeReleases{err: feedErr}, m, &fakeCompose{}, o)

	_, err := svc.Sync(context.Background())
	require.ErrorIs(t, err, upstream.ErrRateLimited)
	require.Nil(t, m.saved)
	require.Empty(t, o.written)
}

// TestSync_DryRun checks that a dry run plans the compose rewrite but saves nothing.
func TestSync_DryRun(t *testing.T) {
	t.Parallel()

	m := &fakeManifest{current: &upstream.Manifest{Version: "0.0.38", Upstream: "v25.11.0"}}
	c := &fakeCompose{}
	o := &fakeOutputs{}

	svc := NewService(&fakeReleases{release: &upstream.Release{TagName: "v25.12.0"}}, m, c, o, WithDryRun(true))

	result, err := svc.Sync(context.Background())
	require.NoError(t, err)
	require.True(t, result.Updated)
	require.Nil(t, m.saved)
	require.Empty(t, c.updated)
	require.Equal(t, []string{"0.0.39", "v25.12.0"}, c.planned)

	value, ok := o.written.Get(upstream.OutputPackageVersion)
	require.True(t, ok)
	require.Equal(t, "0.0.39", value)
}

// TestSync_ComposeFailure verifies a compose error after the manifest write is reported.
func TestSync_ComposeFailure(t *testing.T) {
	t.Parallel()

	composeErr := errors.New("disk full")
	m := &fakeManifest{current: &upstream.Manifest{Version: "0.0.38", Upstream: "v25.11.0"}}
	o := &fakeOutputs{}

	svc := NewService(&fakeReleases{release: &upstream.Release{TagName: "v25.12.0"}}, m, &fakeCompose{err: composeErr}, o)

	_, err := svc.Sync(context.Background())
	require.ErrorIs(t, err, composeErr)
	require.NotNil(t, m.saved)
	require.Empty(t, o.written)
}
