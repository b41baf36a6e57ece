package syncer

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/avado-dnp/nimbus-upstream-sync/internal/domain/upstream"
	"github.com/avado-dnp/nimbus-upstream-sync/internal/logger"
)

// ReleaseSource reports the latest upstream release.
type ReleaseSource interface {
	Latest(ctx context.Context) (*upstream.Release, error)
}

// ManifestStore reads and writes the package manifest.
type ManifestStore interface {
	Load(ctx context.Context) (*upstream.Manifest, error)
	Save(ctx context.Context, m *upstream.Manifest) error
}

// ComposeStore rewrites the compose document.
type ComposeStore interface {
	Plan(ctx context.Context, packageVersion, upstreamTag string) ([]byte, error)
	Update(ctx context.Context, packageVersion, upstreamTag string) error
}

// OutputSink receives the workflow outputs.
type OutputSink interface {
	Write(ctx context.Context, outputs upstream.Outputs) error
}

// Service runs a single synchronization.
type Service struct {
	releases ReleaseSource
	manifest ManifestStore
	compose  ComposeStore
	outputs  OutputSink
	// dryRun computes and reports the change without writing files.
	dryRun bool
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithDryRun leaves both files untouched while still emitting outputs.
func WithDryRun(dryRun bool) ServiceOption {
	return func(s *Service) {
		s.dryRun = dryRun
	}
}

// NewService wires a service from its collaborators.
func NewService(releases ReleaseSource, manifest ManifestStore, compose ComposeStore, outputs OutputSink, opts ...ServiceOption) *Service {
	s := &Service{
		releases: releases,
		manifest: manifest,
		compose:  compose,
		outputs:  outputs,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Sync performs the synchronization and emits its outputs. Files are only
// written once the new package version has been computed, so a malformed
// version never leaves a file modified.
func (s *Service) Sync(ctx context.Context) (*upstream.Result, error) {
	current, err := s.manifest.Load(ctx)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Current versions", "upstream", current.Upstream, "package", current.Version)

	latest, err := s.releases.Latest(ctx)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Latest upstream release", "tag", latest.TagName)

	result := &upstream.Result{
		OldUpstream:       current.Upstream,
		NewUpstream:       latest.TagName,
		OldPackageVersion: current.Version,
	}

	if latest.TagName == current.Upstream {
		logger.Info(ctx, "Already up to date")
		return result, s.emit(ctx, result)
	}

	logDirection(ctx, current.Upstream, latest.TagName)

	result.PackageVersion, err = upstream.IncrementPatch(current.Version)
	if err != nil {
		return nil, err
	}

	result.Updated = true

	logger.InfoKV(ctx, "New package version", "version", result.PackageVersion)

	if err = s.apply(ctx, result); err != nil {
		return nil, err
	}

	return result, s.emit(ctx, result)
}

// apply writes the manifest and then the compose document.
func (s *Service) apply(ctx context.Context, result *upstream.Result) error {
	if s.dryRun {
		if _, err := s.compose.Plan(ctx, result.PackageVersion, result.NewUpstream); err != nil {
			return err
		}

		logger.Info(ctx, "Dry run, leaving files untouched")

		return nil
	}

	logger.Info(ctx, "Updating manifest")

	updated := &upstream.Manifest{
		Version:  result.PackageVersion,
		Upstream: result.NewUpstream,
	}
	if err := s.manifest.Save(ctx, updated); err != nil {
		return err
	}

	logger.Info(ctx, "Updating compose document")

	if err := s.compose.Update(ctx, result.PackageVersion, result.NewUpstream); err != nil {
		return fmt.Errorf("manifest already updated: %w", err)
	}

	logger.Info(ctx, "Update complete")

	return nil
}

func (s *Service) emit(ctx context.Context, result *upstream.Result) error {
	if err := s.outputs.Write(ctx, result.Outputs()); err != nil {
		return fmt.Errorf("emit outputs: %w", err)
	}

	return nil
}

// logDirection reports whether the new tag is a semantic upgrade. It is
// informational only: any difference in tags triggers an update.
func logDirection(ctx context.Context, oldTag, newTag string) {
	oldVersion, oldErr := semver.NewVersion(oldTag)
	newVersion, newErr := semver.NewVersion(newTag)

	switch {
	case oldErr != nil || newErr != nil:
		logger.InfoKV(ctx, "New version available", "old", oldTag, "new", newTag, "semver", false)
	case newVersion.GreaterThan(oldVersion):
		logger.InfoKV(ctx, "New version available", "old", oldTag, "new", newTag)
	case newVersion.LessThan(oldVersion):
		logger.WarnKV(ctx, "Latest release is older than the recorded upstream version", "old", oldTag, "new", newTag)
	default:
		logger.WarnKV(ctx, "Tags differ but denote the same version", "old", oldTag, "new", newTag)
	}
}
