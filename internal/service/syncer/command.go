package syncer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/avado-dnp/nimbus-upstream-sync/internal/config"
	"github.com/avado-dnp/nimbus-upstream-sync/internal/domain/upstream"
	"github.com/avado-dnp/nimbus-upstream-sync/internal/logger"
	"github.com/avado-dnp/nimbus-upstream-sync/internal/output"
	"github.com/avado-dnp/nimbus-upstream-sync/internal/release"
	"github.com/avado-dnp/nimbus-upstream-sync/internal/repository/compose"
	"github.com/avado-dnp/nimbus-upstream-sync/internal/repository/manifest"
)

// RateLimitHint is logged when the release feed answers 403.
const RateLimitHint = "Rate limit exceeded or authentication required. Set GITHUB_TOKEN to raise the limit."

// errUnknownLogLevel is returned for an unsupported log level.
var errUnknownLogLevel = errors.New("unknown log level")

// Options are inputs accepted by the sync entry point. Empty fields fall
// back to the configuration file, then the environment, then defaults.
type Options struct {
	// ConfigPath is the optional settings YAML file.
	ConfigPath string
	// ConfigRequired makes a missing ConfigPath an error.
	ConfigRequired bool
	// EnvFile is an optional dotenv file loaded before the environment is read.
	EnvFile string
	// ManifestPath overrides the manifest location.
	ManifestPath string
	// ComposePath overrides the compose document location.
	ComposePath string
	// FeedURL overrides the release feed.
	FeedURL string
	// LogLevel overrides the log level.
	LogLevel string
	// DryRun computes the change without writing files.
	DryRun bool
	// LookupEnv reads the environment; nil means os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Run resolves the configuration, performs one sync and returns its result.
func Run(ctx context.Context, opts *Options) (*upstream.Result, error) {
	ctx = logger.WithName(ctx, "upstream-sync")

	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, err
	}

	level, ok := logger.ParseLogLevel(cfg.LogLevel)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownLogLevel, cfg.LogLevel)
	}

	logger.SetLevel(level)

	svc, err := newService(cfg, opts.DryRun)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Checking for upstream updates",
		"feed", cfg.FeedURL, "manifest", cfg.ManifestPath, "compose", cfg.ComposePath, "dry_run", opts.DryRun)

	result, err := svc.Sync(ctx)
	if err != nil {
		if errors.Is(err, upstream.ErrRateLimited) {
			logger.Error(ctx, RateLimitHint)
		}

		return nil, err
	}

	return result, nil
}

// resolveConfig layers defaults, file, dotenv, environment and options.
func resolveConfig(opts *Options) (*config.Config, error) {
	if err := config.LoadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(opts.ConfigPath, opts.ConfigRequired)
	if err != nil {
		return nil, err
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg.FromEnv(lookup)

	if opts.ManifestPath != "" {
		cfg.ManifestPath = opts.ManifestPath
	}

	if opts.ComposePath != "" {
		cfg.ComposePath = opts.ComposePath
	}

	if opts.FeedURL != "" {
		cfg.FeedURL = opts.FeedURL
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if err = config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newService builds the production collaborators from the configuration.
func newService(cfg *config.Config, dryRun bool) (*Service, error) {
	client, err := release.NewClient(cfg.FeedURL,
		release.WithToken(cfg.Token),
		release.WithUserAgent(cfg.UserAgent),
		release.WithTimeout(cfg.Timeout),
		release.WithMaxBodyBytes(cfg.MaxBodyBytes),
	)
	if err != nil {
		return nil, err
	}

	rules := compose.Rules{
		ImageName: cfg.ImageName,
		EnvKey:    cfg.EnvKey,
	}

	return NewService(
		client,
		manifest.NewFileRepository(cfg.ManifestPath),
		compose.NewFileRepository(cfg.ComposePath, rules),
		output.NewWriter(cfg.OutputSinks...),
		WithDryRun(dryRun),
	), nil
}
