package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the explicit configuration of a sync run.
type Config struct {
	// FeedURL is the "latest release" endpoint of the tracked project.
	FeedURL string `yaml:"feed_url"`
	// UserAgent identifies the client to the release feed.
	UserAgent string `yaml:"user_agent"`
	// ManifestPath is the package manifest to bump.
	ManifestPath string `yaml:"manifest_path"`
	// ComposePath is the compose document to bump.
	ComposePath string `yaml:"compose_path"`
	// ImageName is the image reference whose tag follows the package version.
	ImageName string `yaml:"image_name"`
	// EnvKey is the compose environment variable that carries the upstream tag.
	EnvKey string `yaml:"env_key"`
	// Timeout bounds the release feed request.
	Timeout time.Duration `yaml:"timeout"`
	// MaxBodyBytes caps the size of the release feed response.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// OutputSinks receive the key=value outputs; empty entries are skipped.
	OutputSinks []string `yaml:"output_sinks"`
	// Token, when set, is sent as an authorization header. It is never persisted.
	Token string `yaml:"-"`
}

const (
	// DefaultConfigFilename is looked up when --config is not given.
	DefaultConfigFilename = "upstream-sync.yaml"

	// DefaultFeedURL is the latest release endpoint of nimbus-eth2.
	DefaultFeedURL = "https://api.github.com/repos/status-im/nimbus-eth2/releases/latest"

	// DefaultUserAgent identifies the bot to the GitHub API.
	DefaultUserAgent = "AVADO-DNP-Nimbus-Update-Bot"

	// DefaultManifestPath is the package manifest relative to the repository root.
	DefaultManifestPath = "dappnode_package.json"

	// DefaultComposePath is the compose document relative to the repository root.
	DefaultComposePath = "build/docker-compose.yml"

	// DefaultImageName is the package image whose tag is bumped.
	DefaultImageName = "nimbus.avado.dnp.dappnode.eth"

	// DefaultEnvKey is the compose variable holding the upstream tag.
	DefaultEnvKey = "NIMBUS_VERSION"

	// DefaultTimeout bounds the release request.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodyBytes caps the release response body.
	DefaultMaxBodyBytes int64 = 1 << 20

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is used when saving a configuration file.
	DefaultFilePermissions = 0o600
)

// Environment variables read by FromEnv.
const (
	EnvToken     = "GITHUB_TOKEN"
	EnvOutput    = "GITHUB_OUTPUT"
	EnvWorkflow  = "GITHUB_ENV"
	EnvFeedURL   = "UPSTREAM_SYNC_FEED_URL"
	EnvLogLevel  = "UPSTREAM_SYNC_LOG_LEVEL"
	EnvUserAgent = "UPSTREAM_SYNC_USER_AGENT"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errFeedURLRequired is returned when the feed URL resolves to empty.
	errFeedURLRequired = errors.New("feed URL must be provided")
	// errNegativeLimit is returned for a negative timeout or body cap.
	errNegativeLimit = errors.New("limits must not be negative")
)

// Default returns a configuration with every field at its default.
func Default() *Config {
	cfg := new(Config)
	_ = Validate(cfg)

	return cfg
}

// Load reads the YAML file at path over the defaults. A missing file is only
// an error when required is true.
func Load(path string, required bool) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	cfg := new(Config)

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !required:
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration as YAML to path. The token is not written.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// LoadEnvFile adds the variables of a dotenv file to the process environment.
// Variables that are already set keep their value.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	if err := godotenv.Load(filepath.Clean(path)); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}

	return nil
}

// FromEnv applies the environment on top of cfg using lookup, which is
// os.LookupEnv in production. The CI sinks are appended in the order
// GITHUB_OUTPUT, GITHUB_ENV.
func (c *Config) FromEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvToken); ok && v != "" {
		c.Token = v
	}

	if v, ok := lookup(EnvFeedURL); ok && v != "" {
		c.FeedURL = v
	}

	if v, ok := lookup(EnvUserAgent); ok && v != "" {
		c.UserAgent = v
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}

	for _, key := range []string{EnvOutput, EnvWorkflow} {
		if v, ok := lookup(key); ok && v != "" {
			c.OutputSinks = append(c.OutputSinks, v)
		}
	}
}

// Validate fills defaults and checks the feed URL and limits.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.FeedURL == "" {
		cfg.FeedURL = DefaultFeedURL
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	if cfg.ManifestPath == "" {
		cfg.ManifestPath = DefaultManifestPath
	}

	if cfg.ComposePath == "" {
		cfg.ComposePath = DefaultComposePath
	}

	if cfg.ImageName == "" {
		cfg.ImageName = DefaultImageName
	}

	if cfg.EnvKey == "" {
		cfg.EnvKey = DefaultEnvKey
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if cfg.Timeout < 0 || cfg.MaxBodyBytes < 0 {
		return errNegativeLimit
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	feedURL, err := url.ParseRequestURI(cfg.FeedURL)
	if err != nil {
		return fmt.Errorf("invalid feed URL: %w", err)
	}

	if feedURL.Scheme != "http" && feedURL.Scheme != "https" {
		return fmt.Errorf("invalid feed URL %q: %w", cfg.FeedURL, errFeedURLRequired)
	}

	return nil
}
