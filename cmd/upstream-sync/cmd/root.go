package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/avado-dnp/nimbus-upstream-sync/internal/config"
	"github.com/avado-dnp/nimbus-upstream-sync/internal/logger"
	"github.com/avado-dnp/nimbus-upstream-sync/internal/service/syncer"
	"github.com/avado-dnp/nimbus-upstream-sync/internal/version"
)

// NewRootCommand builds the upstream-sync command. Flags left empty fall back
// to the configuration file, the environment and the defaults.
func NewRootCommand() *cobra.Command {
	opts := new(syncer.Options)

	rootCmd := &cobra.Command{
		Use:   "upstream-sync",
		Short: "Bump the package to the latest upstream release.",
		Long: `Checks the upstream release feed for a new tag. When the tag differs from the
"upstream" field of the package manifest, the package version is bumped by one
patch level and both the manifest and the compose file are rewritten.

The result is appended as key=value lines to the files named by GITHUB_OUTPUT
and GITHUB_ENV when they are set. GITHUB_TOKEN, when set, authenticates the
feed request.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			opts.ConfigRequired = cmd.Flags().Changed("config")

			_, err := syncer.Run(ctx, opts)

			return err
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVar(&opts.EnvFile, "env-file", "", "dotenv file loaded before reading the environment")
	flags.StringVarP(&opts.ManifestPath, "manifest", "m", "", "path to dappnode_package.json")
	flags.StringVarP(&opts.ComposePath, "compose", "f", "", "path to the docker-compose file")
	flags.StringVar(&opts.FeedURL, "feed-url", "", "latest release endpoint")
	flags.StringVarP(&opts.LogLevel, "log-level", "l", "", "log level: debug, info, warn, error")
	flags.BoolVarP(&opts.DryRun, "dry-run", "n", false, "report the change without writing files")

	version.AttachCobraVersionCommand(rootCmd)

	return rootCmd
}

// Execute runs upstream-sync and exits with status 1 on any error.
func Execute() {
	ctx := context.Background()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		logger.ErrorKV(ctx, "Sync failed", "error", err)
		logger.Sync()
		os.Exit(1)
	}

	logger.Sync()
}
