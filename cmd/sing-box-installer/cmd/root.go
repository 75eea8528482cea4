package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lurixo/reF1nd-releases/internal/logger"
	"github.com/lurixo/reF1nd-releases/internal/service/installer"
	"github.com/lurixo/reF1nd-releases/internal/version"
)

var (
	// configPath to the optional configuration YAML file.
	configPath string

	// pinnedVersion skips remote latest-resolution when set.
	pinnedVersion string

	// logLevel selects the logging verbosity.
	logLevel string

	// rootCmd represents the base command for installing the release binary.
	rootCmd = &cobra.Command{
		Use:   "sing-box-installer",
		Short: "Download and install the reF1nd sing-box build for this host",
		Long: "Resolve the requested release version (latest when not pinned), download the " +
			"matching binary for this host's platform, install it with a single backup " +
			"generation, register the systemd unit and verify the result.",
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &installer.Options{
				ConfigPath:    configPath,
				PinnedVersion: pinnedVersion,
			}

			return installer.Run(ctx, options)
		},
	}
)

// Execute runs the installer CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to configuration file")
	rootCmd.Flags().StringVar(&pinnedVersion, "version", "",
		"pin the release version to install, skipping remote resolution")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "logging level (debug, info, warn, error)")
}
