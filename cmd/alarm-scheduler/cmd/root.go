package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/activity-alarms/internal/config"
	"github.com/oshokin/activity-alarms/internal/service/scheduler"
	"github.com/oshokin/activity-alarms/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// stateFile path where scheduled alarms are persisted.
	stateFile string

	// rootCmd represents the base command for running the native scheduler daemon.
	rootCmd = &cobra.Command{
		Use:   "alarm-scheduler [listen-address]",
		Short: "Run the native alarm scheduler daemon.",
		Long: `Starts the gRPC native scheduler that fires alarms at absolute times.

Alarms are scheduled by alarm-engine and persisted to the state file (or a
SQLite database when scheduler.store is "sqlite"), so they survive restarts
of both processes. Alarms that came due while the daemon was down fire as
soon as it starts. Listen address can be provided as argument to override
config (e.g., 127.0.0.1:50071).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &scheduler.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StateFile:     stateFile,
			}

			return scheduler.Run(ctx, options)
		},
	}
)

// Execute runs the alarm-scheduler CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	attachClientCommands(rootCmd)
	attachAutostartCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "path to configuration file (default "+config.DefaultConfigFilename+" when present)")
	rootCmd.PersistentFlags().
		StringVarP(&stateFile, "state-file", "s", "", "path to persist scheduled alarms, overrides config")
}
