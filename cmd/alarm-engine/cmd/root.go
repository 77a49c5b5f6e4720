package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/activity-alarms/internal/config"
	"github.com/oshokin/activity-alarms/internal/service/engine"
	"github.com/oshokin/activity-alarms/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// schedulerAddress overrides the native scheduler daemon address.
	schedulerAddress string
	// force lets init overwrite existing files.
	force bool

	// rootCmd represents the base command for running the alarm engine.
	rootCmd = &cobra.Command{
		Use:   "alarm-engine [activities-file]",
		Short: "Schedule activity alarms and ring them on this terminal.",
		Long: `Watches the activities file and arms an alarm for every future alarm activity.

Alarms are delegated to the native scheduler daemon when it runs on this host
and native delegation is enabled, otherwise in-process timers are used within
the look-ahead horizon. When an alarm fires it is shown here until you type
"snooze" (rings again after the snooze interval) or "stop".
Type "status" to list the tracked schedules and "quit" to exit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use activities file argument if provided, otherwise rely on config.
			var activitiesFile string
			if len(args) > 0 {
				activitiesFile = args[0]
			}

			return engine.Run(ctx, &engine.Options{
				ConfigPath:       configPath,
				ActivitiesFile:   activitiesFile,
				SchedulerAddress: schedulerAddress,
				Input:            cmd.InOrStdin(),
				Output:           cmd.OutOrStdout(),
			})
		},
	}
)

// initCmd writes starter settings and activities files.
var initCmd = &cobra.Command{
	Use:   "init [activities-file]",
	Short: "Write a default settings file and a starter activities file.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := &engine.InitOptions{
			ConfigPath: configPath,
			Force:      force,
		}

		if len(args) > 0 {
			opts.ActivitiesFile = args[0]
		}

		return engine.Init(cmd.Context(), opts, time.Now())
	},
}

// Execute runs the alarm-engine CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "path to configuration file (default "+config.DefaultConfigFilename+" when present)")
	rootCmd.Flags().
		StringVarP(&schedulerAddress, "scheduler", "s", "", "native scheduler daemon address, overrides config")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing files")
}
