package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oshokin/activity-alarms/internal/config"
	"github.com/oshokin/activity-alarms/internal/domain/activity"
	"github.com/oshokin/activity-alarms/internal/feedback"
	"github.com/oshokin/activity-alarms/internal/feedback/tone"
	"github.com/oshokin/activity-alarms/internal/logger"
	"github.com/oshokin/activity-alarms/internal/platform"
	"github.com/oshokin/activity-alarms/internal/repository/activities"
	"github.com/oshokin/activity-alarms/internal/scheduler"
	"github.com/oshokin/activity-alarms/internal/service/common"
	"github.com/oshokin/activity-alarms/internal/version"
)

// Options controls the alarm-engine process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ActivitiesFile overrides the activities file from the settings.
	ActivitiesFile string
	// SchedulerAddress overrides the native scheduler daemon address.
	SchedulerAddress string
	// Input carries terminal commands, os.Stdin when nil.
	Input io.Reader
	// Output receives terminal output, os.Stdout when nil.
	Output io.Writer
	// Source replaces the activities file source when set.
	Source ActivitySource
}

// ActivitySource is an activities feed the engine reconciles against.
type ActivitySource interface {
	activities.Source
	// Watch calls onChange with every new snapshot until ctx is canceled.
	Watch(ctx context.Context, delay time.Duration, onChange func([]*activity.Activity)) error
}

// processRunning is swapped in tests.
//
//nolint:gochecknoglobals // Test seam over the process probe.
var processRunning = platform.ProcessRunning

// Run starts the engine and blocks until the user quits, the input ends or
// ctx is canceled. Every software timer and any playing feedback are stopped
// before it returns.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-engine")

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if err = logger.Setup(cfg.LogLevel, nil); err != nil {
		return err
	}

	// Command line arguments override config.
	activitiesFile := cfg.ActivitiesFile
	if opts.ActivitiesFile != "" {
		activitiesFile = opts.ActivitiesFile
	}

	if opts.SchedulerAddress != "" {
		cfg.Scheduler.Address = opts.SchedulerAddress
	}

	in, out := opts.Input, opts.Output
	if in == nil {
		in = os.Stdin
	}

	if out == nil {
		out = os.Stdout
	}

	controller := feedback.NewController(newPlayer(&cfg.Feedback, out))
	defer controller.Close()

	term := newTerminal(out)

	policy, host := scheduler.PolicyFromConfig(&cfg.Engine)
	engineOpts := []scheduler.Option{
		scheduler.WithPolicy(policy),
		scheduler.WithPlatform(host),
		scheduler.WithPermissionRequester(&platform.NotifierPermission{
			Notifier: cfg.Scheduler.Notifier,
			Command:  cfg.Scheduler.NotifyCommand,
		}),
		scheduler.WithObserver(controller.Observe),
		scheduler.WithObserver(term.announce),
	}

	if client := dialNative(ctx, cfg); client != nil {
		// Close connection on function exit.
		defer func() {
			_ = client.Close()
		}()

		engineOpts = append(engineOpts, scheduler.WithNativeScheduler(client))
	}

	engine := scheduler.New(engineOpts...)
	term.engine = engine

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)

	go func() {
		runErr <- engine.Run(ctx)
	}()

	source := opts.Source
	if source == nil {
		source = activities.NewFileSource(activitiesFile)
	}

	term.source = source

	go func() {
		err := source.Watch(ctx, cfg.ReloadDelay, func(list []*activity.Activity) {
			engine.Reconcile(ctx, list)
		})
		if err != nil {
			logger.ErrorKV(ctx, "Unable to watch activities", "path", activitiesFile, "error", err)
		}
	}()

	logger.InfoKV(ctx, "Watching activities",
		"engine_id", engine.ID(),
		"version", version.Short(),
		"activities_file", activitiesFile,
		"reload_delay", cfg.ReloadDelay.String())

	term.serve(ctx, in)

	cancel()

	return <-runErr
}

// dialNative returns a client for the native scheduler daemon when native
// delegation is enabled and the daemon process is running, or nil.
func dialNative(ctx context.Context, cfg *config.Config) *common.Client {
	if !cfg.Engine.NativeEnabled {
		return nil
	}

	running, err := processRunning(cfg.Engine.NativeProcess)
	if err != nil {
		logger.WarnKV(ctx, "Unable to probe native scheduler", "process", cfg.Engine.NativeProcess, "error", err)

		return nil
	}

	if !running {
		logger.InfoKV(ctx, "Native scheduler is not running, using software timers", "process", cfg.Engine.NativeProcess)

		return nil
	}

	client, err := common.Dial(ctx, cfg.Scheduler.Address, common.WithCallTimeout(cfg.Scheduler.Timeout))
	if err != nil {
		logger.WarnKV(ctx, "Unable to dial native scheduler", "address", cfg.Scheduler.Address, "error", err)

		return nil
	}

	logger.InfoKV(ctx, "Native scheduler found", "address", cfg.Scheduler.Address)

	return client
}

// newPlayer picks the feedback player configured for the terminal.
//
//nolint:ireturn // Each sound kind has its own Player implementation.
func newPlayer(cfg *config.Feedback, out io.Writer) feedback.Player {
	switch cfg.Sound {
	case config.SoundTone:
		return tone.New(cfg.ToneHz)
	case config.SoundNone:
		return feedback.Nop{}
	default:
		return &feedback.Bell{Output: out}
	}
}
