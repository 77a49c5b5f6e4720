package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/oshokin/activity-alarms/internal/config"
	domain "github.com/oshokin/activity-alarms/internal/domain/alarm"
	"github.com/oshokin/activity-alarms/internal/logger"
	"github.com/oshokin/activity-alarms/internal/service/common"
)

// Options configures client commands against the native scheduler daemon.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides the daemon address from config when specified.
	ServerAddress string

	// Output receives the command output.
	Output io.Writer
}

// errIDRequired is returned when cancel is called without an id.
var errIDRequired = errors.New("activity id is required")

// List prints every alarm the daemon holds, soonest first.
func List(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-scheduler-list")

	client, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	// Close connection on function exit.
	defer func() {
		_ = client.Close()
	}()

	alarms, err := client.ListAlarms(ctx)
	if err != nil {
		return err
	}

	if len(alarms) == 0 {
		_, err = fmt.Fprintln(opts.Output, "No alarms scheduled")

		return err
	}

	now := time.Now()
	for _, alarm := range alarms {
		if _, err = fmt.Fprintln(opts.Output, formatAlarm(now, alarm)); err != nil {
			return err
		}
	}

	return nil
}

// Cancel removes the alarm with id from the daemon.
func Cancel(ctx context.Context, opts *Options, id string) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-scheduler-cancel")

	if id == "" {
		return errIDRequired
	}

	client, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	// Close connection on function exit.
	defer func() {
		_ = client.Close()
	}()

	if err = client.CancelAlarm(ctx, id); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Alarm cancelled", "activity_id", id)

	return nil
}

// connect loads settings and dials the daemon.
func connect(ctx context.Context, opts *Options) (*common.Client, error) {
	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	// Use server address from options if provided, otherwise use config.
	serverAddress := cfg.Scheduler.Address
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	logger.DebugKV(ctx, "Connecting to native scheduler", "server_address", serverAddress)

	// Connect to the daemon with timeout from config.
	return common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Scheduler.Timeout))
}

// formatAlarm converts a scheduled alarm to a readable line.
func formatAlarm(now time.Time, alarm *domain.Scheduled) string {
	title := alarm.Title
	if title == "" {
		title = "<untitled>"
	}

	vibrate := "silent"
	if alarm.Vibrate {
		vibrate = "vibrate"
	}

	left := alarm.At.Sub(now).Round(time.Second)
	if left < 0 {
		left = 0
	}

	return fmt.Sprintf("%s\t%s\t%q\t%s\tin %s",
		alarm.ID, alarm.At.Local().Format(time.RFC3339), title, vibrate, left)
}
