package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/oshokin/activity-alarms/internal/config"
	"github.com/oshokin/activity-alarms/internal/domain/activity"
	"github.com/oshokin/activity-alarms/internal/logger"
	"github.com/oshokin/activity-alarms/internal/repository/activities"
)

// InitOptions controls where starter files are written.
type InitOptions struct {
	// ConfigPath is the settings file to create.
	ConfigPath string
	// ActivitiesFile is the activities file to create.
	ActivitiesFile string
	// Force overwrites existing files.
	Force bool
}

// ErrFileExists is returned by Init when a target file exists and Force is off.
var ErrFileExists = errors.New("file already exists")

// Init writes a default settings file and a starter activities file holding
// one alarm for tomorrow morning and one app timer.
func Init(ctx context.Context, opts *InitOptions, now time.Time) error {
	ctx = logger.WithName(ctx, "alarm-engine-init")

	cfg := config.Default()

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultConfigFilename
	}

	if opts.ActivitiesFile != "" {
		cfg.ActivitiesFile = opts.ActivitiesFile
	}

	for _, path := range []string{configPath, cfg.ActivitiesFile} {
		if err := ensureWritable(path, opts.Force); err != nil {
			return err
		}
	}

	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	if err := activities.WriteFile(cfg.ActivitiesFile, starterActivities(now)); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Starter files written", "config", configPath, "activities_file", cfg.ActivitiesFile)

	return nil
}

// ensureWritable refuses to clobber an existing file unless force is set.
func ensureWritable(path string, force bool) error {
	if force {
		return nil
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrFileExists, path)
	}

	return nil
}

// starterActivities returns an alarm at 07:00 the day after now and a timer.
func starterActivities(now time.Time) []*activity.Activity {
	year, month, day := now.Date()
	wake := time.Date(year, month, day+1, 7, 0, 0, 0, now.Location())

	return []*activity.Activity{
		{
			ID:                   "morning-alarm",
			Kind:                 activity.KindAlarm,
			Title:                "Wake up",
			Days:                 []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
			IsActive:             true,
			NotificationsEnabled: true,
			Alarm: &activity.AlarmSettings{
				Time:             wake.Format(time.RFC3339),
				VibrationEnabled: activity.Bool(true),
			},
		},
		{
			ID:       "social-media",
			Kind:     activity.KindTimer,
			Title:    "Social media",
			IsActive: true,
			Timer: &activity.TimerSettings{
				AppID:           "social",
				AppName:         "Social",
				MaxDailyMinutes: 45,
			},
		},
	}
}
