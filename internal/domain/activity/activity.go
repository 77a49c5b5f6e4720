package activity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind distinguishes alarms from app-usage timers.
type Kind string

const (
	// KindAlarm marks an activity that fires at an absolute time.
	KindAlarm Kind = "alarm"
	// KindTimer marks an app-usage limit; it is never scheduled.
	KindTimer Kind = "timer"
)

// DefaultTitle is used when an alarm has no title of its own.
const DefaultTitle = "Alarm"

// AlarmSettings configures an alarm-kind activity.
type AlarmSettings struct {
	// Time is the absolute instant the alarm fires, as written by the user.
	Time string `yaml:"time"`
	// MusicTitle names the sound the alarm plays.
	MusicTitle string `yaml:"music_title,omitempty"`
	// VibrationEnabled is passed to whichever scheduling path arms the alarm.
	VibrationEnabled *bool `yaml:"vibration_enabled,omitempty"`
}

// TimerSettings configures an app-usage timer.
type TimerSettings struct {
	AppID           string `yaml:"app_id"`
	AppName         string `yaml:"app_name"`
	MaxDailyMinutes int    `yaml:"max_daily_minutes"`
}

// Activity is a schedulable alarm or app-usage timer record.
type Activity struct {
	// ID is the stable identity used as the scheduling key.
	ID string `yaml:"id"`
	// Kind is either KindAlarm or KindTimer.
	Kind Kind `yaml:"kind"`
	// Title is the display string.
	Title string `yaml:"title,omitempty"`
	// Days lists the weekdays the activity repeats on, for display only.
	Days []string `yaml:"days,omitempty"`
	// IsActive reports whether the user has the activity switched on.
	IsActive bool `yaml:"is_active,omitempty"`
	// NotificationsEnabled reports whether the user wants notifications for it.
	NotificationsEnabled bool `yaml:"notifications_enabled,omitempty"`
	// Alarm is set for alarm-kind activities.
	Alarm *AlarmSettings `yaml:"alarm,omitempty"`
	// Timer is set for timer-kind activities.
	Timer *TimerSettings `yaml:"timer,omitempty"`
}

var (
	// ErrEmptyAlarmTime is returned when an alarm carries no time at all.
	ErrEmptyAlarmTime = errors.New("alarm time is empty")
	// ErrMalformedAlarmTime is returned when no supported layout matches.
	ErrMalformedAlarmTime = errors.New("alarm time is malformed")
)

// localLayouts are accepted without a zone and are read in local time.
//
//nolint:gochecknoglobals // Read-only table.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseAlarmTime parses an ISO-8601 timestamp. Values with a zone offset are
// taken as-is; values without one are read in the local zone.
func ParseAlarmTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrEmptyAlarmTime
	}

	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedAlarmTime, value)
}

// IsAlarm reports whether the activity takes part in scheduling.
func (a *Activity) IsAlarm() bool {
	return a != nil && a.Kind == KindAlarm && a.Alarm != nil
}

// AlarmTime parses the configured alarm time.
func (a *Activity) AlarmTime() (time.Time, error) {
	if !a.IsAlarm() {
		return time.Time{}, ErrEmptyAlarmTime
	}

	return ParseAlarmTime(a.Alarm.Time)
}

// DisplayTitle returns the title, or DefaultTitle when it is blank.
func (a *Activity) DisplayTitle() string {
	if a == nil || strings.TrimSpace(a.Title) == "" {
		return DefaultTitle
	}

	return a.Title
}

// Vibrate reports whether the alarm should vibrate. Unset means yes.
func (a *Activity) Vibrate() bool {
	if a == nil || a.Alarm == nil || a.Alarm.VibrationEnabled == nil {
		return true
	}

	return *a.Alarm.VibrationEnabled
}

// Clone returns a deep copy of the activity.
func (a *Activity) Clone() *Activity {
	if a == nil {
		return nil
	}

	cloned := *a

	if a.Days != nil {
		cloned.Days = append([]string(nil), a.Days...)
	}

	if a.Alarm != nil {
		alarm := *a.Alarm
		if a.Alarm.VibrationEnabled != nil {
			v := *a.Alarm.VibrationEnabled
			alarm.VibrationEnabled = &v
		}

		cloned.Alarm = &alarm
	}

	if a.Timer != nil {
		timer := *a.Timer
		cloned.Timer = &timer
	}

	return &cloned
}

// Bool returns a pointer to v, handy for VibrationEnabled literals.
func Bool(v bool) *bool {
	return &v
}
