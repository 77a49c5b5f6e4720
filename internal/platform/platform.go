package platform

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gen2brain/beeep"
	ps "github.com/mitchellh/go-ps"

	"github.com/oshokin/activity-alarms/internal/config"
	domain "github.com/oshokin/activity-alarms/internal/domain/alarm"
	"github.com/oshokin/activity-alarms/internal/logger"
)

// ErrNoNotifier indicates that no notification command is configured.
var ErrNoNotifier = errors.New("no notification command configured")

// processLister is swapped in tests.
//
//nolint:gochecknoglobals // Test seam over ps.Processes.
var processLister = ps.Processes

// Name returns the normalised name of the running OS.
func Name() string {
	return strings.ToLower(runtime.GOOS)
}

// ProcessRunning reports whether a process with the given executable name is
// alive. The ".exe" suffix is ignored so the same name works on Windows.
func ProcessRunning(name string) (bool, error) {
	processes, err := processLister()
	if err != nil {
		return false, fmt.Errorf("list processes: %w", err)
	}

	want := trimExe(name)

	for _, p := range processes {
		if trimExe(p.Executable()) == want {
			return true, nil
		}
	}

	return false, nil
}

// trimExe drops a trailing ".exe" and any directory part.
func trimExe(name string) string {
	name = filepath.Base(name)

	return strings.TrimSuffix(strings.ToLower(name), ".exe")
}

// alarmBody is the notification text for a fired alarm.
func alarmBody(alarm *domain.Scheduled) string {
	return "Alarm at " + alarm.At.Local().Format("15:04")
}

// desktopNotify is swapped in tests so they never pop real notifications.
//
//nolint:gochecknoglobals // Test seam over beeep.
var desktopNotify = func(title, message string, alert bool) error {
	if alert {
		return beeep.Alert(title, message, "")
	}

	return beeep.Notify(title, message, "")
}

// DesktopNotifier shows fired alarms as native desktop notifications. Alarms
// that ask for vibration raise an alert, which also beeps.
type DesktopNotifier struct{}

// Notify shows the notification for the fired alarm.
func (DesktopNotifier) Notify(ctx context.Context, alarm *domain.Scheduled) error {
	if err := desktopNotify(alarm.Title, alarmBody(alarm), alarm.Vibrate); err != nil {
		return fmt.Errorf("desktop notification: %w", err)
	}

	logger.DebugKV(ctx, "Desktop notification shown", "activity_id", alarm.ID, "alert", alarm.Vibrate)

	return nil
}

// CommandNotifier runs an operator-supplied command with the title and body
// as arguments instead of the desktop notifier.
type CommandNotifier struct {
	// Command is the executable to run.
	Command string
}

// Notify runs the notification command for the fired alarm.
func (n *CommandNotifier) Notify(ctx context.Context, alarm *domain.Scheduled) error {
	if n.Command == "" {
		return ErrNoNotifier
	}

	//nolint:gosec // The command comes from the operator's configuration.
	if err := exec.CommandContext(ctx, n.Command, alarm.Title, alarmBody(alarm)).Run(); err != nil {
		return fmt.Errorf("run %s: %w", n.Command, err)
	}

	return nil
}

// LogNotifier only logs fired alarms.
type LogNotifier struct{}

// Notify logs the fired alarm.
func (LogNotifier) Notify(ctx context.Context, alarm *domain.Scheduled) error {
	logger.InfoKV(ctx, "Alarm notification", "activity_id", alarm.ID, "title", alarm.Title, "vibrate", alarm.Vibrate)

	return nil
}

// NotifierPermission reports whether the configured notifier can show
// notifications.
type NotifierPermission struct {
	// Notifier is the configured notifier kind.
	Notifier string
	// Command is the notifier executable for the command kind.
	Command string
}

// RequestNotificationPermission implements the engine's permission capability.
// Desktop notifications need no grant, a command notifier needs its
// executable on PATH, and the log notifier never shows anything.
func (p *NotifierPermission) RequestNotificationPermission(_ context.Context) (bool, error) {
	switch p.Notifier {
	case config.NotifierLog:
		return false, nil
	case config.NotifierCommand:
		if p.Command == "" {
			return false, ErrNoNotifier
		}

		if _, err := exec.LookPath(p.Command); err != nil {
			return false, nil
		}

		return true, nil
	default:
		return true, nil
	}
}
