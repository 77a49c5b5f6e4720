package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/emersion/go-autostart"

	"github.com/oshokin/activity-alarms/internal/logger"
)

const (
	// AutostartName is the login entry identifier of the scheduler daemon.
	AutostartName = "alarm-scheduler"
	// autostartDisplayName is shown by desktop session managers.
	autostartDisplayName = "Alarm Scheduler"
)

// loginEntry is the subset of autostart.App the daemon relies on.
type loginEntry interface {
	IsEnabled() bool
	Enable() error
	Disable() error
}

// newLoginEntry is swapped in tests so they never touch the real session.
//
//nolint:gochecknoglobals // Test seam over autostart.App.
var newLoginEntry = func(exec []string) loginEntry {
	return &autostart.App{
		Name:        AutostartName,
		DisplayName: autostartDisplayName,
		Exec:        exec,
	}
}

// executablePath is swapped in tests.
//
//nolint:gochecknoglobals // Test seam over os.Executable.
var executablePath = os.Executable

// SetAutostart enables or disables starting the running binary with args at
// login. It reports whether the login entry changed.
func SetAutostart(ctx context.Context, enable bool, args ...string) (bool, error) {
	path, err := executablePath()
	if err != nil {
		return false, fmt.Errorf("resolve executable: %w", err)
	}

	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}

	entry := newLoginEntry(append([]string{path}, args...))

	if entry.IsEnabled() == enable {
		logger.DebugKV(ctx, "Autostart already in requested state", "enabled", enable)

		return false, nil
	}

	if enable {
		err = entry.Enable()
	} else {
		err = entry.Disable()
	}

	if err != nil {
		return false, fmt.Errorf("update autostart entry: %w", err)
	}

	logger.InfoKV(ctx, "Autostart updated", "enabled", enable, "exec", path)

	return true, nil
}

// AutostartEnabled reports whether the daemon is registered to start at login.
func AutostartEnabled() bool {
	return newLoginEntry(nil).IsEnabled()
}
