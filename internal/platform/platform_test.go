package platform

import (
	"context"
	"errors"
	"testing"
	"time"

	ps "github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/activity-alarms/internal/config"
	domain "github.com/oshokin/activity-alarms/internal/domain/alarm"
)

// fakeProcess is a minimal ps.Process.
type fakeProcess struct {
	executable string
}

func (p fakeProcess) Pid() int           { return 1 }
func (p fakeProcess) PPid() int          { return 0 }
func (p fakeProcess) Executable() string { return p.executable }

// TestProcessRunning matches process names with and without the .exe suffix.
// It swaps the package-level lister, so it does not run in parallel.
//
//nolint:paralleltest // Mutates processLister.
func TestProcessRunning(t *testing.T) {
	original := processLister
	t.Cleanup(func() { processLister = original })

	processLister = func() ([]ps.Process, error) {
		return []ps.Process{fakeProcess{"bash"}, fakeProcess{"Alarm-Scheduler.exe"}}, nil
	}

	running, err := ProcessRunning("alarm-scheduler")
	require.NoError(t, err)
	require.True(t, running)

	running, err = ProcessRunning("cron")
	require.NoError(t, err)
	require.False(t, running)

	processLister = func() ([]ps.Process, error) {
		return nil, errors.New("proc is not mounted")
	}

	_, err = ProcessRunning("alarm-scheduler")
	require.Error(t, err)
}

// TestNotifierPermission covers each notifier kind.
func TestNotifierPermission(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	granted, err := (&NotifierPermission{Notifier: config.NotifierDesktop}).RequestNotificationPermission(ctx)
	require.NoError(t, err)
	require.True(t, granted)

	granted, err = (&NotifierPermission{Notifier: config.NotifierLog}).RequestNotificationPermission(ctx)
	require.NoError(t, err)
	require.False(t, granted)

	_, err = (&NotifierPermission{Notifier: config.NotifierCommand}).RequestNotificationPermission(ctx)
	require.ErrorIs(t, err, ErrNoNotifier)

	granted, err = (&NotifierPermission{Notifier: config.NotifierCommand, Command: "definitely-not-a-real-notifier"}).
		RequestNotificationPermission(ctx)
	require.NoError(t, err)
	require.False(t, granted)
}

// TestNotifiers checks the command and log notifiers.
func TestNotifiers(t *testing.T) {
	t.Parallel()

	alarm := &domain.Scheduled{ID: "a", At: time.Now(), Title: "Wake up"}

	require.ErrorIs(t, (&CommandNotifier{}).Notify(context.Background(), alarm), ErrNoNotifier)
	require.Error(t, (&CommandNotifier{Command: "definitely-not-a-real-notifier"}).Notify(context.Background(), alarm))
	require.NoError(t, LogNotifier{}.Notify(context.Background(), alarm))
	require.NotEmpty(t, Name())
}

// desktopCall records one desktop notification.
type desktopCall struct {
	title, message string
	alert          bool
}

// TestDesktopNotifier checks vibrating alarms raise an alert and failures are
// reported. It swaps the package-level notifier, so it does not run in parallel.
//
//nolint:paralleltest // Mutates desktopNotify.
func TestDesktopNotifier(t *testing.T) {
	original := desktopNotify
	t.Cleanup(func() { desktopNotify = original })

	var calls []desktopCall

	desktopNotify = func(title, message string, alert bool) error {
		calls = append(calls, desktopCall{title, message, alert})

		return nil
	}

	at := time.Date(2030, 1, 2, 7, 30, 0, 0, time.Local)
	ctx := context.Background()

	require.NoError(t, DesktopNotifier{}.Notify(ctx, &domain.Scheduled{ID: "a", At: at, Title: "Wake up", Vibrate: true}))
	require.NoError(t, DesktopNotifier{}.Notify(ctx, &domain.Scheduled{ID: "b", At: at, Title: "Stretch"}))
	require.Equal(t, []desktopCall{
		{"Wake up", "Alarm at 07:30", true},
		{"Stretch", "Alarm at 07:30", false},
	}, calls)

	desktopNotify = func(string, string, bool) error { return errors.New("no notification daemon") }

	err := DesktopNotifier{}.Notify(ctx, &domain.Scheduled{ID: "c", At: at, Title: "Late"})
	require.ErrorContains(t, err, "no notification daemon")
}
