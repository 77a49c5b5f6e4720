package engine

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/activity-alarms/internal/domain/activity"
	"github.com/oshokin/activity-alarms/internal/repository/activities"
	"github.com/oshokin/activity-alarms/internal/scheduler"
)

// fakeControls records terminal requests.
type fakeControls struct {
	mu     sync.Mutex
	calls  []string
	status scheduler.Status
}

func (f *fakeControls) Snooze(context.Context) { f.record(commandSnooze) }

func (f *fakeControls) Stop(context.Context) { f.record(commandStop) }

func (f *fakeControls) Status(context.Context) scheduler.Status {
	f.record(commandStatus)

	return f.status
}

func (f *fakeControls) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, call)
}

// TestTerminal_Serve dispatches commands until quit.
func TestTerminal_Serve(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	controls := &fakeControls{}
	term := newTerminal(&out)
	term.engine = controls

	input := strings.NewReader("snooze\n\n STOP \nbogus\nhelp\nquit\nsnooze\n")
	term.serve(context.Background(), input)

	require.Equal(t, []string{commandSnooze, commandStop}, controls.calls)
	require.Contains(t, out.String(), `Unknown command "bogus"`)
	require.Contains(t, out.String(), "Commands: snooze, stop, status, list, quit")
}

// TestTerminal_ServeEOF returns when input ends.
func TestTerminal_ServeEOF(t *testing.T) {
	t.Parallel()

	controls := &fakeControls{}
	term := newTerminal(new(bytes.Buffer))
	term.engine = controls

	term.serve(context.Background(), strings.NewReader("stop"))
	require.Equal(t, []string{commandStop}, controls.calls)
}

// TestTerminal_Status prints the active alarm and schedules.
func TestTerminal_Status(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	controls := &fakeControls{status: scheduler.Status{
		EngineID:        "engine-1",
		ActiveAlarm:     &activity.Activity{ID: "a", Title: "Wake up"},
		NativeAvailable: true,
		Permission:      scheduler.PermissionGranted,
		Schedules: []scheduler.Schedule{
			{ID: "a", At: time.Now().Add(-time.Minute)},
			{ID: "b", At: time.Now().Add(time.Hour), Armed: true},
		},
	}}
	term := newTerminal(&out)
	term.engine = controls

	require.True(t, term.handle(context.Background(), "status"))

	text := out.String()
	require.Contains(t, text, "Engine engine-1, native scheduler: true, notifications: granted")
	require.Contains(t, text, `Active: "Wake up" (a)`)
	require.Contains(t, text, "a at ")
	require.Contains(t, text, "fired")
	require.Contains(t, text, "b at ")
	require.Contains(t, text, "in ")
}

// TestTerminal_Announce prints activations and dismissals.
func TestTerminal_Announce(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	term := newTerminal(&out)

	term.announce(context.Background(), &activity.Activity{
		ID:    "a",
		Kind:  activity.KindAlarm,
		Alarm: &activity.AlarmSettings{Time: "not a time"},
	})
	term.announce(context.Background(), nil)

	require.Contains(t, out.String(), `ALARM "Alarm" (a) at --:--`)
	require.Contains(t, out.String(), "Alarm dismissed")
}

// TestTerminal_List prints alarms and timers from the source.
func TestTerminal_List(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "activities.yaml")
	require.NoError(t, activities.WriteFile(path, []*activity.Activity{
		{ID: "wake", Kind: activity.KindAlarm, Title: "Wake up", Alarm: &activity.AlarmSettings{Time: "bad"}},
		{ID: "social", Kind: activity.KindTimer, Timer: &activity.TimerSettings{AppName: "Chat", MaxDailyMinutes: 90}},
	}))

	var out bytes.Buffer

	term := newTerminal(&out)
	term.engine = &fakeControls{}

	require.True(t, term.handle(context.Background(), "list"))
	require.Contains(t, out.String(), "No activities source")

	out.Reset()

	term.source = activities.NewFileSource(path)
	require.True(t, term.handle(context.Background(), "list"))
	require.Contains(t, out.String(), `alarm wake "Wake up" at --:--`)
	require.Contains(t, out.String(), "timer social Chat, 1h 30m a day")
}
