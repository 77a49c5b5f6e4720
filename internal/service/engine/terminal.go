package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/activity-alarms/internal/domain/activity"
	"github.com/oshokin/activity-alarms/internal/logger"
	"github.com/oshokin/activity-alarms/internal/repository/activities"
	"github.com/oshokin/activity-alarms/internal/scheduler"
)

// Terminal commands.
const (
	commandSnooze = "snooze"
	commandStop   = "stop"
	commandStatus = "status"
	commandList   = "list"
	commandQuit   = "quit"
	commandHelp   = "help"
)

// controls is the part of the engine the terminal drives.
type controls interface {
	Snooze(ctx context.Context)
	Stop(ctx context.Context)
	Status(ctx context.Context) scheduler.Status
}

// terminal is a line-oriented presentation surface for the active alarm.
type terminal struct {
	// engine receives snooze and stop requests.
	engine controls
	// source lists the configured activities, may be nil.
	source activities.Source
	// mu serialises writes to out.
	mu sync.Mutex
	// out receives everything the terminal prints.
	out io.Writer
}

func newTerminal(out io.Writer) *terminal {
	return &terminal{out: out}
}

// announce is an engine observer printing active alarm changes.
func (t *terminal) announce(_ context.Context, active *activity.Activity) {
	if active == nil {
		t.printf("Alarm dismissed\n")

		return
	}

	at := "--:--"
	if active.Alarm != nil {
		at = activity.FormatTime(active.Alarm.Time)
	}

	t.printf("ALARM %q (%s) at %s. Type %q or %q.\n",
		active.DisplayTitle(), active.ID, at, commandSnooze, commandStop)
}

// serve reads commands from in until quit, end of input or ctx is done.
func (t *terminal) serve(ctx context.Context, in io.Reader) {
	lines := make(chan string)

	// The reader goroutine may stay blocked on in after serve returns; it
	// exits with the process.
	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			logger.WarnKV(ctx, "Terminal input failed", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok || !t.handle(ctx, line) {
				return
			}
		}
	}
}

// handle runs one command and reports whether to keep reading.
func (t *terminal) handle(ctx context.Context, line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
	case commandSnooze:
		t.engine.Snooze(ctx)
	case commandStop:
		t.engine.Stop(ctx)
	case commandStatus:
		t.printStatus(t.engine.Status(ctx))
	case commandList:
		t.printActivities(ctx)
	case commandQuit, "exit":
		return false
	case commandHelp:
		t.printf("Commands: %s, %s, %s, %s, %s\n", commandSnooze, commandStop, commandStatus, commandList, commandQuit)
	default:
		t.printf("Unknown command %q, type %q\n", line, commandHelp)
	}

	return true
}

// printStatus renders an engine status snapshot.
func (t *terminal) printStatus(status scheduler.Status) {
	var b strings.Builder

	fmt.Fprintf(&b, "Engine %s, native scheduler: %t, notifications: %s\n",
		status.EngineID, status.NativeAvailable, status.Permission)

	if status.ActiveAlarm != nil {
		fmt.Fprintf(&b, "Active: %q (%s)\n", status.ActiveAlarm.DisplayTitle(), status.ActiveAlarm.ID)
	} else {
		b.WriteString("Active: none\n")
	}

	now := time.Now()

	for _, s := range status.Schedules {
		state := "fired"
		if s.Armed {
			state = "in " + activity.FormatRemaining(now, s.At)
		}

		fmt.Fprintf(&b, "  %s at %s, %s\n", s.ID, s.At.Local().Format("Mon 15:04"), state)
	}

	t.printf("%s", b.String())
}

// printActivities renders the activities file the way the engine reads it.
func (t *terminal) printActivities(ctx context.Context) {
	if t.source == nil {
		t.printf("No activities source\n")

		return
	}

	list, err := t.source.Snapshot(ctx)
	if err != nil {
		t.printf("Unable to read activities: %v\n", err)

		return
	}

	var b strings.Builder

	for _, a := range list {
		switch {
		case a.IsAlarm():
			fmt.Fprintf(&b, "  alarm %s %q at %s\n", a.ID, a.DisplayTitle(), activity.FormatTime(a.Alarm.Time))
		case a.Timer != nil:
			fmt.Fprintf(&b, "  timer %s %s, %s a day\n",
				a.ID, a.Timer.AppName, activity.FormatDuration(a.Timer.MaxDailyMinutes))
		default:
			fmt.Fprintf(&b, "  %s %s\n", a.Kind, a.ID)
		}
	}

	if b.Len() == 0 {
		b.WriteString("No activities\n")
	}

	t.printf("%s", b.String())
}

func (t *terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, _ = fmt.Fprintf(t.out, format, args...)
}
