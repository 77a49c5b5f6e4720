package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/activity-alarms/internal/domain/activity"
)

// Backend arms and cancels alarms on one scheduling path.
type Backend interface {
	// Name identifies the path in logs.
	Name() string
	// Schedule arms req. A non-nil error means the alarm was not armed here.
	Schedule(ctx context.Context, req Request) error
	// Cancel drops any schedule held for id.
	Cancel(ctx context.Context, id string) error
}

// Request describes one alarm to arm.
type Request struct {
	// Alarm is the activity to surface when the deadline is reached.
	Alarm *activity.Activity
	// At is the absolute deadline.
	At time.Time
	// Delay is At minus the time the request was built.
	Delay time.Duration
	// Supersede replaces an existing schedule for the same id instead of
	// keeping it.
	Supersede bool
}

// NativeScheduler is the out-of-process capability that fires alarms at an
// absolute wall-clock time even while the application is not running.
type NativeScheduler interface {
	ScheduleAlarm(ctx context.Context, id string, timestampMs int64, title string, vibrate bool) error
	CancelAlarm(ctx context.Context, id string) error
}

var (
	// ErrBeyondHorizon is returned by the software path for deadlines past the horizon.
	ErrBeyondHorizon = errors.New("alarm is beyond the scheduling horizon")
	// ErrAlreadyScheduled is returned by the software path when the id is
	// already tracked, armed or fired.
	ErrAlreadyScheduled = errors.New("alarm is already scheduled")
	// ErrNativePanicked wraps a panic raised inside the native scheduler.
	ErrNativePanicked = errors.New("native scheduler panicked")
)

// Backend names.
const (
	backendNative = "native"
	backendTimer  = "timer"
)

// nativeBackend delegates to a NativeScheduler. Calls run on the engine
// goroutine, so each one is cut off after timeout and treated as a failure.
type nativeBackend struct {
	scheduler NativeScheduler
	timeout   time.Duration
}

// Name implements Backend.
func (b *nativeBackend) Name() string { return backendNative }

// Schedule implements Backend.
func (b *nativeBackend) Schedule(ctx context.Context, req Request) error {
	alarm := req.Alarm

	ctx, cancel := b.callContext(ctx)
	defer cancel()

	return guard(func() error {
		return b.scheduler.ScheduleAlarm(ctx, alarm.ID, req.At.UnixMilli(), alarm.DisplayTitle(), alarm.Vibrate())
	})
}

// Cancel implements Backend.
func (b *nativeBackend) Cancel(ctx context.Context, id string) error {
	ctx, cancel := b.callContext(ctx)
	defer cancel()

	return guard(func() error {
		return b.scheduler.CancelAlarm(ctx, id)
	})
}

func (b *nativeBackend) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, b.timeout)
}

// guard turns a panic raised by fn into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrNativePanicked, r)
		}
	}()

	return fn()
}
