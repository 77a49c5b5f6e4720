package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/activity-alarms/internal/domain/activity"
	"github.com/oshokin/activity-alarms/internal/logger"
)

// Observer is told about every change of the active alarm. A nil alarm means
// nothing is active any more. Observers run on the engine goroutine and must
// not call back into the engine synchronously.
type Observer func(ctx context.Context, active *activity.Activity)

// Schedule describes one software-path entry.
type Schedule struct {
	// ID is the activity id.
	ID string
	// At is the deadline.
	At time.Time
	// Armed is false once the timer has fired.
	Armed bool
}

// Status is a point-in-time view of the engine.
type Status struct {
	// EngineID identifies the engine instance.
	EngineID string
	// ActiveAlarm is the currently firing alarm, or nil.
	ActiveAlarm *activity.Activity
	// Schedules lists the software timers the engine tracks.
	Schedules []Schedule
	// NativeAvailable reports whether native delegation is in use.
	NativeAvailable bool
	// Permission is the outcome of the notification permission probe.
	Permission PermissionState
}

// ErrAlreadyRunning is returned when Run is called twice on one engine.
var ErrAlreadyRunning = errors.New("engine is already running")

// Engine owns the tracked schedules and the active alarm.
type Engine struct {
	// id identifies the instance in logs.
	id string
	// policy holds horizon, snooze interval and platform rules.
	policy Policy
	// platform is the host description.
	platform Platform
	// permission asks for notification permission, may be nil.
	permission PermissionRequester
	// observers are told about active alarm changes.
	observers []Observer

	// native is the delegating backend, nil when unavailable.
	native *nativeBackend
	// timers is the software fallback backend.
	timers *timerBackend
	// backends lists the scheduling paths in priority order.
	backends []Backend

	// active is the alarm currently presented, or nil.
	active *activity.Activity
	// permissionState is the probe outcome.
	permissionState PermissionState

	// commands carries work to the engine goroutine.
	commands chan func(ctx context.Context)
	// done is closed once Run has torn the engine down.
	done chan struct{}
	// running guards against starting Run twice.
	running atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy sets the scheduling policy.
func WithPolicy(policy Policy) Option {
	return func(e *Engine) {
		e.policy = policy.normalize()
	}
}

// WithPlatform sets the host description used by the platform rules.
func WithPlatform(platform Platform) Option {
	return func(e *Engine) {
		e.platform = platform
	}
}

// WithNativeScheduler provides the native scheduling capability. It is only
// used when the policy allows native delegation on the configured platform.
func WithNativeScheduler(native NativeScheduler) Option {
	return func(e *Engine) {
		if native != nil {
			e.native = &nativeBackend{scheduler: native}
		}
	}
}

// WithPermissionRequester provides the notification permission capability.
func WithPermissionRequester(requester PermissionRequester) Option {
	return func(e *Engine) {
		e.permission = requester
	}
}

// WithObserver registers an observer for active alarm changes.
func WithObserver(observer Observer) Option {
	return func(e *Engine) {
		if observer != nil {
			e.observers = append(e.observers, observer)
		}
	}
}

// New builds an engine. Capabilities are selected here, once.
func New(opts ...Option) *Engine {
	e := &Engine{
		id:              uuid.NewString(),
		policy:          DefaultPolicy(),
		permissionState: PermissionUnknown,
		commands:        make(chan func(ctx context.Context)),
		done:            make(chan struct{}),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.timers = newTimerBackend(e.policy.Horizon, e.onTimerExpired)

	if e.native != nil {
		e.native.timeout = e.policy.NativeTimeout
	}

	if e.native != nil && !e.policy.supportsNative(e.platform) {
		e.native = nil
	}

	if e.native != nil {
		e.backends = append(e.backends, e.native)
	}

	e.backends = append(e.backends, e.timers)

	return e
}

// ID returns the engine instance id.
func (e *Engine) ID() string {
	return e.id
}

// Run processes engine work until ctx is canceled, then cancels every
// software timer and clears the active alarm. Native schedules are left in
// place.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	ctx = logger.WithName(ctx, "engine")
	ctx = logger.WithKV(ctx, "engine_id", e.id)

	defer close(e.done)

	logger.InfoKV(ctx, "Alarm engine started",
		"platform", e.platform.Name,
		"platform_version", e.platform.Version,
		"native", e.native != nil,
		"horizon", e.policy.Horizon.String())

	e.probePermission(ctx)

	for {
		select {
		case <-ctx.Done():
			e.teardown(ctx)

			return nil
		case command := <-e.commands:
			command(ctx)
		}
	}
}

// Reconcile arms schedules for every future alarm in activities, processed
// in order. Timers, past-due and malformed alarms are skipped.
func (e *Engine) Reconcile(ctx context.Context, activities []*activity.Activity) {
	e.do(ctx, func(ctx context.Context) {
		e.reconcile(ctx, activities)
	})
}

// Snooze dismisses the active alarm and re-arms it one snooze interval from
// now. It does nothing when no alarm is active.
func (e *Engine) Snooze(ctx context.Context) {
	e.do(ctx, e.snooze)
}

// Stop dismisses the active alarm and cancels its native schedule. It does
// nothing when no alarm is active.
func (e *Engine) Stop(ctx context.Context) {
	e.do(ctx, e.stop)
}

// ActiveAlarm returns a copy of the active alarm, or nil.
func (e *Engine) ActiveAlarm(ctx context.Context) *activity.Activity {
	var active *activity.Activity

	e.do(ctx, func(context.Context) {
		active = e.active.Clone()
	})

	return active
}

// Status returns a snapshot of the engine state. It reports only the
// engine id once the engine has stopped.
func (e *Engine) Status(ctx context.Context) Status {
	status := Status{
		EngineID:   e.id,
		Permission: PermissionUnknown,
	}

	e.do(ctx, func(context.Context) {
		status.ActiveAlarm = e.active.Clone()
		status.Schedules = e.timers.snapshot()
		status.NativeAvailable = e.native != nil
		status.Permission = e.permissionState
	})

	return status
}

// Done is closed once the engine has stopped.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// do runs fn on the engine goroutine and waits for it. It returns false when
// the engine stopped or ctx ended before fn could run.
func (e *Engine) do(ctx context.Context, fn func(ctx context.Context)) bool {
	finished := make(chan struct{})

	command := func(ctx context.Context) {
		defer close(finished)

		fn(ctx)
	}

	select {
	case e.commands <- command:
	case <-e.done:
		return false
	case <-ctx.Done():
		return false
	}

	<-finished

	return true
}

// post queues fn on the engine goroutine without waiting for it to run.
func (e *Engine) post(fn func(ctx context.Context)) {
	select {
	case e.commands <- fn:
	case <-e.done:
	}
}

// onTimerExpired is called on the timer goroutine.
func (e *Engine) onTimerExpired(id string, gen uint64) {
	e.post(func(ctx context.Context) {
		alarm := e.timers.expire(id, gen)
		if alarm == nil {
			return
		}

		logger.InfoKV(ctx, "Alarm fired", "activity_id", id)
		e.setActive(ctx, alarm)
	})
}

// probePermission starts the notification permission request when the
// platform needs one.
func (e *Engine) probePermission(ctx context.Context) {
	switch {
	case !e.policy.requiresPermission(e.platform):
		e.permissionState = PermissionNotRequired
	case e.permission == nil:
		logger.DebugKV(ctx, "No permission requester, notifications stay unknown")
	default:
		go e.requestPermission(ctx)
	}
}

// setPermission records the permission probe outcome.
func (e *Engine) setPermission(ctx context.Context, state PermissionState, err error) {
	e.permissionState = state

	if err != nil {
		logger.WarnKV(ctx, "Notification permission request failed", "error", err)

		return
	}

	logger.InfoKV(ctx, "Notification permission resolved", "state", string(state))
}

// reconcile implements Reconcile on the engine goroutine.
func (e *Engine) reconcile(ctx context.Context, activities []*activity.Activity) {
	now := time.Now()

	for _, a := range activities {
		if !a.IsAlarm() {
			continue
		}

		at, err := a.AlarmTime()
		if err != nil {
			logger.DebugKV(ctx, "Skipping alarm with malformed time", "activity_id", a.ID, "error", err)

			continue
		}

		delay := at.Sub(now)
		if delay <= 0 {
			logger.DebugKV(ctx, "Skipping past-due alarm", "activity_id", a.ID, "alarm_time", at)

			continue
		}

		e.arm(ctx, Request{
			Alarm: a.Clone(),
			At:    at,
			Delay: delay,
		})
	}
}

// arm tries every backend in priority order until one accepts req.
func (e *Engine) arm(ctx context.Context, req Request) {
	ctx = logger.WithKV(ctx, "activity_id", req.Alarm.ID)

	for _, backend := range e.backends {
		err := backend.Schedule(ctx, req)

		switch {
		case err == nil:
			logger.DebugKV(ctx, "Alarm armed", "backend", backend.Name(), "alarm_time", req.At, "delay", req.Delay.String())

			return
		case errors.Is(err, ErrAlreadyScheduled):
			logger.DebugKV(ctx, "Alarm already scheduled", "backend", backend.Name())

			return
		case errors.Is(err, ErrBeyondHorizon):
			logger.DebugKV(ctx, "Alarm beyond horizon, not scheduled", "backend", backend.Name(), "delay", req.Delay.String())

			return
		default:
			logger.WarnKV(ctx, "Scheduling path failed, trying next", "backend", backend.Name(), "error", err)
		}
	}
}

// snooze implements Snooze on the engine goroutine.
func (e *Engine) snooze(ctx context.Context) {
	alarm := e.active
	if alarm == nil {
		return
	}

	e.setActive(ctx, nil)

	interval := e.policy.SnoozeInterval

	logger.InfoKV(ctx, "Alarm snoozed", "activity_id", alarm.ID, "interval", interval.String())

	// The snoozed schedule replaces whatever the software path still tracks.
	e.timers.drop(alarm.ID)

	e.arm(ctx, Request{
		Alarm:     alarm,
		At:        time.Now().Add(interval),
		Delay:     interval,
		Supersede: true,
	})
}

// stop implements Stop on the engine goroutine.
func (e *Engine) stop(ctx context.Context) {
	alarm := e.active
	if alarm == nil {
		return
	}

	e.setActive(ctx, nil)

	logger.InfoKV(ctx, "Alarm stopped", "activity_id", alarm.ID)

	if e.native == nil {
		return
	}

	if err := e.native.Cancel(ctx, alarm.ID); err != nil {
		logger.DebugKV(ctx, "Native cancel failed", "activity_id", alarm.ID, "error", err)
	}
}

// setActive replaces the active alarm and notifies observers.
func (e *Engine) setActive(ctx context.Context, alarm *activity.Activity) {
	if alarm == nil && e.active == nil {
		return
	}

	e.active = alarm

	for _, observer := range e.observers {
		observer(ctx, alarm.Clone())
	}
}

// teardown cancels all software timers and clears the active alarm.
func (e *Engine) teardown(ctx context.Context) {
	stopped := e.timers.stopAll()
	e.setActive(ctx, nil)

	logger.InfoKV(ctx, "Alarm engine stopped", "cancelled_timers", stopped)
}
