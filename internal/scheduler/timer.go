package scheduler

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/oshokin/activity-alarms/internal/domain/activity"
)

// timerEntry tracks one software schedule.
type timerEntry struct {
	// alarm is the activity surfaced when the timer expires.
	alarm *activity.Activity
	// at is the deadline the timer was armed for.
	at time.Time
	// handle is the pending timer; nil once it has fired.
	handle *time.Timer
	// gen distinguishes this arming from earlier ones for the same id.
	gen uint64
}

// timerBackend is the in-process fallback path. It is only touched from the
// engine goroutine; expirations are reported through onExpire, which must
// hand them back to that goroutine.
type timerBackend struct {
	// horizon is the longest accepted delay.
	horizon time.Duration
	// entries maps activity id to its schedule.
	entries map[string]*timerEntry
	// seq is the last generation handed out.
	seq uint64
	// onExpire is called from the timer goroutine when a deadline passes.
	onExpire func(id string, gen uint64)
}

// newTimerBackend creates an empty software timer backend.
func newTimerBackend(horizon time.Duration, onExpire func(id string, gen uint64)) *timerBackend {
	return &timerBackend{
		horizon:  horizon,
		entries:  make(map[string]*timerEntry),
		onExpire: onExpire,
	}
}

// Name implements Backend.
func (b *timerBackend) Name() string { return backendTimer }

// Schedule implements Backend.
func (b *timerBackend) Schedule(_ context.Context, req Request) error {
	if req.Delay > b.horizon {
		return ErrBeyondHorizon
	}

	id := req.Alarm.ID

	// A tracked id stays tracked after firing; only a superseding request
	// replaces it.
	if _, ok := b.entries[id]; ok && !req.Supersede {
		return ErrAlreadyScheduled
	}

	b.drop(id)

	b.seq++
	gen := b.seq

	b.entries[id] = &timerEntry{
		alarm: req.Alarm,
		at:    req.At,
		gen:   gen,
		// A slow native attempt may have eaten into Delay, so aim at At.
		handle: time.AfterFunc(max(time.Until(req.At), 0), func() {
			b.onExpire(id, gen)
		}),
	}

	return nil
}

// Cancel implements Backend.
func (b *timerBackend) Cancel(_ context.Context, id string) error {
	b.drop(id)

	return nil
}

// expire marks the entry for id as fired and returns its alarm. Stale
// generations and unknown ids yield nil.
func (b *timerBackend) expire(id string, gen uint64) *activity.Activity {
	entry, ok := b.entries[id]
	if !ok || entry.gen != gen || entry.handle == nil {
		return nil
	}

	entry.handle = nil

	return entry.alarm
}

// drop stops and forgets the entry for id.
func (b *timerBackend) drop(id string) {
	entry, ok := b.entries[id]
	if !ok {
		return
	}

	if entry.handle != nil {
		entry.handle.Stop()
	}

	delete(b.entries, id)
}

// stopAll cancels every pending timer and clears the tracked set.
func (b *timerBackend) stopAll() int {
	stopped := 0

	for id, entry := range b.entries {
		if entry.handle != nil && entry.handle.Stop() {
			stopped++
		}

		delete(b.entries, id)
	}

	return stopped
}

// snapshot lists the tracked entries ordered by id.
func (b *timerBackend) snapshot() []Schedule {
	result := make([]Schedule, 0, len(b.entries))

	for id, entry := range b.entries {
		result = append(result, Schedule{
			ID:    id,
			At:    entry.at,
			Armed: entry.handle != nil,
		})
	}

	slices.SortFunc(result, func(a, b Schedule) int {
		return strings.Compare(a.ID, b.ID)
	})

	return result
}
