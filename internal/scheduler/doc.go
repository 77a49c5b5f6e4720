// Package scheduler implements the alarm scheduling engine.
//
// The Engine turns alarm-kind activities into armed schedules, keeps at most
// one active alarm and handles snooze and stop. It prefers a native scheduler
// capability when one is available on the current platform and falls back to
// in-process software timers otherwise. Every failure inside the engine
// degrades to "this alarm does not fire" and is only logged.
//
// All engine state is owned by a single goroutine started with Run; public
// methods hand work to that goroutine and wait for it to finish.
package scheduler
