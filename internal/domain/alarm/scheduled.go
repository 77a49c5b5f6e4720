package alarm

import (
	"errors"
	"time"
)

// Scheduled is an alarm armed in the native scheduler.
type Scheduled struct {
	// ID is the activity id the alarm belongs to.
	ID string
	// At is the wall-clock instant the alarm fires.
	At time.Time
	// Title is shown in the notification.
	Title string
	// Vibrate asks the notifier to vibrate when supported.
	Vibrate bool
	// CreatedAt is when the scheduler accepted the alarm.
	CreatedAt time.Time
}

var (
	// ErrIDRequired is returned when an alarm has no id.
	ErrIDRequired = errors.New("alarm id is required")
	// ErrTimeRequired is returned when an alarm has no fire time.
	ErrTimeRequired = errors.New("alarm time is required")
)

// Validate checks the mandatory fields.
func (s *Scheduled) Validate() error {
	switch {
	case s == nil || s.ID == "":
		return ErrIDRequired
	case s.At.IsZero():
		return ErrTimeRequired
	default:
		return nil
	}
}

// Clone returns a copy of the alarm to avoid leaking internal references.
func (s *Scheduled) Clone() *Scheduled {
	if s == nil {
		return nil
	}

	cloned := *s

	return &cloned
}
