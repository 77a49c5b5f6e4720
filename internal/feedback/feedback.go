package feedback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oshokin/activity-alarms/internal/domain/activity"
	"github.com/oshokin/activity-alarms/internal/logger"
)

// Player produces feedback for a single alarm until stopped.
type Player interface {
	// Start begins feedback for alarm. It must not block.
	Start(ctx context.Context, alarm *activity.Activity) error
	// Stop ends the current feedback. Stopping an idle player is a no-op.
	Stop()
}

// Controller keeps feedback in step with the active alarm.
type Controller struct {
	// player renders the feedback.
	player Player
	// mu protects current.
	mu sync.Mutex
	// current is the alarm feedback is playing for, or nil.
	current *activity.Activity
}

// NewController builds a controller around player.
func NewController(player Player) *Controller {
	if player == nil {
		player = Nop{}
	}

	return &Controller{player: player}
}

// Observe handles an active alarm transition. Feedback for the previous alarm
// is always stopped before feedback for the next one starts.
func (c *Controller) Observe(ctx context.Context, active *activity.Activity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.player.Stop()
		logger.DebugKV(ctx, "Feedback stopped", "activity_id", c.current.ID)
		c.current = nil
	}

	if active == nil {
		return
	}

	if err := c.player.Start(ctx, active); err != nil {
		logger.WarnKV(ctx, "Failed to start alarm feedback", "activity_id", active.ID, "error", err)

		return
	}

	c.current = active

	logger.DebugKV(ctx, "Feedback started", "activity_id", active.ID, "vibrate", active.Vibrate())
}

// Playing returns the id of the alarm feedback is playing for.
func (c *Controller) Playing() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return "", false
	}

	return c.current.ID, true
}

// Close stops any feedback still playing.
func (c *Controller) Close() {
	c.Observe(context.Background(), nil)
}

// Nop is a player that produces no feedback.
type Nop struct{}

// Start implements Player.
func (Nop) Start(context.Context, *activity.Activity) error { return nil }

// Stop implements Player.
func (Nop) Stop() {}

// DefaultBellInterval is how often Bell rings the terminal bell.
const DefaultBellInterval = time.Second

// ErrAlreadyPlaying is returned by Start while a previous alarm still plays.
var ErrAlreadyPlaying = errors.New("feedback is already playing")

// Bell rings the terminal bell repeatedly while an alarm is active.
type Bell struct {
	// Output receives the bell characters.
	Output io.Writer
	// Interval between rings, DefaultBellInterval when zero.
	Interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// Start implements Player.
func (b *Bell) Start(_ context.Context, alarm *activity.Activity) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stop != nil {
		return ErrAlreadyPlaying
	}

	interval := b.Interval
	if interval <= 0 {
		interval = DefaultBellInterval
	}

	if _, err := fmt.Fprintf(b.Output, "\a%s\n", alarm.DisplayTitle()); err != nil {
		return fmt.Errorf("ring bell: %w", err)
	}

	b.stop = make(chan struct{})
	b.done = make(chan struct{})

	go b.ring(interval, b.stop, b.done)

	return nil
}

// Stop implements Player. It returns once the ringing goroutine has exited.
func (b *Bell) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stop == nil {
		return
	}

	close(b.stop)
	<-b.done

	b.stop = nil
	b.done = nil
}

func (b *Bell) ring(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			_, _ = io.WriteString(b.Output, "\a")
		}
	}
}
