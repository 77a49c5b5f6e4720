package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	domain "github.com/oshokin/activity-alarms/internal/domain/alarm"
	"github.com/oshokin/activity-alarms/internal/logger"
	repo "github.com/oshokin/activity-alarms/internal/repository/schedule"
)

// Notifier presents a fired alarm to the user.
type Notifier interface {
	Notify(ctx context.Context, alarm *domain.Scheduled) error
}

// armed is a pending timer for one alarm.
type armed struct {
	// timer fires the alarm.
	timer *time.Timer
	// gen distinguishes this arming from earlier ones for the same id.
	gen uint64
}

// service keeps scheduled alarms persisted and armed.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// ctx carries the logger for timer callbacks; it is never canceled.
	ctx context.Context
	// repo handles persistent storage of scheduled alarms.
	repo repo.Repository
	// notifier presents fired alarms.
	notifier Notifier
	// mu protects timers and serialises repository writes with firing.
	mu sync.Mutex
	// timers maps alarm id to its pending timer.
	timers map[string]*armed
	// seq is the last generation handed out.
	seq uint64
}

// newService loads persisted alarms and arms them. Alarms whose time passed
// while the daemon was down fire right away.
func newService(ctx context.Context, repository repo.Repository, notifier Notifier) (*service, error) {
	s := &service{
		ctx:      context.WithoutCancel(ctx),
		repo:     repository,
		notifier: notifier,
		timers:   make(map[string]*armed),
	}

	alarms, err := repository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load alarms: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, alarm := range alarms {
		s.arm(alarm)
	}

	logger.InfoKV(ctx, "Scheduled alarms restored", "count", len(alarms))

	return s, nil
}

// ScheduleAlarm persists the alarm and arms it, replacing any earlier alarm
// with the same id.
func (s *service) ScheduleAlarm(ctx context.Context, alarm *domain.Scheduled) error {
	alarm = alarm.Clone()
	if alarm.CreatedAt.IsZero() {
		alarm.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, alarm); err != nil {
		logger.Errorf(ctx, "Failed to persist alarm: %v", err)

		return fmt.Errorf("persist alarm: %w", err)
	}

	s.arm(alarm)

	logger.InfoKV(ctx, "Alarm scheduled", "activity_id", alarm.ID, "alarm_time", alarm.At, "title", alarm.Title)

	return nil
}

// CancelAlarm disarms and forgets the alarm with id.
func (s *service) CancelAlarm(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disarm(id)

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete alarm: %w", err)
	}

	logger.InfoKV(ctx, "Alarm cancelled", "activity_id", id)

	return nil
}

// ListAlarms returns the persisted alarms.
func (s *service) ListAlarms(ctx context.Context) ([]*domain.Scheduled, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alarms, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list alarms: %w", err)
	}

	return alarms, nil
}

// Close stops every pending timer. Alarms stay persisted.
func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.timers {
		s.disarm(id)
	}
}

// arm starts a timer for alarm. Callers hold mu.
func (s *service) arm(alarm *domain.Scheduled) {
	s.disarm(alarm.ID)

	s.seq++
	gen := s.seq

	s.timers[alarm.ID] = &armed{
		gen: gen,
		timer: time.AfterFunc(max(time.Until(alarm.At), 0), func() {
			s.fire(alarm, gen)
		}),
	}
}

// disarm stops and forgets the timer for id. Callers hold mu.
func (s *service) disarm(id string) {
	if current, ok := s.timers[id]; ok {
		current.timer.Stop()
		delete(s.timers, id)
	}
}

// fire removes the alarm and hands it to the notifier.
func (s *service) fire(alarm *domain.Scheduled, gen uint64) {
	ctx := logger.WithFields(s.ctx, "activity_id", alarm.ID, "generation", gen)

	s.mu.Lock()

	current, ok := s.timers[alarm.ID]
	if !ok || current.gen != gen {
		s.mu.Unlock()

		return
	}

	delete(s.timers, alarm.ID)

	if err := s.repo.Delete(ctx, alarm.ID); err != nil {
		logger.ErrorKV(ctx, "Failed to remove fired alarm", "error", err)
	}

	s.mu.Unlock()

	logger.InfoKV(ctx, "Alarm fired", "title", alarm.Title, "late_by", time.Since(alarm.At).Round(time.Millisecond).String())

	if err := s.notifier.Notify(ctx, alarm); err != nil {
		logger.WarnKV(ctx, "Notification failed", "error", err)
	}
}
