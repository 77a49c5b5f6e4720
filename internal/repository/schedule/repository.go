package schedule

import (
	"context"

	domain "github.com/oshokin/activity-alarms/internal/domain/alarm"
)

// Repository defines persistence operations for scheduled alarms.
type Repository interface {
	// List returns every stored alarm ordered by fire time.
	List(ctx context.Context) ([]*domain.Scheduled, error)
	// Save inserts the alarm or replaces the one with the same id.
	Save(ctx context.Context, alarm *domain.Scheduled) error
	// Delete removes the alarm with id. Missing ids are not an error.
	Delete(ctx context.Context, id string) error
	// Close releases held resources.
	Close() error
}
