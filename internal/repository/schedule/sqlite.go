package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Registers the "sqlite" driver.

	domain "github.com/oshokin/activity-alarms/internal/domain/alarm"
)

// SQLiteRepository keeps alarms in a SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (or creates) the database at path and prepares the schema.
func NewSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(1)

	r := &SQLiteRepository{db: db}
	if err := r.migrate(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("migrate: %w", err)
	}

	return r, nil
}

func (r *SQLiteRepository) migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS scheduled_alarms (
		id            TEXT PRIMARY KEY,
		at_ms         INTEGER NOT NULL,
		title         TEXT NOT NULL DEFAULT '',
		vibrate       INTEGER NOT NULL DEFAULT 1,
		created_at_ms INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_scheduled_alarms_at ON scheduled_alarms(at_ms);
	`

	_, err := r.db.ExecContext(ctx, schema)

	return err
}

// List implements Repository.
func (r *SQLiteRepository) List(ctx context.Context) ([]*domain.Scheduled, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, at_ms, title, vibrate, created_at_ms FROM scheduled_alarms ORDER BY at_ms, id`)
	if err != nil {
		return nil, fmt.Errorf("query alarms: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	var alarms []*domain.Scheduled

	for rows.Next() {
		var (
			a                 domain.Scheduled
			atMs, createdAtMs int64
		)

		if err := rows.Scan(&a.ID, &atMs, &a.Title, &a.Vibrate, &createdAtMs); err != nil {
			return nil, fmt.Errorf("scan alarm: %w", err)
		}

		a.At = time.UnixMilli(atMs)
		if createdAtMs > 0 {
			a.CreatedAt = time.UnixMilli(createdAtMs)
		}

		alarms = append(alarms, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alarms: %w", err)
	}

	return alarms, nil
}

// Save implements Repository.
func (r *SQLiteRepository) Save(ctx context.Context, alarm *domain.Scheduled) error {
	if err := alarm.Validate(); err != nil {
		return err
	}

	var createdAtMs int64
	if !alarm.CreatedAt.IsZero() {
		createdAtMs = alarm.CreatedAt.UnixMilli()
	}

	return retryOp(defaultRetryConfig, func() error {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO scheduled_alarms (id, at_ms, title, vibrate, created_at_ms)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				at_ms = excluded.at_ms,
				title = excluded.title,
				vibrate = excluded.vibrate,
				created_at_ms = excluded.created_at_ms`,
			alarm.ID, alarm.At.UnixMilli(), alarm.Title, alarm.Vibrate, createdAtMs,
		)

		return err
	})
}

// Delete implements Repository.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	return retryOp(defaultRetryConfig, func() error {
		_, err := r.db.ExecContext(ctx, `DELETE FROM scheduled_alarms WHERE id = ?`, id)

		return err
	})
}

// Close implements Repository.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
