package schedule

import (
	"math/rand/v2"
	"strings"
	"time"
)

// retryConfig controls retries of transient SQLite errors.
type retryConfig struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// defaultRetryConfig is used for all SQLite write operations.
//
//nolint:gochecknoglobals // Read-only tuning values.
var defaultRetryConfig = retryConfig{
	maxRetries: 3,
	baseDelay:  50 * time.Millisecond,
	maxDelay:   500 * time.Millisecond,
}

// transientPatterns are fragments of modernc.org/sqlite error messages that
// a retry can resolve.
//
//nolint:gochecknoglobals // Read-only table.
var transientPatterns = []string{
	"SQLITE_BUSY",
	"SQLITE_LOCKED",
	"IOERR_SHORT_READ",
	"database is locked",
	"database table is locked",
}

// isTransientSQLiteErr reports whether err is worth retrying.
func isTransientSQLiteErr(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}

	return false
}

// retryOp runs fn with exponential backoff and jitter while it fails with a
// transient error.
func retryOp(cfg retryConfig, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= cfg.maxRetries; attempt++ {
		lastErr = fn()
		if !isTransientSQLiteErr(lastErr) {
			return lastErr
		}

		if attempt < cfg.maxRetries {
			time.Sleep(backoffDelay(cfg, attempt))
		}
	}

	return lastErr
}

// backoffDelay is baseDelay * 2^attempt capped at maxDelay, plus up to
// baseDelay of jitter.
func backoffDelay(cfg retryConfig, attempt int) time.Duration {
	delay := min(cfg.baseDelay<<attempt, cfg.maxDelay)

	return delay + rand.N(cfg.baseDelay)
}
