package scheduler

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"
)

// TestTimerBackend_StaleGenerationIgnored checks that expirations of a
// replaced timer do not surface an alarm.
func TestTimerBackend_StaleGenerationIgnored(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		var (
			mu      sync.Mutex
			expired []uint64
		)

		backend := newTimerBackend(time.Hour, func(_ string, gen uint64) {
			mu.Lock()
			defer mu.Unlock()

			expired = append(expired, gen)
		})

		ctx := context.Background()
		at := time.Now().Add(time.Minute)

		require.NoError(t, backend.Schedule(ctx, Request{Alarm: alarmAt("a", at), At: at, Delay: time.Minute}))
		require.ErrorIs(t, backend.Schedule(ctx, Request{Alarm: alarmAt("a", at), At: at, Delay: time.Minute}), ErrAlreadyScheduled)

		later := at.Add(time.Minute)
		require.ErrorIs(t,
			backend.Schedule(ctx, Request{Alarm: alarmAt("a", later), At: later, Delay: 2 * time.Minute}),
			ErrAlreadyScheduled)

		require.NoError(t, backend.Schedule(ctx, Request{Alarm: alarmAt("a", at), At: at, Delay: time.Minute, Supersede: true}))

		require.Nil(t, backend.expire("a", 1))

		time.Sleep(time.Minute)
		synctest.Wait()

		mu.Lock()
		require.Equal(t, []uint64{2}, expired)
		mu.Unlock()

		require.Equal(t, "a", backend.expire("a", 2).ID)
		require.Nil(t, backend.expire("a", 2))

		// A fired entry keeps guarding its id.
		require.ErrorIs(t, backend.Schedule(ctx, Request{Alarm: alarmAt("a", later), At: later, Delay: time.Minute}), ErrAlreadyScheduled)

		require.ErrorIs(t,
			backend.Schedule(ctx, Request{Alarm: alarmAt("b", at), At: at, Delay: 2 * time.Hour}),
			ErrBeyondHorizon)

		require.NoError(t, backend.Cancel(ctx, "a"))
		require.Empty(t, backend.snapshot())
		require.Zero(t, backend.stopAll())
	})
}
