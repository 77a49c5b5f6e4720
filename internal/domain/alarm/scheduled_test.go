package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestScheduledClone verifies that Clone returns a copy and handles nil safely.
func TestScheduledClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Scheduled)(nil).Clone())

	a := &Scheduled{
		ID:      "wake-up",
		At:      time.Now().UTC().Truncate(time.Second),
		Title:   "Wake up",
		Vibrate: true,
	}

	b := a.Clone()

	require.Equal(t, a, b)
	require.NotSame(t, a, b)
}

// TestScheduledValidate checks required fields.
func TestScheduledValidate(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, (*Scheduled)(nil).Validate(), ErrIDRequired)
	require.ErrorIs(t, (&Scheduled{At: time.Now()}).Validate(), ErrIDRequired)
	require.ErrorIs(t, (&Scheduled{ID: "a"}).Validate(), ErrTimeRequired)
	require.NoError(t, (&Scheduled{ID: "a", At: time.Now()}).Validate())
}
