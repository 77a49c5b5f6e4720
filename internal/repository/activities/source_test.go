package activities

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/activity-alarms/internal/domain/activity"
)

const sample = `
activities:
  - id: wake-up
    kind: alarm
    title: Wake up
    days: [mon, tue, wed, thu, fri]
    alarm:
      time: "2026-10-20T07:30:00Z"
      music_title: Sunrise
      vibration_enabled: false
  - id: social
    kind: timer
    title: Social media
    timer:
      app_id: instagram
      app_name: Instagram
      max_daily_minutes: 30
`

// TestDecode parses the sample document.
func TestDecode(t *testing.T) {
	t.Parallel()

	list, err := Decode([]byte(sample))
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.Equal(t, "wake-up", list[0].ID)
	require.True(t, list[0].IsAlarm())
	require.False(t, list[0].Vibrate())
	require.Equal(t, "Sunrise", list[0].Alarm.MusicTitle)

	require.Equal(t, activity.KindTimer, list[1].Kind)
	require.Equal(t, 30, list[1].Timer.MaxDailyMinutes)
}

// TestDecode_Rejects covers id validation.
func TestDecode_Rejects(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte("activities:\n  - kind: alarm\n"))
	require.ErrorIs(t, err, ErrMissingID)

	_, err = Decode([]byte("activities:\n  - id: a\n  - id: a\n"))
	require.ErrorIs(t, err, ErrDuplicateID)

	_, err = Decode([]byte("activities: [oops"))
	require.Error(t, err)
}

// TestEncodeDecode verifies Encode output is accepted by Decode.
func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	list := []*activity.Activity{{
		ID:    "a",
		Kind:  activity.KindAlarm,
		Alarm: &activity.AlarmSettings{Time: "2026-10-20T07:30:00Z", VibrationEnabled: activity.Bool(true)},
	}}

	data, err := Encode(list)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, list, got)
}

// TestFileSource_Snapshot reads what WriteFile stored.
func TestFileSource_Snapshot(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "activities.yaml")
	list := []*activity.Activity{
		{ID: "wake", Kind: activity.KindAlarm, Alarm: &activity.AlarmSettings{Time: "2030-01-02T07:00:00Z"}},
		{ID: "social", Kind: activity.KindTimer, Timer: &activity.TimerSettings{AppID: "chat", MaxDailyMinutes: 30}},
	}

	var source Source = NewFileSource(path)

	_, err := source.Snapshot(context.Background())
	require.Error(t, err)

	require.NoError(t, WriteFile(path, list))

	got, err := source.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, list, got)
}

// watchRecorder collects the snapshot sizes delivered by Watch.
type watchRecorder struct {
	mu     sync.Mutex
	counts []int
}

func (r *watchRecorder) record(list []*activity.Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counts = append(r.counts, len(list))
}

func (r *watchRecorder) list() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]int(nil), r.counts...)
}

// startWatch runs Watch on path until the test ends.
func startWatch(t *testing.T, path string) *watchRecorder {
	t.Helper()

	var recorder watchRecorder

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- NewFileSource(path).Watch(ctx, 20*time.Millisecond, recorder.record)
	}()

	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	require.Eventually(t, func() bool { return len(recorder.list()) == 1 }, 2*time.Second, 5*time.Millisecond)

	return &recorder
}

// TestFileSource_Watch follows in-place writes and ignores unchanged or
// undecodable content.
func TestFileSource_Watch(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "activities.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	recorder := startWatch(t, path)

	// Same bytes and broken YAML keep the current snapshot.
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	require.NoError(t, os.WriteFile(path, []byte("activities: [oops"), 0o600))
	time.Sleep(200 * time.Millisecond)
	require.Equal(t, []int{2}, recorder.list())

	require.NoError(t, os.WriteFile(path, []byte("activities:\n  - id: only\n    kind: timer\n"), 0o600))

	require.Eventually(t, func() bool { return len(recorder.list()) == 2 }, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, []int{2, 1}, recorder.list())
}

// TestFileSource_WatchFollowsRename covers editors that save by renaming a
// temporary file over the activities file.
func TestFileSource_WatchFollowsRename(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "activities.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	recorder := startWatch(t, path)

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o600))

	tmp := filepath.Join(dir, ".activities.yaml.swp")
	require.NoError(t, os.WriteFile(tmp, []byte("activities:\n  - id: only\n    kind: timer\n"), 0o600))
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool { return len(recorder.list()) == 2 }, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, []int{2, 1}, recorder.list())
}

// TestFileSource_WatchMissingDirectory reports that nothing can be watched.
func TestFileSource_WatchMissingDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "activities.yaml")

	err := NewFileSource(path).Watch(context.Background(), time.Millisecond, func([]*activity.Activity) {
		t.Error("no snapshot expected")
	})
	require.ErrorContains(t, err, "watch")
}
