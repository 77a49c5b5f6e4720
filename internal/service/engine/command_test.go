package engine

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/activity-alarms/internal/config"
	"github.com/oshokin/activity-alarms/internal/domain/activity"
	"github.com/oshokin/activity-alarms/internal/feedback"
	"github.com/oshokin/activity-alarms/internal/repository/activities"
)

var errTestProbe = errors.New("test probe error")

// syncBuffer is a goroutine-safe strings.Builder.
type syncBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.buf.String()
}

// pollOnceSource reads the activities file once and then waits, so the run
// stays inside the synctest bubble without filesystem notifications.
type pollOnceSource struct {
	*activities.FileSource
}

func (s pollOnceSource) Watch(ctx context.Context, _ time.Duration, onChange func([]*activity.Activity)) error {
	list, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}

	onChange(list)
	<-ctx.Done()

	return nil
}

// TestRun_FireSnoozeQuit drives the whole binary flow against an activities
// file with simulated time.
func TestRun_FireSnoozeQuit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	synctest.Test(t, func(t *testing.T) {
		activitiesPath := filepath.Join(dir, "activities.yaml")
		configPath := filepath.Join(dir, "config.yaml")

		alarmTime := time.Now().Add(time.Minute).Format(time.RFC3339Nano)
		activitiesYAML := "activities:\n" +
			"  - id: wake\n" +
			"    kind: alarm\n" +
			"    title: Wake up\n" +
			"    alarm:\n" +
			"      time: \"" + alarmTime + "\"\n" +
			"  - id: games\n" +
			"    kind: timer\n"
		require.NoError(t, os.WriteFile(activitiesPath, []byte(activitiesYAML), 0o600))
		require.NoError(t, os.WriteFile(configPath, []byte("feedback:\n  sound: none\n"), 0o600))

		input, commands := io.Pipe()
		out := new(syncBuffer)
		done := make(chan error, 1)

		go func() {
			done <- Run(context.Background(), &Options{
				ConfigPath:     configPath,
				ActivitiesFile: activitiesPath,
				Source:         pollOnceSource{activities.NewFileSource(activitiesPath)},
				Input:          input,
				Output:         out,
			})
		}()

		synctest.Wait()
		require.NotContains(t, out.String(), "ALARM")

		time.Sleep(time.Minute)
		synctest.Wait()
		require.Equal(t, 1, strings.Count(out.String(), `ALARM "Wake up" (wake)`))

		_, err := io.WriteString(commands, "snooze\n")
		require.NoError(t, err)
		synctest.Wait()
		require.Contains(t, out.String(), "Alarm dismissed")

		time.Sleep(config.DefaultSnoozeInterval)
		synctest.Wait()
		require.Equal(t, 2, strings.Count(out.String(), `ALARM "Wake up" (wake)`))

		_, err = io.WriteString(commands, "quit\n")
		require.NoError(t, err)
		require.NoError(t, <-done)
		require.NoError(t, commands.Close())
	})
}

// TestRun_BadConfig reports configuration errors.
func TestRun_BadConfig(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	require.ErrorContains(t, err, "load configuration")
}

// TestDialNative covers the capability probe outcomes.
func TestDialNative(t *testing.T) {
	cfg := config.Default()
	require.Nil(t, dialNative(context.Background(), cfg))

	cfg.Engine.NativeEnabled = true

	original := processRunning
	t.Cleanup(func() { processRunning = original })

	processRunning = func(string) (bool, error) { return false, errTestProbe }
	require.Nil(t, dialNative(context.Background(), cfg))

	processRunning = func(string) (bool, error) { return false, nil }
	require.Nil(t, dialNative(context.Background(), cfg))

	processRunning = func(string) (bool, error) { return true, nil }

	client := dialNative(context.Background(), cfg)
	require.NotNil(t, client)
	require.NoError(t, client.Close())
}

// TestNewPlayer maps sound settings to players.
func TestNewPlayer(t *testing.T) {
	t.Parallel()

	require.IsType(t, feedback.Nop{}, newPlayer(&config.Feedback{Sound: config.SoundNone}, io.Discard))
	require.IsType(t, new(feedback.Bell), newPlayer(&config.Feedback{Sound: config.SoundBell}, io.Discard))
}
