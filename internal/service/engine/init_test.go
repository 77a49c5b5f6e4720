package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/activity-alarms/internal/config"
	"github.com/oshokin/activity-alarms/internal/repository/activities"
)

// TestInit writes loadable starter files and refuses to overwrite them.
func TestInit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	opts := &InitOptions{
		ConfigPath:     filepath.Join(dir, "settings.yaml"),
		ActivitiesFile: filepath.Join(dir, "activities.yaml"),
	}
	now := time.Date(2026, time.March, 31, 22, 15, 0, 0, time.UTC)

	require.NoError(t, Init(context.Background(), opts, now))

	cfg, err := config.Load(opts.ConfigPath)
	require.NoError(t, err)
	require.Equal(t, opts.ActivitiesFile, cfg.ActivitiesFile)

	list, err := activities.NewFileSource(opts.ActivitiesFile).Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	at, err := list[0].AlarmTime()
	require.NoError(t, err)
	require.True(t, at.Equal(time.Date(2026, time.April, 1, 7, 0, 0, 0, time.UTC)))
	require.False(t, list[1].IsAlarm())

	require.ErrorIs(t, Init(context.Background(), opts, now), ErrFileExists)

	opts.Force = true
	require.NoError(t, Init(context.Background(), opts, now))
}
