package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeLoginEntry records what SetAutostart asked for.
type fakeLoginEntry struct {
	enabled bool
	exec    []string
	fail    error
}

func (e *fakeLoginEntry) IsEnabled() bool { return e.enabled }

func (e *fakeLoginEntry) Enable() error {
	if e.fail != nil {
		return e.fail
	}

	e.enabled = true

	return nil
}

func (e *fakeLoginEntry) Disable() error {
	if e.fail != nil {
		return e.fail
	}

	e.enabled = false

	return nil
}

// useFakeLoginEntry swaps both autostart seams for the duration of t.
func useFakeLoginEntry(t *testing.T, entry *fakeLoginEntry) {
	t.Helper()

	originalEntry, originalPath := newLoginEntry, executablePath

	t.Cleanup(func() {
		newLoginEntry, executablePath = originalEntry, originalPath
	})

	newLoginEntry = func(exec []string) loginEntry {
		if exec != nil {
			entry.exec = exec
		}

		return entry
	}
	executablePath = func() (string, error) { return "/nonexistent/alarm-scheduler", nil }
}

//nolint:paralleltest // Mutates the autostart seams.
func TestSetAutostart(t *testing.T) {
	entry := &fakeLoginEntry{}
	useFakeLoginEntry(t, entry)

	ctx := context.Background()

	changed, err := SetAutostart(ctx, true, "--config", "alarms.yaml")
	require.NoError(t, err)
	require.True(t, changed)
	require.True(t, AutostartEnabled())
	require.Equal(t, []string{"/nonexistent/alarm-scheduler", "--config", "alarms.yaml"}, entry.exec)

	changed, err = SetAutostart(ctx, true)
	require.NoError(t, err)
	require.False(t, changed)

	changed, err = SetAutostart(ctx, false)
	require.NoError(t, err)
	require.True(t, changed)
	require.False(t, AutostartEnabled())
}

//nolint:paralleltest // Mutates the autostart seams.
func TestSetAutostart_Errors(t *testing.T) {
	entry := &fakeLoginEntry{fail: errors.New("read-only home")}
	useFakeLoginEntry(t, entry)

	_, err := SetAutostart(context.Background(), true)
	require.ErrorContains(t, err, "read-only home")

	executablePath = func() (string, error) { return "", errors.New("no executable") }

	_, err = SetAutostart(context.Background(), true)
	require.ErrorContains(t, err, "resolve executable")
}
