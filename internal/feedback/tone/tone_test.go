package tone

import (
	"context"
	"encoding/binary"
	"testing"
	"testing/synctest"

	"github.com/ebitengine/oto/v3"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/activity-alarms/internal/domain/activity"
)

// TestBeeper_Pattern checks the tone is audible in the first half second and
// silent in the second.
func TestBeeper_Pattern(t *testing.T) {
	t.Parallel()

	b := NewBeeper(880)
	frameSize := channels * bytesPerSample
	buf := make([]byte, 2*beepSamples*frameSize)

	n, err := b.Read(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)

	var loud bool

	for i := range beepSamples {
		left := int16(binary.LittleEndian.Uint16(buf[i*frameSize:]))
		right := int16(binary.LittleEndian.Uint16(buf[i*frameSize+bytesPerSample:]))
		require.Equal(t, left, right)

		if left > 1000 || left < -1000 {
			loud = true
		}
	}

	require.True(t, loud)

	for i := beepSamples; i < 2*beepSamples; i++ {
		require.Zero(t, binary.LittleEndian.Uint16(buf[i*frameSize:]))
	}
}

// TestBeeper_OddReads checks frames split across reads stay aligned.
func TestBeeper_OddReads(t *testing.T) {
	t.Parallel()

	whole := make([]byte, 64)
	_, err := NewBeeper(440).Read(whole)
	require.NoError(t, err)

	split := NewBeeper(440)

	var got []byte

	for len(got) < len(whole) {
		chunk := make([]byte, 3)
		n, err := split.Read(chunk)
		require.NoError(t, err)

		got = append(got, chunk[:n]...)
	}

	require.Equal(t, whole, got[:len(whole)])
}

// slowDevice returns an audio device whose open blocks until release is
// closed and then fails.
func slowDevice(release <-chan struct{}) *audioDevice {
	return newAudioDevice(func() (*oto.Context, error) {
		<-release

		return nil, ErrAudioUnavailable
	})
}

// TestPlayer_StartDoesNotWaitForDevice checks Start returns while the device
// is still opening and later reports the open failure.
func TestPlayer_StartDoesNotWaitForDevice(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		release := make(chan struct{})
		p := &Player{Hz: 440, device: slowDevice(release)}
		alarm := &activity.Activity{ID: "a"}

		require.NoError(t, p.Start(context.Background(), alarm))
		synctest.Wait()

		p.mu.Lock()
		require.True(t, p.wanted)
		p.mu.Unlock()

		close(release)
		synctest.Wait()

		p.mu.Lock()
		require.False(t, p.wanted)
		require.Nil(t, p.player)
		p.mu.Unlock()

		err := p.Start(context.Background(), alarm)
		require.ErrorIs(t, err, ErrAudioUnavailable)
	})
}

// TestPlayer_StopCancelsPendingStart checks a Stop before the device is ready
// wins over the deferred start.
func TestPlayer_StopCancelsPendingStart(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		release := make(chan struct{})
		p := &Player{Hz: 440, device: slowDevice(release)}

		require.NoError(t, p.Start(context.Background(), &activity.Activity{ID: "a"}))
		p.Stop()

		close(release)
		synctest.Wait()

		p.mu.Lock()
		defer p.mu.Unlock()

		require.False(t, p.wanted)
		require.Nil(t, p.player)
	})
}
