package tone

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/oshokin/activity-alarms/internal/domain/activity"
	"github.com/oshokin/activity-alarms/internal/logger"
)

const (
	// SampleRate of the generated signal.
	SampleRate = 44100
	// channels is the output channel count.
	channels = 2
	// bytesPerSample for signed 16-bit little-endian samples.
	bytesPerSample = 2
	// amplitude keeps the beep well below clipping.
	amplitude = 0.3
	// beepSamples is the length of one beep and of one pause.
	beepSamples = SampleRate / 2
)

// ErrAudioUnavailable is returned when no audio device could be opened.
var ErrAudioUnavailable = errors.New("audio device is unavailable")

// audioDevice opens an oto context once, in the background, so callers on
// latency-sensitive goroutines never wait for the hardware.
type audioDevice struct {
	// open creates the context and waits for the hardware to be ready.
	open func() (*oto.Context, error)
	// once guards the background open.
	once sync.Once
	// ready is closed once ctx or err is set.
	ready chan struct{}
	ctx   *oto.Context
	err   error
}

func newAudioDevice(open func() (*oto.Context, error)) *audioDevice {
	return &audioDevice{
		open:  open,
		ready: make(chan struct{}),
	}
}

// warm starts opening the device if nobody has yet.
func (d *audioDevice) warm() {
	d.once.Do(func() {
		go func() {
			defer close(d.ready)

			d.ctx, d.err = d.open()
		}()
	})
}

// context returns the opened context without blocking. ok is false while the
// device is still opening.
func (d *audioDevice) context() (ctx *oto.Context, ok bool, err error) {
	select {
	case <-d.ready:
		return d.ctx, true, d.err
	default:
		return nil, false, nil
	}
}

// openOto opens the process-wide oto context.
func openOto() (*oto.Context, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAudioUnavailable, err)
	}

	// Wait for the hardware audio devices to be ready.
	<-ready

	return ctx, nil
}

// oto allows one context per process.
//
//nolint:gochecknoglobals // Shared by every Player.
var speakers = newAudioDevice(openOto)

// Player beeps at a fixed pitch until stopped.
type Player struct {
	// Hz is the pitch of the beep.
	Hz float64

	// device supplies the oto context.
	device *audioDevice

	mu     sync.Mutex
	player *oto.Player
	// wanted is true between Start and Stop.
	wanted bool
	// gen invalidates deferred starts made before the last Stop.
	gen uint64
}

// New builds a player beeping at hz and starts opening the audio device.
func New(hz float64) *Player {
	speakers.warm()

	return &Player{Hz: hz, device: speakers}
}

// Start begins the beep. It never waits for the audio device: while the
// device is still opening, playback begins as soon as it is ready unless Stop
// was called first. The signal is endless so no restart loop is needed.
func (p *Player) Start(ctx context.Context, alarm *activity.Activity) error {
	p.device.warm()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.wanted {
		return nil
	}

	audio, ok, err := p.device.context()
	if err != nil {
		return err
	}

	p.wanted = true

	if !ok {
		p.gen++
		go p.startWhenReady(ctx, alarm, p.gen)

		return nil
	}

	p.play(ctx, audio, alarm)

	return nil
}

// startWhenReady plays once the device has opened, if gen is still current.
func (p *Player) startWhenReady(ctx context.Context, alarm *activity.Activity, gen uint64) {
	<-p.device.ready

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.wanted || p.gen != gen {
		return
	}

	audio, _, err := p.device.context()
	if err != nil {
		logger.WarnKV(ctx, "Alarm tone unavailable", "activity_id", alarm.ID, "error", err)

		p.wanted = false

		return
	}

	p.play(ctx, audio, alarm)
}

// play starts the oto player. p.mu must be held.
func (p *Player) play(ctx context.Context, audio *oto.Context, alarm *activity.Activity) {
	p.player = audio.NewPlayer(NewBeeper(p.Hz))
	p.player.Play()

	logger.DebugKV(ctx, "Alarm tone playing", "activity_id", alarm.ID, "hz", p.Hz)
}

// Stop silences the beep and cancels a start still waiting for the device.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.wanted = false
	p.gen++

	if p.player == nil {
		return
	}

	p.player.Pause()

	if err := p.player.Close(); err != nil {
		logger.Warnf(context.Background(), "Failed to close audio player: %v", err)
	}

	p.player = nil
}

// Beeper is an endless reader of interleaved 16-bit stereo PCM alternating
// half a second of sine tone with half a second of silence.
type Beeper struct {
	// step is the phase increment per sample.
	step float64
	// sample counts frames produced so far.
	sample int
	// pending holds bytes of a frame that did not fit the last read.
	pending []byte
}

// NewBeeper builds a beeper at hz.
func NewBeeper(hz float64) *Beeper {
	return &Beeper{step: 2 * math.Pi * hz / SampleRate}
}

// Read implements io.Reader. It never returns io.EOF.
func (b *Beeper) Read(buf []byte) (int, error) {
	n := copy(buf, b.pending)
	b.pending = b.pending[n:]

	var frame [channels * bytesPerSample]byte

	for n < len(buf) {
		value := b.next()
		for ch := range channels {
			binary.LittleEndian.PutUint16(frame[ch*bytesPerSample:], uint16(value))
		}

		copied := copy(buf[n:], frame[:])
		n += copied

		if copied < len(frame) {
			b.pending = append(b.pending[:0], frame[copied:]...)
		}
	}

	return n, nil
}

// next returns the next sample value.
func (b *Beeper) next() int16 {
	defer func() { b.sample++ }()

	if (b.sample/beepSamples)%2 == 1 {
		return 0
	}

	return int16(amplitude * math.MaxInt16 * math.Sin(b.step*float64(b.sample)))
}
