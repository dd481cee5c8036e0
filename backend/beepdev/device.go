// SPDX-License-Identifier: EPL-2.0

package beepdev

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/ik5/sndpool/audio"
	"github.com/ik5/sndpool/backend"
	"go.uber.org/zap"
)

// Options configures Open.
type Options struct {
	// SampleRate of the speaker. Defaults to 48000.
	SampleRate int
	// BufferSize is the speaker latency. Defaults to 100ms.
	BufferSize time.Duration
	Logger     *zap.Logger
}

var (
	speakerOnce sync.Once
	speakerRate beep.SampleRate
	speakerErr  error
)

func initSpeaker(rate beep.SampleRate, bufSize time.Duration) error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(rate, rate.N(bufSize))
		speakerRate = rate
	})
	if speakerErr != nil {
		return speakerErr
	}
	if speakerRate != rate {
		return fmt.Errorf("speaker already runs at %d Hz, asked for %d Hz", speakerRate, rate)
	}
	return nil
}

// Device mixes every channel into one speaker stream.
type Device struct {
	lock, unlock func()
	log          *zap.Logger

	format beep.Format
	mixer  *beep.Mixer
	// out is what the speaker plays. It ends once the device is closed so
	// the speaker drops it.
	out beep.Streamer

	channels map[backend.Channel]*channel
	nextCh   backend.Channel
	buffers  map[backend.Buffer]*beep.Buffer
	nextBuf  backend.Buffer

	listener    mgl32.Vec3
	forward, up mgl32.Vec3

	closed bool
}

// Opener returns a backend.Opener calling Open with opts.
func Opener(opts Options) backend.Opener {
	return func() (backend.Device, error) {
		return Open(opts)
	}
}

// Open initializes the speaker on first use and starts a fresh mixer on it.
func Open(opts Options) (*Device, error) {
	rate := opts.SampleRate
	if rate <= 0 {
		rate = 48000
	}
	bufSize := opts.BufferSize
	if bufSize <= 0 {
		bufSize = 100 * time.Millisecond
	}

	if err := initSpeaker(beep.SampleRate(rate), bufSize); err != nil {
		return nil, fmt.Errorf("initializing speaker: %w", err)
	}

	d := newDevice(rate, opts.Logger, speaker.Lock, speaker.Unlock)
	speaker.Play(d.out)
	return d, nil
}

func newDevice(rate int, log *zap.Logger, lock, unlock func()) *Device {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Device{
		lock:   lock,
		unlock: unlock,
		log:    log.Named("beep"),
		format: beep.Format{
			SampleRate:  beep.SampleRate(rate),
			NumChannels: 2,
			Precision:   2,
		},
		mixer:    &beep.Mixer{},
		channels: make(map[backend.Channel]*channel),
		buffers:  make(map[backend.Buffer]*beep.Buffer),
		forward:  mgl32.Vec3{0, 0, -1},
		up:       mgl32.Vec3{0, 1, 0},
	}
	// The speaker calls out under its lock, which guards closed.
	d.out = beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if d.closed {
			return 0, false
		}
		return d.mixer.Stream(samples)
	})
	return d
}

func (d *Device) Name() string    { return "beep" }
func (d *Device) SampleRate() int { return int(d.format.SampleRate) }

// channel returns the channel for ch. Callers hold the lock.
func (d *Device) channel(ch backend.Channel) (*channel, error) {
	if d.closed {
		return nil, backend.ErrDeviceClosed
	}
	c, ok := d.channels[ch]
	if !ok {
		return nil, fmt.Errorf("%w: %d", backend.ErrUnknownChannel, ch)
	}
	return c, nil
}

func (d *Device) CreateChannel() (backend.Channel, error) {
	d.lock()
	defer d.unlock()

	if d.closed {
		return 0, backend.ErrDeviceClosed
	}

	c := newChannel()
	d.mixer.Add(c.volume)
	d.nextCh++
	d.channels[d.nextCh] = c
	return d.nextCh, nil
}

func (d *Device) DestroyChannel(ch backend.Channel) error {
	d.lock()
	defer d.unlock()

	c, err := d.channel(ch)
	if err != nil {
		return err
	}
	// The mixer drops the voice on its next pass.
	c.voice.dead = true
	c.ctrl.Paused = false
	delete(d.channels, ch)
	return nil
}

func (d *Device) CreateBuffer(clip *audio.Clip) (backend.Buffer, error) {
	if err := clip.Validate(); err != nil {
		return 0, err
	}

	buf := beep.NewBuffer(d.format)
	buf.Append(clipStreamer(clip.Resample(d.SampleRate())))

	d.lock()
	defer d.unlock()

	if d.closed {
		return 0, backend.ErrDeviceClosed
	}
	d.nextBuf++
	d.buffers[d.nextBuf] = buf
	return d.nextBuf, nil
}

// DeleteBuffer frees buf, detaching it from any channel still using it.
func (d *Device) DeleteBuffer(buf backend.Buffer) error {
	d.lock()
	defer d.unlock()

	if d.closed {
		return backend.ErrDeviceClosed
	}
	if _, ok := d.buffers[buf]; !ok {
		return fmt.Errorf("%w: %d", backend.ErrUnknownBuffer, buf)
	}

	for _, c := range d.channels {
		if c.buf == buf {
			detach(c)
		}
	}
	delete(d.buffers, buf)
	return nil
}

// refresh notices a one-shot that ran out. Callers hold the lock.
func refresh(c *channel) backend.State {
	if c.state == backend.Playing && c.voice.drained {
		c.state = backend.Stopped
		c.ctrl.Paused = true
	}
	return c.state
}

func detach(c *channel) {
	c.ctrl.Paused = true
	c.voice.src = nil
	c.voice.drained = false
	c.buf = 0
	c.state = backend.Initial
}

func (d *Device) AttachBuffer(ch backend.Channel, buf backend.Buffer) error {
	d.lock()
	defer d.unlock()

	c, err := d.channel(ch)
	if err != nil {
		return err
	}
	b, ok := d.buffers[buf]
	if !ok {
		return fmt.Errorf("%w: %d", backend.ErrUnknownBuffer, buf)
	}
	if refresh(c) == backend.Playing {
		return fmt.Errorf("%w: %d", backend.ErrChannelBusy, ch)
	}

	c.voice.src = b.Streamer(0, b.Len())
	c.voice.drained = false
	c.buf = buf
	return nil
}

func (d *Device) DetachBuffer(ch backend.Channel) error {
	d.lock()
	defer d.unlock()

	c, err := d.channel(ch)
	if err != nil {
		return err
	}
	detach(c)
	return nil
}

func (d *Device) Play(ch backend.Channel) error {
	d.lock()
	defer d.unlock()

	c, err := d.channel(ch)
	if err != nil {
		return err
	}
	if c.voice.src == nil {
		c.state = backend.Stopped
		return nil
	}

	if err := c.voice.src.Seek(0); err != nil {
		return fmt.Errorf("rewinding channel %d: %w", ch, err)
	}
	c.voice.drained = false
	c.ctrl.Paused = false
	c.state = backend.Playing
	return nil
}

func (d *Device) Stop(ch backend.Channel) error {
	d.lock()
	defer d.unlock()

	c, err := d.channel(ch)
	if err != nil {
		return err
	}
	switch refresh(c) {
	case backend.Playing, backend.Paused:
		c.ctrl.Paused = true
		c.state = backend.Stopped
	}
	return nil
}

// Pause holds ch at its current position.
func (d *Device) Pause(ch backend.Channel) error {
	d.lock()
	defer d.unlock()

	c, err := d.channel(ch)
	if err != nil {
		return err
	}
	if refresh(c) == backend.Playing {
		c.ctrl.Paused = true
		c.state = backend.Paused
	}
	return nil
}

func (d *Device) State(ch backend.Channel) (backend.State, error) {
	d.lock()
	defer d.unlock()

	c, err := d.channel(ch)
	if err != nil {
		return 0, err
	}
	return refresh(c), nil
}

func (d *Device) SetGain(ch backend.Channel, g backend.Gain) error {
	d.lock()
	defer d.unlock()

	c, err := d.channel(ch)
	if err != nil {
		return err
	}
	c.setGain(g.Value())
	return nil
}

func (d *Device) SetLooping(ch backend.Channel, loop bool) error {
	d.lock()
	defer d.unlock()

	c, err := d.channel(ch)
	if err != nil {
		return err
	}
	c.voice.loop = loop
	return nil
}

func (d *Device) SetPosition(ch backend.Channel, pos mgl32.Vec3) error {
	d.lock()
	defer d.unlock()

	c, err := d.channel(ch)
	if err != nil {
		return err
	}
	c.pos = pos
	d.repan(c)
	return nil
}

// repan balances c from its position relative to the listener. Callers
// hold the lock.
func (d *Device) repan(c *channel) {
	c.pan.Pan = backend.Pan(d.listener, d.forward, d.up, c.pos)
}

func (d *Device) SetListenerPosition(pos mgl32.Vec3) error {
	d.lock()
	defer d.unlock()

	if d.closed {
		return backend.ErrDeviceClosed
	}
	d.listener = pos
	for _, c := range d.channels {
		d.repan(c)
	}
	return nil
}

func (d *Device) SetListenerOrientation(forward, up mgl32.Vec3) error {
	d.lock()
	defer d.unlock()

	if d.closed {
		return backend.ErrDeviceClosed
	}
	d.forward, d.up = forward, up
	for _, c := range d.channels {
		d.repan(c)
	}
	return nil
}

// Close silences the mixer and takes it off the speaker. The speaker itself
// stays initialized for the rest of the process.
func (d *Device) Close() error {
	d.lock()
	defer d.unlock()

	if d.closed {
		return backend.ErrDeviceClosed
	}
	d.closed = true

	d.mixer.Clear()
	clear(d.channels)
	clear(d.buffers)
	d.log.Debug("mixer cleared")
	return nil
}
