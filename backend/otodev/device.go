// SPDX-License-Identifier: EPL-2.0

package otodev

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/ik5/sndpool/audio"
	"github.com/ik5/sndpool/backend"
	"github.com/ik5/sndpool/utils"
	"go.uber.org/zap"
)

// ErrRateMismatch indicates an Open at a rate other than the running
// context's.
var ErrRateMismatch = errors.New("oto context runs at a different sample rate")

// Options configures Open.
type Options struct {
	// SampleRate of the output. Defaults to 44100.
	SampleRate int
	// BufferSize is the output latency; zero lets oto choose.
	BufferSize time.Duration
	Logger     *zap.Logger
}

// player is the part of *oto.Player the device drives.
type player interface {
	Play()
	Pause()
	IsPlaying() bool
	SetVolume(volume float64)
	Seek(offset int64, whence int) (int64, error)
	Close() error
}

var (
	ctxOnce sync.Once
	otoCtx  *oto.Context
	ctxRate int
	ctxErr  error
)

// sharedContext creates the process wide oto context on first use.
func sharedContext(rate int, bufSize time.Duration) (*oto.Context, error) {
	ctxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   rate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   bufSize,
		}
		var ready chan struct{}
		otoCtx, ready, ctxErr = oto.NewContext(op)
		if ctxErr == nil {
			<-ready
			ctxRate = rate
		}
	})
	if ctxErr != nil {
		return nil, ctxErr
	}
	if ctxRate != rate {
		return nil, fmt.Errorf("%w: running at %d Hz, asked for %d Hz", ErrRateMismatch, ctxRate, rate)
	}
	return otoCtx, nil
}

type voice struct {
	player player
	stream *stream
	state  backend.State
	buf    backend.Buffer
	pos    mgl32.Vec3
}

// Device plays through oto. It is safe for concurrent use.
type Device struct {
	mtx *sync.Mutex
	log *zap.Logger

	rate      int
	newPlayer func(r io.Reader) player
	release   func() error

	voices  map[backend.Channel]*voice
	nextCh  backend.Channel
	buffers map[backend.Buffer][]byte
	nextBuf backend.Buffer

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

// Open starts (or resumes) the oto context and returns a device on it.
func Open(opts Options) (*Device, error) {
	rate := opts.SampleRate
	if rate <= 0 {
		rate = 44100
	}

	ctx, err := sharedContext(rate, opts.BufferSize)
	if err != nil {
		return nil, err
	}
	if err := ctxUsers.acquire(ctx.Resume); err != nil {
		return nil, fmt.Errorf("resuming oto context: %w", err)
	}

	return newDevice(rate, opts.Logger,
		func(r io.Reader) player { return ctx.NewPlayer(r) },
		func() error { return ctxUsers.release(ctx.Suspend) },
	), nil
}

// users counts the open devices sharing the oto context. The context runs
// while at least one is open.
type users struct {
	mtx sync.Mutex
	n   int
}

var ctxUsers users

// acquire registers a device, calling resume when it is the first.
func (u *users) acquire(resume func() error) error {
	u.mtx.Lock()
	defer u.mtx.Unlock()

	if u.n == 0 {
		if err := resume(); err != nil {
			return err
		}
	}
	u.n++
	return nil
}

// release unregisters a device, calling suspend when it was the last.
func (u *users) release(suspend func() error) error {
	u.mtx.Lock()
	defer u.mtx.Unlock()

	if u.n == 0 {
		return nil
	}
	u.n--
	if u.n > 0 {
		return nil
	}
	return suspend()
}

func newDevice(rate int, log *zap.Logger, newPlayer func(io.Reader) player, release func() error) *Device {
	if log == nil {
		log = zap.NewNop()
	}
	return &Device{
		mtx:       &sync.Mutex{},
		log:       log.Named("oto"),
		rate:      rate,
		newPlayer: newPlayer,
		release:   release,
		voices:    make(map[backend.Channel]*voice),
		buffers:   make(map[backend.Buffer][]byte),
		forward:   mgl32.Vec3{0, 0, -1},
		up:        mgl32.Vec3{0, 1, 0},
	}
}

func (d *Device) Name() string    { return "oto" }
func (d *Device) SampleRate() int { return d.rate }

// voice returns the voice of ch. Callers hold mtx.
func (d *Device) voice(ch backend.Channel) (*voice, error) {
	if d.closed {
		return nil, backend.ErrDeviceClosed
	}
	v, ok := d.voices[ch]
	if !ok {
		return nil, fmt.Errorf("%w: %d", backend.ErrUnknownChannel, ch)
	}
	return v, nil
}

func (d *Device) CreateChannel() (backend.Channel, error) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.closed {
		return 0, backend.ErrDeviceClosed
	}

	s := &stream{}
	d.nextCh++
	d.voices[d.nextCh] = &voice{
		player: d.newPlayer(s),
		stream: s,
		state:  backend.Initial,
	}
	return d.nextCh, nil
}

func (d *Device) DestroyChannel(ch backend.Channel) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	v, err := d.voice(ch)
	if err != nil {
		return err
	}
	delete(d.voices, ch)
	v.player.Pause()
	return v.player.Close()
}

// encode converts clip to interleaved stereo 16-bit little-endian PCM at
// rate.
func encode(clip *audio.Clip, rate int) ([]byte, error) {
	if err := clip.Validate(); err != nil {
		return nil, err
	}
	stereo := clip.Resample(rate).Stereo()
	data := make([]byte, 2*len(stereo.Samples))
	utils.PutInt16LE(data, stereo.Samples)
	return data, nil
}

func (d *Device) CreateBuffer(clip *audio.Clip) (backend.Buffer, error) {
	data, err := encode(clip, d.rate)
	if err != nil {
		return 0, err
	}

	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.closed {
		return 0, backend.ErrDeviceClosed
	}
	d.nextBuf++
	d.buffers[d.nextBuf] = data
	return d.nextBuf, nil
}

// DeleteBuffer frees buf, detaching it from any channel still using it.
func (d *Device) DeleteBuffer(buf backend.Buffer) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.closed {
		return backend.ErrDeviceClosed
	}
	if _, ok := d.buffers[buf]; !ok {
		return fmt.Errorf("%w: %d", backend.ErrUnknownBuffer, buf)
	}

	for _, v := range d.voices {
		if v.buf == buf {
			d.detach(v)
		}
	}
	delete(d.buffers, buf)
	return nil
}

func (d *Device) AttachBuffer(ch backend.Channel, buf backend.Buffer) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	v, err := d.voice(ch)
	if err != nil {
		return err
	}
	data, ok := d.buffers[buf]
	if !ok {
		return fmt.Errorf("%w: %d", backend.ErrUnknownBuffer, buf)
	}
	if d.refresh(v) == backend.Playing {
		return fmt.Errorf("%w: %d", backend.ErrChannelBusy, ch)
	}

	v.stream.set(data)
	v.buf = buf
	return nil
}

func (d *Device) DetachBuffer(ch backend.Channel) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	v, err := d.voice(ch)
	if err != nil {
		return err
	}
	d.detach(v)
	return nil
}

func (d *Device) detach(v *voice) {
	v.player.Pause()
	v.stream.set(nil)
	v.buf = 0
	v.state = backend.Initial
}

func (d *Device) Play(ch backend.Channel) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	v, err := d.voice(ch)
	if err != nil {
		return err
	}
	if !v.buf.Valid() {
		v.state = backend.Stopped
		return nil
	}

	v.player.Pause()
	if _, err := v.player.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding channel %d: %w", ch, err)
	}
	v.player.Play()
	v.state = backend.Playing
	return nil
}

func (d *Device) Stop(ch backend.Channel) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	v, err := d.voice(ch)
	if err != nil {
		return err
	}
	switch d.refresh(v) {
	case backend.Playing, backend.Paused:
		v.player.Pause()
		if _, err := v.player.Seek(0, io.SeekStart); err != nil {
			d.log.Debug("rewind after stop failed", zap.Uint32("channel", uint32(ch)), zap.Error(err))
		}
		v.state = backend.Stopped
	}
	return nil
}

// Pause holds ch at its current position. oto players support it even
// though the pool never asks for it.
func (d *Device) Pause(ch backend.Channel) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	v, err := d.voice(ch)
	if err != nil {
		return err
	}
	if d.refresh(v) == backend.Playing {
		v.player.Pause()
		v.state = backend.Paused
	}
	return nil
}

// refresh notices a one-shot that ran out. Callers hold mtx.
func (d *Device) refresh(v *voice) backend.State {
	if v.state == backend.Playing && !v.player.IsPlaying() && v.stream.drained() {
		v.state = backend.Stopped
	}
	return v.state
}

func (d *Device) State(ch backend.Channel) (backend.State, error) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	v, err := d.voice(ch)
	if err != nil {
		return 0, err
	}
	return d.refresh(v), nil
}

func (d *Device) SetGain(ch backend.Channel, g backend.Gain) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	v, err := d.voice(ch)
	if err != nil {
		return err
	}
	v.player.SetVolume(float64(g.Value()))
	return nil
}

func (d *Device) SetLooping(ch backend.Channel, loop bool) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	v, err := d.voice(ch)
	if err != nil {
		return err
	}
	v.stream.setLoop(loop)
	return nil
}

func (d *Device) SetPosition(ch backend.Channel, pos mgl32.Vec3) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	v, err := d.voice(ch)
	if err != nil {
		return err
	}
	v.pos = pos
	d.repan(v)
	return nil
}

// repan balances v from its position relative to the listener. Callers
// hold mtx.
func (d *Device) repan(v *voice) {
	v.stream.setPan(backend.Pan(d.listener, d.forward, d.up, v.pos))
}

func (d *Device) SetListenerPosition(pos mgl32.Vec3) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.closed {
		return backend.ErrDeviceClosed
	}
	d.listener = pos
	for _, v := range d.voices {
		d.repan(v)
	}
	return nil
}

func (d *Device) SetListenerOrientation(forward, up mgl32.Vec3) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.closed {
		return backend.ErrDeviceClosed
	}
	d.forward, d.up = forward, up
	for _, v := range d.voices {
		d.repan(v)
	}
	return nil
}

// Close stops every player. The shared context is suspended once no other
// device is open on it.
func (d *Device) Close() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.closed {
		return backend.ErrDeviceClosed
	}
	d.closed = true

	var errs []error
	for ch, v := range d.voices {
		v.player.Pause()
		if err := v.player.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing player %d: %w", ch, err))
		}
	}
	clear(d.voices)
	clear(d.buffers)

	if d.release != nil {
		if err := d.release(); err != nil {
			errs = append(errs, fmt.Errorf("suspending oto context: %w", err))
		}
	}
	return errors.Join(errs...)
}
