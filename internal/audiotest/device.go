// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/ik5/sndpool/audio"
	"github.com/ik5/sndpool/backend"
)

// Call is one recorded Device method invocation.
type Call struct {
	Method  string
	Channel backend.Channel
	Buffer  backend.Buffer
}

// ChannelState is a snapshot of everything set on a fake channel.
type ChannelState struct {
	Buffer   backend.Buffer
	State    backend.State
	Gain     backend.Gain
	Looping  bool
	Position mgl32.Vec3
	// Plays counts successful Play calls.
	Plays int
}

// Device is an in-memory backend.Device that records every call. Playback
// never advances on its own: tests end it with Finish or FinishAll, or force
// a state with SetState.
type Device struct {
	mtx *sync.Mutex

	name string
	rate int

	nextChannel backend.Channel
	nextBuffer  backend.Buffer
	channels    map[backend.Channel]*ChannelState
	order       []backend.Channel
	buffers     map[backend.Buffer]*audio.Clip

	listener    mgl32.Vec3
	forward, up mgl32.Vec3
	calls       []Call
	failures    map[string]error
	zeroBuffers bool
	closed      bool
	leaked      int
}

// NewDevice returns an open fake device.
func NewDevice(name string, sampleRate int) *Device {
	return &Device{
		mtx:      &sync.Mutex{},
		name:     name,
		rate:     sampleRate,
		channels: make(map[backend.Channel]*ChannelState),
		buffers:  make(map[backend.Buffer]*audio.Clip),
		failures: make(map[string]error),
		forward:  mgl32.Vec3{0, 0, -1},
		up:       mgl32.Vec3{0, 1, 0},
	}
}

// Opener returns a backend.Opener that hands out d.
func (d *Device) Opener() backend.Opener {
	return func() (backend.Device, error) { return d, nil }
}

// Fail makes every later call to method return err. A nil err clears it.
func (d *Device) Fail(method string, err error) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if err == nil {
		delete(d.failures, method)
		return
	}
	d.failures[method] = err
}

// ZeroBuffers makes CreateBuffer succeed with the invalid zero handle.
func (d *Device) ZeroBuffers(on bool) {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	d.zeroBuffers = on
}

// Finish ends playback of a non-looping channel, as if its buffer ran out.
func (d *Device) Finish(ch backend.Channel) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if c, ok := d.channels[ch]; ok && c.State == backend.Playing && !c.Looping {
		c.State = backend.Stopped
	}
}

// FinishAll calls Finish on every channel.
func (d *Device) FinishAll() {
	for _, ch := range d.Channels() {
		d.Finish(ch)
	}
}

// SetState forces the playback state of ch.
func (d *Device) SetState(ch backend.Channel, s backend.State) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if c, ok := d.channels[ch]; ok {
		c.State = s
	}
}

// Channel returns a snapshot of ch.
func (d *Device) Channel(ch backend.Channel) (ChannelState, bool) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	c, ok := d.channels[ch]
	if !ok {
		return ChannelState{}, false
	}
	return *c, true
}

// Channels lists live channels in creation order.
func (d *Device) Channels() []backend.Channel {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	return append([]backend.Channel(nil), d.order...)
}

// Buffers is the number of live buffers.
func (d *Device) Buffers() int {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	return len(d.buffers)
}

// Clip returns the clip uploaded as buf.
func (d *Device) Clip(buf backend.Buffer) (*audio.Clip, bool) {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	c, ok := d.buffers[buf]
	return c, ok
}

// Calls returns every recorded call in order.
func (d *Device) Calls() []Call {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	return append([]Call(nil), d.calls...)
}

// CallsTo returns the recorded calls of one method.
func (d *Device) CallsTo(method string) []Call {
	var out []Call
	for _, c := range d.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Listener returns the listener position and orientation.
func (d *Device) Listener() (pos, forward, up mgl32.Vec3) {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	return d.listener, d.forward, d.up
}

// Closed reports whether Close ran.
func (d *Device) Closed() bool {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	return d.closed
}

func (d *Device) Name() string    { return d.name }
func (d *Device) SampleRate() int { return d.rate }

// record logs the call and returns the injected failure, if any. Callers
// hold mtx.
func (d *Device) record(method string, ch backend.Channel, buf backend.Buffer) error {
	d.calls = append(d.calls, Call{Method: method, Channel: ch, Buffer: buf})
	if d.closed && method != "Close" {
		return backend.ErrDeviceClosed
	}
	return d.failures[method]
}

func (d *Device) channel(ch backend.Channel) (*ChannelState, error) {
	c, ok := d.channels[ch]
	if !ok {
		return nil, fmt.Errorf("%w: %d", backend.ErrUnknownChannel, ch)
	}
	return c, nil
}

func (d *Device) CreateChannel() (backend.Channel, error) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if err := d.record("CreateChannel", 0, 0); err != nil {
		return 0, err
	}
	d.nextChannel++
	ch := d.nextChannel
	d.channels[ch] = &ChannelState{State: backend.Initial, Gain: backend.FullGain}
	d.order = append(d.order, ch)
	return ch, nil
}

func (d *Device) DestroyChannel(ch backend.Channel) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if err := d.record("DestroyChannel", ch, 0); err != nil {
		return err
	}
	if _, err := d.channel(ch); err != nil {
		return err
	}
	delete(d.channels, ch)
	for i, c := range d.order {
		if c == ch {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

func (d *Device) CreateBuffer(clip *audio.Clip) (backend.Buffer, error) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if err := d.record("CreateBuffer", 0, 0); err != nil {
		return 0, err
	}
	if err := clip.Validate(); err != nil {
		return 0, err
	}
	if d.zeroBuffers {
		return 0, nil
	}
	d.nextBuffer++
	d.buffers[d.nextBuffer] = clip
	return d.nextBuffer, nil
}

func (d *Device) DeleteBuffer(buf backend.Buffer) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if err := d.record("DeleteBuffer", 0, buf); err != nil {
		return err
	}
	if _, ok := d.buffers[buf]; !ok {
		return fmt.Errorf("%w: %d", backend.ErrUnknownBuffer, buf)
	}
	delete(d.buffers, buf)
	return nil
}

func (d *Device) AttachBuffer(ch backend.Channel, buf backend.Buffer) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if err := d.record("AttachBuffer", ch, buf); err != nil {
		return err
	}
	c, err := d.channel(ch)
	if err != nil {
		return err
	}
	if _, ok := d.buffers[buf]; !ok || !buf.Valid() {
		return fmt.Errorf("%w: %d", backend.ErrUnknownBuffer, buf)
	}
	if c.State == backend.Playing {
		return fmt.Errorf("%w: %d", backend.ErrChannelBusy, ch)
	}
	c.Buffer = buf
	return nil
}

func (d *Device) DetachBuffer(ch backend.Channel) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if err := d.record("DetachBuffer", ch, 0); err != nil {
		return err
	}
	c, err := d.channel(ch)
	if err != nil {
		return err
	}
	c.Buffer = 0
	c.State = backend.Initial
	return nil
}

func (d *Device) Play(ch backend.Channel) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if err := d.record("Play", ch, 0); err != nil {
		return err
	}
	c, err := d.channel(ch)
	if err != nil {
		return err
	}
	if !c.Buffer.Valid() {
		c.State = backend.Stopped
		return nil
	}
	c.State = backend.Playing
	c.Plays++
	return nil
}

func (d *Device) Stop(ch backend.Channel) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if err := d.record("Stop", ch, 0); err != nil {
		return err
	}
	c, err := d.channel(ch)
	if err != nil {
		return err
	}
	if c.State == backend.Playing || c.State == backend.Paused {
		c.State = backend.Stopped
	}
	return nil
}

func (d *Device) Pause(ch backend.Channel) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if err := d.record("Pause", ch, 0); err != nil {
		return err
	}
	c, err := d.channel(ch)
	if err != nil {
		return err
	}
	if c.State == backend.Playing {
		c.State = backend.Paused
	}
	return nil
}

func (d *Device) State(ch backend.Channel) (backend.State, error) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if err := d.record("State", ch, 0); err != nil {
		return 0, err
	}
	c, err := d.channel(ch)
	if err != nil {
		return 0, err
	}
	return c.State, nil
}

func (d *Device) SetGain(ch backend.Channel, g backend.Gain) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if err := d.record("SetGain", ch, 0); err != nil {
		return err
	}
	c, err := d.channel(ch)
	if err != nil {
		return err
	}
	c.Gain = g
	return nil
}

func (d *Device) SetLooping(ch backend.Channel, loop bool) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if err := d.record("SetLooping", ch, 0); err != nil {
		return err
	}
	c, err := d.channel(ch)
	if err != nil {
		return err
	}
	c.Looping = loop
	return nil
}

func (d *Device) SetPosition(ch backend.Channel, pos mgl32.Vec3) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if err := d.record("SetPosition", ch, 0); err != nil {
		return err
	}
	c, err := d.channel(ch)
	if err != nil {
		return err
	}
	c.Position = pos
	return nil
}

func (d *Device) SetListenerPosition(pos mgl32.Vec3) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if err := d.record("SetListenerPosition", 0, 0); err != nil {
		return err
	}
	d.listener = pos
	return nil
}

func (d *Device) SetListenerOrientation(forward, up mgl32.Vec3) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if err := d.record("SetListenerOrientation", 0, 0); err != nil {
		return err
	}
	d.forward, d.up = forward, up
	return nil
}

// Close marks the device closed. Channels and buffers still alive are
// counted in Leaked.
func (d *Device) Close() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if err := d.record("Close", 0, 0); err != nil {
		return err
	}
	if d.closed {
		return backend.ErrDeviceClosed
	}
	d.closed = true
	d.leaked = len(d.channels) + len(d.buffers)
	return nil
}

// Leaked is the number of channels and buffers still alive when Close ran.
func (d *Device) Leaked() int {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	return d.leaked
}
