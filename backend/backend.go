// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/ik5/sndpool/audio"
)

// Channel is an opaque playback channel handle. Zero is never valid.
type Channel uint32

// Buffer is an opaque handle to uploaded sample data. Zero is never valid
// and must never be attached to a channel.
type Buffer uint32

// Valid reports whether b is a usable handle.
func (b Buffer) Valid() bool { return b != 0 }

// State is the playback state reported by a device for a channel.
type State int

const (
	Initial State = iota
	Playing
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Initial:
		return "initial"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Gain is a volume scalar validated to lie in [0,1].
// The zero value is silence.
type Gain struct {
	v float32
}

// FullGain is unity gain.
var FullGain = Gain{v: 1}

// NewGain validates v and returns it as a Gain.
func NewGain(v float32) (Gain, error) {
	// NaN fails both comparisons, so test the accepted range directly.
	if !(v >= 0 && v <= 1) {
		return Gain{}, fmt.Errorf("%w: %v", ErrGainOutOfRange, v)
	}
	return Gain{v: v}, nil
}

// MustGain is like NewGain but panics on an out of range value. It is meant
// for constants.
func MustGain(v float32) Gain {
	g, err := NewGain(v)
	if err != nil {
		panic(err)
	}
	return g
}

// Value is the gain as a factor in [0,1].
func (g Gain) Value() float32 { return g.v }

func (g Gain) String() string { return fmt.Sprintf("%.3f", g.v) }

// Device is an open audio output device with its rendering context made
// current. Every method other than Name and SampleRate returns
// ErrDeviceClosed after Close.
type Device interface {
	// Name is the device specifier chosen at open time.
	Name() string
	// SampleRate buffers are expected to be uploaded at.
	SampleRate() int

	CreateChannel() (Channel, error)
	DestroyChannel(ch Channel) error

	// CreateBuffer uploads clip and returns a handle to it. The clip is
	// converted to the device rate if needed.
	CreateBuffer(clip *audio.Clip) (Buffer, error)
	DeleteBuffer(buf Buffer) error

	// AttachBuffer fails with ErrChannelBusy while ch is playing.
	AttachBuffer(ch Channel, buf Buffer) error
	DetachBuffer(ch Channel) error

	// Play starts ch from the beginning of its attached buffer.
	Play(ch Channel) error
	Stop(ch Channel) error
	// Pause holds a playing ch where it is. Play restarts it from the
	// beginning.
	Pause(ch Channel) error
	State(ch Channel) (State, error)

	SetGain(ch Channel, g Gain) error
	SetLooping(ch Channel, loop bool) error
	SetPosition(ch Channel, pos mgl32.Vec3) error

	SetListenerPosition(pos mgl32.Vec3) error
	// SetListenerOrientation expects forward and up to be perpendicular.
	// This is not validated.
	SetListenerOrientation(forward, up mgl32.Vec3) error

	// Close releases the device and its context.
	Close() error
}

// Opener opens a device. It is called once per system.
type Opener func() (Device, error)
