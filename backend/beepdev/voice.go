// SPDX-License-Identifier: EPL-2.0

package beepdev

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/ik5/sndpool/audio"
	"github.com/ik5/sndpool/backend"
)

// voice streams the attached buffer. All fields are guarded by the device
// lock, which in production is the speaker lock.
type voice struct {
	src     beep.StreamSeeker
	loop    bool
	drained bool
	dead    bool
}

func (v *voice) Stream(samples [][2]float64) (n int, ok bool) {
	if v.dead {
		return 0, false
	}
	if v.src == nil || v.drained {
		clear(samples)
		return len(samples), true
	}

	filled := 0
	for filled < len(samples) {
		got, more := v.src.Stream(samples[filled:])
		filled += got
		if more && got > 0 {
			continue
		}
		if v.loop && v.src.Len() > 0 {
			if err := v.src.Seek(0); err == nil {
				continue
			}
		}
		v.drained = true
		break
	}

	clear(samples[filled:])
	return len(samples), true
}

func (v *voice) Err() error { return nil }

// channel is the chain voice -> ctrl -> pan -> volume fed to the mixer.
type channel struct {
	voice  *voice
	ctrl   *beep.Ctrl
	pan    *effects.Pan
	volume *effects.Volume
	state  backend.State
	buf    backend.Buffer
	pos    mgl32.Vec3
}

func newChannel() *channel {
	v := &voice{}
	ctrl := &beep.Ctrl{Streamer: v, Paused: true}
	pan := &effects.Pan{Streamer: ctrl}
	return &channel{
		voice:  v,
		ctrl:   ctrl,
		pan:    pan,
		volume: &effects.Volume{Streamer: pan, Base: 2},
		state:  backend.Initial,
	}
}

// setGain maps a linear gain onto the base 2 volume scale.
func (c *channel) setGain(g float32) {
	if g <= 0 {
		c.volume.Silent = true
		c.volume.Volume = 0
		return
	}
	c.volume.Silent = false
	c.volume.Volume = math.Log2(float64(g))
}

// clipStreamer streams clip as stereo frames.
func clipStreamer(clip *audio.Clip) beep.Streamer {
	stereo := clip.Stereo()
	frames := stereo.Frames()
	pos := 0

	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if pos >= frames {
			return 0, false
		}
		for n < len(samples) && pos < frames {
			samples[n][0] = float64(stereo.Samples[2*pos])
			samples[n][1] = float64(stereo.Samples[2*pos+1])
			n++
			pos++
		}
		return n, true
	})
}
