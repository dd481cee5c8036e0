// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/ik5/sndpool/audio"
	"github.com/ik5/sndpool/backend"
)

// NewClip creates a clip with frames frames per channel, filled by waveform.
// waveform is a function that generates sample values given frame index and
// channel.
func NewClip(sampleRate, channels, frames int, waveform func(frame int, channel int) float32) *audio.Clip {
	samples := make([]float32, frames*channels)
	for frame := range frames {
		for ch := range channels {
			samples[frame*channels+ch] = waveform(frame, ch)
		}
	}
	return &audio.Clip{SampleRate: sampleRate, Channels: channels, Samples: samples}
}

// NewSilentClip creates a clip of silence (all zeros).
func NewSilentClip(sampleRate, channels, frames int) *audio.Clip {
	return NewClip(sampleRate, channels, frames, func(int, int) float32 { return 0 })
}

// NewSineClip creates a clip holding a sine wave.
func NewSineClip(sampleRate, channels, frames int, frequency float64) *audio.Clip {
	return NewClip(sampleRate, channels, frames, func(frame int, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantClip creates a clip with constant value.
func NewConstantClip(sampleRate, channels, frames int, value float32) *audio.Clip {
	return NewClip(sampleRate, channels, frames, func(int, int) float32 { return value })
}

// Loader maps file paths straight to clips and uploads them to Device, in
// place of decoding files from disk.
type Loader struct {
	Device *Device
	Clips  map[string]*audio.Clip
	// Opened records every path passed to DecodeFile.
	Opened []string
}

// NewLoader returns a loader with a short tone registered for every path.
func NewLoader(dev *Device, paths ...string) *Loader {
	l := &Loader{Device: dev, Clips: make(map[string]*audio.Clip, len(paths))}
	for i, p := range paths {
		l.Clips[p] = NewSineClip(dev.SampleRate(), 1, 64, 220*float64(i+1))
	}
	return l
}

func (l *Loader) DecodeFile(path string) (backend.Buffer, error) {
	l.Opened = append(l.Opened, path)
	clip, ok := l.Clips[path]
	if !ok {
		return 0, fmt.Errorf("audiotest: no clip for %q", path)
	}
	return l.Device.CreateBuffer(clip)
}

// Decoder is an audio.Decoder that returns Clip for any input whose content
// starts with Magic, and fails otherwise.
type Decoder struct {
	Magic string
	Clip  *audio.Clip
}

func (d Decoder) Decode(r io.Reader) (*audio.Clip, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(string(data), d.Magic) {
		return nil, fmt.Errorf("audiotest: missing magic %q", d.Magic)
	}
	return d.Clip, nil
}
