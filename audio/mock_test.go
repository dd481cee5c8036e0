package audio

import (
	"errors"
	"io"
	"math"
)

// newClip builds a clip whose samples come from waveform(frame, channel).
func newClip(sampleRate, channels, frames int, waveform func(frame int, channel int) float32) *Clip {
	samples := make([]float32, frames*channels)
	for f := range frames {
		for ch := range channels {
			samples[f*channels+ch] = waveform(f, ch)
		}
	}
	return &Clip{SampleRate: sampleRate, Channels: channels, Samples: samples}
}

// newSineClip creates a clip holding a sine wave on every channel.
func newSineClip(sampleRate, channels, frames int, frequency float64) *Clip {
	return newClip(sampleRate, channels, frames, func(frame int, channel int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// newConstantClip creates a clip with a constant value.
func newConstantClip(sampleRate, channels, frames int, value float32) *Clip {
	return newClip(sampleRate, channels, frames, func(int, int) float32 {
		return value
	})
}

// mockDecoder returns a fixed clip regardless of input.
type mockDecoder struct {
	name string
}

func (d *mockDecoder) Decode(r io.Reader) (*Clip, error) {
	return newConstantClip(44100, 2, 100, 0), nil
}

// failingDecoder always returns an error
type failingDecoder struct{}

func (d *failingDecoder) Decode(r io.Reader) (*Clip, error) {
	return nil, errors.New("decode failed")
}
