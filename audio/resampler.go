// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"github.com/ik5/sndpool/utils"
)

// lowPassAlpha is the coefficient of the one-pole filter run over the
// source before downsampling.
const lowPassAlpha = 0.5

// Resample returns the clip converted to dstRate using cubic interpolation.
// Channel count is preserved. When downsampling, a simple one-pole low-pass
// filter is applied first to tame aliasing.
func (c *Clip) Resample(dstRate int) *Clip {
	if dstRate <= 0 || c.SampleRate <= 0 || c.Channels <= 0 || dstRate == c.SampleRate {
		return c
	}

	channels := c.Channels
	frames := c.Frames()
	ratio := float64(c.SampleRate) / float64(dstRate)

	src := c.Samples
	if ratio > 1.0 {
		src = lowPass(c.Samples, channels)
	}

	outFrames := int(int64(frames) * int64(dstRate) / int64(c.SampleRate))
	out := make([]float32, outFrames*channels)

	// frame returns sample ch of frame i, holding the edge frames for
	// positions outside the clip.
	frame := func(i, ch int) float32 {
		if i < 0 {
			i = 0
		} else if i >= frames {
			i = frames - 1
		}
		return src[i*channels+ch]
	}

	for f := range outFrames {
		pos := float64(f) * ratio
		idx := int(pos)
		alpha := float32(pos - float64(idx))

		for ch := range channels {
			out[f*channels+ch] = utils.CubicInterpolate(
				frame(idx-1, ch),
				frame(idx, ch),
				frame(idx+1, ch),
				frame(idx+2, ch),
				alpha,
			)
		}
	}

	return &Clip{
		SampleRate: dstRate,
		Channels:   channels,
		Samples:    out,
	}
}

// lowPass runs y[n] = a*x[n] + (1-a)*y[n-1] per channel. Filter state is
// seeded with the first frame to avoid a warm-up transient.
func lowPass(samples []float32, channels int) []float32 {
	out := make([]float32, len(samples))
	if len(samples) < channels {
		return out
	}

	state := make([]float32, channels)
	copy(state, samples[:channels])

	for i, x := range samples {
		ch := i % channels
		y := lowPassAlpha*x + (1-lowPassAlpha)*state[ch]
		state[ch] = y
		out[i] = y
	}
	return out
}
