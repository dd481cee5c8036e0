// SPDX-License-Identifier: EPL-2.0

package audio

// Mono returns the clip with all channels averaged into one.
func (c *Clip) Mono() *Clip {
	if c.Channels <= 1 {
		return c
	}

	channels := c.Channels
	frames := c.Frames()
	out := make([]float32, frames)
	invChannels := float32(1.0) / float32(channels)

	switch channels {
	case 2:
		for f := range frames {
			idx := f << 1
			out[f] = (c.Samples[idx] + c.Samples[idx+1]) * 0.5
		}
	default:
		for f := range frames {
			sum := float32(0)
			base := f * channels
			for ch := range channels {
				sum += c.Samples[base+ch]
			}
			out[f] = sum * invChannels
		}
	}

	return &Clip{
		SampleRate: c.SampleRate,
		Channels:   1,
		Samples:    out,
	}
}

// Stereo returns the clip as two interleaved channels. Mono input is
// duplicated to both sides; wider layouts are folded to mono first.
func (c *Clip) Stereo() *Clip {
	switch {
	case c.Channels == 2:
		return c
	case c.Channels > 2:
		return c.Mono().Stereo()
	case c.Channels <= 0:
		return c
	}

	out := make([]float32, len(c.Samples)*2)
	for i, s := range c.Samples {
		out[2*i] = s
		out[2*i+1] = s
	}

	return &Clip{
		SampleRate: c.SampleRate,
		Channels:   2,
		Samples:    out,
	}
}
