// SPDX-License-Identifier: EPL-2.0

// Package intpcm drains go-audio integer PCM readers into float clips.
package intpcm

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/sndpool/audio"
)

// chunk is the number of samples requested per PCMBuffer call.
const chunk = 4096

// Reader is the subset of the go-audio wav and aiff decoders used here.
type Reader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// ReadAll reads every sample from r and normalizes it by bitDepth.
// unsigned8 shifts 8-bit samples from [0,255] to [-128,127] first, as WAV
// stores them unsigned.
func ReadAll(r Reader, bitDepth int, unsigned8 bool) (*audio.Clip, error) {
	format := r.Format()
	if format == nil || format.SampleRate <= 0 || format.NumChannels <= 0 {
		return nil, audio.ErrInvalidFormat
	}

	scale, err := scaleFor(bitDepth)
	if err != nil {
		return nil, err
	}

	buf := &goaudio.IntBuffer{
		Format:         format,
		Data:           make([]int, chunk),
		SourceBitDepth: bitDepth,
	}

	var samples []float32
	for {
		n, err := r.PCMBuffer(buf)
		for _, v := range buf.Data[:n] {
			if bitDepth == 8 && unsigned8 {
				v -= 128
			}
			samples = append(samples, float32(v)/scale)
		}

		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("reading pcm: %w", err)
		}
		if err == io.EOF || n == 0 {
			break
		}
	}

	// Drop a trailing partial frame.
	samples = samples[:len(samples)-len(samples)%format.NumChannels]

	clip := &audio.Clip{
		SampleRate: format.SampleRate,
		Channels:   format.NumChannels,
		Samples:    samples,
	}
	if err := clip.Validate(); err != nil {
		return nil, err
	}
	return clip, nil
}

func scaleFor(bitDepth int) (float32, error) {
	switch bitDepth {
	case 8:
		return 128.0, nil
	case 16:
		return 32768.0, nil
	case 24:
		return 8388608.0, nil
	case 32:
		return 2147483648.0, nil
	default:
		return 0, fmt.Errorf("%w: %d-bit samples", audio.ErrInvalidFormat, bitDepth)
	}
}
