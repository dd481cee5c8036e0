// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/ik5/sndpool/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	// Read fills p with interleaved samples and returns the number of
	// float32 values written.
	Read(p []float32) (int, error)
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (*audio.Clip, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening ogg vorbis stream: %w", err)
	}
	return readAll(dec)
}

func readAll(dec oggReader) (*audio.Clip, error) {
	channels := dec.Channels()
	if channels <= 0 {
		return nil, audio.ErrInvalidFormat
	}

	buf := make([]float32, 4096*channels)
	var samples []float32

	for {
		n, err := dec.Read(buf)
		samples = append(samples, buf[:n]...)

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding ogg vorbis: %w", err)
		}
		if n == 0 {
			break
		}
	}

	clip := &audio.Clip{
		SampleRate: dec.SampleRate(),
		Channels:   channels,
		Samples:    samples[:len(samples)-len(samples)%channels],
	}
	if err := clip.Validate(); err != nil {
		return nil, err
	}
	return clip, nil
}
