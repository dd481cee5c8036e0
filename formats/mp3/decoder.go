// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/sndpool/audio"
)

// go-mp3 always produces interleaved stereo 16-bit little-endian PCM.
const (
	channels       = 2
	bytesPerSample = 2
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (*audio.Clip, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("opening mp3 stream: %w", err)
	}
	return readAll(dec)
}

func readAll(dec mp3Reader) (*audio.Clip, error) {
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decoding mp3: %w", err)
	}

	frameBytes := channels * bytesPerSample
	data = data[:len(data)-len(data)%frameBytes]

	samples := make([]float32, len(data)/bytesPerSample)
	for i := range samples {
		low := uint16(data[2*i])
		high := uint16(data[2*i+1])
		samples[i] = float32(int16(low|high<<8)) / 32768.0
	}

	clip := &audio.Clip{
		SampleRate: dec.SampleRate(),
		Channels:   channels,
		Samples:    samples,
	}
	if err := clip.Validate(); err != nil {
		return nil, err
	}
	return clip, nil
}
