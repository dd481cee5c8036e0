// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/sndpool/audio"
	"github.com/ik5/sndpool/utils"
)

// Encode writes clip as a 16-bit PCM WAV file. The encoder patches chunk
// sizes on close, so w must be seekable.
func Encode(w io.WriteSeeker, clip *audio.Clip) error {
	if err := clip.Validate(); err != nil {
		return err
	}

	data := make([]int, len(clip.Samples))
	for i, s := range clip.Samples {
		data[i] = int(utils.Float32ToInt16(s))
	}

	enc := gowav.NewEncoder(w, clip.SampleRate, 16, clip.Channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: clip.Channels,
			SampleRate:  clip.SampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("writing wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing wav encoder: %w", err)
	}
	return nil
}
