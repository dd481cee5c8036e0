// SPDX-License-Identifier: EPL-2.0

// Package wav decodes WAV files into audio clips and writes clips back out.
//
// Decoding uses github.com/go-audio/wav and accepts integer PCM at 8, 16,
// 24 or 32 bits, any channel count and any sample rate. The whole data
// chunk is read into memory:
//
//	clip, err := wav.Decoder{}.Decode(file)
//	if errors.Is(err, wav.ErrNotWavFile) {
//	    // not a RIFF/WAVE stream
//	}
//
// Encode writes a clip as 16-bit PCM. The go-audio encoder rewrites chunk
// sizes when it is closed, so the destination must be an io.WriteSeeker
// such as *os.File.
package wav
