// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/sndpool/audio"
)

// createWAVFile builds a canonical 44-byte-header WAV file in memory.
func createWAVFile(format uint16, sampleRate, channels, bitsPerSample int, samples []int16) []byte {
	buf := new(bytes.Buffer)

	numChannels := uint16(channels)
	bits := uint16(bitsPerSample)
	byteRate := uint32(sampleRate) * uint32(numChannels) * uint32(bits/8)
	blockAlign := numChannels * (bits / 8)
	dataSize := uint32(len(samples) * 2)

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, format)
	binary.Write(buf, binary.LittleEndian, numChannels)
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, byteRate)
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, bits)

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	for _, s := range samples {
		binary.Write(buf, binary.LittleEndian, s)
	}

	return buf.Bytes()
}

func TestDecoder_ValidWAVFile(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 16384, -16384, 0, 100, -100}
	clip, err := Decoder{}.Decode(bytes.NewReader(createWAVFile(1, 8000, 1, 16, samples)))
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}

	if clip.SampleRate != 8000 {
		t.Errorf("SampleRate = %d, want 8000", clip.SampleRate)
	}
	if clip.Channels != 1 {
		t.Errorf("Channels = %d, want 1", clip.Channels)
	}
	if clip.Frames() != len(samples) {
		t.Fatalf("Frames() = %d, want %d", clip.Frames(), len(samples))
	}
	if clip.Samples[1] != 0.5 || clip.Samples[2] != -0.5 {
		t.Errorf("Samples[1:3] = %v, want [0.5 -0.5]", clip.Samples[1:3])
	}
}

func TestDecoder_StereoFromPlainReader(t *testing.T) {
	t.Parallel()

	data := createWAVFile(1, 44100, 2, 16, []int16{100, 200, 300, 400})
	// Hide the Seek method to force the buffering path.
	r := struct{ io.Reader }{bytes.NewReader(data)}

	clip, err := Decoder{}.Decode(r)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if clip.Channels != 2 || clip.Frames() != 2 {
		t.Errorf("got %d channels, %d frames; want 2, 2", clip.Channels, clip.Frames())
	}
}

func TestDecoder_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"not riff", []byte("NOT A WAV FILE DATA AT ALL, REALLY NOT ONE"), ErrNotWavFile},
		{"float samples", createWAVFile(3, 8000, 1, 32, []int16{0, 0}), ErrOnlyPCMSupported},
		{"12-bit samples", createWAVFile(1, 8000, 1, 12, []int16{0, 0}), ErrUnsupportedBitRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	t.Parallel()

	src := &audio.Clip{SampleRate: 22050, Channels: 2, Samples: make([]float32, 2*2205)}
	for i := range src.Samples {
		src.Samples[i] = float32(math.Sin(float64(i) * 0.05))
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := Encode(f, src); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	f.Close()

	in, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	got, err := Decoder{}.Decode(in)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if got.SampleRate != src.SampleRate || got.Channels != src.Channels || got.Frames() != src.Frames() {
		t.Fatalf("decoded %d Hz/%d ch/%d frames, want %d/%d/%d",
			got.SampleRate, got.Channels, got.Frames(), src.SampleRate, src.Channels, src.Frames())
	}
	for i := range src.Samples {
		if math.Abs(float64(got.Samples[i]-src.Samples[i])) > 1.0/16384 {
			t.Fatalf("sample %d = %v, want ≈%v", i, got.Samples[i], src.Samples[i])
		}
	}
}

func TestEncode_RejectsEmptyClip(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "empty.wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	err = Encode(f, &audio.Clip{SampleRate: 8000, Channels: 1})
	if !errors.Is(err, audio.ErrEmptyClip) {
		t.Errorf("Encode() error = %v, want ErrEmptyClip", err)
	}
}
