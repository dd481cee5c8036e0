package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/ik5/sndpool/audio"
)

// mockMP3Reader simulates the gomp3.Decoder for testing
type mockMP3Reader struct {
	sampleRate int
	pcm        *bytes.Reader
	err        error
}

func newMockMP3Reader(sampleRate int, samples []int16) *mockMP3Reader {
	buf := new(bytes.Buffer)
	for _, s := range samples {
		binary.Write(buf, binary.LittleEndian, s)
	}
	return &mockMP3Reader{sampleRate: sampleRate, pcm: bytes.NewReader(buf.Bytes())}
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }

func (m *mockMP3Reader) Read(buf []byte) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.pcm.Read(buf)
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("This is not MP3 data")))
	if err == nil {
		t.Error("Decode() error = nil, want error for invalid data")
	}
}

func TestReadAll(t *testing.T) {
	t.Parallel()

	dec := newMockMP3Reader(44100, []int16{16384, -16384, 0, 32767})

	clip, err := readAll(dec)
	if err != nil {
		t.Fatalf("readAll() error = %v", err)
	}

	if clip.SampleRate != 44100 || clip.Channels != 2 {
		t.Errorf("format = %d Hz/%d ch, want 44100/2", clip.SampleRate, clip.Channels)
	}

	want := []float32{0.5, -0.5, 0, 32767.0 / 32768.0}
	for i := range want {
		if clip.Samples[i] != want[i] {
			t.Errorf("Samples[%d] = %v, want %v", i, clip.Samples[i], want[i])
		}
	}
}

func TestReadAll_DropsPartialFrame(t *testing.T) {
	t.Parallel()

	clip, err := readAll(newMockMP3Reader(22050, []int16{1, 2, 3}))
	if err != nil {
		t.Fatalf("readAll() error = %v", err)
	}
	if clip.Frames() != 1 || len(clip.Samples) != 2 {
		t.Errorf("got %d frames, %d samples; want 1, 2", clip.Frames(), len(clip.Samples))
	}
}

func TestReadAll_Errors(t *testing.T) {
	t.Parallel()

	empty := newMockMP3Reader(44100, nil)
	if _, err := readAll(empty); !errors.Is(err, audio.ErrEmptyClip) {
		t.Errorf("readAll(empty) error = %v, want ErrEmptyClip", err)
	}

	broken := newMockMP3Reader(44100, []int16{1, 2})
	broken.err = io.ErrUnexpectedEOF
	if _, err := readAll(broken); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("readAll(broken) error = %v, want ErrUnexpectedEOF", err)
	}
}
