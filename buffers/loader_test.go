// SPDX-License-Identifier: EPL-2.0

package buffers

import (
	"errors"
	"testing"

	"github.com/ik5/sndpool/audio"
	"github.com/ik5/sndpool/formats"
	"github.com/ik5/sndpool/formats/wav"
	"github.com/ik5/sndpool/internal/audiotest"
	"github.com/spf13/afero"
)

func writeWAV(t *testing.T, fs afero.Fs, path string, clip *audio.Clip) {
	t.Helper()

	f, err := fs.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := wav.Encode(f, clip); err != nil {
		t.Fatalf("encoding %s: %v", path, err)
	}
}

func TestFileLoader_DecodeFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeWAV(t, fs, "sfx/shot.wav", audiotest.NewSineClip(22050, 2, 2205, 440))

	dev := audiotest.NewDevice("fake", 44100)
	l := &FileLoader{Fs: fs, Formats: formats.NewRegistry(), Device: dev, Mono: true}

	buf, err := l.DecodeFile("sfx/shot.wav")
	if err != nil {
		t.Fatalf("DecodeFile() error = %v", err)
	}

	clip, ok := dev.Clip(buf)
	if !ok {
		t.Fatalf("buffer %d not on device", buf)
	}
	if clip.SampleRate != 44100 || clip.Channels != 1 {
		t.Errorf("uploaded %d Hz/%d ch, want 44100/1", clip.SampleRate, clip.Channels)
	}
	if clip.Frames() != 4410 {
		t.Errorf("uploaded %d frames, want 4410", clip.Frames())
	}
}

func TestFileLoader_KeepsChannelsWithoutMono(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeWAV(t, fs, "music.wav", audiotest.NewConstantClip(44100, 2, 100, 0.5))

	dev := audiotest.NewDevice("fake", 44100)
	l := &FileLoader{Fs: fs, Formats: formats.NewRegistry(), Device: dev}

	clip, err := l.Load("music.wav")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if clip.Channels != 2 || clip.Frames() != 100 {
		t.Errorf("Load() = %d ch/%d frames, want 2/100", clip.Channels, clip.Frames())
	}
}

func TestFileLoader_Errors(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "broken.wav", []byte("not a wav file"), 0o644)
	_ = afero.WriteFile(fs, "notes.txt", []byte("hello"), 0o644)

	dev := audiotest.NewDevice("fake", 44100)
	l := &FileLoader{Fs: fs, Formats: formats.NewRegistry(), Device: dev}

	if _, err := l.DecodeFile("notes.txt"); !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Errorf("DecodeFile(txt) error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := l.DecodeFile("missing.wav"); err == nil {
		t.Error("DecodeFile(missing) error = nil")
	}
	if _, err := l.DecodeFile("broken.wav"); err == nil {
		t.Error("DecodeFile(broken) error = nil")
	}
	if dev.Buffers() != 0 {
		t.Errorf("failed loads uploaded %d buffers", dev.Buffers())
	}
}

func TestRegistry_WithFileLoader(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeWAV(t, fs, "a.wav", audiotest.NewSineClip(44100, 1, 441, 220))
	_ = afero.WriteFile(fs, "bad.wav", []byte("RIFF"), 0o644)

	dev := audiotest.NewDevice("fake", 44100)
	r := NewRegistry[string](dev, &FileLoader{Fs: fs, Formats: formats.NewRegistry(), Device: dev})

	if err := r.Register("a", "a.wav"); err != nil {
		t.Fatalf("Register(a) error = %v", err)
	}
	if err := r.Register("bad", "bad.wav"); !errors.Is(err, ErrDecode) {
		t.Errorf("Register(bad) error = %v, want ErrDecode", err)
	}
}
