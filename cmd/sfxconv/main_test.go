package main

import (
	"errors"
	"testing"

	"github.com/ik5/sndpool/audio"
	"github.com/ik5/sndpool/formats"
	"github.com/ik5/sndpool/formats/wav"
	"github.com/ik5/sndpool/internal/audiotest"
	"github.com/spf13/afero"
)

func TestConvert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		rate         int
		mono         bool
		wantChannels int
		wantFrames   int
	}{
		{"downsample to mono", 8000, true, 1, 800},
		{"keep stereo", 8000, false, 2, 800},
		{"same rate", 16000, true, 1, 1600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			f, _ := fs.Create("in.wav")
			if err := wav.Encode(f, audiotest.NewSineClip(16000, 2, 1600, 440)); err != nil {
				t.Fatal(err)
			}
			f.Close()

			if _, err := convert(fs, formats.NewRegistry(), "in.wav", "out.wav", tt.rate, tt.mono); err != nil {
				t.Fatalf("convert() error = %v", err)
			}

			out, err := fs.Open("out.wav")
			if err != nil {
				t.Fatal(err)
			}
			defer out.Close()

			clip, err := wav.Decoder{}.Decode(out)
			if err != nil {
				t.Fatalf("decoding output: %v", err)
			}
			if clip.SampleRate != tt.rate || clip.Channels != tt.wantChannels || clip.Frames() != tt.wantFrames {
				t.Errorf("output %d Hz/%d ch/%d frames, want %d/%d/%d",
					clip.SampleRate, clip.Channels, clip.Frames(), tt.rate, tt.wantChannels, tt.wantFrames)
			}
		})
	}
}

func TestSupported(t *testing.T) {
	t.Parallel()

	want := "aif|aiff|mp3|oga|ogg|wav|wave"
	if got := supported(formats.NewRegistry()); got != want {
		t.Errorf("supported() = %q, want %q", got, want)
	}
}

func TestConvert_Errors(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	reg := formats.NewRegistry()

	if _, err := convert(fs, reg, "in.flac", "out.wav", 8000, true); !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Errorf("unknown extension error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := convert(fs, reg, "missing.wav", "out.wav", 8000, true); err == nil {
		t.Error("missing input: error = nil")
	}
	if _, err := convert(fs, reg, "in.wav", "out.wav", 0, true); !errors.Is(err, audio.ErrInvalidFormat) {
		t.Errorf("zero rate error = %v, want ErrInvalidFormat", err)
	}
	if ok, _ := afero.Exists(fs, "out.wav"); ok {
		t.Error("output written despite errors")
	}
}
