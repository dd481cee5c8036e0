// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"strings"
	"testing"

	"github.com/ik5/sndpool/backend"
)

func TestDevice_PlaybackLifecycle(t *testing.T) {
	t.Parallel()

	dev := NewDevice("fake", 48000)

	ch, err := dev.CreateChannel()
	if err != nil {
		t.Fatalf("CreateChannel() error = %v", err)
	}
	buf, err := dev.CreateBuffer(NewSilentClip(48000, 1, 10))
	if err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}

	if err := dev.AttachBuffer(ch, buf); err != nil {
		t.Fatalf("AttachBuffer() error = %v", err)
	}
	if err := dev.Play(ch); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if st, _ := dev.State(ch); st != backend.Playing {
		t.Fatalf("State() = %v, want playing", st)
	}

	if err := dev.AttachBuffer(ch, buf); !errors.Is(err, backend.ErrChannelBusy) {
		t.Errorf("AttachBuffer() on playing channel error = %v, want ErrChannelBusy", err)
	}

	dev.Finish(ch)
	if st, _ := dev.State(ch); st != backend.Stopped {
		t.Errorf("State() after Finish = %v, want stopped", st)
	}

	c, _ := dev.Channel(ch)
	if c.Plays != 1 || c.Buffer != buf {
		t.Errorf("Channel() = %+v, want 1 play of buffer %d", c, buf)
	}
}

func TestDevice_LoopingIgnoresFinish(t *testing.T) {
	t.Parallel()

	dev := NewDevice("fake", 48000)
	ch, _ := dev.CreateChannel()
	buf, _ := dev.CreateBuffer(NewSilentClip(48000, 1, 10))
	_ = dev.AttachBuffer(ch, buf)
	_ = dev.SetLooping(ch, true)
	_ = dev.Play(ch)

	dev.FinishAll()
	if st, _ := dev.State(ch); st != backend.Playing {
		t.Errorf("State() = %v, want playing", st)
	}
}

func TestDevice_PlayWithoutBuffer(t *testing.T) {
	t.Parallel()

	dev := NewDevice("fake", 48000)
	ch, _ := dev.CreateChannel()
	_ = dev.Play(ch)

	if st, _ := dev.State(ch); st != backend.Stopped {
		t.Errorf("State() = %v, want stopped", st)
	}
}

func TestDevice_FailuresAndClose(t *testing.T) {
	t.Parallel()

	dev := NewDevice("fake", 48000)
	boom := errors.New("boom")

	dev.Fail("CreateChannel", boom)
	if _, err := dev.CreateChannel(); !errors.Is(err, boom) {
		t.Errorf("CreateChannel() error = %v, want boom", err)
	}
	dev.Fail("CreateChannel", nil)
	if _, err := dev.CreateChannel(); err != nil {
		t.Errorf("CreateChannel() error = %v after clearing failure", err)
	}

	if err := dev.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if dev.Leaked() != 1 {
		t.Errorf("Leaked() = %d, want 1", dev.Leaked())
	}
	if _, err := dev.CreateChannel(); !errors.Is(err, backend.ErrDeviceClosed) {
		t.Errorf("CreateChannel() after Close error = %v, want ErrDeviceClosed", err)
	}
}

func TestDevice_UnknownHandles(t *testing.T) {
	t.Parallel()

	dev := NewDevice("fake", 48000)

	if err := dev.Play(42); !errors.Is(err, backend.ErrUnknownChannel) {
		t.Errorf("Play(42) error = %v, want ErrUnknownChannel", err)
	}
	ch, _ := dev.CreateChannel()
	if err := dev.AttachBuffer(ch, 0); !errors.Is(err, backend.ErrUnknownBuffer) {
		t.Errorf("AttachBuffer(0) error = %v, want ErrUnknownBuffer", err)
	}
	if err := dev.DeleteBuffer(9); !errors.Is(err, backend.ErrUnknownBuffer) {
		t.Errorf("DeleteBuffer(9) error = %v, want ErrUnknownBuffer", err)
	}
}

func TestLoader(t *testing.T) {
	t.Parallel()

	dev := NewDevice("fake", 22050)
	l := NewLoader(dev, "a.wav", "b.wav")

	buf, err := l.DecodeFile("a.wav")
	if err != nil || !buf.Valid() {
		t.Fatalf("DecodeFile(a.wav) = %d, %v", buf, err)
	}
	if _, err := l.DecodeFile("missing.wav"); err == nil {
		t.Error("DecodeFile(missing.wav) error = nil")
	}
	if strings.Join(l.Opened, ",") != "a.wav,missing.wav" {
		t.Errorf("Opened = %v", l.Opened)
	}
}

func TestDecoder(t *testing.T) {
	t.Parallel()

	d := Decoder{Magic: "SND", Clip: NewConstantClip(8000, 1, 4, 0.25)}

	clip, err := d.Decode(strings.NewReader("SND payload"))
	if err != nil || clip.Frames() != 4 {
		t.Fatalf("Decode() = %v, %v", clip, err)
	}
	if _, err := d.Decode(strings.NewReader("nope")); err == nil {
		t.Error("Decode() without magic error = nil")
	}
}
