// SPDX-License-Identifier: EPL-2.0

package buffers

import (
	"errors"
	"testing"

	"github.com/ik5/sndpool/internal/audiotest"
)

type soundKey int

const (
	keyShot soundKey = iota
	keyStep
	keyWind
)

func newTestRegistry(t *testing.T) (*Registry[soundKey], *audiotest.Device) {
	t.Helper()

	dev := audiotest.NewDevice("fake", 44100)
	loader := audiotest.NewLoader(dev, "shot.wav", "step.wav", "wind.ogg")
	return NewRegistry[soundKey](dev, loader), dev
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry(t)

	paths := map[soundKey]string{keyShot: "shot.wav", keyStep: "step.wav", keyWind: "wind.ogg"}
	for k, p := range paths {
		if err := r.Register(k, p); err != nil {
			t.Fatalf("Register(%v, %q) error = %v", k, p, err)
		}
	}

	seen := make(map[uint32]bool)
	for k := range paths {
		buf, err := r.Lookup(k)
		if err != nil {
			t.Fatalf("Lookup(%v) error = %v", k, err)
		}
		if !buf.Valid() {
			t.Errorf("Lookup(%v) = zero buffer", k)
		}
		if seen[uint32(buf)] {
			t.Errorf("Lookup(%v) = %d, shared with another key", k, buf)
		}
		seen[uint32(buf)] = true
	}

	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}
}

func TestRegistry_Errors(t *testing.T) {
	t.Parallel()

	r, dev := newTestRegistry(t)

	if _, err := r.Lookup(keyShot); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Lookup() error = %v, want ErrUnknownKey", err)
	}

	if err := r.Register(keyShot, "shot.wav"); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(keyShot, "step.wav"); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("Register(dup) error = %v, want ErrDuplicateKey", err)
	}

	if err := r.Register(keyStep, "missing.wav"); !errors.Is(err, ErrDecode) {
		t.Errorf("Register(missing) error = %v, want ErrDecode", err)
	}

	dev.ZeroBuffers(true)
	if err := r.Register(keyWind, "wind.ogg"); !errors.Is(err, ErrDecode) {
		t.Errorf("Register(zero handle) error = %v, want ErrDecode", err)
	}

	if r.Has(keyStep) || r.Has(keyWind) {
		t.Error("failed registrations left entries behind")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestRegistry_Release(t *testing.T) {
	t.Parallel()

	r, dev := newTestRegistry(t)
	_ = r.Register(keyWind, "wind.ogg")
	_ = r.Register(keyShot, "shot.wav")

	want := r.Keys()
	if len(want) != 2 || want[0] != keyWind || want[1] != keyShot {
		t.Fatalf("Keys() = %v, want [wind shot]", want)
	}

	if err := r.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if dev.Buffers() != 0 {
		t.Errorf("device still holds %d buffers", dev.Buffers())
	}
	if len(dev.CallsTo("DeleteBuffer")) != 2 {
		t.Errorf("DeleteBuffer called %d times, want 2", len(dev.CallsTo("DeleteBuffer")))
	}

	// Second release has nothing left to delete.
	if err := r.Release(); err != nil {
		t.Errorf("second Release() error = %v", err)
	}
	if len(dev.CallsTo("DeleteBuffer")) != 2 {
		t.Error("second Release() deleted buffers again")
	}
}

func TestRegistry_ReleaseContinuesPastFailure(t *testing.T) {
	t.Parallel()

	r, dev := newTestRegistry(t)
	_ = r.Register(keyShot, "shot.wav")
	_ = r.Register(keyStep, "step.wav")

	boom := errors.New("boom")
	dev.Fail("DeleteBuffer", boom)

	err := r.Release()
	if !errors.Is(err, boom) {
		t.Errorf("Release() error = %v, want boom", err)
	}
	if len(dev.CallsTo("DeleteBuffer")) != 2 {
		t.Errorf("DeleteBuffer called %d times, want 2", len(dev.CallsTo("DeleteBuffer")))
	}
}
