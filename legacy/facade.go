// SPDX-License-Identifier: EPL-2.0

package legacy

import (
	"errors"
	"fmt"

	"github.com/ik5/sndpool/backend"
	"github.com/ik5/sndpool/buffers"
	"go.uber.org/zap"
)

// Facade maps source names to channels and sound names to buffers. It is
// not safe for concurrent use.
type Facade struct {
	dev backend.Device
	log *zap.Logger

	sounds  *buffers.Registry[string]
	sources map[string]backend.Channel
	order   []string

	// onFatal runs when a sound fails to load.
	onFatal func(error)
}

// New returns an empty facade on dev. onFatal, when set, is called with the
// error of a failed LoadSound before it returns.
func New(dev backend.Device, dec buffers.Decoder, log *zap.Logger, onFatal func(error)) *Facade {
	if log == nil {
		log = zap.NewNop()
	}
	return &Facade{
		dev:     dev,
		log:     log.Named("legacy"),
		sounds:  buffers.NewRegistry[string](dev, dec),
		sources: make(map[string]backend.Channel),
		onFatal: onFatal,
	}
}

// CreateSource creates a channel bound to name.
func (f *Facade) CreateSource(name string) error {
	if _, ok := f.sources[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateSourceName, name)
	}

	ch, err := f.dev.CreateChannel()
	if err != nil {
		return fmt.Errorf("creating source %q: %w", name, err)
	}
	f.sources[name] = ch
	f.order = append(f.order, name)
	return nil
}

// LoadSound decodes path and stores it under name.
func (f *Facade) LoadSound(name, path string) error {
	if f.sounds.Has(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateSoundName, name)
	}

	if err := f.sounds.Register(name, path); err != nil {
		err = fmt.Errorf("loading sound %q: %w", name, err)
		if f.onFatal != nil {
			f.onFatal(err)
		}
		return err
	}
	return nil
}

func (f *Facade) source(name string) (backend.Channel, error) {
	ch, ok := f.sources[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	return ch, nil
}

// Play plays sound on source, stopping whatever source was playing.
// Device failures are logged and the request dropped.
func (f *Facade) Play(source, sound string) error {
	ch, err := f.source(source)
	if err != nil {
		return err
	}
	buf, err := f.sounds.Lookup(sound)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownSound, sound)
	}

	if err := f.play(ch, buf); err != nil {
		f.log.Error("cannot play sound",
			zap.String("source", source), zap.String("sound", sound), zap.Error(err))
	}
	return nil
}

func (f *Facade) play(ch backend.Channel, buf backend.Buffer) error {
	state, err := f.dev.State(ch)
	if err != nil {
		return err
	}
	if state == backend.Playing {
		if err := f.dev.Stop(ch); err != nil {
			return err
		}
	}
	if err := f.dev.AttachBuffer(ch, buf); err != nil {
		return err
	}
	return f.dev.Play(ch)
}

// Pause holds source where it is if it is playing. A later Play starts
// over.
func (f *Facade) Pause(source string) error {
	ch, err := f.source(source)
	if err != nil {
		return err
	}
	return f.dev.Pause(ch)
}

// SetGain sets the gain of source. gain must lie in [0,1]; anything else is
// rejected without touching the device.
func (f *Facade) SetGain(source string, gain float32) error {
	ch, err := f.source(source)
	if err != nil {
		return err
	}
	g, err := backend.NewGain(gain)
	if err != nil {
		return err
	}
	return f.dev.SetGain(ch, g)
}

// SetLooping turns looping of source on or off.
func (f *Facade) SetLooping(source string, loop bool) error {
	ch, err := f.source(source)
	if err != nil {
		return err
	}
	return f.dev.SetLooping(ch, loop)
}

// Source returns the channel bound to name.
func (f *Facade) Source(name string) (backend.Channel, bool) {
	ch, ok := f.sources[name]
	return ch, ok
}

// Sound returns the buffer loaded under name.
func (f *Facade) Sound(name string) (backend.Buffer, bool) {
	buf, err := f.sounds.Lookup(name)
	return buf, err == nil
}

// ReleaseBuffers deletes every loaded sound.
func (f *Facade) ReleaseBuffers() error {
	return f.sounds.Release()
}

// ReleaseChannels destroys every source in creation order.
func (f *Facade) ReleaseChannels() error {
	var errs []error
	for _, name := range f.order {
		if err := f.dev.DestroyChannel(f.sources[name]); err != nil {
			errs = append(errs, fmt.Errorf("destroying source %q: %w", name, err))
		}
	}
	clear(f.sources)
	f.order = nil
	return errors.Join(errs...)
}
