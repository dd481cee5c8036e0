// SPDX-License-Identifier: EPL-2.0

package sndpool

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/ik5/sndpool/backend"
	"github.com/ik5/sndpool/buffers"
	"github.com/ik5/sndpool/formats"
	"github.com/ik5/sndpool/legacy"
	"github.com/ik5/sndpool/pool"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Options configures Open. The zero value opens an empty pool that decodes
// from the OS filesystem.
type Options struct {
	// PoolSize is the number of channels created up front.
	PoolSize int
	// Mono downmixes every sound on load.
	Mono bool
	// Fs is where sound files are read from. Defaults to the OS filesystem.
	Fs afero.Fs
	// Decoder replaces the file loader entirely. It receives the open
	// device so it can upload buffers.
	Decoder func(backend.Device) buffers.Decoder
	Logger  *zap.Logger
}

// Stats are cumulative counters since Open.
type Stats struct {
	Dispatched int
	Dropped    int
	// ActiveOneShots and ActiveLoops count pool channels busy right now.
	ActiveOneShots int
	ActiveLoops    int
	Pending        int
	PoolSize       int
}

// System owns an open device, the sounds decoded onto it and the channel
// pool playing them.
type System[K comparable] struct {
	dev    backend.Device
	log    *zap.Logger
	sounds *buffers.Registry[K]
	pool   *pool.Pool
	named  *legacy.Facade

	queue []queued[K]

	dispatched int
	dropped    int

	closed bool
}

// Open opens a device, creates the channel pool and decodes every sound.
// Any failure releases whatever was set up so far.
func Open[K comparable](open backend.Opener, sounds map[K]string, opts Options) (*System[K], error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	dev, err := open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceOpen, err)
	}
	log.Info("opened audio device",
		zap.String("device", dev.Name()), zap.Int("sample_rate", dev.SampleRate()))

	dec := newDecoder(dev, opts)
	s := &System[K]{
		dev:    dev,
		log:    log,
		sounds: buffers.NewRegistry[K](dev, dec),
	}
	s.named = legacy.New(dev, dec, log, func(err error) {
		log.Error("sound failed to load, shutting down", zap.Error(err))
		if cerr := s.Close(); cerr != nil {
			log.Error("shutdown after load failure", zap.Error(cerr))
		}
	})

	s.pool, err = pool.New(dev, opts.PoolSize, log)
	if err != nil {
		return nil, errors.Join(err, s.Close())
	}

	for key, path := range sounds {
		if err := s.sounds.Register(key, path); err != nil {
			return nil, errors.Join(err, s.Close())
		}
		log.Debug("loaded sound", zap.Any("key", key), zap.String("path", path))
	}

	return s, nil
}

func newDecoder(dev backend.Device, opts Options) buffers.Decoder {
	if opts.Decoder != nil {
		return opts.Decoder(dev)
	}

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &buffers.FileLoader{
		Fs:      fs,
		Formats: formats.NewRegistry(),
		Device:  dev,
		Mono:    opts.Mono,
	}
}

// Device returns the open backend device.
func (s *System[K]) Device() backend.Device { return s.dev }

// Buffer returns the buffer decoded for key.
func (s *System[K]) Buffer(key K) (backend.Buffer, error) {
	if s.closed {
		return 0, ErrClosed
	}
	return s.sounds.Lookup(key)
}

// Keys lists the registered sound keys in registration order.
func (s *System[K]) Keys() []K { return s.sounds.Keys() }

// Named returns the name-keyed source and sound API.
func (s *System[K]) Named() *legacy.Facade { return s.named }

// SetListenerPosition moves the listener.
func (s *System[K]) SetListenerPosition(pos mgl32.Vec3) error {
	if s.closed {
		return ErrClosed
	}
	return s.dev.SetListenerPosition(pos)
}

// SetListenerOrientation turns the listener. forward and up should be
// perpendicular; this is not checked.
func (s *System[K]) SetListenerOrientation(forward, up mgl32.Vec3) error {
	if s.closed {
		return ErrClosed
	}
	return s.dev.SetListenerOrientation(forward, up)
}

// Stats returns the current counters.
func (s *System[K]) Stats() Stats {
	st := Stats{
		Dispatched: s.dispatched,
		Dropped:    s.dropped,
		Pending:    len(s.queue),
	}
	if s.pool != nil {
		st.ActiveOneShots = s.pool.ActiveOneShots()
		st.ActiveLoops = s.pool.ActiveLoops()
		st.PoolSize = s.pool.Len()
	}
	return st
}

// dispatch configures ch from scratch and starts it.
func (s *System[K]) dispatch(ch backend.Channel, buf backend.Buffer, pos mgl32.Vec3, gain backend.Gain, loop bool) error {
	if err := s.dev.AttachBuffer(ch, buf); err != nil {
		return err
	}
	if err := s.dev.SetPosition(ch, pos); err != nil {
		return err
	}
	if err := s.dev.SetGain(ch, gain); err != nil {
		return err
	}
	if err := s.dev.SetLooping(ch, loop); err != nil {
		return err
	}
	return s.dev.Play(ch)
}

// Close releases sounds, then channels, then the device. Only the first
// call does anything.
func (s *System[K]) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.queue = nil

	var errs []error
	if err := s.sounds.Release(); err != nil {
		errs = append(errs, err)
	}
	if err := s.named.ReleaseBuffers(); err != nil {
		errs = append(errs, err)
	}
	if s.pool != nil {
		if err := s.pool.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.named.ReleaseChannels(); err != nil {
		errs = append(errs, err)
	}
	if err := s.dev.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing device: %w", err))
	}

	s.log.Info("closed audio device", zap.String("device", s.dev.Name()))
	return errors.Join(errs...)
}
