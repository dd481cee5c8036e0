// SPDX-License-Identifier: EPL-2.0

package sndpool

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/ik5/sndpool/backend"
	"go.uber.org/zap"
)

// LoopHandle identifies a looping sound until it is released. The zero
// value is not a valid handle.
type LoopHandle struct {
	ch    backend.Channel
	owner uuid.UUID
}

// Channel is the pool channel the loop plays on.
func (h LoopHandle) Channel() backend.Channel { return h.ch }

// IsZero reports whether h is the zero value, which no loop ever has.
func (h LoopHandle) IsZero() bool { return h.owner == uuid.Nil }

// String formats h as loop(channel/owner) for logs.
func (h LoopHandle) String() string {
	return fmt.Sprintf("loop(%d/%s)", h.ch, h.owner)
}

// AcquireLoop starts key looping on an idle channel right away. ok is false
// when no channel is idle; that is not an error.
func (s *System[K]) AcquireLoop(key K, pos mgl32.Vec3, gain backend.Gain) (h LoopHandle, ok bool, err error) {
	if s.closed {
		return LoopHandle{}, false, ErrClosed
	}

	buf, err := s.sounds.Lookup(key)
	if err != nil {
		return LoopHandle{}, false, err
	}

	ch, ok := s.pool.Acquire()
	if !ok {
		s.log.Warn("no idle channel for loop", zap.Any("key", key))
		return LoopHandle{}, false, nil
	}

	if err := s.dispatch(ch, buf, pos, gain, true); err != nil {
		return LoopHandle{}, false, fmt.Errorf("starting loop on channel %d: %w", ch, err)
	}

	owner, err := s.pool.MarkLoop(ch)
	if err != nil {
		return LoopHandle{}, false, err
	}

	s.log.Debug("loop started", zap.Any("key", key), zap.Uint32("channel", uint32(ch)))
	return LoopHandle{ch: ch, owner: owner}, true, nil
}

// ReleaseLoop stops the loop behind h and returns its channel to the pool.
// Releasing the same handle twice fails with pool.ErrNotLooping.
func (s *System[K]) ReleaseLoop(h LoopHandle) error {
	if s.closed {
		return ErrClosed
	}
	if err := s.pool.Owns(h.ch, h.owner); err != nil {
		return err
	}

	var errs []error
	if err := s.dev.SetLooping(h.ch, false); err != nil {
		errs = append(errs, err)
	}

	state, err := s.dev.State(h.ch)
	switch {
	case err != nil:
		errs = append(errs, err)
	case state == backend.Playing || state == backend.Paused:
		if err := s.dev.Stop(h.ch); err != nil {
			errs = append(errs, err)
		}
	default:
		s.log.Warn("released loop was not playing",
			zap.Uint32("channel", uint32(h.ch)), zap.Stringer("state", state))
	}

	if err := s.dev.DetachBuffer(h.ch); err != nil {
		errs = append(errs, err)
	}

	if err := s.pool.Release(h.ch, h.owner); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
