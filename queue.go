// SPDX-License-Identifier: EPL-2.0

package sndpool

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/ik5/sndpool/backend"
	"go.uber.org/zap"
)

type queued[K comparable] struct {
	key  K
	pos  mgl32.Vec3
	gain backend.Gain
}

// FlushResult counts what one Flush did with the queue.
type FlushResult struct {
	Dispatched int
	Dropped    int
}

// Enqueue queues a one-shot for the next Flush. It never fails; the queue
// is unbounded. Keys are checked at flush time.
func (s *System[K]) Enqueue(key K, pos mgl32.Vec3, gain backend.Gain) {
	if s.closed {
		s.log.Debug("ignoring sound queued after close", zap.Any("key", key))
		return
	}
	s.queue = append(s.queue, queued[K]{key: key, pos: pos, gain: gain})
}

// Flush plays every queued sound in the order it was queued. A sound that
// finds no idle channel, or that the device refuses, is dropped and the
// rest of the queue still runs. The queue is always empty afterwards.
func (s *System[K]) Flush() FlushResult {
	var res FlushResult
	if s.closed || len(s.queue) == 0 {
		return res
	}

	q := s.queue
	for _, qs := range q {
		if s.play(qs) {
			res.Dispatched++
		} else {
			res.Dropped++
		}
	}

	clear(q)
	s.queue = q[:0]

	s.dispatched += res.Dispatched
	s.dropped += res.Dropped
	return res
}

func (s *System[K]) play(qs queued[K]) bool {
	buf, err := s.sounds.Lookup(qs.key)
	if err != nil {
		s.log.Error("dropping queued sound", zap.Any("key", qs.key), zap.Error(err))
		return false
	}

	ch, ok := s.pool.Acquire()
	if !ok {
		s.log.Warn("dropping queued sound, no idle channel", zap.Any("key", qs.key))
		return false
	}

	if err := s.dispatch(ch, buf, qs.pos, qs.gain, false); err != nil {
		s.log.Error("dropping queued sound",
			zap.Any("key", qs.key), zap.Uint32("channel", uint32(ch)), zap.Error(err))
		return false
	}
	if err := s.pool.MarkOneShot(ch); err != nil {
		s.log.Warn("cannot tag channel", zap.Uint32("channel", uint32(ch)), zap.Error(err))
	}
	return true
}
