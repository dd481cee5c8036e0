// SPDX-License-Identifier: EPL-2.0

package pool

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ik5/sndpool/backend"
	"go.uber.org/zap"
)

// Tag records what a channel is in use for. A OneShot tag falls back to
// Idle once the device stops reporting the channel as playing, the same
// test Acquire uses.
type Tag int

const (
	Idle Tag = iota
	OneShot
	Loop
)

func (t Tag) String() string {
	switch t {
	case Idle:
		return "idle"
	case OneShot:
		return "one-shot"
	case Loop:
		return "loop"
	default:
		return fmt.Sprintf("tag(%d)", int(t))
	}
}

type slot struct {
	ch    backend.Channel
	tag   Tag
	owner uuid.UUID
}

// Pool is a fixed-size set of channels. It is not safe for concurrent use.
type Pool struct {
	dev backend.Device
	log *zap.Logger

	slots []slot
	index map[backend.Channel]int

	closed bool
}

// New creates n channels on dev. If any creation fails the channels made
// so far are destroyed again.
func New(dev backend.Device, n int, log *zap.Logger) (*Pool, error) {
	if n < 0 {
		return nil, fmt.Errorf("pool size %d is negative", n)
	}
	if log == nil {
		log = zap.NewNop()
	}

	p := &Pool{
		dev:   dev,
		log:   log,
		slots: make([]slot, 0, n),
		index: make(map[backend.Channel]int, n),
	}

	for i := range n {
		ch, err := dev.CreateChannel()
		if err != nil {
			err = fmt.Errorf("creating pool channel %d of %d: %w", i+1, n, err)
			return nil, errors.Join(err, p.Close())
		}
		p.index[ch] = len(p.slots)
		p.slots = append(p.slots, slot{ch: ch})
	}

	log.Debug("created source pool", zap.Int("size", n))
	return p, nil
}

// Len is the number of channels in the pool.
func (p *Pool) Len() int { return len(p.slots) }

// Channels lists the pool channels in scan order.
func (p *Pool) Channels() []backend.Channel {
	out := make([]backend.Channel, len(p.slots))
	for i, s := range p.slots {
		out[i] = s.ch
	}
	return out
}

// Acquire returns the first channel, in creation order, that is not held as
// a loop and that the device does not report as playing. ok is false when
// every channel is busy.
func (p *Pool) Acquire() (ch backend.Channel, ok bool) {
	if p.closed {
		return 0, false
	}

	for _, s := range p.slots {
		if s.tag == Loop {
			continue
		}

		state, err := p.dev.State(s.ch)
		if err != nil {
			p.log.Warn("cannot query channel state",
				zap.Uint32("channel", uint32(s.ch)), zap.Error(err))
			continue
		}
		if state != backend.Playing {
			return s.ch, true
		}
	}
	return 0, false
}

func (p *Pool) slot(ch backend.Channel) (*slot, error) {
	i, ok := p.index[ch]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownChannel, ch)
	}
	return &p.slots[i], nil
}

// MarkOneShot tags ch as playing a one-shot.
func (p *Pool) MarkOneShot(ch backend.Channel) error {
	s, err := p.slot(ch)
	if err != nil {
		return err
	}
	if s.tag == Loop {
		return fmt.Errorf("channel %d is held as a loop", ch)
	}
	s.tag = OneShot
	s.owner = uuid.Nil
	return nil
}

// MarkLoop tags ch as a loop and returns the owner token needed to release
// it.
func (p *Pool) MarkLoop(ch backend.Channel) (uuid.UUID, error) {
	s, err := p.slot(ch)
	if err != nil {
		return uuid.Nil, err
	}
	if s.tag == Loop {
		return uuid.Nil, fmt.Errorf("channel %d is already held as a loop", ch)
	}
	s.tag = Loop
	s.owner = uuid.New()
	return s.owner, nil
}

// Owns reports ErrNotLooping unless ch is a loop held by owner.
func (p *Pool) Owns(ch backend.Channel, owner uuid.UUID) error {
	s, err := p.slot(ch)
	if err != nil {
		return err
	}
	if s.tag != Loop || s.owner != owner || owner == uuid.Nil {
		return fmt.Errorf("%w: channel %d", ErrNotLooping, ch)
	}
	return nil
}

// Release drops the loop tag of ch. A second release with the same owner
// fails with ErrNotLooping.
func (p *Pool) Release(ch backend.Channel, owner uuid.UUID) error {
	if err := p.Owns(ch, owner); err != nil {
		return err
	}
	s, _ := p.slot(ch)
	s.tag = Idle
	s.owner = uuid.Nil
	return nil
}

// Tag returns the current tag of ch.
func (p *Pool) Tag(ch backend.Channel) (Tag, error) {
	s, err := p.slot(ch)
	if err != nil {
		return Idle, err
	}
	p.settle(s)
	return s.tag, nil
}

// settle drops the OneShot tag of a channel whose sound has finished.
func (p *Pool) settle(s *slot) {
	if s.tag != OneShot {
		return
	}
	state, err := p.dev.State(s.ch)
	if err != nil {
		p.log.Warn("cannot query channel state",
			zap.Uint32("channel", uint32(s.ch)), zap.Error(err))
		return
	}
	if state != backend.Playing {
		s.tag = Idle
	}
}

// ActiveOneShots counts channels still playing a one-shot.
func (p *Pool) ActiveOneShots() int {
	n := 0
	for i := range p.slots {
		s := &p.slots[i]
		p.settle(s)
		if s.tag == OneShot {
			n++
		}
	}
	return n
}

// ActiveLoops counts channels held as loops.
func (p *Pool) ActiveLoops() int {
	n := 0
	for _, s := range p.slots {
		if s.tag == Loop {
			n++
		}
	}
	return n
}

// Close destroys every channel. Later calls do nothing.
func (p *Pool) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	for _, s := range p.slots {
		if err := p.dev.DestroyChannel(s.ch); err != nil {
			errs = append(errs, fmt.Errorf("destroying channel %d: %w", s.ch, err))
		}
	}
	p.slots = nil
	clear(p.index)
	return errors.Join(errs...)
}
