// SPDX-License-Identifier: EPL-2.0

package otodev

import (
	"encoding/binary"
	"errors"
	"io"
	"sync"
)

var errNegativePosition = errors.New("otodev: negative position")

// stream serves the PCM bytes of the attached buffer to a player,
// optionally wrapping around. The player reads from its own goroutine.
// data is interleaved stereo 16-bit little-endian PCM.
type stream struct {
	mtx  sync.Mutex
	data []byte
	off  int
	loop bool
	// gain scales the left and right samples. The zero value is unity.
	gain   [2]float32
	panned bool
}

func (s *stream) Read(p []byte) (int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if len(s.data) == 0 {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) {
		if s.off >= len(s.data) {
			if !s.loop {
				break
			}
			s.off = 0
		}
		c := copy(p[n:], s.data[s.off:])
		if s.panned {
			s.scale(p[n:n+c], s.off)
		}
		n += c
		s.off += c
	}

	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (s *stream) Seek(offset int64, whence int) (int64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(s.off) + offset
	case io.SeekEnd:
		pos = int64(len(s.data)) + offset
	default:
		return 0, errors.New("otodev: invalid whence")
	}
	if pos < 0 {
		return 0, errNegativePosition
	}

	s.off = int(min(pos, int64(len(s.data))))
	return int64(s.off), nil
}

// set swaps the data and rewinds.
func (s *stream) set(data []byte) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.data = data
	s.off = 0
}

func (s *stream) setLoop(loop bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.loop = loop
}

// drained reports whether a non-looping stream has handed out everything.
func (s *stream) drained() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return !s.loop && s.off >= len(s.data)
}

// setPan sets the balance, -1 hard left to 1 hard right. The far side is
// attenuated linearly and the near side is left alone.
func (s *stream) setPan(pan float64) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.gain = [2]float32{1 - float32(max(pan, 0)), 1 + float32(min(pan, 0))}
	s.panned = pan != 0
}

// scale applies gain to dst, which holds data[off:off+len(dst)]. dst may
// start or end in the middle of a sample; those bytes come from the scaled
// whole sample.
func (s *stream) scale(dst []byte, off int) {
	var b [2]byte
	for i := 0; i < len(dst); {
		at := off + i
		start := at &^ 1
		if start+2 > len(s.data) {
			break
		}
		v := int16(binary.LittleEndian.Uint16(s.data[start:]))
		g := s.gain[(start/2)%2]
		binary.LittleEndian.PutUint16(b[:], uint16(int16(float32(v)*g)))

		for j := at - start; j < 2 && i < len(dst); j++ {
			dst[i] = b[j]
			i++
		}
	}
}
