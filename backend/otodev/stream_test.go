// SPDX-License-Identifier: EPL-2.0

package otodev

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

func TestStream_Read(t *testing.T) {
	t.Parallel()

	s := &stream{}
	if _, err := s.Read(make([]byte, 4)); err != io.EOF {
		t.Errorf("Read() on empty stream error = %v, want EOF", err)
	}

	s.set([]byte{1, 2, 3, 4, 5})
	got, err := io.ReadAll(s)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3, 4, 5}) {
		t.Errorf("ReadAll() = %v", got)
	}
	if !s.drained() {
		t.Error("drained() = false after reading everything")
	}
}

func TestStream_Loop(t *testing.T) {
	t.Parallel()

	s := &stream{}
	s.set([]byte{1, 2, 3})
	s.setLoop(true)

	p := make([]byte, 8)
	n, err := s.Read(p)
	if err != nil || n != 8 {
		t.Fatalf("Read() = %d, %v", n, err)
	}
	if !bytes.Equal(p, []byte{1, 2, 3, 1, 2, 3, 1, 2}) {
		t.Errorf("Read() = %v", p)
	}
	if s.drained() {
		t.Error("looping stream reported drained")
	}
}

func TestStream_Seek(t *testing.T) {
	t.Parallel()

	s := &stream{}
	s.set([]byte{1, 2, 3, 4})

	tests := []struct {
		off    int64
		whence int
		want   int64
		err    bool
	}{
		{2, io.SeekStart, 2, false},
		{1, io.SeekCurrent, 3, false},
		{-4, io.SeekEnd, 0, false},
		{10, io.SeekStart, 4, false},
		{-1, io.SeekStart, 0, true},
		{0, 42, 0, true},
	}

	for _, tt := range tests {
		got, err := s.Seek(tt.off, tt.whence)
		if (err != nil) != tt.err {
			t.Errorf("Seek(%d, %d) error = %v", tt.off, tt.whence, err)
			continue
		}
		if !tt.err && got != tt.want {
			t.Errorf("Seek(%d, %d) = %d, want %d", tt.off, tt.whence, got, tt.want)
		}
	}
}

func pcm(samples ...int16) []byte {
	out := make([]byte, 2*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
	}
	return out
}

func TestStream_Pan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pan  float64
		want []byte
	}{
		{"centre", 0, pcm(1000, 1000, -2000, -2000)},
		{"hard right", 1, pcm(0, 1000, 0, -2000)},
		{"half left", -0.5, pcm(1000, 500, -2000, -1000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := &stream{}
			s.set(pcm(1000, 1000, -2000, -2000))
			s.setPan(tt.pan)

			// Odd sized reads split samples across calls.
			var got []byte
			p := make([]byte, 3)
			for {
				n, err := s.Read(p)
				got = append(got, p[:n]...)
				if err != nil {
					break
				}
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("read %v, want %v", got, tt.want)
			}
		})
	}
}
