// SPDX-License-Identifier: EPL-2.0

// Package otodev is a backend.Device on top of github.com/ebitengine/oto/v3.
//
// Every channel owns one oto player reading from a rewindable stream over
// its attached buffer. Buffers are kept in memory as stereo 16-bit PCM at
// the device rate. oto has no notion of 3D space; a channel's position
// relative to the listener sets its left/right balance, applied as the
// player reads the stream.
//
// oto allows a single context per process. The first Open creates it and
// its sample rate is fixed from then on. The context is suspended when the
// last open device closes and resumed by the next Open.
package otodev
