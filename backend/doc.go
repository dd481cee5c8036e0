// SPDX-License-Identifier: EPL-2.0

// Package backend defines the boundary between the source pool and an audio
// output device.
//
// A Device owns playback channels and uploaded sample buffers and hands out
// opaque, non-zero handles for both. Mixing, spatialization and rendering
// are entirely the device's business; callers only forward buffers,
// positions and gain scalars.
//
// Devices are not safe for concurrent use unless an implementation says
// otherwise. The pool drives them from a single goroutine.
package backend
