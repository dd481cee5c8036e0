// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files into audio clips using
// github.com/jfreymuth/oggvorbis. The decoder already yields float32
// samples, so no rescaling takes place.
package vorbis
