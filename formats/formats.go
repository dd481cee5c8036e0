// SPDX-License-Identifier: EPL-2.0

// Package formats wires every decoder in this module into an audio.Registry.
package formats

import (
	"github.com/ik5/sndpool/audio"
	"github.com/ik5/sndpool/formats/aiff"
	"github.com/ik5/sndpool/formats/mp3"
	"github.com/ik5/sndpool/formats/vorbis"
	"github.com/ik5/sndpool/formats/wav"
)

// Register adds the wav, mp3, ogg and aiff decoders to r under their usual
// file extensions.
func Register(r *audio.Registry) {
	r.Register("wav", wav.Decoder{})
	r.Register("wave", wav.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})
	r.Register("aif", aiff.Decoder{})
	r.Register("aiff", aiff.Decoder{})
}

// NewRegistry returns a registry with every bundled decoder registered.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()
	Register(r)
	return r
}
