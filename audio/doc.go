// SPDX-License-Identifier: EPL-2.0

// Package audio holds decoded sample data and the format plumbing used to
// turn sound files into it.
//
// # Clips
//
// A Clip is a fully decoded sound: interleaved float32 samples in [-1, 1]
// with a sample rate and channel count. Sound effects are short, so the
// whole file is decoded once and kept in memory until it is uploaded to a
// backend device.
//
//	clip, err := wav.Decoder{}.Decode(file)
//	clip = clip.Resample(48000).Mono()
//
// # Format Registry
//
// The registry maps a format key (normally a file extension) to a Decoder:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	dec, err := registry.ForPath("assets/sounds/hit.wav")
//
// formats.Register wires every decoder shipped with this module.
//
// # Conversions
//
// Resample changes the sample rate using cubic (Catmull-Rom) interpolation.
// Mono averages all channels into one, Stereo duplicates a mono channel or
// folds a wider layout down to two. Each conversion returns a new Clip and
// leaves the receiver untouched; a conversion that is a no-op returns the
// receiver itself.
package audio
