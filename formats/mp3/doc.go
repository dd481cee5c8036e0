// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 files into stereo audio clips using
// github.com/hajimehoshi/go-mp3.
//
// go-mp3 upmixes mono streams, so decoded clips always have two channels.
// Use Clip.Mono when the sound is meant for positional playback.
package mp3
