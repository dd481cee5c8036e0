// SPDX-License-Identifier: EPL-2.0

// Package beepdev is a backend.Device on top of github.com/gopxl/beep.
//
// The device plays a single beep.Mixer through the speaker. Each channel is
// a voice in that mixer wrapped in a beep.Ctrl for pausing, an effects.Pan
// steered by its position relative to the listener and an effects.Volume
// for gain. Voices never finish on their own, so the mixer
// keeps them; a voice that runs out of samples outputs silence and reports
// itself stopped.
//
// The speaker is initialized once per process. Several devices may share
// it; each one's mixer leaves the speaker when the device closes.
package beepdev
