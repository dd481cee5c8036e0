// SPDX-License-Identifier: EPL-2.0

// Package sndpool plays short sounds and loops through a fixed pool of
// backend playback channels.
//
// Callers never see channel allocation. They queue sounds by key during a
// tick and flush once; the system finds idle channels, configures them and
// starts playback. When there are more sounds than idle channels the extra
// ones are dropped, never retried, so a busy frame cannot stall the tick
// loop.
//
// # Quick Start
//
//	sys, err := sndpool.Open(otodev.Opener(otodev.Options{}), map[string]string{
//	    "shot": "sfx/shot.wav",
//	    "step": "sfx/step.ogg",
//	}, sndpool.Options{PoolSize: 16})
//	if err != nil {
//	    return err
//	}
//	defer sys.Close()
//
//	sys.Enqueue("shot", mgl32.Vec3{1, 0, 0}, backend.FullGain)
//	sys.Enqueue("step", mgl32.Vec3{}, backend.MustGain(0.4))
//	res := sys.Flush()
//
// # Loops
//
// AcquireLoop takes a channel out of the pool until ReleaseLoop is called
// with the returned handle. The pool skips loop channels no matter what the
// device reports, and releasing a handle twice fails with
// pool.ErrNotLooping.
//
//	h, ok, err := sys.AcquireLoop("wind", mgl32.Vec3{}, backend.MustGain(0.3))
//	if err == nil && ok {
//	    defer sys.ReleaseLoop(h)
//	}
//
// # Sound Keys
//
// System is generic over the key type. Any comparable type works: strings
// for data driven games, or an int enum for compiled-in sound tables. Every
// key is decoded once in Open; a file that fails to decode aborts Open.
//
// # Named Sources
//
// Named returns the legacy name-keyed API, which manages its own channels
// and sounds beside the pool and is released with the system.
//
// # Concurrency
//
// A System is meant to be driven from one goroutine, usually the game or
// UI loop. It does no locking of its own.
package sndpool
