// SPDX-License-Identifier: EPL-2.0

// Package legacy provides the name-keyed source and sound API kept for
// older callers.
//
// Sources created here are plain device channels owned by one name each,
// outside the pool. A source plays one sound at a time: playing a new sound
// on a busy source cuts off the old one.
package legacy
