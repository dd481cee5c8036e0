// SPDX-License-Identifier: EPL-2.0

// Package pool holds a fixed set of backend playback channels and hands
// out idle ones.
//
// Busy or idle is read from the device on every scan, so a one-shot that
// finished since the last scan is reusable at once. Channels handed out as
// loops are tagged with an owner token and skipped by the scan until that
// owner releases them, whatever the device reports.
package pool
