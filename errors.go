// SPDX-License-Identifier: EPL-2.0

package sndpool

import "errors"

var (
	// ErrClosed indicates a call on a closed system
	ErrClosed = errors.New("sound system closed")

	// ErrDeviceOpen indicates the backend device could not be opened
	ErrDeviceOpen = errors.New("cannot open audio device")
)
