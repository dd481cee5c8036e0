// SPDX-License-Identifier: EPL-2.0

package backend

import "errors"

var (
	// ErrGainOutOfRange indicates a gain outside [0,1]
	ErrGainOutOfRange = errors.New("gain out of range [0,1]")

	// ErrUnknownChannel indicates a channel handle the device never created
	// or already destroyed
	ErrUnknownChannel = errors.New("unknown channel")

	// ErrUnknownBuffer indicates a buffer handle the device never created or
	// already deleted
	ErrUnknownBuffer = errors.New("unknown buffer")

	// ErrChannelBusy indicates a buffer change on a playing channel
	ErrChannelBusy = errors.New("channel is playing")

	// ErrDeviceClosed indicates a call on a closed device
	ErrDeviceClosed = errors.New("device closed")
)
