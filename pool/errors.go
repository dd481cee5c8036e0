// SPDX-License-Identifier: EPL-2.0

package pool

import "errors"

var (
	// ErrNotLooping indicates a release of a channel that is not a loop held
	// by the given owner
	ErrNotLooping = errors.New("channel is not looping for this owner")

	// ErrUnknownChannel indicates a channel that does not belong to the pool
	ErrUnknownChannel = errors.New("channel not in pool")
)
