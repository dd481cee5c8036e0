// SPDX-License-Identifier: EPL-2.0

package buffers

import "errors"

var (
	// ErrUnknownKey indicates a lookup of a key that was never registered
	ErrUnknownKey = errors.New("unknown sound key")

	// ErrDuplicateKey indicates a second registration under the same key
	ErrDuplicateKey = errors.New("duplicate sound key")

	// ErrDecode indicates the file could not be turned into a usable buffer
	ErrDecode = errors.New("cannot decode sound")
)
