// SPDX-License-Identifier: EPL-2.0

package legacy

import "errors"

var (
	// ErrDuplicateSourceName indicates a source name already in use
	ErrDuplicateSourceName = errors.New("duplicate source name")

	// ErrDuplicateSoundName indicates a sound name already loaded
	ErrDuplicateSoundName = errors.New("duplicate sound name")

	// ErrUnknownSource indicates a source name never created
	ErrUnknownSource = errors.New("unknown source")

	// ErrUnknownSound indicates a sound name never loaded
	ErrUnknownSound = errors.New("unknown sound")
)
