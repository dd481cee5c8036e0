// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrEmptyClip         = errors.New("clip holds no samples")
	ErrInvalidFormat     = errors.New("invalid sample rate or channel count")
	ErrInvalidDstSize    = errors.New("sample count must be multiple of channels")
)
