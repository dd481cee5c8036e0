// SPDX-License-Identifier: EPL-2.0

// Package buffers keeps decoded sounds uploaded to a backend device, keyed
// by caller-chosen identifiers.
//
// A Registry is filled once at startup from a key to file path mapping and
// is read-mostly afterwards. Every buffer it holds is deleted exactly once
// by Release. FileLoader is the usual Decoder: it opens the file through an
// afero filesystem, decodes it by extension, converts it to the device
// sample rate and uploads it.
package buffers
