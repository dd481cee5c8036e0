// SPDX-License-Identifier: EPL-2.0

package buffers

import (
	"errors"
	"fmt"

	"github.com/ik5/sndpool/backend"
)

// Decoder turns a file path into an uploaded buffer.
type Decoder interface {
	DecodeFile(path string) (backend.Buffer, error)
}

// Registry maps sound keys to buffers. It is not safe for concurrent use.
type Registry[K comparable] struct {
	dev backend.Device
	dec Decoder

	bufs  map[K]backend.Buffer
	order []K
}

func NewRegistry[K comparable](dev backend.Device, dec Decoder) *Registry[K] {
	return &Registry[K]{
		dev:  dev,
		dec:  dec,
		bufs: make(map[K]backend.Buffer),
	}
}

// Register decodes path and stores the buffer under key.
func (r *Registry[K]) Register(key K, path string) error {
	if _, ok := r.bufs[key]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, key)
	}

	buf, err := r.dec.DecodeFile(path)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrDecode, path, err)
	}
	if !buf.Valid() {
		return fmt.Errorf("%w %q: device returned no buffer", ErrDecode, path)
	}

	r.bufs[key] = buf
	r.order = append(r.order, key)
	return nil
}

// Lookup returns the buffer registered under key.
func (r *Registry[K]) Lookup(key K) (backend.Buffer, error) {
	buf, ok := r.bufs[key]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownKey, key)
	}
	return buf, nil
}

// Has reports whether key is registered.
func (r *Registry[K]) Has(key K) bool {
	_, ok := r.bufs[key]
	return ok
}

// Len is the number of registered sounds.
func (r *Registry[K]) Len() int { return len(r.bufs) }

// Keys lists registered keys in registration order.
func (r *Registry[K]) Keys() []K {
	return append([]K(nil), r.order...)
}

// Release deletes every buffer in registration order and empties the
// registry. Deletion continues past failures.
func (r *Registry[K]) Release() error {
	var errs []error
	for _, key := range r.order {
		if err := r.dev.DeleteBuffer(r.bufs[key]); err != nil {
			errs = append(errs, fmt.Errorf("deleting buffer for %v: %w", key, err))
		}
	}

	clear(r.bufs)
	r.order = nil
	return errors.Join(errs...)
}
