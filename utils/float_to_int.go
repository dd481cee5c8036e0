// SPDX-License-Identifier: EPL-2.0

package utils

import "encoding/binary"

// Float32ToInt16 clamps x to [-1,1] and scales it by 32767, so both full
// scale values map symmetrically.
func Float32ToInt16(x float32) int16 {
	return int16(min(max(x, -1), 1) * 32767)
}

// PutInt16LE writes src as signed 16-bit little-endian PCM into dst.
// dst must hold at least 2*len(src) bytes; the number of bytes written is returned.
func PutInt16LE(dst []byte, src []float32) int {
	for i, x := range src {
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(Float32ToInt16(x)))
	}
	return 2 * len(src)
}
