// SPDX-License-Identifier: EPL-2.0

package backend

import "github.com/go-gl/mathgl/mgl32"

// Pan returns the stereo balance of a source at pos for a listener at
// listener, facing forward with the given up vector: -1 is hard left, 1
// hard right. A source on the listener, or a degenerate orientation, pans
// to the centre.
func Pan(listener, forward, up, pos mgl32.Vec3) float64 {
	right := forward.Cross(up)
	offset := pos.Sub(listener)

	rl, ol := right.Len(), offset.Len()
	if rl == 0 || ol == 0 {
		return 0
	}

	p := float64(offset.Dot(right) / (rl * ol))
	return max(-1, min(1, p))
}
