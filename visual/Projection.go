package visual

import "math"

// camera orthographically projects points of the cube [-1, 1]^3 onto
// a screen. The scene is first rotated by azimuth about the z axis and
// then tilted by elevation about the screen's horizontal axis.
type camera struct {
	azimuth   float64 // radians
	elevation float64 // radians

	// Screen coordinates of the projected origin and the number of
	// pixels per unit length
	cx, cy, scale float64
}

// project returns the screen coordinates of a point and its depth.
// Greater depths are further from the viewer.
func (c camera) project(x, y, z float64) (sx, sy, depth float64) {
	sinA, cosA := math.Sincos(c.azimuth)
	sinE, cosE := math.Sincos(c.elevation)

	rx := x*cosA - y*sinA
	ry := x*sinA + y*cosA

	up := z*cosE - ry*sinE
	depth = ry*cosE + z*sinE

	return c.cx + c.scale*rx, c.cy - c.scale*up, depth
}
