package vector

import "math"

// Transform is a 2x2 matrix [a, b, c, d] mapping (x, y) to
// (x*a + y*c, x*b + y*d).
type Transform [4]float64

var Identity = Transform{1, 0, 0, 1}

// Rotation returns the counter-clockwise rotation by angle radians.
func Rotation(angle float64) Transform {
	cos, sin := math.Cos(angle), math.Sin(angle)
	return Transform{cos, sin, -sin, cos}
}

func (m Transform) valid() bool {
	for _, entry := range m {
		if !isNumber(entry) {
			return false
		}
	}
	return true
}
