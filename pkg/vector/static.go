package vector

import "math"

// The functions in this file never modify their arguments.

func result(op string, x, y, z float64) (*Vector, error) {
	if !isNumber(x) || !isNumber(y) || !isNumber(z) {
		return nil, invalid(op, msgOverflow)
	}
	return &Vector{x, y, z}, nil
}

func Add(a, b *Vector) (*Vector, error) {
	if a == nil || b == nil {
		return nil, invalid("vector.Add", msgTwoVectors)
	}

	return result("vector.Add", a.x+b.x, a.y+b.y, a.z+b.z)
}

func Sub(a, b *Vector) (*Vector, error) {
	if a == nil || b == nil {
		return nil, invalid("vector.Sub", msgTwoVectors)
	}

	return result("vector.Sub", a.x-b.x, a.y-b.y, a.z-b.z)
}

func Mult(v *Vector, k float64) (*Vector, error) {
	if v == nil {
		return nil, invalid("vector.Mult", msgFirstVector)
	}
	if !isNumber(k) {
		return nil, invalid("vector.Mult", msgSecondNumber)
	}

	return result("vector.Mult", v.x*k, v.y*k, v.z*k)
}

func Div(v *Vector, k float64) (*Vector, error) {
	const op = "vector.Div"

	if v == nil {
		return nil, invalid(op, msgFirstVector)
	}
	if !isNumber(k) {
		return nil, invalid(op, msgSecondDiv)
	}
	if k == 0 {
		return nil, &Error{Kind: DivisionByZero, Op: op, Message: msgSecondDiv}
	}

	return result(op, v.x/k, v.y/k, v.z/k)
}

// Map applies fn to the x and y components of v. Unlike the Map method, z is
// not mapped and the result always has z = 0.
func Map(v *Vector, fn func(float64) float64) (*Vector, error) {
	if v == nil {
		return nil, invalid("vector.Map", msgFirstVector)
	}
	if fn == nil {
		return nil, invalid("vector.Map", msgSecondFunc)
	}

	return New(fn(v.x), fn(v.y), 0), nil
}

// FromAngle returns the unit vector at theta radians from the x axis.
func FromAngle(theta float64) (*Vector, error) {
	if !isNumber(theta) {
		return nil, invalid("vector.FromAngle", msgNumber)
	}

	return New(math.Cos(theta), math.Sin(theta), 0), nil
}
