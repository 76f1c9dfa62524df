// Package vector implements a mutable three component vector for 2D and 3D
// drawing code.
package vector

import (
	"fmt"
	"math"
	"reflect"

	opt "github.com/repeale/fp-go/option"
)

// Vector is a mutable (x, y, z) triple. Its components are always finite.
// The zero value is the zero vector.
type Vector struct {
	x, y, z float64
}

func isNumber(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

func orZero(value float64) float64 {
	if !isNumber(value) {
		return 0
	}
	return value
}

// New never fails: NaN and infinite components are replaced with 0.
func New(x, y, z float64) *Vector {
	return &Vector{orZero(x), orZero(y), orZero(z)}
}

// FromAny builds a vector from up to three values of any type. Missing
// values, values that are not Go numbers and non-finite floats all become 0.
func FromAny(values ...any) *Vector {
	var components [3]float64
	for i := 0; i < len(values) && i < len(components); i++ {
		components[i] = coerce(values[i])
	}
	return &Vector{components[0], components[1], components[2]}
}

func coerce(value any) float64 {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return orZero(rv.Float())
	}
	return 0
}

func (v *Vector) X() float64 { return v.x }
func (v *Vector) Y() float64 { return v.y }
func (v *Vector) Z() float64 { return v.z }

func (v *Vector) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.x, v.y, v.z)
}

// Magnitude returns the Euclidean norm without overflowing on large
// components.
func (v *Vector) Magnitude() float64 {
	return math.Hypot(math.Hypot(v.x, v.y), v.z)
}

// Normalize scales v to unit length. The zero vector stays zero.
func (v *Vector) Normalize() *Vector {
	magnitude := v.Magnitude()
	if magnitude == 0 {
		magnitude = 1
	}

	v.x /= magnitude
	v.y /= magnitude
	v.z /= magnitude
	return v
}

func (v *Vector) scale(k float64) {
	v.x *= k
	v.y *= k
	v.z *= k
}

func (v *Vector) SetMagnitude(value float64) error {
	if !isNumber(value) {
		return invalid("Vector.SetMagnitude", msgNumber)
	}

	v.Normalize().scale(value)
	return nil
}

// assign writes x, y and z unless one of them overflowed.
func (v *Vector) assign(op string, x, y, z float64) error {
	if !isNumber(x) || !isNumber(y) || !isNumber(z) {
		return invalid(op, msgOverflow)
	}

	v.x, v.y, v.z = x, y, z
	return nil
}

func (v *Vector) Add(o *Vector) error {
	if o == nil {
		return invalid("Vector.Add", msgVector)
	}

	return v.assign("Vector.Add", v.x+o.x, v.y+o.y, v.z+o.z)
}

func (v *Vector) Sub(o *Vector) error {
	if o == nil {
		return invalid("Vector.Sub", msgVector)
	}

	return v.assign("Vector.Sub", v.x-o.x, v.y-o.y, v.z-o.z)
}

func (v *Vector) Mult(k float64) error {
	if !isNumber(k) {
		return invalid("Vector.Mult", msgNumber)
	}

	return v.assign("Vector.Mult", v.x*k, v.y*k, v.z*k)
}

func (v *Vector) Div(k float64) error {
	const op = "Vector.Div"

	if !isNumber(k) {
		return invalid(op, msgNonZero)
	}
	if k == 0 {
		return &Error{Kind: DivisionByZero, Op: op, Message: msgNonZero}
	}

	return v.assign(op, v.x/k, v.y/k, v.z/k)
}

// ClampMagnitude limits the magnitude to max first and then raises it to min,
// so the result lies in [min, max] whenever min <= max.
func (v *Vector) ClampMagnitude(min, max float64) error {
	if !isNumber(min) || !isNumber(max) {
		return invalid("Vector.ClampMagnitude", msgTwoNumbers)
	}

	return v.SetMagnitude(math.Max(min, math.Min(max, v.Magnitude())))
}

type sourceKind uint8

const (
	sourceNone sourceKind = iota
	sourceVector
	sourceCoords
)

// Source is the argument to Set. Build one with From, XY or XYZ.
type Source struct {
	kind   sourceKind
	vector *Vector
	x, y   float64
	z      opt.Option[float64]
}

// From copies every component of v.
func From(v *Vector) Source {
	return Source{kind: sourceVector, vector: v}
}

// XY sets x and y and leaves z untouched.
func XY(x, y float64) Source {
	return Source{kind: sourceCoords, x: x, y: y, z: opt.None[float64]()}
}

func XYZ(x, y, z float64) Source {
	return Source{kind: sourceCoords, x: x, y: y, z: opt.Some(z)}
}

func (v *Vector) Set(src Source) error {
	switch src.kind {
	case sourceVector:
		if src.vector == nil {
			break
		}

		v.x, v.y, v.z = src.vector.x, src.vector.y, src.vector.z
		return nil
	case sourceCoords:
		if !isNumber(src.x) || !isNumber(src.y) {
			break
		}
		if opt.IsSome(src.z) && !isNumber(src.z.Value) {
			break
		}

		v.x, v.y = src.x, src.y
		if opt.IsSome(src.z) {
			v.z = src.z.Value
		}
		return nil
	}

	return invalid("Vector.Set", msgSetSource)
}

func (v *Vector) Clone() *Vector {
	return &Vector{v.x, v.y, v.z}
}

func (v *Vector) ToArray() [3]float64 {
	return [3]float64{v.x, v.y, v.z}
}

// Map replaces every component with fn applied to it. fn is first called once
// on x to check that it produces a number, then again on each of the original
// x, y and z, so it runs four times per call.
func (v *Vector) Map(fn func(float64) float64) error {
	if fn == nil || !isNumber(fn(v.x)) {
		return invalid("Vector.Map", msgMapFunction)
	}

	x, y, z := fn(v.x), fn(v.y), fn(v.z)
	if !isNumber(x) || !isNumber(y) || !isNumber(z) {
		return invalid("Vector.Map", msgMapFunction)
	}

	v.x, v.y, v.z = x, y, z
	return nil
}

// Apply2DTransformation multiplies (x, y) by the 2x2 matrix m. z is left
// alone.
func (v *Vector) Apply2DTransformation(m Transform) error {
	if !m.valid() {
		return invalid("Vector.Apply2DTransformation", msgMatrix)
	}

	return v.Set(XY(
		v.x*m[0]+v.y*m[2],
		v.x*m[1]+v.y*m[3],
	))
}

// Rotate2D rotates (x, y) by angle radians, about the origin or about pivot
// when one is given.
func (v *Vector) Rotate2D(angle float64, pivot opt.Option[*Vector]) error {
	const op = "Vector.Rotate2D"

	if !isNumber(angle) {
		return invalid(op, msgAngle)
	}

	rotation := Rotation(angle)
	if opt.IsNone(pivot) {
		return v.Apply2DTransformation(rotation)
	}

	if pivot.Value == nil {
		return invalid(op, msgPivot)
	}

	// v and pivot may be the same vector
	p := pivot.Value.Clone()
	rotated := v.Clone()
	if err := rotated.Sub(p); err != nil {
		return err
	}
	if err := rotated.Apply2DTransformation(rotation); err != nil {
		return err
	}
	if err := rotated.Add(p); err != nil {
		return err
	}

	return v.Set(From(rotated))
}
