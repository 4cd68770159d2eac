package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// R3 vector helpers shared by the curve and surface adaptors.

func Elem(sides float64) r3.Vec {
	return r3.Vec{X: sides, Y: sides, Z: sides}
}

func EqualWithin(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

func AbsElem(a r3.Vec) r3.Vec {
	return r3.Vec{X: math.Abs(a.X), Y: math.Abs(a.Y), Z: math.Abs(a.Z)}
}

// Dist2 returns the squared distance between a and b.
func Dist2(a, b r3.Vec) float64 {
	return r3.Norm2(r3.Sub(a, b))
}

// Lerp interpolates between a and b, t = [0,1].
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// Combine returns a*ka + b*kb.
func Combine(a r3.Vec, ka float64, b r3.Vec, kb float64) r3.Vec {
	return r3.Add(r3.Scale(ka, a), r3.Scale(kb, b))
}

// Reject returns the component of v orthogonal to the unit vector dir.
func Reject(v, dir r3.Vec) r3.Vec {
	return r3.Sub(v, r3.Scale(r3.Dot(v, dir), dir))
}

// Perpendicular returns a unit vector orthogonal to the unit vector n.
func Perpendicular(n r3.Vec) r3.Vec {
	// pick the axis least aligned with n.
	a := AbsElem(n)
	var ref r3.Vec
	switch {
	case a.X <= a.Y && a.X <= a.Z:
		ref = r3.Vec{X: 1}
	case a.Y <= a.Z:
		ref = r3.Vec{Y: 1}
	default:
		ref = r3.Vec{Z: 1}
	}
	return r3.Unit(Reject(ref, n))
}

// Rotate rotates v by angle radians about the unit axis through the origin (Rodrigues).
func Rotate(v, axis r3.Vec, angle float64) r3.Vec {
	sin, cos := math.Sincos(angle)
	k := r3.Cross(axis, v)
	kk := r3.Scale(r3.Dot(axis, v)*(1-cos), axis)
	return r3.Add(r3.Add(r3.Scale(cos, v), r3.Scale(sin, k)), kk)
}
