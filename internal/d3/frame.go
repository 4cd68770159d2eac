package d3

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Frame is a right handed orthonormal coordinate system placed at Origin.
// The zero value is not valid; use NewFrame or WorldFrame.
type Frame struct {
	Origin  r3.Vec
	X, Y, Z r3.Vec
}

// WorldFrame returns the frame at the origin aligned with the world axes.
func WorldFrame() Frame {
	return Frame{X: r3.Vec{X: 1}, Y: r3.Vec{Y: 1}, Z: r3.Vec{Z: 1}}
}

// NewFrame builds a frame from a main direction z and a reference x direction.
// x is made orthogonal to z; when x is zero or parallel to z an arbitrary
// perpendicular is chosen.
func NewFrame(origin, z, x r3.Vec) (Frame, error) {
	nz := r3.Norm(z)
	if nz < 1e-12 {
		return Frame{}, errors.New("zero main direction")
	}
	z = r3.Scale(1/nz, z)
	x = Reject(x, z)
	if r3.Norm(x) < 1e-12 {
		x = Perpendicular(z)
	} else {
		x = r3.Unit(x)
	}
	return Frame{Origin: origin, X: x, Y: r3.Cross(z, x), Z: z}, nil
}

// ToWorld maps local coordinates to world coordinates.
func (f Frame) ToWorld(l r3.Vec) r3.Vec {
	return r3.Add(f.Origin, f.Direction(l))
}

// Direction maps a local direction to a world direction.
func (f Frame) Direction(l r3.Vec) r3.Vec {
	return r3.Add(r3.Add(r3.Scale(l.X, f.X), r3.Scale(l.Y, f.Y)), r3.Scale(l.Z, f.Z))
}

// ToLocal maps world coordinates to local coordinates.
func (f Frame) ToLocal(p r3.Vec) r3.Vec {
	d := r3.Sub(p, f.Origin)
	return r3.Vec{X: r3.Dot(d, f.X), Y: r3.Dot(d, f.Y), Z: r3.Dot(d, f.Z)}
}

// Angle returns the polar angle in [0, 2pi) of p around Z measured from X,
// and the radial distance of p from the Z axis.
func (f Frame) Angle(p r3.Vec) (angle, radius float64) {
	l := f.ToLocal(p)
	radius = math.Hypot(l.X, l.Y)
	angle = math.Atan2(l.Y, l.X)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle, radius
}
