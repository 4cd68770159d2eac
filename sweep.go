package occt

import (
	"math"

	"github.com/Open-Cascade-SAS/OCCT-sub040/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	_ Surface = (*SurfaceOfRevolution)(nil)
	_ Surface = (*SurfaceOfExtrusion)(nil)
)

// SurfaceOfRevolution sweeps a meridian (basis) curve around an axis.
// U is the rotation angle in [0, 2pi), V is the basis curve parameter:
//
//	S(u,v) = Origin + Rot(Axis, u) * (C(v) - Origin)
type SurfaceOfRevolution struct {
	Basis  Curve
	Origin r3.Vec
	Axis   r3.Vec // unit.
	// maxRadius is the largest sampled distance of the basis from the axis.
	maxRadius float64
}

// NewSurfaceOfRevolution returns the revolution of basis around the axis
// through origin with direction axis.
func NewSurfaceOfRevolution(basis Curve, origin, axis r3.Vec) (*SurfaceOfRevolution, error) {
	if basis == nil {
		return nil, ErrMsg("nil basis curve")
	}
	n := r3.Norm(axis)
	if n < Confusion {
		return nil, DegenerateMsg("zero revolution axis")
	}
	s := &SurfaceOfRevolution{Basis: basis, Origin: origin, Axis: r3.Scale(1/n, axis)}
	first, last := boundedRange(basis.FirstParameter(), basis.LastParameter())
	const samples = 32
	for i := 0; i <= samples; i++ {
		t := first + (last-first)*float64(i)/samples
		r := r3.Norm(d3.Reject(r3.Sub(basis.Value(t), origin), s.Axis))
		s.maxRadius = math.Max(s.maxRadius, r)
	}
	return s, nil
}

// boundedRange replaces unbounded ends by a finite window used for sampling.
func boundedRange(first, last float64) (float64, float64) {
	const window = 100.0
	switch {
	case IsInfinite(first) && IsInfinite(last):
		return -window, window
	case IsInfinite(first):
		return last - 2*window, last
	case IsInfinite(last):
		return first, first + 2*window
	}
	return first, last
}

func (s *SurfaceOfRevolution) rotate(v r3.Vec, u float64) r3.Vec {
	return d3.Rotate(v, s.Axis, u)
}

func (s *SurfaceOfRevolution) Value(u, v float64) r3.Vec {
	return r3.Add(s.Origin, s.rotate(r3.Sub(s.Basis.Value(v), s.Origin), u))
}

func (s *SurfaceOfRevolution) D1(u, v float64) (p, du, dv r3.Vec) {
	c, c1 := s.Basis.D1(v)
	w := s.rotate(r3.Sub(c, s.Origin), u)
	p = r3.Add(s.Origin, w)
	du = r3.Cross(s.Axis, w)
	dv = s.rotate(c1, u)
	return p, du, dv
}

func (s *SurfaceOfRevolution) D2(u, v float64) (p, du, dv, duu, dvv, duv r3.Vec) {
	c, c1, c2 := s.Basis.D2(v)
	w := s.rotate(r3.Sub(c, s.Origin), u)
	p = r3.Add(s.Origin, w)
	du = r3.Cross(s.Axis, w)
	dv = s.rotate(c1, u)
	duu = r3.Cross(s.Axis, du)
	dvv = s.rotate(c2, u)
	duv = r3.Cross(s.Axis, dv)
	return p, du, dv, duu, dvv, duv
}

func (s *SurfaceOfRevolution) Bounds() (umin, umax, vmin, vmax float64) {
	return 0, tau, s.Basis.FirstParameter(), s.Basis.LastParameter()
}

func (s *SurfaceOfRevolution) Continuity() Continuity { return s.Basis.Continuity() }
func (s *SurfaceOfRevolution) IsUPeriodic() bool      { return true }
func (s *SurfaceOfRevolution) IsVPeriodic() bool      { return s.Basis.IsPeriodic() }
func (s *SurfaceOfRevolution) UPeriod() float64       { return tau }
func (s *SurfaceOfRevolution) VPeriod() float64       { return s.Basis.Period() }

func (s *SurfaceOfRevolution) UResolution(r3d float64) float64 {
	if s.maxRadius > Confusion {
		return r3d / s.maxRadius
	}
	return tau
}

func (s *SurfaceOfRevolution) VResolution(r3d float64) float64 {
	return s.Basis.Resolution(r3d)
}

// SurfaceOfExtrusion sweeps a basis curve along a fixed direction.
// U is the basis curve parameter, V the signed displacement along Dir:
//
//	S(u,v) = C(u) + v*Dir
type SurfaceOfExtrusion struct {
	Basis Curve
	Dir   r3.Vec // unit.
}

// NewSurfaceOfExtrusion returns the extrusion of basis along dir.
func NewSurfaceOfExtrusion(basis Curve, dir r3.Vec) (*SurfaceOfExtrusion, error) {
	if basis == nil {
		return nil, ErrMsg("nil basis curve")
	}
	n := r3.Norm(dir)
	if n < Confusion {
		return nil, DegenerateMsg("zero extrusion direction")
	}
	return &SurfaceOfExtrusion{Basis: basis, Dir: r3.Scale(1/n, dir)}, nil
}

func (s *SurfaceOfExtrusion) Value(u, v float64) r3.Vec {
	return r3.Add(s.Basis.Value(u), r3.Scale(v, s.Dir))
}

func (s *SurfaceOfExtrusion) D1(u, v float64) (p, du, dv r3.Vec) {
	c, c1 := s.Basis.D1(u)
	return r3.Add(c, r3.Scale(v, s.Dir)), c1, s.Dir
}

func (s *SurfaceOfExtrusion) D2(u, v float64) (p, du, dv, duu, dvv, duv r3.Vec) {
	c, c1, c2 := s.Basis.D2(u)
	return r3.Add(c, r3.Scale(v, s.Dir)), c1, s.Dir, c2, r3.Vec{}, r3.Vec{}
}

func (s *SurfaceOfExtrusion) Bounds() (umin, umax, vmin, vmax float64) {
	return s.Basis.FirstParameter(), s.Basis.LastParameter(), -Infinite, Infinite
}

func (s *SurfaceOfExtrusion) Continuity() Continuity          { return s.Basis.Continuity() }
func (s *SurfaceOfExtrusion) IsUPeriodic() bool               { return s.Basis.IsPeriodic() }
func (s *SurfaceOfExtrusion) IsVPeriodic() bool               { return false }
func (s *SurfaceOfExtrusion) UPeriod() float64                { return s.Basis.Period() }
func (s *SurfaceOfExtrusion) VPeriod() float64                { return 0 }
func (s *SurfaceOfExtrusion) UResolution(r3d float64) float64 { return s.Basis.Resolution(r3d) }
func (s *SurfaceOfExtrusion) VResolution(r3d float64) float64 { return r3d }

// NewCylinder returns a cylinder of radius around the Z axis of f as the
// extrusion of a circle. U is the angle, V the height along f.Z.
func NewCylinder(f Frame, radius float64) (*SurfaceOfExtrusion, error) {
	if radius <= 0 {
		return nil, ErrMsg("cylinder radius must be positive")
	}
	return NewSurfaceOfExtrusion(NewCircleInFrame(f, radius), f.Z)
}

// NewSphere returns a sphere as the revolution of a half meridian circle.
// U is the longitude in [0, 2pi), V the latitude in [-pi/2, pi/2].
func NewSphere(center r3.Vec, radius float64) (*SurfaceOfRevolution, error) {
	if radius <= 0 {
		return nil, ErrMsg("sphere radius must be positive")
	}
	// meridian in the world XZ plane: C(v) = center + R(cos v X + sin v Z).
	f, err := NewFrame(center, r3.Vec{Y: -1}, r3.Vec{X: 1})
	if err != nil {
		return nil, err
	}
	meridian, err := NewTrimmedCurve(NewCircleInFrame(f, radius), -pi/2, pi/2)
	if err != nil {
		return nil, err
	}
	return NewSurfaceOfRevolution(meridian, center, r3.Vec{Z: 1})
}

// NewTorus returns a torus around the Z axis of f. U is the angle around the
// axis, V the angle around the tube.
func NewTorus(f Frame, major, minor float64) (*SurfaceOfRevolution, error) {
	if minor <= 0 || major <= minor {
		return nil, ErrMsg("torus needs major > minor > 0")
	}
	tube, err := NewFrame(r3.Add(f.Origin, r3.Scale(major, f.X)), r3.Scale(-1, f.Y), f.X)
	if err != nil {
		return nil, err
	}
	return NewSurfaceOfRevolution(NewCircleInFrame(tube, minor), f.Origin, f.Z)
}

// NewCone returns a cone around the Z axis of f with the given semi angle,
// radius refRadius at height 0. V is the arc length along the generatrix.
func NewCone(f Frame, semiAngle, refRadius float64) (*SurfaceOfRevolution, error) {
	if math.Abs(semiAngle) < Angular || math.Abs(semiAngle) >= pi/2-Angular {
		return nil, ErrMsg("cone semi angle out of range")
	}
	sin, cos := math.Sincos(semiAngle)
	gen, err := NewLine(r3.Add(f.Origin, r3.Scale(refRadius, f.X)), d3.Combine(f.X, sin, f.Z, cos))
	if err != nil {
		return nil, err
	}
	return NewSurfaceOfRevolution(gen, f.Origin, f.Z)
}
