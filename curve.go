package occt

import (
	"fmt"
	"math"

	"github.com/Open-Cascade-SAS/OCCT-sub040/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Curve is the interface to a 3d parametric curve adaptor.
type Curve interface {
	// Value returns the point at parameter t.
	Value(t float64) r3.Vec
	// D1 returns the point and first derivative at t.
	D1(t float64) (p, d1 r3.Vec)
	// D2 returns the point, first and second derivatives at t.
	D2(t float64) (p, d1, d2 r3.Vec)
	// FirstParameter and LastParameter bound the natural parameter range.
	// Unbounded curves return -Infinite and Infinite.
	FirstParameter() float64
	LastParameter() float64
	Continuity() Continuity
	IsPeriodic() bool
	// Period is only meaningful when IsPeriodic returns true.
	Period() float64
	// Resolution returns a parametric step that corresponds to at most
	// r3d along the curve.
	Resolution(r3d float64) float64
}

// Frame is a right handed orthonormal placement (origin, X, Y, Z).
type Frame = d3.Frame

// NewFrame returns a frame with main direction z and reference direction x.
func NewFrame(origin, z, x r3.Vec) (Frame, error) {
	f, err := d3.NewFrame(origin, z, x)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}
	return f, nil
}

// WorldFrame is the frame aligned with the world axes at the origin.
func WorldFrame() Frame { return d3.WorldFrame() }

var (
	_ Curve = (*Line)(nil)
	_ Curve = (*Circle)(nil)
	_ Curve = (*Ellipse)(nil)
)

// Line is an unbounded straight line through Origin with unit direction Dir.
type Line struct {
	Origin r3.Vec
	Dir    r3.Vec
}

// NewLine returns a line through origin with direction dir (normalized).
func NewLine(origin, dir r3.Vec) (*Line, error) {
	n := r3.Norm(dir)
	if n < Confusion {
		return nil, DegenerateMsg("zero line direction")
	}
	return &Line{Origin: origin, Dir: r3.Scale(1/n, dir)}, nil
}

// LineThrough returns the line from a to b parametrized by arc length, a at t=0.
func LineThrough(a, b r3.Vec) (*Line, error) {
	return NewLine(a, r3.Sub(b, a))
}

func (l *Line) Value(t float64) r3.Vec { return r3.Add(l.Origin, r3.Scale(t, l.Dir)) }

func (l *Line) D1(t float64) (p, d1 r3.Vec) { return l.Value(t), l.Dir }

func (l *Line) D2(t float64) (p, d1, d2 r3.Vec) { return l.Value(t), l.Dir, r3.Vec{} }

func (l *Line) FirstParameter() float64        { return -Infinite }
func (l *Line) LastParameter() float64         { return Infinite }
func (l *Line) Continuity() Continuity         { return CN }
func (l *Line) IsPeriodic() bool               { return false }
func (l *Line) Period() float64                { return 0 }
func (l *Line) Resolution(r3d float64) float64 { return r3d }

// Parameter returns the parameter of the orthogonal projection of p on the line.
func (l *Line) Parameter(p r3.Vec) float64 {
	return r3.Dot(r3.Sub(p, l.Origin), l.Dir)
}

// Circle of Radius in the XY plane of Frame centered at the frame origin.
// Parameter t is the angle measured from the frame X direction.
type Circle struct {
	Frame  Frame
	Radius float64
}

// NewCircle returns a circle centered at center with the given normal.
func NewCircle(center, normal r3.Vec, radius float64) (*Circle, error) {
	if radius < 0 {
		return nil, ErrMsg("negative circle radius")
	}
	f, err := NewFrame(center, normal, r3.Vec{})
	if err != nil {
		return nil, err
	}
	return &Circle{Frame: f, Radius: radius}, nil
}

// NewCircleInFrame returns a circle placed in f.
func NewCircleInFrame(f Frame, radius float64) *Circle {
	return &Circle{Frame: f, Radius: radius}
}

func (c *Circle) Center() r3.Vec { return c.Frame.Origin }
func (c *Circle) Axis() r3.Vec   { return c.Frame.Z }

func (c *Circle) Value(t float64) r3.Vec {
	sin, cos := math.Sincos(t)
	return c.Frame.ToWorld(r3.Vec{X: c.Radius * cos, Y: c.Radius * sin})
}

func (c *Circle) D1(t float64) (p, d1 r3.Vec) {
	sin, cos := math.Sincos(t)
	p = c.Frame.ToWorld(r3.Vec{X: c.Radius * cos, Y: c.Radius * sin})
	d1 = c.Frame.Direction(r3.Vec{X: -c.Radius * sin, Y: c.Radius * cos})
	return p, d1
}

func (c *Circle) D2(t float64) (p, d1, d2 r3.Vec) {
	p, d1 = c.D1(t)
	d2 = r3.Sub(c.Frame.Origin, p)
	return p, d1, d2
}

func (c *Circle) FirstParameter() float64 { return 0 }
func (c *Circle) LastParameter() float64  { return tau }
func (c *Circle) Continuity() Continuity  { return CN }
func (c *Circle) IsPeriodic() bool        { return true }
func (c *Circle) Period() float64         { return tau }

func (c *Circle) Resolution(r3d float64) float64 {
	if c.Radius > Confusion {
		return r3d / c.Radius
	}
	return tau
}

// Ellipse with MajorRadius along the frame X and MinorRadius along frame Y.
type Ellipse struct {
	Frame       Frame
	MajorRadius float64
	MinorRadius float64
}

// NewEllipse returns an ellipse in frame f. major must not be less than minor.
func NewEllipse(f Frame, major, minor float64) (*Ellipse, error) {
	if minor < 0 || major < minor {
		return nil, ErrMsg("bad ellipse radii")
	}
	return &Ellipse{Frame: f, MajorRadius: major, MinorRadius: minor}, nil
}

func (e *Ellipse) Value(t float64) r3.Vec {
	sin, cos := math.Sincos(t)
	return e.Frame.ToWorld(r3.Vec{X: e.MajorRadius * cos, Y: e.MinorRadius * sin})
}

func (e *Ellipse) D1(t float64) (p, d1 r3.Vec) {
	sin, cos := math.Sincos(t)
	p = e.Frame.ToWorld(r3.Vec{X: e.MajorRadius * cos, Y: e.MinorRadius * sin})
	d1 = e.Frame.Direction(r3.Vec{X: -e.MajorRadius * sin, Y: e.MinorRadius * cos})
	return p, d1
}

func (e *Ellipse) D2(t float64) (p, d1, d2 r3.Vec) {
	p, d1 = e.D1(t)
	d2 = r3.Sub(e.Frame.Origin, p)
	return p, d1, d2
}

func (e *Ellipse) FirstParameter() float64 { return 0 }
func (e *Ellipse) LastParameter() float64  { return tau }
func (e *Ellipse) Continuity() Continuity  { return CN }
func (e *Ellipse) IsPeriodic() bool        { return true }
func (e *Ellipse) Period() float64         { return tau }

func (e *Ellipse) Resolution(r3d float64) float64 {
	if e.MajorRadius > Confusion {
		return r3d / e.MajorRadius
	}
	return tau
}

// TrimmedCurve restricts a basis curve to [First, Last].
type TrimmedCurve struct {
	Basis       Curve
	First, Last float64
}

var _ Curve = (*TrimmedCurve)(nil)

// NewTrimmedCurve returns basis restricted to [first, last].
func NewTrimmedCurve(basis Curve, first, last float64) (*TrimmedCurve, error) {
	if basis == nil {
		return nil, ErrMsg("nil basis curve")
	}
	if first >= last {
		return nil, ErrMsg("first parameter must be less than last")
	}
	return &TrimmedCurve{Basis: basis, First: first, Last: last}, nil
}

func (c *TrimmedCurve) Value(t float64) r3.Vec          { return c.Basis.Value(t) }
func (c *TrimmedCurve) D1(t float64) (p, d1 r3.Vec)     { return c.Basis.D1(t) }
func (c *TrimmedCurve) D2(t float64) (p, d1, d2 r3.Vec) { return c.Basis.D2(t) }
func (c *TrimmedCurve) FirstParameter() float64         { return c.First }
func (c *TrimmedCurve) LastParameter() float64          { return c.Last }
func (c *TrimmedCurve) Continuity() Continuity          { return c.Basis.Continuity() }
func (c *TrimmedCurve) IsPeriodic() bool                { return false }
func (c *TrimmedCurve) Period() float64                 { return 0 }
func (c *TrimmedCurve) Resolution(r3d float64) float64  { return c.Basis.Resolution(r3d) }
