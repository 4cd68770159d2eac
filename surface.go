package occt

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Surface is the interface to a 3d parametric surface adaptor.
type Surface interface {
	// Value returns the point at (u,v).
	Value(u, v float64) r3.Vec
	// D1 returns the point and the first partial derivatives.
	D1(u, v float64) (p, du, dv r3.Vec)
	// D2 returns the point, first and second partial derivatives.
	D2(u, v float64) (p, du, dv, duu, dvv, duv r3.Vec)
	// Bounds returns the natural parameter rectangle. Unbounded
	// directions return -Infinite and Infinite.
	Bounds() (umin, umax, vmin, vmax float64)
	Continuity() Continuity
	IsUPeriodic() bool
	IsVPeriodic() bool
	UPeriod() float64
	VPeriod() float64
	// UResolution and VResolution return parametric steps that
	// correspond to at most r3d on the surface.
	UResolution(r3d float64) float64
	VResolution(r3d float64) float64
}

var _ Surface = (*Plane)(nil)

// Plane through the frame origin spanned by the frame X (u) and Y (v) directions.
type Plane struct {
	Frame Frame
}

// NewPlane returns the plane through origin with the given normal.
func NewPlane(origin, normal r3.Vec) (*Plane, error) {
	f, err := NewFrame(origin, normal, r3.Vec{})
	if err != nil {
		return nil, err
	}
	return &Plane{Frame: f}, nil
}

// Normal returns the unit normal of the plane.
func (p *Plane) Normal() r3.Vec { return p.Frame.Z }

// Parameters returns the (u,v) of the orthogonal projection of q.
func (p *Plane) Parameters(q r3.Vec) (u, v float64) {
	l := p.Frame.ToLocal(q)
	return l.X, l.Y
}

func (p *Plane) Value(u, v float64) r3.Vec {
	return p.Frame.ToWorld(r3.Vec{X: u, Y: v})
}

func (p *Plane) D1(u, v float64) (pt, du, dv r3.Vec) {
	return p.Value(u, v), p.Frame.X, p.Frame.Y
}

func (p *Plane) D2(u, v float64) (pt, du, dv, duu, dvv, duv r3.Vec) {
	return p.Value(u, v), p.Frame.X, p.Frame.Y, r3.Vec{}, r3.Vec{}, r3.Vec{}
}

func (p *Plane) Bounds() (umin, umax, vmin, vmax float64) {
	return -Infinite, Infinite, -Infinite, Infinite
}

func (p *Plane) Continuity() Continuity          { return CN }
func (p *Plane) IsUPeriodic() bool               { return false }
func (p *Plane) IsVPeriodic() bool               { return false }
func (p *Plane) UPeriod() float64                { return 0 }
func (p *Plane) VPeriod() float64                { return 0 }
func (p *Plane) UResolution(r3d float64) float64 { return r3d }
func (p *Plane) VResolution(r3d float64) float64 { return r3d }

// IsoU returns the v parametrized curve at fixed u.
func IsoU(s Surface, u float64) Curve {
	return &isoCurve{s: s, fixed: u, alongV: true}
}

// IsoV returns the u parametrized curve at fixed v.
func IsoV(s Surface, v float64) Curve {
	return &isoCurve{s: s, fixed: v}
}

type isoCurve struct {
	s      Surface
	fixed  float64
	alongV bool
}

func (c *isoCurve) uv(t float64) (u, v float64) {
	if c.alongV {
		return c.fixed, t
	}
	return t, c.fixed
}

func (c *isoCurve) Value(t float64) r3.Vec { return c.s.Value(c.uv(t)) }

func (c *isoCurve) D1(t float64) (p, d1 r3.Vec) {
	p, du, dv := c.s.D1(c.uv(t))
	if c.alongV {
		return p, dv
	}
	return p, du
}

func (c *isoCurve) D2(t float64) (p, d1, d2 r3.Vec) {
	p, du, dv, duu, dvv, _ := c.s.D2(c.uv(t))
	if c.alongV {
		return p, dv, dvv
	}
	return p, du, duu
}

func (c *isoCurve) FirstParameter() float64 {
	umin, _, vmin, _ := c.s.Bounds()
	if c.alongV {
		return vmin
	}
	return umin
}

func (c *isoCurve) LastParameter() float64 {
	_, umax, _, vmax := c.s.Bounds()
	if c.alongV {
		return vmax
	}
	return umax
}

func (c *isoCurve) Continuity() Continuity { return c.s.Continuity() }

func (c *isoCurve) IsPeriodic() bool {
	if c.alongV {
		return c.s.IsVPeriodic()
	}
	return c.s.IsUPeriodic()
}

func (c *isoCurve) Period() float64 {
	if c.alongV {
		return c.s.VPeriod()
	}
	return c.s.UPeriod()
}

func (c *isoCurve) Resolution(r3d float64) float64 {
	if c.alongV {
		return c.s.VResolution(r3d)
	}
	return c.s.UResolution(r3d)
}
