package occt

import (
	"math"

	"github.com/Open-Cascade-SAS/OCCT-sub040/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Box is an axis aligned bounding box with an enlargement gap.
// The zero value is a void box that contains nothing.
type Box struct {
	bounds r3.Box
	gap    float64
	set    bool
}

// NewBox returns the box spanning min and max.
func NewBox(min, max r3.Vec) Box {
	return Box{bounds: r3.Box{Min: d3.MinElem(min, max), Max: d3.MaxElem(min, max)}, set: true}
}

// IsVoid reports whether the box contains no point.
func (b Box) IsVoid() bool { return !b.set }

// Add enlarges the box to contain p.
func (b *Box) Add(p r3.Vec) {
	if b.IsVoid() {
		b.bounds = r3.Box{Min: p, Max: p}
		b.set = true
		return
	}
	b.bounds.Min = d3.MinElem(b.bounds.Min, p)
	b.bounds.Max = d3.MaxElem(b.bounds.Max, p)
}

// AddBox enlarges the box to contain o. The larger gap is kept.
func (b *Box) AddBox(o Box) {
	if o.IsVoid() {
		return
	}
	if b.IsVoid() {
		*b = o
		return
	}
	b.bounds.Min = d3.MinElem(b.bounds.Min, o.bounds.Min)
	b.bounds.Max = d3.MaxElem(b.bounds.Max, o.bounds.Max)
	b.gap = math.Max(b.gap, o.gap)
}

// Enlarge sets the gap to at least |gap|.
func (b *Box) Enlarge(gap float64) {
	b.gap = math.Max(b.gap, math.Abs(gap))
}

// Gap returns the enlargement applied around the stored bounds.
func (b Box) Gap() float64 { return b.gap }

// Get returns the enlarged bounds. A void box returns ok false.
func (b Box) Get() (min, max r3.Vec, ok bool) {
	if b.IsVoid() {
		return r3.Vec{}, r3.Vec{}, false
	}
	g := d3.Elem(b.gap)
	return r3.Sub(b.bounds.Min, g), r3.Add(b.bounds.Max, g), true
}

// IsOut reports whether b and o are disjoint. Void boxes are out of everything.
func (b Box) IsOut(o Box) bool {
	amin, amax, ok := b.Get()
	if !ok {
		return true
	}
	bmin, bmax, ok := o.Get()
	if !ok {
		return true
	}
	return amin.X > bmax.X || bmin.X > amax.X ||
		amin.Y > bmax.Y || bmin.Y > amax.Y ||
		amin.Z > bmax.Z || bmin.Z > amax.Z
}

// IsOutPoint reports whether p lies outside the box.
func (b Box) IsOutPoint(p r3.Vec) bool {
	min, max, ok := b.Get()
	if !ok {
		return true
	}
	return p.X < min.X || p.X > max.X ||
		p.Y < min.Y || p.Y > max.Y ||
		p.Z < min.Z || p.Z > max.Z
}

// Distance returns the minimal distance between the two boxes, zero when
// they intersect. A void operand yields +Inf.
func (b Box) Distance(o Box) float64 {
	amin, amax, ok1 := b.Get()
	bmin, bmax, ok2 := o.Get()
	if !ok1 || !ok2 {
		return math.Inf(1)
	}
	gap := func(a0, a1, b0, b1 float64) float64 {
		switch {
		case b0 > a1:
			return b0 - a1
		case a0 > b1:
			return a0 - b1
		}
		return 0
	}
	d := r3.Vec{
		X: gap(amin.X, amax.X, bmin.X, bmax.X),
		Y: gap(amin.Y, amax.Y, bmin.Y, bmax.Y),
		Z: gap(amin.Z, amax.Z, bmin.Z, bmax.Z),
	}
	return r3.Norm(d)
}

// SquareExtent returns the squared diagonal of the enlarged box.
func (b Box) SquareExtent() float64 {
	min, max, ok := b.Get()
	if !ok {
		return 0
	}
	return r3.Norm2(r3.Sub(max, min))
}

// CurveBox bounds c over [t0,t1] sampled with n segments. The box is
// enlarged by the largest chord deviation observed between samples.
func CurveBox(c Curve, t0, t1 float64, n int) Box {
	if n < 1 {
		n = 1
	}
	var b Box
	prev := c.Value(t0)
	b.Add(prev)
	dt := (t1 - t0) / float64(n)
	defl := 0.0
	for i := 1; i <= n; i++ {
		t := t0 + float64(i)*dt
		if i == n {
			t = t1
		}
		p := c.Value(t)
		mid := c.Value(t - dt/2)
		b.Add(p)
		b.Add(mid)
		defl = math.Max(defl, r3.Norm(r3.Sub(mid, d3.Lerp(prev, p, 0.5))))
		prev = p
	}
	b.Enlarge(2 * defl)
	return b
}

// SurfaceBox bounds s over the parameter rectangle sampled with nu*nv cells.
func SurfaceBox(s Surface, u0, u1, v0, v1 float64, nu, nv int) Box {
	if nu < 1 {
		nu = 1
	}
	if nv < 1 {
		nv = 1
	}
	var b Box
	du := (u1 - u0) / float64(nu)
	dv := (v1 - v0) / float64(nv)
	defl := 0.0
	for i := 0; i <= 2*nu; i++ {
		u := u0 + float64(i)*du/2
		for j := 0; j <= 2*nv; j++ {
			v := v0 + float64(j)*dv/2
			p := s.Value(u, v)
			b.Add(p)
			if i%2 == 1 && j%2 == 1 {
				// cell centre against the bilinear patch of its corners.
				c := r3.Scale(0.25, r3.Add(
					r3.Add(s.Value(u-du/2, v-dv/2), s.Value(u+du/2, v-dv/2)),
					r3.Add(s.Value(u-du/2, v+dv/2), s.Value(u+du/2, v+dv/2))))
				defl = math.Max(defl, r3.Norm(r3.Sub(p, c)))
			}
		}
	}
	b.Enlarge(2 * defl)
	return b
}
