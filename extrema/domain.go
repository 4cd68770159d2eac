package extrema

import (
	"math"

	occt "github.com/Open-Cascade-SAS/OCCT-sub040"
	"gonum.org/v1/gonum/spatial/r2"
)

// Domain1D bounds a curve parameter search. A bound whose magnitude
// reaches occt.Infinite is unbounded. Min <= Max is required of callers.
type Domain1D struct {
	Min, Max float64
}

// NewDomain1D returns the domain [min, max].
func NewDomain1D(min, max float64) Domain1D {
	return Domain1D{Min: min, Max: max}
}

// Unbounded1D returns the domain covering the whole real line.
func Unbounded1D() Domain1D {
	return Domain1D{Min: -occt.Infinite, Max: occt.Infinite}
}

// IsFinite reports whether both bounds are finite.
func (d Domain1D) IsFinite() bool {
	return !occt.IsInfinite(d.Min) && !occt.IsInfinite(d.Max)
}

// Contains reports whether t lies in the domain enlarged by tol.
func (d Domain1D) Contains(t, tol float64) bool {
	return t >= d.Min-tol && t <= d.Max+tol
}

// Clamp returns t limited to the domain.
func (d Domain1D) Clamp(t float64) float64 {
	return math.Max(d.Min, math.Min(d.Max, t))
}

// Length returns Max-Min. Unbounded domains return +Inf.
func (d Domain1D) Length() float64 {
	if !d.IsFinite() {
		return math.Inf(1)
	}
	return d.Max - d.Min
}

// Intersect returns the overlap of d and o. ok is false when they are disjoint.
func (d Domain1D) Intersect(o Domain1D) (Domain1D, bool) {
	r := Domain1D{Min: math.Max(d.Min, o.Min), Max: math.Min(d.Max, o.Max)}
	return r, r.Min <= r.Max
}

// Domain2D bounds a surface parameter search.
type Domain2D struct {
	UMin, UMax, VMin, VMax float64
}

// NewDomain2D returns the rectangle [umin,umax]x[vmin,vmax].
func NewDomain2D(umin, umax, vmin, vmax float64) Domain2D {
	return Domain2D{UMin: umin, UMax: umax, VMin: vmin, VMax: vmax}
}

// Unbounded2D returns the whole parameter plane.
func Unbounded2D() Domain2D {
	return Domain2D{UMin: -occt.Infinite, UMax: occt.Infinite, VMin: -occt.Infinite, VMax: occt.Infinite}
}

// SurfaceDomain returns the natural parameter rectangle of s.
func SurfaceDomain(s occt.Surface) Domain2D {
	return NewDomain2D(s.Bounds())
}

func (d Domain2D) U() Domain1D { return Domain1D{Min: d.UMin, Max: d.UMax} }
func (d Domain2D) V() Domain1D { return Domain1D{Min: d.VMin, Max: d.VMax} }

// IsFinite reports whether all four bounds are finite.
func (d Domain2D) IsFinite() bool { return d.U().IsFinite() && d.V().IsFinite() }

// Contains reports whether uv lies in the rectangle enlarged by utol and vtol.
func (d Domain2D) Contains(uv r2.Vec, utol, vtol float64) bool {
	return d.U().Contains(uv.X, utol) && d.V().Contains(uv.Y, vtol)
}

// Clamp returns uv limited to the rectangle.
func (d Domain2D) Clamp(uv r2.Vec) r2.Vec {
	return r2.Vec{X: d.U().Clamp(uv.X), Y: d.V().Clamp(uv.Y)}
}
