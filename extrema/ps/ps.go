// Package ps computes extrema of the distance between a point and a surface.
//
// Planes, surfaces of revolution and surfaces of extrusion are solved by
// reducing the search to closed form or to a single curve search. Other
// surfaces go through a grid search refined by Newton iterations.
package ps

import (
	"math"

	occt "github.com/Open-Cascade-SAS/OCCT-sub040"
	"github.com/Open-Cascade-SAS/OCCT-sub040/extrema"
	"github.com/Open-Cascade-SAS/OCCT-sub040/extrema/pc"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Evaluator finds point-surface extrema over a fixed surface and domain.
type Evaluator interface {
	// Perform returns the interior extrema of the distance to p.
	Perform(p r3.Vec, tol float64, mode extrema.SearchMode) extrema.Result2D
	// PerformWithBoundary also reports extrema of the distance restricted to
	// the domain boundary curves and corners.
	PerformWithBoundary(p r3.Vec, tol float64, mode extrema.SearchMode) extrema.Result2D
}

// Config tunes the grid search. The zero value selects defaults.
type Config struct {
	NbU, NbV int
}

var (
	_ Evaluator = (*Plane)(nil)
	_ Evaluator = (*Surface)(nil)
	_ Evaluator = (*Revolution)(nil)
	_ Evaluator = (*Extrusion)(nil)
)

// New returns the evaluator best suited to s restricted to dom.
func New(s occt.Surface, dom extrema.Domain2D, cfg Config) Evaluator {
	switch s := s.(type) {
	case *occt.Plane:
		return NewPlane(s, dom)
	case *occt.SurfaceOfRevolution:
		return NewRevolution(s, dom, cfg)
	case *occt.SurfaceOfExtrusion:
		return NewExtrusion(s, dom, cfg)
	}
	return NewSurface(s, dom, cfg)
}

// paramTols converts a 3d tolerance into parameter tolerances on s.
func paramTols(s occt.Surface, tol float64) (utol, vtol float64) {
	return math.Max(s.UResolution(tol), occt.PConfusion), math.Max(s.VResolution(tol), occt.PConfusion)
}

// periodicDomain reduces a direction of a periodic surface to one period when
// the requested domain is unbounded or longer than the period.
func periodicDomain(d extrema.Domain1D, first, period float64) extrema.Domain1D {
	if d.IsFinite() && d.Length() <= period {
		return d
	}
	if !occt.IsInfinite(d.Min) {
		first = d.Min
	}
	return extrema.NewDomain1D(first, first+period)
}

// wrap maps t of a periodic direction into dom. ok is false when t does not
// fall inside the (partial period) domain within ptol.
func wrap(t float64, dom extrema.Domain1D, period, ptol float64) (float64, bool) {
	t = occt.InPeriod(t, dom.Min, period)
	switch {
	case dom.Max-t <= ptol && dom.Length() >= period-ptol:
		return dom.Min, true
	case t <= dom.Max:
		return t, true
	case t-period >= dom.Min-ptol:
		return dom.Min, true
	case t <= dom.Max+ptol:
		return dom.Max, true
	}
	return t, false
}

func extremumAt(s occt.Surface, p r3.Vec, u, v float64, isMin bool) extrema.Extremum2D {
	pt := s.Value(u, v)
	return extrema.Extremum2D{
		UV:             r2.Vec{X: u, Y: v},
		Point:          pt,
		SquareDistance: r3.Norm2(r3.Sub(pt, p)),
		IsMinimum:      isMin,
	}
}

// isoFunc returns the boundary curve at fixed u (alongV true, parametrized
// by v) or at fixed v (parametrized by u). A nil curve is skipped.
type isoFunc func(alongV bool, fixed float64) occt.Curve

func defaultIso(s occt.Surface) isoFunc {
	return func(alongV bool, fixed float64) occt.Curve {
		if alongV {
			return occt.IsoU(s, fixed)
		}
		return occt.IsoV(s, fixed)
	}
}

// addBoundary appends the extrema of the distance restricted to the finite
// sides of dom. Sides of a direction spanning a full period are skipped.
// Side interiors come from the curve evaluators; corners are classified
// here so that every surface evaluator reports the same ones.
func addBoundary(res *extrema.Result2D, s occt.Surface, dom extrema.Domain2D, p r3.Vec, tol float64,
	mode extrema.SearchMode, cfg Config, iso isoFunc) {
	utol, vtol := paramTols(s, tol)
	uFull := s.IsUPeriodic() && dom.U().Length() >= s.UPeriod()-utol
	vFull := s.IsVPeriodic() && dom.V().Length() >= s.VPeriod()-vtol
	var uSides, vSides [2]occt.Curve
	if !vFull {
		for k, v := range [2]float64{dom.VMin, dom.VMax} {
			if occt.IsInfinite(v) {
				continue
			}
			c := iso(false, v)
			if c == nil {
				continue
			}
			vSides[k] = c
			r := pc.New(c, dom.U(), pc.Config{NbSamples: cfg.NbU}).Perform(p, tol, mode)
			for _, e := range r.Extrema {
				if mode.Accept(e.IsMinimum) {
					res.Add(extremumAt(s, p, e.Parameter, v, e.IsMinimum), utol, vtol)
				}
			}
		}
	}
	if !uFull {
		for k, u := range [2]float64{dom.UMin, dom.UMax} {
			if occt.IsInfinite(u) {
				continue
			}
			c := iso(true, u)
			if c == nil {
				continue
			}
			uSides[k] = c
			r := pc.New(c, dom.V(), pc.Config{NbSamples: cfg.NbV}).Perform(p, tol, mode)
			for _, e := range r.Extrema {
				if mode.Accept(e.IsMinimum) {
					res.Add(extremumAt(s, p, u, e.Parameter, e.IsMinimum), utol, vtol)
				}
			}
		}
	}
	if uFull || vFull {
		return
	}
	us := [2]float64{dom.UMin, dom.UMax}
	vs := [2]float64{dom.VMin, dom.VMax}
	for i, u := range us {
		for j, v := range vs {
			if occt.IsInfinite(u) || occt.IsInfinite(v) {
				continue
			}
			// along the v side the corner is the u end i; along the u side it is the v end j.
			kindU, okU := endKind(vSides[j], p, u, i == 0)
			kindV, okV := endKind(uSides[i], p, v, j == 0)
			var isMin bool
			switch {
			case okU && okV:
				if kindU != kindV {
					// distance is monotone through the corner.
					continue
				}
				isMin = kindU
			case okU:
				isMin = kindU
			case okV:
				isMin = kindV
			default:
				continue
			}
			if mode.Accept(isMin) {
				res.Add(extremumAt(s, p, u, v, isMin), utol, vtol)
			}
		}
	}
}

// endKind reports whether the end t of side c is a local minimum of the
// distance to p along c. lower is true when the side continues towards
// larger parameters. ok is false for a missing or collapsed side.
func endKind(c occt.Curve, p r3.Vec, t float64, lower bool) (isMin, ok bool) {
	if c == nil {
		return false, false
	}
	pt, d1, d2 := c.D2(t)
	if r3.Norm2(d1) < occt.SquareConfusion*occt.SquareConfusion {
		return false, false
	}
	diff := r3.Sub(pt, p)
	f := r3.Dot(diff, d1)
	df := r3.Dot(d1, d1) + r3.Dot(diff, d2)
	if !lower {
		f = -f
	}
	return f > 0 || (f == 0 && df > 0), true
}
