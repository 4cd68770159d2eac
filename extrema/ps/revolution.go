package ps

import (
	"math"

	occt "github.com/Open-Cascade-SAS/OCCT-sub040"
	"github.com/Open-Cascade-SAS/OCCT-sub040/extrema"
	"github.com/Open-Cascade-SAS/OCCT-sub040/extrema/pc"
	"github.com/Open-Cascade-SAS/OCCT-sub040/internal/d3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Revolution solves point extrema on a surface of revolution whose meridian
// lies in a plane containing the axis. Every extremum lies in the half plane
// through the point (u = phi) or in the opposite one (u = phi + pi), so the
// search reduces to curve extrema of the meridian against the point rotated
// into the meridian plane. Non planar meridians fall back to the grid search.
type Revolution struct {
	s   *occt.SurfaceOfRevolution
	dom extrema.Domain2D
	cfg Config
	// ref is the unit radial direction of the meridian plane at u = 0.
	ref      r3.Vec
	meridian pc.Evaluator
	generic  *Surface
}

// NewRevolution returns an evaluator for s restricted to dom.
func NewRevolution(s *occt.SurfaceOfRevolution, dom extrema.Domain2D, cfg Config) *Revolution {
	du := periodicDomain(dom.U(), 0, 2*math.Pi)
	dv := dom.V()
	if s.Basis.IsPeriodic() {
		dv = periodicDomain(dv, s.Basis.FirstParameter(), s.Basis.Period())
	} else if r, ok := dv.Intersect(extrema.NewDomain1D(s.Basis.FirstParameter(), s.Basis.LastParameter())); ok {
		dv = r
	}
	e := &Revolution{s: s, dom: extrema.NewDomain2D(du.Min, du.Max, dv.Min, dv.Max), cfg: cfg}
	ref, planar := meridianPlane(s, dv)
	if !planar {
		e.generic = NewSurface(s, e.dom, cfg)
		return e
	}
	e.ref = ref
	e.meridian = pc.New(s.Basis, dv, pc.Config{NbSamples: cfg.NbV})
	return e
}

// meridianPlane samples the basis curve and returns the radial direction of
// its plane, and whether all samples lie in that plane.
func meridianPlane(s *occt.SurfaceOfRevolution, dv extrema.Domain1D) (ref r3.Vec, planar bool) {
	first, last := dv.Min, dv.Max
	if !dv.IsFinite() {
		const window = 100.0
		first, last = math.Max(first, -window), math.Min(last, window)
		if first >= last {
			first, last = -window, window
		}
	}
	ts := floats.Span(make([]float64, 33), first, last)
	radial := make([]r3.Vec, len(ts))
	best := 0.0
	for i, t := range ts {
		radial[i] = d3.Reject(r3.Sub(s.Basis.Value(t), s.Origin), s.Axis)
		if n := r3.Norm(radial[i]); n > best {
			best, ref = n, radial[i]
		}
	}
	if best < occt.Confusion {
		return d3.Perpendicular(s.Axis), true
	}
	ref = r3.Scale(1/best, ref)
	normal := r3.Cross(s.Axis, ref)
	for _, w := range radial {
		if math.Abs(r3.Dot(w, normal)) > occt.Confusion*math.Max(1, best) {
			return ref, false
		}
	}
	return ref, true
}

// Perform returns the interior extrema. A point on the axis is equidistant
// from every parallel and yields StatusInfiniteSolutions.
func (e *Revolution) Perform(p r3.Vec, tol float64, mode extrema.SearchMode) extrema.Result2D {
	if e.generic != nil {
		return e.generic.Perform(p, tol, mode)
	}
	s := e.s
	w := r3.Sub(p, s.Origin)
	h := r3.Dot(w, s.Axis)
	radial := d3.Reject(w, s.Axis)
	rho := r3.Norm(radial)
	utol, vtol := paramTols(s, tol)
	if rho <= tol {
		res := extrema.Result2D{Status: extrema.StatusInfiniteSolutions}
		r := e.meridian.PerformWithEndpoints(p, tol, extrema.Min)
		if m, ok := r.Min(); ok {
			res.InfiniteSquareDistance = m.SquareDistance
		} else {
			res.Status = extrema.StatusNumericalError
		}
		return res
	}
	phi := math.Atan2(r3.Dot(r3.Cross(e.ref, radial), s.Axis), r3.Dot(e.ref, radial))
	res := extrema.Result2D{Status: extrema.StatusOK}
	for _, side := range [2]float64{1, -1} {
		u := phi
		if side < 0 {
			u += math.Pi
		}
		u, ok := wrap(u, e.dom.U(), 2*math.Pi, utol)
		if !ok {
			continue
		}
		pm := r3.Add(s.Origin, d3.Combine(e.ref, side*rho, s.Axis, h))
		r := e.meridian.Perform(pm, tol, extrema.MinMax)
		if r.Status != extrema.StatusOK {
			if r.Status != extrema.StatusInfiniteSolutions {
				res.Status = r.Status
			}
			continue
		}
		for _, m := range r.Extrema {
			a := side * r3.Dot(r3.Sub(m.Point, s.Origin), e.ref)
			var isMin bool
			switch {
			case math.Abs(a) <= tol:
				// meridian point on the axis: u is irrelevant.
				isMin = m.IsMinimum
			case m.IsMinimum && a > 0:
				isMin = true
			case !m.IsMinimum && a < 0:
				isMin = false
			default:
				continue // saddle.
			}
			if mode.Accept(isMin) {
				res.Add(extremumAt(s, p, u, m.Parameter, isMin), utol, vtol)
			}
		}
	}
	return res
}

// PerformWithBoundary adds extrema on the boundary parallels (circles) and
// boundary meridians of a partial domain.
func (e *Revolution) PerformWithBoundary(p r3.Vec, tol float64, mode extrema.SearchMode) extrema.Result2D {
	if e.generic != nil {
		return e.generic.PerformWithBoundary(p, tol, mode)
	}
	res := e.Perform(p, tol, mode)
	if res.Status == extrema.StatusInfiniteSolutions {
		return res
	}
	addBoundary(&res, e.s, e.dom, p, tol, mode, e.cfg, e.iso)
	return res
}

// iso returns the parallel circle at fixed v, parametrized by u, or the
// meridian at fixed u. Parallels collapsed on the axis are skipped.
func (e *Revolution) iso(alongV bool, fixed float64) occt.Curve {
	s := e.s
	if alongV {
		return occt.IsoU(s, fixed)
	}
	w := r3.Sub(s.Basis.Value(fixed), s.Origin)
	radial := d3.Reject(w, s.Axis)
	r := r3.Norm(radial)
	if r <= occt.Confusion {
		return nil
	}
	center := r3.Add(s.Origin, r3.Scale(r3.Dot(w, s.Axis), s.Axis))
	f, err := occt.NewFrame(center, s.Axis, radial)
	if err != nil {
		return nil
	}
	return occt.NewCircleInFrame(f, r)
}
