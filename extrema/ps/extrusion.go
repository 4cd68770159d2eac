package ps

import (
	"math"

	occt "github.com/Open-Cascade-SAS/OCCT-sub040"
	"github.com/Open-Cascade-SAS/OCCT-sub040/extrema"
	"github.com/Open-Cascade-SAS/OCCT-sub040/extrema/pc"
	"github.com/Open-Cascade-SAS/OCCT-sub040/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Extrusion solves point extrema on a surface of extrusion. For a fixed u
// the distance is minimal at v = (P - C(u)).D, so the search reduces to
// curve extrema between P and the basis curve projected onto the plane
// through P orthogonal to D. Only minima exist in the interior: a maximum of
// the projected curve is a saddle of the surface distance.
type Extrusion struct {
	s   *occt.SurfaceOfExtrusion
	dom extrema.Domain2D
	cfg Config
}

// NewExtrusion returns an evaluator for s restricted to dom.
func NewExtrusion(s *occt.SurfaceOfExtrusion, dom extrema.Domain2D, cfg Config) *Extrusion {
	du := dom.U()
	if s.Basis.IsPeriodic() {
		du = periodicDomain(du, s.Basis.FirstParameter(), s.Basis.Period())
	} else if r, ok := du.Intersect(extrema.NewDomain1D(s.Basis.FirstParameter(), s.Basis.LastParameter())); ok {
		du = r
	}
	return &Extrusion{s: s, dom: extrema.NewDomain2D(du.Min, du.Max, dom.VMin, dom.VMax), cfg: cfg}
}

// projected returns an evaluator of the basis curve projected onto the plane
// through p orthogonal to the extrusion direction, and the factor mapping
// its parameter back onto the basis parameter.
func (e *Extrusion) projected(p r3.Vec) (ev pc.Evaluator, scale float64, ok bool) {
	s := e.s
	shift := func(q r3.Vec) r3.Vec {
		return r3.Sub(q, r3.Scale(r3.Dot(r3.Sub(q, p), s.Dir), s.Dir))
	}
	switch b := s.Basis.(type) {
	case *occt.Circle:
		if r3.Norm(r3.Cross(b.Frame.Z, s.Dir)) < occt.Angular {
			f := b.Frame
			f.Origin = shift(f.Origin)
			return pc.NewCircle(occt.NewCircleInFrame(f, b.Radius), e.dom.U()), 1, true
		}
	case *occt.Line:
		dir := d3.Reject(b.Dir, s.Dir)
		k := r3.Norm(dir)
		if k < occt.Angular {
			return nil, 0, false
		}
		l := &occt.Line{Origin: shift(b.Origin), Dir: r3.Scale(1/k, dir)}
		u := e.dom.U()
		return pc.NewLine(l, extrema.NewDomain1D(scaleBound(u.Min, k), scaleBound(u.Max, k))), k, true
	}
	c := &projectedCurve{basis: s.Basis, dir: s.Dir, origin: p}
	return pc.New(c, e.dom.U(), pc.Config{NbSamples: e.cfg.NbU}), 1, true
}

func scaleBound(t, k float64) float64 {
	if occt.IsInfinite(t) {
		return t
	}
	return t * k
}

// Perform returns the interior minima of the distance from p.
func (e *Extrusion) Perform(p r3.Vec, tol float64, mode extrema.SearchMode) extrema.Result2D {
	res := extrema.Result2D{Status: extrema.StatusOK}
	ev, scale, ok := e.projected(p)
	if !ok {
		res.Status = extrema.StatusNumericalError
		return res
	}
	r := ev.Perform(p, tol, extrema.Min)
	switch r.Status {
	case extrema.StatusOK:
	case extrema.StatusInfiniteSolutions:
		// p on the axis of a cylinder.
		res.Status = extrema.StatusInfiniteSolutions
		res.InfiniteSquareDistance = r.InfiniteSquareDistance
		return res
	default:
		res.Status = r.Status
		return res
	}
	if !mode.Accept(true) {
		return res
	}
	utol, vtol := paramTols(e.s, tol)
	for _, m := range r.Extrema {
		u := m.Parameter / scale
		v := r3.Dot(r3.Sub(p, e.s.Basis.Value(u)), e.s.Dir)
		if !e.dom.V().Contains(v, vtol) {
			continue
		}
		res.Add(extremumAt(e.s, p, u, e.dom.V().Clamp(v), true), utol, vtol)
	}
	return res
}

// PerformWithBoundary adds extrema on the translated basis curves at the V
// bounds and the straight rulings at the U bounds.
func (e *Extrusion) PerformWithBoundary(p r3.Vec, tol float64, mode extrema.SearchMode) extrema.Result2D {
	res := e.Perform(p, tol, mode)
	if res.Status != extrema.StatusOK {
		return res
	}
	addBoundary(&res, e.s, e.dom, p, tol, mode, e.cfg, e.iso)
	return res
}

func (e *Extrusion) iso(alongV bool, fixed float64) occt.Curve {
	s := e.s
	if alongV {
		return &occt.Line{Origin: s.Basis.Value(fixed), Dir: s.Dir}
	}
	offset := r3.Scale(fixed, s.Dir)
	switch b := s.Basis.(type) {
	case *occt.Circle:
		f := b.Frame
		f.Origin = r3.Add(f.Origin, offset)
		return occt.NewCircleInFrame(f, b.Radius)
	case *occt.Line:
		return &occt.Line{Origin: r3.Add(b.Origin, offset), Dir: b.Dir}
	}
	return occt.IsoV(s, fixed)
}

// projectedCurve is a basis curve flattened onto the plane through origin
// orthogonal to the unit vector dir.
type projectedCurve struct {
	basis  occt.Curve
	dir    r3.Vec
	origin r3.Vec
}

func (c *projectedCurve) flatten(q r3.Vec) r3.Vec {
	return r3.Sub(q, r3.Scale(r3.Dot(r3.Sub(q, c.origin), c.dir), c.dir))
}

func (c *projectedCurve) Value(t float64) r3.Vec { return c.flatten(c.basis.Value(t)) }

func (c *projectedCurve) D1(t float64) (p, d1 r3.Vec) {
	p, d1 = c.basis.D1(t)
	return c.flatten(p), d3.Reject(d1, c.dir)
}

func (c *projectedCurve) D2(t float64) (p, d1, d2 r3.Vec) {
	p, d1, d2 = c.basis.D2(t)
	return c.flatten(p), d3.Reject(d1, c.dir), d3.Reject(d2, c.dir)
}

func (c *projectedCurve) FirstParameter() float64     { return c.basis.FirstParameter() }
func (c *projectedCurve) LastParameter() float64      { return c.basis.LastParameter() }
func (c *projectedCurve) Continuity() occt.Continuity { return c.basis.Continuity() }
func (c *projectedCurve) IsPeriodic() bool            { return c.basis.IsPeriodic() }
func (c *projectedCurve) Period() float64             { return c.basis.Period() }

func (c *projectedCurve) Resolution(r3d float64) float64 {
	return math.Max(c.basis.Resolution(r3d), occt.PConfusion)
}
