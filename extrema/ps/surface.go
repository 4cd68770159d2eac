package ps

import (
	"math"

	occt "github.com/Open-Cascade-SAS/OCCT-sub040"
	"github.com/Open-Cascade-SAS/OCCT-sub040/extrema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	defaultGrid   = 20
	maxNewtonIter = 50
)

// Surface finds extrema on an arbitrary surface. The square distance is
// sampled on a grid; every local minimum or maximum of the grid seeds a two
// dimensional Newton iteration on the gradient of the square distance.
type Surface struct {
	s            occt.Surface
	dom          extrema.Domain2D
	cfg          Config
	us, vs       []float64
	uFull, vFull bool
	invalid      bool
}

// NewSurface returns a generic evaluator for s restricted to dom. The domain
// is intersected with the natural bounds of s. If a direction stays
// unbounded every query reports StatusInvalidInput.
func NewSurface(s occt.Surface, dom extrema.Domain2D, cfg Config) *Surface {
	e := &Surface{s: s, cfg: cfg}
	umin, umax, vmin, vmax := s.Bounds()
	du, dv := dom.U(), dom.V()
	var okU, okV bool
	if s.IsUPeriodic() {
		du, okU = periodicDomain(du, umin, s.UPeriod()), true
	} else {
		du, okU = du.Intersect(extrema.NewDomain1D(umin, umax))
	}
	if s.IsVPeriodic() {
		dv, okV = periodicDomain(dv, vmin, s.VPeriod()), true
	} else {
		dv, okV = dv.Intersect(extrema.NewDomain1D(vmin, vmax))
	}
	e.dom = extrema.NewDomain2D(du.Min, du.Max, dv.Min, dv.Max)
	if !okU || !okV || !e.dom.IsFinite() {
		e.invalid = true
		return e
	}
	nu, nv := cfg.NbU, cfg.NbV
	if nu <= 0 || nv <= 0 {
		dnu, dnv := defaultGridSize(s)
		if nu <= 0 {
			nu = dnu
		}
		if nv <= 0 {
			nv = dnv
		}
	}
	e.us = floats.Span(make([]float64, nu+1), du.Min, du.Max)
	e.vs = floats.Span(make([]float64, nv+1), dv.Min, dv.Max)
	utol, vtol := paramTols(s, occt.Confusion)
	e.uFull = s.IsUPeriodic() && du.Length() >= s.UPeriod()-utol
	e.vFull = s.IsVPeriodic() && dv.Length() >= s.VPeriod()-vtol
	return e
}

func defaultGridSize(s occt.Surface) (nu, nv int) {
	switch s := s.(type) {
	case *occt.BSplineSurface:
		su, sv := s.NbSpans()
		return max(defaultGrid, 2*su*(s.DegreeU()+1)), max(defaultGrid, 2*sv*(s.DegreeV()+1))
	case *occt.BezierSurface:
		return max(defaultGrid, 4*(s.DegreeU()+1)), max(defaultGrid, 4*(s.DegreeV()+1))
	}
	return defaultGrid, defaultGrid
}

// Perform returns the interior extrema of the distance from p.
func (e *Surface) Perform(p r3.Vec, tol float64, mode extrema.SearchMode) extrema.Result2D {
	if e.invalid {
		return extrema.Result2D{Status: extrema.StatusInvalidInput}
	}
	res := extrema.Result2D{Status: extrema.StatusOK}
	utol, vtol := paramTols(e.s, tol)
	nu, nv := len(e.us), len(e.vs)
	d2 := make([][]float64, nu)
	for i, u := range e.us {
		d2[i] = make([]float64, nv)
		for j, v := range e.vs {
			d2[i][j] = r3.Norm2(r3.Sub(e.s.Value(u, v), p))
		}
	}
	// the last node of a full period repeats the first.
	iu, jv := nu, nv
	if e.uFull {
		iu--
	}
	if e.vFull {
		jv--
	}
	for i := 0; i < iu; i++ {
		for j := 0; j < jv; j++ {
			isMin, isMax := e.classifyNode(d2, i, j)
			if !isMin && !isMax {
				continue
			}
			if (isMin && !isMax && !mode.Accept(true)) || (isMax && !isMin && !mode.Accept(false)) {
				continue
			}
			uv, ok := e.newton(p, r2.Vec{X: e.us[i], Y: e.vs[j]}, tol, utol, vtol)
			if !ok {
				continue
			}
			kind, ok := e.hessianKind(p, uv, isMin)
			if !ok || !mode.Accept(kind) {
				continue
			}
			res.Add(extremumAt(e.s, p, uv.X, uv.Y, kind), utol, vtol)
		}
	}
	return res
}

// PerformWithBoundary adds extrema along the four domain sides.
func (e *Surface) PerformWithBoundary(p r3.Vec, tol float64, mode extrema.SearchMode) extrema.Result2D {
	res := e.Perform(p, tol, mode)
	if e.invalid {
		return res
	}
	addBoundary(&res, e.s, e.dom, p, tol, mode, e.cfg, defaultIso(e.s))
	return res
}

// classifyNode compares node (i,j) to its eight neighbours. Periodic full
// directions wrap around.
func (e *Surface) classifyNode(d2 [][]float64, i, j int) (isMin, isMax bool) {
	nu, nv := len(d2), len(d2[0])
	d := d2[i][j]
	isMin, isMax = true, true
	strictMin, strictMax := false, false
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			if di == 0 && dj == 0 {
				continue
			}
			ni, ok := neighbour(i+di, nu, e.uFull)
			if !ok {
				continue
			}
			nj, ok := neighbour(j+dj, nv, e.vFull)
			if !ok {
				continue
			}
			n := d2[ni][nj]
			if n < d {
				isMin = false
			} else if n > d {
				strictMin = true
			}
			if n > d {
				isMax = false
			} else if n < d {
				strictMax = true
			}
		}
	}
	return isMin && strictMin, isMax && strictMax
}

func neighbour(k, n int, periodic bool) (int, bool) {
	if k >= 0 && k < n {
		return k, true
	}
	if !periodic {
		return 0, false
	}
	// index n-1 duplicates index 0.
	if k < 0 {
		return n - 2, true
	}
	return 1, true
}

// newton refines a critical point of the square distance from seed.
func (e *Surface) newton(p r3.Vec, uv r2.Vec, tol, utol, vtol float64) (r2.Vec, bool) {
	var step mat.VecDense
	for it := 0; it < maxNewtonIter; it++ {
		s, su, sv, suu, svv, suv := e.s.D2(uv.X, uv.Y)
		w := r3.Sub(s, p)
		f1, f2 := r3.Dot(w, su), r3.Dot(w, sv)
		j := mat.NewDense(2, 2, []float64{
			r3.Dot(su, su) + r3.Dot(w, suu), r3.Dot(su, sv) + r3.Dot(w, suv),
			r3.Dot(su, sv) + r3.Dot(w, suv), r3.Dot(sv, sv) + r3.Dot(w, svv),
		})
		if err := step.SolveVec(j, mat.NewVecDense(2, []float64{-f1, -f2})); err != nil {
			break
		}
		next := e.keepInDomain(r2.Vec{X: uv.X + step.AtVec(0), Y: uv.Y + step.AtVec(1)})
		done := math.Abs(next.X-uv.X) <= utol*1e-2 && math.Abs(next.Y-uv.Y) <= vtol*1e-2
		uv = next
		if done {
			break
		}
	}
	return uv, e.isCritical(p, uv, tol)
}

// isCritical reports whether the gradient of the distance vanishes at uv,
// measured as the component of S-P along each unit tangent.
func (e *Surface) isCritical(p r3.Vec, uv r2.Vec, tol float64) bool {
	s, su, sv := e.s.D1(uv.X, uv.Y)
	w := r3.Sub(s, p)
	for _, t := range [2]r3.Vec{su, sv} {
		n := r3.Norm(t)
		if n < occt.Confusion {
			continue
		}
		if math.Abs(r3.Dot(w, t))/n > tol {
			return false
		}
	}
	return true
}

// hessianKind classifies the critical point at uv. Saddles are rejected;
// a degenerate Hessian falls back to the grid classification.
func (e *Surface) hessianKind(p r3.Vec, uv r2.Vec, gridMin bool) (isMin, ok bool) {
	s, su, sv, suu, svv, suv := e.s.D2(uv.X, uv.Y)
	w := r3.Sub(s, p)
	a := r3.Dot(su, su) + r3.Dot(w, suu)
	b := r3.Dot(su, sv) + r3.Dot(w, suv)
	c := r3.Dot(sv, sv) + r3.Dot(w, svv)
	det := a*c - b*b
	scale := math.Max(math.Abs(a*c), b*b)
	switch {
	case math.Abs(det) <= 1e-12*scale:
		return gridMin, true
	case det < 0:
		return false, false
	}
	return a > 0, true
}

func (e *Surface) keepInDomain(uv r2.Vec) r2.Vec {
	if e.uFull {
		uv.X = snapPeriod(occt.InPeriod(uv.X, e.dom.UMin, e.s.UPeriod()), e.dom.UMin, e.s.UPeriod())
	} else {
		uv.X = e.dom.U().Clamp(uv.X)
	}
	if e.vFull {
		uv.Y = snapPeriod(occt.InPeriod(uv.Y, e.dom.VMin, e.s.VPeriod()), e.dom.VMin, e.s.VPeriod())
	} else {
		uv.Y = e.dom.V().Clamp(uv.Y)
	}
	return uv
}

// snapPeriod maps t within PConfusion of the period end back to its start.
func snapPeriod(t, first, period float64) float64 {
	if first+period-t <= occt.PConfusion {
		return first
	}
	return t
}
