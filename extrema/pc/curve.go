package pc

import (
	"math"

	occt "github.com/Open-Cascade-SAS/OCCT-sub040"
	"github.com/Open-Cascade-SAS/OCCT-sub040/extrema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	defaultSamples = 32
	maxNewtonIter  = 100
)

// Curve finds extrema on an arbitrary curve. F(t) = (C(t)-P).C'(t) is
// sampled over the domain; every sign change brackets an extremum that is
// then polished with Newton steps falling back to bisection.
type Curve struct {
	c       occt.Curve
	dom     extrema.Domain1D
	samples []float64
	invalid bool
}

// NewCurve returns a generic evaluator for c restricted to dom. The domain
// is intersected with the natural range of c. If the result is unbounded
// every query reports StatusInvalidInput.
func NewCurve(c occt.Curve, dom extrema.Domain1D, cfg Config) *Curve {
	e := &Curve{c: c}
	natural := extrema.NewDomain1D(c.FirstParameter(), c.LastParameter())
	if c.IsPeriodic() && !dom.IsFinite() {
		dom = extrema.NewDomain1D(c.FirstParameter(), c.FirstParameter()+c.Period())
	} else if !c.IsPeriodic() {
		var ok bool
		dom, ok = dom.Intersect(natural)
		e.invalid = !ok
	}
	e.dom = dom
	if e.invalid || !dom.IsFinite() {
		e.invalid = true
		return e
	}
	n := cfg.NbSamples
	if n <= 0 {
		n = defaultSampleCount(c)
	}
	e.samples = floats.Span(make([]float64, n+1), dom.Min, dom.Max)
	return e
}

// defaultSampleCount derives the sampling density from the curve kind.
func defaultSampleCount(c occt.Curve) int {
	switch c := c.(type) {
	case *occt.BSplineCurve:
		return max(defaultSamples, 2*c.NbSpans()*(c.Degree()+1))
	case *occt.BezierCurve:
		return max(defaultSamples, 4*(c.Degree()+1))
	}
	if c.Continuity() < occt.C2 {
		return 2 * defaultSamples
	}
	return defaultSamples
}

func (e *Curve) fullPeriod(ptol float64) bool {
	return e.c.IsPeriodic() && e.dom.Length() >= e.c.Period()-ptol
}

// Perform returns the interior extrema of the distance from p.
func (e *Curve) Perform(p r3.Vec, tol float64, mode extrema.SearchMode) extrema.Result1D {
	if e.invalid {
		return extrema.Result1D{Status: extrema.StatusInvalidInput}
	}
	res := extrema.Result1D{Status: extrema.StatusOK}
	ptol := paramTol(e.c, tol)
	full := e.fullPeriod(ptol)
	fs := make([]float64, len(e.samples))
	for i, t := range e.samples {
		fs[i], _ = gradient(e.c, p, t)
	}
	for i := 0; i+1 < len(e.samples); i++ {
		a, b := e.samples[i], e.samples[i+1]
		fa, fb := fs[i], fs[i+1]
		if fb == 0 && i+2 < len(e.samples) {
			// root on the next sample, handled by the next bracket.
			continue
		}
		if fa*fb > 0 || (fa == 0 && fb == 0) {
			continue
		}
		t, ok := e.refine(p, a, b, fa, fb, ptol)
		if !ok {
			res.Status = extrema.StatusNumericalError
			continue
		}
		_, df := gradient(e.c, p, t)
		isMin := df > 0
		if df == 0 {
			isMin = fa < 0 || fb > 0
		}
		if !mode.Accept(isMin) {
			continue
		}
		if !full && (t-e.dom.Min <= ptol || e.dom.Max-t <= ptol) {
			// ends are reported by PerformWithEndpoints.
			continue
		}
		if full && e.dom.Max-t <= ptol {
			t = e.dom.Min
		}
		res.Add(extremumAt(e.c, p, t, isMin), ptol)
	}
	return res
}

// PerformWithEndpoints adds the domain ends that are local extrema.
func (e *Curve) PerformWithEndpoints(p r3.Vec, tol float64, mode extrema.SearchMode) extrema.Result1D {
	res := e.Perform(p, tol, mode)
	if e.invalid || e.fullPeriod(paramTol(e.c, tol)) {
		return res
	}
	addEndpoints(&res, e.c, e.dom, p, tol, mode)
	return res
}

// refine finds a root of F inside [a,b] where F changes sign.
func (e *Curve) refine(p r3.Vec, a, b, fa, fb, ptol float64) (float64, bool) {
	if fa == 0 {
		return a, true
	}
	if fb == 0 {
		return b, true
	}
	if fa > 0 {
		// keep F(a) < 0 < F(b) as the bracket orientation.
		a, b = b, a
	}
	t := a + (b-a)*fa/(fa-fb)
	for i := 0; i < maxNewtonIter; i++ {
		f, df := gradient(e.c, p, t)
		if f == 0 {
			return t, true
		}
		if f < 0 {
			a = t
		} else {
			b = t
		}
		next := 0.5 * (a + b)
		if df != 0 {
			if nt := t - f/df; nt > math.Min(a, b) && nt < math.Max(a, b) {
				next = nt
			}
		}
		if math.Abs(next-t) <= ptol*1e-2 || math.Abs(b-a) <= ptol*1e-2 {
			return next, true
		}
		t = next
	}
	return t, math.Abs(b-a) <= ptol
}
