// Package pc computes extrema of the distance between a point and a curve.
//
// Specialized evaluators exist for lines and circles. Every other curve is
// handled by a sampling and Newton refinement search. All evaluators share
// the Evaluator interface so they may be swapped freely.
package pc

import (
	"math"

	occt "github.com/Open-Cascade-SAS/OCCT-sub040"
	"github.com/Open-Cascade-SAS/OCCT-sub040/extrema"
	"gonum.org/v1/gonum/spatial/r3"
)

// Evaluator finds point-curve extrema over a fixed curve and domain.
type Evaluator interface {
	// Perform returns the interior extrema of the distance to p.
	Perform(p r3.Vec, tol float64, mode extrema.SearchMode) extrema.Result1D
	// PerformWithEndpoints also reports domain ends that are local extrema.
	PerformWithEndpoints(p r3.Vec, tol float64, mode extrema.SearchMode) extrema.Result1D
}

// Config tunes the generic curve search. The zero value selects defaults.
type Config struct {
	// NbSamples is the number of sampling intervals over the domain.
	NbSamples int
}

var (
	_ Evaluator = (*Line)(nil)
	_ Evaluator = (*Circle)(nil)
	_ Evaluator = (*Curve)(nil)
)

// New returns the evaluator best suited to c restricted to dom.
// Trimmed curves are unwrapped so that their basis may be specialized.
func New(c occt.Curve, dom extrema.Domain1D, cfg Config) Evaluator {
	for {
		tc, ok := c.(*occt.TrimmedCurve)
		if !ok {
			break
		}
		dom, _ = dom.Intersect(extrema.NewDomain1D(tc.First, tc.Last))
		c = tc.Basis
	}
	switch c := c.(type) {
	case *occt.Line:
		return NewLine(c, dom)
	case *occt.Circle:
		return NewCircle(c, dom)
	}
	return NewCurve(c, dom, cfg)
}

// paramTol converts a 3d tolerance into a parameter tolerance on c.
func paramTol(c occt.Curve, tol float64) float64 {
	return math.Max(c.Resolution(tol), occt.PConfusion)
}

// gradient returns F(t) = (C(t)-P).C'(t), half the derivative of the square
// distance, and its derivative.
func gradient(c occt.Curve, p r3.Vec, t float64) (f, df float64) {
	pt, d1, d2 := c.D2(t)
	diff := r3.Sub(pt, p)
	return r3.Dot(diff, d1), r3.Dot(d1, d1) + r3.Dot(diff, d2)
}

func extremumAt(c occt.Curve, p r3.Vec, t float64, isMin bool) extrema.Extremum1D {
	pt := c.Value(t)
	return extrema.Extremum1D{
		Parameter:      t,
		Point:          pt,
		SquareDistance: r3.Norm2(r3.Sub(pt, p)),
		IsMinimum:      isMin,
	}
}

// addEndpoints appends the finite domain ends of c that are local extrema
// of the distance to p. The sign of F at the end decides its kind.
func addEndpoints(res *extrema.Result1D, c occt.Curve, dom extrema.Domain1D, p r3.Vec, tol float64, mode extrema.SearchMode) {
	ptol := paramTol(c, tol)
	if !occt.IsInfinite(dom.Min) {
		f, df := gradient(c, p, dom.Min)
		// distance grows into the domain: minimum.
		isMin := f > 0 || (f == 0 && df > 0)
		if mode.Accept(isMin) {
			res.Add(extremumAt(c, p, dom.Min, isMin), ptol)
		}
	}
	if !occt.IsInfinite(dom.Max) && dom.Max-dom.Min > ptol {
		f, df := gradient(c, p, dom.Max)
		isMin := f < 0 || (f == 0 && df > 0)
		if mode.Accept(isMin) {
			res.Add(extremumAt(c, p, dom.Max, isMin), ptol)
		}
	}
}
