package pc

import (
	occt "github.com/Open-Cascade-SAS/OCCT-sub040"
	"github.com/Open-Cascade-SAS/OCCT-sub040/extrema"
	"gonum.org/v1/gonum/spatial/r3"
)

// Line computes the extrema of a point and a line in closed form.
//
// The distance to a line has exactly one minimum and no maximum, so the
// SearchMode argument is accepted for interface compatibility and ignored.
type Line struct {
	line *occt.Line
	dom  extrema.Domain1D
}

// NewLine returns an evaluator for l restricted to dom.
func NewLine(l *occt.Line, dom extrema.Domain1D) *Line {
	return &Line{line: l, dom: dom}
}

// Perform returns the foot of the perpendicular from p. When it falls
// outside the domain by more than tol the result holds no extremum and
// StatusOK.
func (e *Line) Perform(p r3.Vec, tol float64, _ extrema.SearchMode) extrema.Result1D {
	res := extrema.Result1D{Status: extrema.StatusOK}
	u := r3.Dot(r3.Sub(p, e.line.Origin), e.line.Dir)
	if !e.dom.Contains(u, tol) {
		return res
	}
	res.Extrema = append(res.Extrema, extremumAt(e.line, p, e.dom.Clamp(u), true))
	return res
}

// PerformWithEndpoints adds the finite domain ends at which the distance is
// locally minimal. An end coinciding with the interior foot within tol is
// not repeated.
func (e *Line) PerformWithEndpoints(p r3.Vec, tol float64, mode extrema.SearchMode) extrema.Result1D {
	res := e.Perform(p, tol, mode)
	u := r3.Dot(r3.Sub(p, e.line.Origin), e.line.Dir)
	ptol := paramTol(e.line, tol)
	if !occt.IsInfinite(e.dom.Min) && u <= e.dom.Min {
		res.Add(extremumAt(e.line, p, e.dom.Min, true), ptol)
	}
	if !occt.IsInfinite(e.dom.Max) && u >= e.dom.Max {
		res.Add(extremumAt(e.line, p, e.dom.Max, true), ptol)
	}
	return res
}
