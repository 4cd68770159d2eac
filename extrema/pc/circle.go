package pc

import (
	"math"

	occt "github.com/Open-Cascade-SAS/OCCT-sub040"
	"github.com/Open-Cascade-SAS/OCCT-sub040/extrema"
	"gonum.org/v1/gonum/spatial/r3"
)

// Circle computes the extrema of a point and a circle in closed form.
// The minimum lies at the polar angle of the point around the circle axis,
// the maximum at the opposite angle.
type Circle struct {
	circle *occt.Circle
	dom    extrema.Domain1D
}

// NewCircle returns an evaluator for c restricted to dom. An unbounded
// domain is reduced to one period.
func NewCircle(c *occt.Circle, dom extrema.Domain1D) *Circle {
	if !dom.IsFinite() || dom.Length() > 2*math.Pi {
		first := 0.0
		if !occt.IsInfinite(dom.Min) {
			first = dom.Min
		}
		dom = extrema.NewDomain1D(first, first+2*math.Pi)
	}
	return &Circle{circle: c, dom: dom}
}

func (e *Circle) fullPeriod(ptol float64) bool {
	return e.dom.Length() >= 2*math.Pi-ptol
}

// Perform returns the interior extrema. A point on the circle axis is at the
// same distance from every circle point and yields StatusInfiniteSolutions.
func (e *Circle) Perform(p r3.Vec, tol float64, mode extrema.SearchMode) extrema.Result1D {
	c := e.circle
	angle, radius := c.Frame.Angle(p)
	if radius <= tol {
		h := r3.Dot(r3.Sub(p, c.Frame.Origin), c.Frame.Z)
		return extrema.Result1D{
			Status:                 extrema.StatusInfiniteSolutions,
			InfiniteSquareDistance: c.Radius*c.Radius + h*h,
		}
	}
	res := extrema.Result1D{Status: extrema.StatusOK}
	ptol := paramTol(c, tol)
	full := e.fullPeriod(ptol)
	for _, cand := range [2]struct {
		t     float64
		isMin bool
	}{{angle, true}, {angle + math.Pi, false}} {
		if !mode.Accept(cand.isMin) {
			continue
		}
		t := occt.InPeriod(cand.t, e.dom.Min, 2*math.Pi)
		if full && e.dom.Max-t <= ptol {
			t = e.dom.Min
		}
		switch {
		case t <= e.dom.Max:
		case t-2*math.Pi >= e.dom.Min-ptol:
			t = e.dom.Min
		case t <= e.dom.Max+ptol:
			t = e.dom.Max
		default:
			continue
		}
		res.Add(extremumAt(c, p, t, cand.isMin), ptol)
	}
	return res
}

// PerformWithEndpoints also reports the ends of a partial arc that are local
// extrema. A full period has no ends.
func (e *Circle) PerformWithEndpoints(p r3.Vec, tol float64, mode extrema.SearchMode) extrema.Result1D {
	res := e.Perform(p, tol, mode)
	if res.Status != extrema.StatusOK || e.fullPeriod(paramTol(e.circle, tol)) {
		return res
	}
	addEndpoints(&res, e.circle, e.dom, p, tol, mode)
	return res
}
