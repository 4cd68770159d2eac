package ps

import (
	occt "github.com/Open-Cascade-SAS/OCCT-sub040"
	"github.com/Open-Cascade-SAS/OCCT-sub040/extrema"
	"gonum.org/v1/gonum/spatial/r3"
)

// Plane projects a point orthogonally onto a plane. The distance to a plane
// has a single minimum and no maximum.
type Plane struct {
	pl  *occt.Plane
	dom extrema.Domain2D
}

// NewPlane returns an evaluator for pl restricted to dom.
func NewPlane(pl *occt.Plane, dom extrema.Domain2D) *Plane {
	return &Plane{pl: pl, dom: dom}
}

func (e *Plane) Perform(p r3.Vec, tol float64, mode extrema.SearchMode) extrema.Result2D {
	res := extrema.Result2D{Status: extrema.StatusOK}
	if !mode.Accept(true) {
		return res
	}
	u, v := e.pl.Parameters(p)
	if !e.dom.U().Contains(u, tol) || !e.dom.V().Contains(v, tol) {
		return res
	}
	u, v = e.dom.U().Clamp(u), e.dom.V().Clamp(v)
	res.Extrema = append(res.Extrema, extremumAt(e.pl, p, u, v, true))
	return res
}

func (e *Plane) PerformWithBoundary(p r3.Vec, tol float64, mode extrema.SearchMode) extrema.Result2D {
	res := e.Perform(p, tol, mode)
	f := e.pl.Frame
	addBoundary(&res, e.pl, e.dom, p, tol, mode, Config{}, func(alongV bool, fixed float64) occt.Curve {
		if alongV {
			return &occt.Line{Origin: f.ToWorld(r3.Vec{X: fixed}), Dir: f.Y}
		}
		return &occt.Line{Origin: f.ToWorld(r3.Vec{Y: fixed}), Dir: f.X}
	})
	return res
}
