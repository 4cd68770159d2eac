// Package topo holds the minimal boundary representation consumed by the
// intersection algorithms: vertices, edges bounded on a curve and faces
// trimmed on a surface.
package topo

import (
	"fmt"
	"math"

	occt "github.com/Open-Cascade-SAS/OCCT-sub040"
	"github.com/Open-Cascade-SAS/OCCT-sub040/extrema"
	"gonum.org/v1/gonum/spatial/r3"
)

// State is the position of a point relative to a face.
type State int

const (
	Out State = iota
	In
	On
)

func (s State) String() string {
	switch s {
	case Out:
		return "out"
	case In:
		return "in"
	case On:
		return "on"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Vertex is a point with a tolerance sphere.
type Vertex struct {
	Point     r3.Vec
	Tolerance float64
}

// Edge is the part [First, Last] of a curve.
type Edge struct {
	Curve       occt.Curve
	First, Last float64
	Tolerance   float64
	V1, V2      Vertex
	// Degenerated edges collapse into a single point, such as the pole
	// seam of a sphere.
	Degenerated bool
}

// NewEdge returns the edge of c over [first, last] with end vertices at the
// curve ends. The range must be finite and lie within the curve range.
func NewEdge(c occt.Curve, first, last, tol float64) (*Edge, error) {
	if c == nil {
		return nil, occt.ErrMsg("nil curve")
	}
	if occt.IsInfinite(first) || occt.IsInfinite(last) {
		return nil, fmt.Errorf("%w: unbounded edge range [%g,%g]", occt.ErrInvalidInput, first, last)
	}
	if first > last {
		return nil, fmt.Errorf("%w: edge range [%g,%g] reversed", occt.ErrInvalidInput, first, last)
	}
	if !c.IsPeriodic() && (first < c.FirstParameter()-occt.PConfusion || last > c.LastParameter()+occt.PConfusion) {
		return nil, fmt.Errorf("%w: edge range [%g,%g] outside curve range", occt.ErrInvalidInput, first, last)
	}
	if tol < occt.Confusion {
		tol = occt.Confusion
	}
	e := &Edge{
		Curve:     c,
		First:     first,
		Last:      last,
		Tolerance: tol,
		V1:        Vertex{Point: c.Value(first), Tolerance: tol},
		V2:        Vertex{Point: c.Value(last), Tolerance: tol},
	}
	e.Degenerated = e.Length(16) <= tol
	return e, nil
}

// Range returns the parameter range of the edge.
func (e *Edge) Range() (first, last float64) { return e.First, e.Last }

// Value returns the curve point at t.
func (e *Edge) Value(t float64) r3.Vec { return e.Curve.Value(t) }

// Length estimates the arc length by a polyline of n segments.
func (e *Edge) Length(n int) float64 {
	if n < 1 {
		n = 1
	}
	l := 0.0
	prev := e.Curve.Value(e.First)
	for i := 1; i <= n; i++ {
		p := e.Curve.Value(e.First + (e.Last-e.First)*float64(i)/float64(n))
		l += r3.Norm(r3.Sub(p, prev))
		prev = p
	}
	return l
}

// Box returns the bounding box of the edge enlarged by its tolerance.
func (e *Edge) Box() occt.Box {
	b := occt.CurveBox(e.Curve, e.First, e.Last, 32)
	b.Enlarge(b.Gap() + e.Tolerance)
	return b
}

// Domain returns the edge range as an extrema domain.
func (e *Edge) Domain() extrema.Domain1D {
	return extrema.NewDomain1D(e.First, e.Last)
}

// Resolution converts a 3d tolerance into a parameter step on the edge.
func (e *Edge) Resolution(tol float64) float64 {
	return math.Max(e.Curve.Resolution(tol), occt.PConfusion)
}
