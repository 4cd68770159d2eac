package pc

import (
	"math"
	"testing"

	occt "github.com/Open-Cascade-SAS/OCCT-sub040"
	"github.com/Open-Cascade-SAS/OCCT-sub040/extrema"
	"github.com/Open-Cascade-SAS/OCCT-sub040/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-7

func xLine(t *testing.T) *occt.Line {
	l, err := occt.NewLine(r3.Vec{}, r3.Vec{X: 1})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestLineUnbounded(t *testing.T) {
	e := NewLine(xLine(t), extrema.Unbounded1D())
	res := e.Perform(r3.Vec{X: 5, Y: 3}, tol, extrema.Min)
	if res.Status != extrema.StatusOK || res.NbExt() != 1 {
		t.Fatalf("got status %v with %d extrema. want ok with 1", res.Status, res.NbExt())
	}
	ext := res.MustExt(0)
	if math.Abs(ext.Parameter-5) > tol {
		t.Errorf("got parameter %g. want 5", ext.Parameter)
	}
	if !d3.EqualWithin(ext.Point, r3.Vec{X: 5}, tol) {
		t.Errorf("got point %v. want (5,0,0)", ext.Point)
	}
	if math.Abs(ext.SquareDistance-9) > tol {
		t.Errorf("got square distance %g. want 9", ext.SquareDistance)
	}
	if !ext.IsMinimum {
		t.Error("line extremum must be a minimum")
	}
}

func TestLineProjectionProperty(t *testing.T) {
	for _, test := range []struct {
		origin, dir, p r3.Vec
	}{
		{r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 1, Y: 1}, r3.Vec{X: -4, Y: 7, Z: 1}},
		{r3.Vec{}, r3.Vec{Z: -2}, r3.Vec{X: 3, Z: 100}},
		{r3.Vec{X: -10}, r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 1, Y: 1, Z: 1}},
	} {
		l, err := occt.NewLine(test.origin, test.dir)
		if err != nil {
			t.Fatal(err)
		}
		for _, mode := range []extrema.SearchMode{extrema.Min, extrema.Max, extrema.MinMax} {
			res := NewLine(l, extrema.Unbounded1D()).Perform(test.p, tol, mode)
			if res.NbExt() != 1 {
				t.Fatalf("mode %v: got %d extrema. want 1", mode, res.NbExt())
			}
			want := r3.Dot(r3.Sub(test.p, l.Origin), l.Dir)
			if got := res.MustExt(0).Parameter; math.Abs(got-want) > 1e-12 {
				t.Errorf("got parameter %g. want %g", got, want)
			}
		}
	}
}

func TestLineBoundedDomain(t *testing.T) {
	e := NewLine(xLine(t), extrema.NewDomain1D(0, 3))
	p := r3.Vec{X: 5, Y: 3}
	res := e.Perform(p, tol, extrema.Min)
	if res.Status != extrema.StatusOK {
		t.Errorf("got status %v. want ok", res.Status)
	}
	if res.NbExt() != 0 {
		t.Errorf("got %d interior extrema. want 0", res.NbExt())
	}
	res = e.PerformWithEndpoints(p, tol, extrema.Min)
	if res.NbExt() != 1 {
		t.Fatalf("got %d extrema with endpoints. want 1", res.NbExt())
	}
	ext := res.MustExt(0)
	if ext.Parameter != 3 || !d3.EqualWithin(ext.Point, r3.Vec{X: 3}, tol) || math.Abs(ext.SquareDistance-13) > tol {
		t.Errorf("got %+v. want parameter 3, point (3,0,0), square distance 13", ext)
	}
}

func TestLineEndpointNotDuplicated(t *testing.T) {
	e := NewLine(xLine(t), extrema.NewDomain1D(0, 3))
	for _, p := range []r3.Vec{{X: 3, Y: 1}, {X: 3 + tol/2, Y: 1}, {Y: -2}} {
		res := e.PerformWithEndpoints(p, tol, extrema.Min)
		if res.NbExt() != 1 {
			t.Errorf("point %v: got %d extrema. want 1", p, res.NbExt())
		}
	}
	// interior foot: the ends are not local minima.
	res := e.PerformWithEndpoints(r3.Vec{X: 1.5, Y: 1}, tol, extrema.Min)
	if res.NbExt() != 1 || res.MustExt(0).Parameter != 1.5 {
		t.Errorf("got %+v. want single extremum at 1.5", res.Extrema)
	}
}

func TestResultIndexError(t *testing.T) {
	res := NewLine(xLine(t), extrema.NewDomain1D(0, 3)).Perform(r3.Vec{X: 5}, tol, extrema.Min)
	if _, err := res.Ext(0); err == nil {
		t.Error("expected error for index into empty result")
	}
	if res.MinIndex() != -1 {
		t.Errorf("got min index %d. want -1", res.MinIndex())
	}
}

func TestCircleAnalytic(t *testing.T) {
	c, err := occt.NewCircle(r3.Vec{}, r3.Vec{Z: 1}, 2)
	if err != nil {
		t.Fatal(err)
	}
	e := NewCircle(c, extrema.Unbounded1D())
	res := e.Perform(r3.Vec{X: 3, Z: 1}, tol, extrema.MinMax)
	if res.NbExt() != 2 {
		t.Fatalf("got %d extrema. want 2", res.NbExt())
	}
	min, _ := res.Min()
	if math.Abs(min.SquareDistance-2) > tol || !min.IsMinimum {
		t.Errorf("got minimum %+v. want square distance 2", min)
	}
	for _, ext := range res.Extrema {
		if !ext.IsMinimum && math.Abs(ext.SquareDistance-26) > tol {
			t.Errorf("got maximum square distance %g. want 26", ext.SquareDistance)
		}
	}

	res = e.Perform(r3.Vec{Z: 5}, tol, extrema.MinMax)
	if res.Status != extrema.StatusInfiniteSolutions {
		t.Fatalf("got status %v. want infinite solutions", res.Status)
	}
	if res.InfiniteSquareDistance != 29 {
		t.Errorf("got square distance %g. want 29", res.InfiniteSquareDistance)
	}
}

func TestCircleArc(t *testing.T) {
	c, _ := occt.NewCircle(r3.Vec{}, r3.Vec{Z: 1}, 2)
	e := NewCircle(c, extrema.NewDomain1D(math.Pi/2, math.Pi))
	p := r3.Vec{X: 3}
	res := e.Perform(p, tol, extrema.MinMax)
	if res.NbExt() != 1 || res.MustExt(0).IsMinimum {
		t.Fatalf("got %+v. want a single maximum", res.Extrema)
	}
	res = e.PerformWithEndpoints(p, tol, extrema.MinMax)
	if res.NbExt() != 2 {
		t.Fatalf("got %d extrema. want 2", res.NbExt())
	}
	min, _ := res.Min()
	if math.Abs(min.Parameter-math.Pi/2) > tol || !min.IsMinimum {
		t.Errorf("got %+v. want minimum at pi/2", min)
	}
}

func TestCurveEllipseCenter(t *testing.T) {
	el, err := occt.NewEllipse(occt.WorldFrame(), 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	res := NewCurve(el, extrema.Unbounded1D(), Config{}).Perform(r3.Vec{}, tol, extrema.MinMax)
	if res.Status != extrema.StatusOK {
		t.Fatalf("got status %v", res.Status)
	}
	if res.NbExt() != 4 {
		t.Fatalf("got %d extrema. want 4: %+v", res.NbExt(), res.Extrema)
	}
	for _, ext := range res.Extrema {
		want := 16.0
		if ext.IsMinimum {
			want = 4
		}
		if math.Abs(ext.SquareDistance-want) > 1e-9 {
			t.Errorf("got square distance %g at %g. want %g", ext.SquareDistance, ext.Parameter, want)
		}
	}
	res = NewCurve(el, extrema.Unbounded1D(), Config{}).Perform(r3.Vec{}, tol, extrema.Min)
	if res.NbExt() != 2 {
		t.Errorf("got %d minima. want 2", res.NbExt())
	}
}

func TestCurveMatchesCircle(t *testing.T) {
	f, err := occt.NewFrame(r3.Vec{X: 1, Y: -1, Z: 2}, r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{X: 1})
	if err != nil {
		t.Fatal(err)
	}
	c := occt.NewCircleInFrame(f, 3)
	generic := NewCurve(c, extrema.Unbounded1D(), Config{NbSamples: 24})
	analytic := NewCircle(c, extrema.Unbounded1D())
	for _, p := range []r3.Vec{{X: 5}, {Y: 4, Z: -3}, {X: -2, Y: 2, Z: 2}, {X: 10, Y: 10, Z: 10}} {
		g := generic.Perform(p, tol, extrema.Min)
		a := analytic.Perform(p, tol, extrema.Min)
		gmin, ok1 := g.Min()
		amin, ok2 := a.Min()
		if !ok1 || !ok2 {
			t.Fatalf("point %v: missing minimum", p)
		}
		if math.Abs(gmin.SquareDistance-amin.SquareDistance) > 1e-9 {
			t.Errorf("point %v: got %g. want %g", p, gmin.SquareDistance, amin.SquareDistance)
		}
	}
}

func TestCurveBSplineSegment(t *testing.T) {
	bs, err := occt.NewBSplineCurve(1, []r3.Vec{{}, {X: 10}}, []float64{0, 0, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	res := New(bs, extrema.Unbounded1D(), Config{}).Perform(r3.Vec{X: 5, Y: 3}, tol, extrema.Min)
	if res.NbExt() != 1 {
		t.Fatalf("got %d extrema. want 1", res.NbExt())
	}
	ext := res.MustExt(0)
	if math.Abs(ext.Parameter-0.5) > 1e-9 || math.Abs(ext.SquareDistance-9) > 1e-9 {
		t.Errorf("got %+v. want parameter 0.5, square distance 9", ext)
	}
}

func TestNewDispatch(t *testing.T) {
	c, _ := occt.NewCircle(r3.Vec{}, r3.Vec{Z: 1}, 1)
	arc, _ := occt.NewTrimmedCurve(c, 0, math.Pi)
	el, _ := occt.NewEllipse(occt.WorldFrame(), 2, 1)
	for _, test := range []struct {
		c    occt.Curve
		want string
	}{
		{xLine(t), "line"},
		{c, "circle"},
		{arc, "circle"},
		{el, "curve"},
	} {
		var got string
		switch New(test.c, extrema.Unbounded1D(), Config{}).(type) {
		case *Line:
			got = "line"
		case *Circle:
			got = "circle"
		case *Curve:
			got = "curve"
		}
		if got != test.want {
			t.Errorf("got %s evaluator. want %s", got, test.want)
		}
	}
	// trimmed arc keeps its range.
	res := New(arc, extrema.Unbounded1D(), Config{}).Perform(r3.Vec{Y: -3}, tol, extrema.Min)
	if res.NbExt() != 0 {
		t.Errorf("got %d minima below the arc. want 0", res.NbExt())
	}
}

func BenchmarkCurveEllipse(b *testing.B) {
	el, _ := occt.NewEllipse(occt.WorldFrame(), 4, 2)
	e := NewCurve(el, extrema.Unbounded1D(), Config{})
	p := r3.Vec{X: 1, Y: 3, Z: 0.5}
	for i := 0; i < b.N; i++ {
		e.Perform(p, tol, extrema.MinMax)
	}
}
