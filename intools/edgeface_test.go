package intools_test

import (
	"context"
	"errors"
	"math"
	"testing"

	occt "github.com/Open-Cascade-SAS/OCCT-sub040"
	"github.com/Open-Cascade-SAS/OCCT-sub040/extrema"
	"github.com/Open-Cascade-SAS/OCCT-sub040/intools"
	"github.com/Open-Cascade-SAS/OCCT-sub040/topo"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-7

func squareFace(t testing.TB, half float64) *topo.Face {
	pl, err := occt.NewPlane(r3.Vec{}, r3.Vec{Z: 1})
	if err != nil {
		t.Fatal(err)
	}
	f, err := topo.NewFace(pl, extrema.NewDomain2D(-half, half, -half, half), tol)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func sphereFace(t testing.TB) *topo.Face {
	s, err := occt.NewSphere(r3.Vec{}, 1)
	if err != nil {
		t.Fatal(err)
	}
	f, err := topo.NewFace(s, extrema.SurfaceDomain(s), tol)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func segment(t testing.TB, a, b r3.Vec) *topo.Edge {
	l, err := occt.LineThrough(a, b)
	if err != nil {
		t.Fatal(err)
	}
	e, err := topo.NewEdge(l, 0, r3.Norm(r3.Sub(b, a)), tol)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func perform(t testing.TB, e *topo.Edge, f *topo.Face, quick bool) *intools.EdgeFace {
	ef := intools.NewEdgeFace(e, f)
	ef.UseQuickCoincidenceCheck(quick)
	ef.Perform()
	if !ef.IsDone() {
		t.Fatalf("edge/face failed with status %d", ef.ErrorStatus())
	}
	return ef
}

func TestEdgeFaceCrossing(t *testing.T) {
	f := squareFace(t, 1)
	e := segment(t, r3.Vec{X: 0.2, Y: 0.3, Z: -1}, r3.Vec{X: 0.2, Y: 0.3, Z: 1})
	ef := perform(t, e, f, true)
	parts := ef.CommonParts()
	if len(parts) != 1 {
		t.Fatalf("got %d parts %v. want 1", len(parts), parts)
	}
	cp := parts[0]
	if cp.Type != intools.TypeVertex || math.Abs(cp.VertexParameter1-1) > 1e-6 {
		t.Errorf("got %v. want vertex at 1", cp)
	}
	if cp.Edge != e {
		t.Error("part does not reference its edge")
	}
	if ef.MinimalDistance() > ef.Criteria() {
		t.Errorf("got minimal distance %g above criteria %g", ef.MinimalDistance(), ef.Criteria())
	}
	if ef.IsCoincident() {
		t.Error("crossing edge coincident")
	}
}

func TestEdgeFaceCoincident(t *testing.T) {
	f := squareFace(t, 1)
	e := segment(t, r3.Vec{X: -0.5, Y: 0.1}, r3.Vec{X: 0.5, Y: 0.1})
	for _, quick := range []bool{true, false} {
		ef := perform(t, e, f, quick)
		parts := ef.CommonParts()
		if len(parts) != 1 {
			t.Fatalf("quick=%v: got %d parts %v. want 1", quick, len(parts), parts)
		}
		cp := parts[0]
		if cp.Type != intools.TypeEdge || !cp.AllNullFlag {
			t.Errorf("quick=%v: got %v. want edge", quick, cp)
		}
		if math.Abs(cp.Range1.First) > 1e-9 || math.Abs(cp.Range1.Last-1) > 1e-9 {
			t.Errorf("quick=%v: got range %v. want [0,1]", quick, cp.Range1)
		}
		if ef.MinimalDistance() > tol {
			t.Errorf("quick=%v: got minimal distance %g. want 0", quick, ef.MinimalDistance())
		}
	}
	if !intools.NewEdgeFace(e, f).IsCoincident() {
		t.Error("IsCoincident false for edge in face")
	}
}

func TestEdgeFaceOverhang(t *testing.T) {
	// half of the edge lies on the face, the rest hangs past its side.
	f := squareFace(t, 1)
	e := segment(t, r3.Vec{Y: 0.5}, r3.Vec{X: 2, Y: 0.5})
	ef := intools.NewEdgeFace(e, f)
	if ef.IsCoincident() {
		t.Error("overhanging edge coincident")
	}
	ef.Perform()
	parts := ef.CommonParts()
	if len(parts) != 1 {
		t.Fatalf("got %d parts %v. want 1", len(parts), parts)
	}
	cp := parts[0]
	if cp.Type != intools.TypeEdge || math.Abs(cp.Range1.First) > 1e-9 || math.Abs(cp.Range1.Last-1) > 1e-6 {
		t.Errorf("got %v. want edge [0,1]", cp)
	}
}

func TestEdgeFaceFarApart(t *testing.T) {
	f := squareFace(t, 1)
	e := segment(t, r3.Vec{X: -1, Z: 5}, r3.Vec{X: 1, Z: 5})
	ef := perform(t, e, f, true)
	if len(ef.CommonParts()) != 0 {
		t.Errorf("got parts %v. want none", ef.CommonParts())
	}
	if ef.ErrorStatus() != intools.StatusOK {
		t.Errorf("got status %d. want %d", ef.ErrorStatus(), intools.StatusOK)
	}
}

func TestEdgeFaceHole(t *testing.T) {
	f := squareFace(t, 1)
	hole := []r2.Vec{{X: -0.5, Y: -0.5}, {X: 0.5, Y: -0.5}, {X: 0.5, Y: 0.5}, {X: -0.5, Y: 0.5}}
	if err := f.AddHole(hole); err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		xy    r2.Vec
		parts int
	}{
		{xy: r2.Vec{}, parts: 0},
		{xy: r2.Vec{X: 0.8, Y: -0.7}, parts: 1},
	} {
		e := segment(t, r3.Vec{X: tc.xy.X, Y: tc.xy.Y, Z: -1}, r3.Vec{X: tc.xy.X, Y: tc.xy.Y, Z: 1})
		ef := perform(t, e, f, false)
		if got := len(ef.CommonParts()); got != tc.parts {
			t.Errorf("crossing at %v: got %d parts. want %d", tc.xy, got, tc.parts)
		}
	}
}

func TestEdgeFaceTangentSphere(t *testing.T) {
	f := sphereFace(t)
	e := segment(t, r3.Vec{X: -2, Y: 1}, r3.Vec{X: 2, Y: 1})
	ef := perform(t, e, f, true)
	parts := ef.CommonParts()
	if len(parts) != 1 {
		t.Fatalf("got %d parts %v. want 1", len(parts), parts)
	}
	if cp := parts[0]; cp.Type != intools.TypeVertex || math.Abs(cp.VertexParameter1-2) > 1e-4 {
		t.Errorf("got %v. want vertex at 2", cp)
	}
}

func TestEdgeFaceVertexTouch(t *testing.T) {
	f := squareFace(t, 1)
	e := segment(t, r3.Vec{Z: 1}, r3.Vec{X: 0.1, Y: 0.1})
	ef := perform(t, e, f, false)
	parts := ef.CommonParts()
	if len(parts) != 1 {
		t.Fatalf("got %d parts %v. want 1", len(parts), parts)
	}
	if cp := parts[0]; cp.Type != intools.TypeVertex || cp.VertexParameter1 != e.Last {
		t.Errorf("got %v. want vertex at edge end %g", cp, e.Last)
	}
	if t0, ok := ef.CheckTouchVertex(parts[0]); !ok || t0 != e.Last {
		t.Errorf("CheckTouchVertex got %g,%v", t0, ok)
	}
}

func TestEdgeFaceClosedEdgeSeam(t *testing.T) {
	f := squareFace(t, 1)
	// Circle in the XZ plane starting on the face at (0.5,0,0), crossing
	// again at t=pi and returning to the start at t=2pi.
	c, err := occt.NewCircle(r3.Vec{}, r3.Vec{Y: 1}, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	e, err := topo.NewEdge(c, 0, 2*math.Pi, tol)
	if err != nil {
		t.Fatal(err)
	}
	bean := intools.NewBeanFaceIntersector(nil, e, f)
	if err := bean.Perform(); err != nil {
		t.Fatal(err)
	}
	if got := bean.Result(); len(got) != 2 {
		t.Errorf("bean ranges: got %v. want 2", got)
	}

	ef := perform(t, e, f, false)
	parts := ef.CommonParts()
	if len(parts) != 2 {
		t.Fatalf("got %d parts %v. want 2", len(parts), parts)
	}
	for i, want := range []float64{0, math.Pi} {
		cp := parts[i]
		if cp.Type != intools.TypeVertex || math.Abs(cp.VertexParameter1-want) > 1e-4 {
			t.Errorf("part %d: got %v. want vertex at %g", i, cp, want)
		}
	}
}

func TestEdgeFaceStatus(t *testing.T) {
	f := squareFace(t, 1)
	l, _ := occt.NewLine(r3.Vec{}, r3.Vec{X: 1})
	degenerated, err := topo.NewEdge(l, 1, 1, tol)
	if err != nil {
		t.Fatal(err)
	}
	good := segment(t, r3.Vec{}, r3.Vec{X: 1})

	ef := intools.NewEdgeFace(good, f)
	if ef.IsDone() || ef.ErrorStatus() != intools.StatusNotStarted {
		t.Errorf("got done=%v status %d before Perform", ef.IsDone(), ef.ErrorStatus())
	}
	for _, tc := range []struct {
		ef   *intools.EdgeFace
		want int
	}{
		{ef: intools.NewEdgeFace(degenerated, f), want: intools.StatusInvalidEdge},
		{ef: intools.NewEdgeFace(nil, f), want: intools.StatusInvalidEdge},
		{ef: intools.NewEdgeFace(good, nil), want: intools.StatusInvalidFace},
		{ef: func() *intools.EdgeFace {
			ef := intools.NewEdgeFace(good, f)
			ef.SetRange(0.5, 3)
			return ef
		}(), want: intools.StatusInvalidFace},
	} {
		tc.ef.Perform()
		if tc.ef.IsDone() || tc.ef.ErrorStatus() != tc.want {
			t.Errorf("got done=%v status %d. want %d", tc.ef.IsDone(), tc.ef.ErrorStatus(), tc.want)
		}
	}
}

func TestEdgeFaceProjectionFailure(t *testing.T) {
	// extruding a line along itself sweeps a segment, no surface normal exists.
	l, _ := occt.NewLine(r3.Vec{}, r3.Vec{X: 1})
	flat, err := occt.NewSurfaceOfExtrusion(l, r3.Vec{X: 1})
	if err != nil {
		t.Fatal(err)
	}
	f, err := topo.NewFace(flat, extrema.NewDomain2D(0, 1, 0, 1), tol)
	if err != nil {
		t.Fatal(err)
	}
	ctx := intools.NewContext()
	if _, ok := ctx.ProjectPointOnSurface(f, r3.Vec{X: 1, Y: 0.5}); ok {
		t.Error("projection on a collapsed surface reported success")
	}

	e := segment(t, r3.Vec{X: 1, Y: -1}, r3.Vec{X: 1, Y: 1})
	bean := intools.NewBeanFaceIntersector(ctx, e, f)
	if err := bean.Perform(); !errors.Is(err, intools.ErrProjection) || bean.IsDone() {
		t.Errorf("got err %v, done %v. want ErrProjection", err, bean.IsDone())
	}
	ef := intools.NewEdgeFace(e, f)
	ef.SetContext(ctx)
	ef.Perform()
	if ef.IsDone() || ef.ErrorStatus() != intools.StatusBeanFailed {
		t.Errorf("got done=%v status %d. want %d", ef.IsDone(), ef.ErrorStatus(), intools.StatusBeanFailed)
	}
	if len(ef.CommonParts()) != 0 {
		t.Errorf("got parts %v after failure", ef.CommonParts())
	}
}

func TestEdgeFaceSettings(t *testing.T) {
	f := squareFace(t, 1)
	e := segment(t, r3.Vec{X: -0.5, Y: 0.1}, r3.Vec{X: 0.5, Y: 0.1})
	ef := intools.NewEdgeFace(e, f)
	ef.SetFuzzyValue(0)
	if ef.FuzzyValue() != occt.Confusion {
		t.Errorf("got fuzzy %g. want floor %g", ef.FuzzyValue(), occt.Confusion)
	}
	ef.SetFuzzyValue(1e-3)
	ef.SetRange(0.25, 0.75)
	ef.Perform()
	if want := e.Tolerance + f.Tolerance + 1e-3; ef.Criteria() != want {
		t.Errorf("got criteria %g. want %g", ef.Criteria(), want)
	}
	parts := ef.CommonParts()
	if len(parts) != 1 || parts[0].Range1 != intools.NewRange(0.25, 0.75) {
		t.Errorf("got %v. want edge over [0.25,0.75]", parts)
	}
	if d, ok := ef.DistanceFunction(0.5); !ok || d > tol {
		t.Errorf("got distance %g,%v. want 0", d, ok)
	}
	if !ef.IsProjectable(0.5) {
		t.Error("middle of the edge not projectable")
	}
}

func TestContextProjection(t *testing.T) {
	ctx := intools.NewContext()
	f := squareFace(t, 1)
	for _, tc := range []struct {
		p     r3.Vec
		uv    r2.Vec
		dist  float64
		state topo.State
	}{
		{p: r3.Vec{X: 0.2, Y: -0.4, Z: 3}, uv: r2.Vec{X: 0.2, Y: -0.4}, dist: 3, state: topo.In},
		{p: r3.Vec{X: 3, Y: 0.5, Z: 0}, uv: r2.Vec{X: 1, Y: 0.5}, dist: 2, state: topo.On},
	} {
		pr, st, ok := ctx.ProjectPointOnFace(f, tc.p)
		if !ok {
			t.Fatalf("%v not projected", tc.p)
		}
		if math.Abs(pr.UV.X-tc.uv.X) > 1e-6 || math.Abs(pr.UV.Y-tc.uv.Y) > 1e-6 || math.Abs(pr.Distance-tc.dist) > 1e-6 || st != tc.state {
			t.Errorf("%v: got %+v %v. want %v at %g %v", tc.p, pr, st, tc.uv, tc.dist, tc.state)
		}
	}
	if !ctx.IsValidPointForFace(r3.Vec{X: 0.5, Z: 1e-8}, f, tol) || ctx.IsValidPointForFace(r3.Vec{X: 0.5, Z: 1e-3}, f, tol) {
		t.Error("IsValidPointForFace")
	}
	data := ctx.SurfaceData(f)
	if data != ctx.SurfaceData(f) || data.NbGridPointsU() == 0 {
		t.Error("surface data not cached")
	}
	i, j, ok := data.NearestGridPoint(r3.Vec{X: -1, Y: -1, Z: 1})
	if !ok || i != 0 || j != 0 {
		t.Errorf("got nearest node (%d,%d). want corner (0,0)", i, j)
	}
}

func TestPerformAll(t *testing.T) {
	f := squareFace(t, 1)
	jobs := []intools.Job{
		{Edge: segment(t, r3.Vec{X: 0.2, Y: 0.3, Z: -1}, r3.Vec{X: 0.2, Y: 0.3, Z: 1}), Face: f},
		{Edge: segment(t, r3.Vec{X: -0.5, Y: 0.1}, r3.Vec{X: 0.5, Y: 0.1}), Face: f, QuickCoincidence: true},
		{Edge: segment(t, r3.Vec{X: -1, Z: 5}, r3.Vec{X: 1, Z: 5}), Face: f},
		{Edge: nil, Face: f},
	}
	want := []struct {
		done  bool
		parts int
	}{{true, 1}, {true, 1}, {true, 0}, {false, 0}}
	for _, workers := range []int{1, 3, 0} {
		res, err := intools.PerformAll(context.Background(), jobs, workers, nil)
		if err != nil {
			t.Fatal(err)
		}
		for i, r := range res {
			if r.Done != want[i].done || len(r.CommonParts) != want[i].parts {
				t.Errorf("workers=%d job %d: got done=%v %d parts. want %v %d", workers, i, r.Done, len(r.CommonParts), want[i].done, want[i].parts)
			}
		}
		if res[3].ErrorStatus != intools.StatusInvalidEdge {
			t.Errorf("workers=%d: got status %d for nil edge", workers, res[3].ErrorStatus)
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, workers := range []int{1, 4} {
		if _, err := intools.PerformAll(ctx, jobs, workers, nil); !errors.Is(err, context.Canceled) {
			t.Errorf("workers=%d: got %v. want %v", workers, err, context.Canceled)
		}
	}
}

func BenchmarkEdgeFaceSphere(b *testing.B) {
	f := sphereFace(b)
	e := segment(b, r3.Vec{X: -2, Y: 0.5, Z: 0.1}, r3.Vec{X: 2, Y: 0.5, Z: 0.1})
	ctx := intools.NewContext()
	for i := 0; i < b.N; i++ {
		ef := intools.NewEdgeFace(e, f)
		ef.SetContext(ctx)
		ef.Perform()
	}
}
