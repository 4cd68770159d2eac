package intools

import (
	"errors"
	"math"
	"testing"

	occt "github.com/Open-Cascade-SAS/OCCT-sub040"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSurfaceRangeSample(t *testing.T) {
	for _, tc := range []struct {
		s     SurfaceRangeSample
		nb    int
		wantU Range
		wantV Range
		desc  string
	}{
		{s: SurfaceRangeSample{}, nb: 10, wantU: Range{0, 1}, wantV: Range{-2, 2}, desc: "root"},
		{s: SurfaceRangeSample{IndexU: 3, DepthU: 1, IndexV: 0, DepthV: 1}, nb: 10, wantU: Range{0.3, 0.4}, wantV: Range{-2, -1.6}, desc: "depth 1"},
		{s: SurfaceRangeSample{IndexU: 25, DepthU: 2, IndexV: 1, DepthV: 1}, nb: 10, wantU: Range{0.25, 0.26}, wantV: Range{-1.6, -1.2}, desc: "depth 2"},
		{s: SurfaceRangeSample{IndexU: 3, DepthU: 2, IndexV: 3, DepthV: 2}, nb: 2, wantU: Range{0.75, 1}, wantV: Range{1, 2}, desc: "last cell"},
	} {
		u := tc.s.RangeU(0, 1, tc.nb)
		v := tc.s.RangeV(-2, 2, tc.nb)
		if math.Abs(u.First-tc.wantU.First) > 1e-12 || math.Abs(u.Last-tc.wantU.Last) > 1e-12 {
			t.Errorf("%s: got U %v. want %v", tc.desc, u, tc.wantU)
		}
		if math.Abs(v.First-tc.wantV.First) > 1e-12 || math.Abs(v.Last-tc.wantV.Last) > 1e-12 {
			t.Errorf("%s: got V %v. want %v", tc.desc, v, tc.wantV)
		}
	}
	parent := SurfaceRangeSample{IndexU: 1, DepthU: 1, IndexV: 2, DepthV: 1}
	children := parent.Children(4, 3)
	if len(children) != 12 {
		t.Fatalf("got %d children. want 12", len(children))
	}
	pu := parent.RangeU(0, 1, 4)
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range children {
		r := c.RangeU(0, 1, 4)
		lo, hi = math.Min(lo, r.First), math.Max(hi, r.Last)
	}
	if math.Abs(lo-pu.First) > 1e-12 || math.Abs(hi-pu.Last) > 1e-12 {
		t.Errorf("children span [%g,%g]. want %v", lo, hi, pu)
	}
	if !parent.IsEqual(SurfaceRangeSample{IndexU: 1, DepthU: 1, IndexV: 2, DepthV: 1}) || parent.IsEqual(children[0]) {
		t.Error("IsEqual")
	}
}

func TestLocalizeOutRanges(t *testing.T) {
	d := NewSurfaceRangeLocalizeData(5, 5, 0.1, 0.1)
	a := SurfaceRangeSample{IndexU: 1, DepthU: 1, IndexV: 4, DepthV: 1}
	b := SurfaceRangeSample{IndexU: 0, DepthU: 1, IndexV: 0, DepthV: 1}
	if d.IsRangeOut(a) {
		t.Fatal("empty data has out range")
	}
	d.AddOutRange(a)
	d.AddOutRange(a)
	if !d.IsRangeOut(a) {
		t.Error("added range not out")
	}
	if got := d.ListRangeOut(); len(got) != 1 || got[0] != a {
		t.Errorf("got %v. want [%v]", got, a)
	}
	d.AddOutRange(b)
	if got := d.ListRangeOut(); len(got) != 2 || got[0] != b {
		t.Errorf("got %v. want %v first", got, b)
	}
	d.RemoveRangeOutAll()
	if d.IsRangeOut(a) || len(d.ListRangeOut()) != 0 {
		t.Error("RemoveRangeOutAll kept ranges")
	}
	if d.NbSampleU() != 5 || d.MinRangeV() != 0.1 {
		t.Errorf("got config %+v", d.Config())
	}
}

func TestLocalizeBoxCache(t *testing.T) {
	d := NewLocalizeData(LocalizeConfig{})
	r := SurfaceRangeSample{IndexU: 2, DepthU: 1, IndexV: 7, DepthV: 1}
	if _, ok := d.FindBox(r); ok {
		t.Fatal("found box in empty cache")
	}
	want := occt.NewBox(r3.Vec{X: -1, Y: 0.1, Z: 1.0 / 3}, r3.Vec{X: 2, Y: math.Pi, Z: 7})
	want.Enlarge(1e-7)
	d.AddBox(r, want)
	got, ok := d.FindBox(r)
	if !ok || got != want {
		t.Errorf("got %+v,%v. want %+v", got, ok, want)
	}
	if _, ok := d.FindBox(SurfaceRangeSample{IndexU: 2, DepthU: 1, IndexV: 7, DepthV: 2}); ok {
		t.Error("found box of other depth")
	}
	if d.NbSampleU() != defaultNbSample {
		t.Errorf("got %d samples. want default %d", d.NbSampleU(), defaultNbSample)
	}
}

func gridFixture() [][]GridPoint {
	us := floats.Span(make([]float64, 5), 0, 1)
	vs := floats.Span(make([]float64, 5), 0, 2)
	grid := make([][]GridPoint, len(us))
	for i, u := range us {
		for _, v := range vs {
			grid[i] = append(grid[i], GridPoint{U: u, V: v, Point: r3.Vec{X: u, Y: v, Z: u * v}})
		}
	}
	return grid
}

func TestLocalizeGrid(t *testing.T) {
	d := NewLocalizeData(LocalizeConfig{})
	if err := d.SetGrid(gridFixture()); err != nil {
		t.Fatal(err)
	}
	if d.NbGridPointsU() != 5 || d.NbGridPointsV() != 5 {
		t.Fatalf("got %dx%d grid. want 5x5", d.NbGridPointsU(), d.NbGridPointsV())
	}
	g, err := d.GridPoint(2, 3)
	if err != nil || g.U != 0.5 || g.V != 1.5 || g.Point != (r3.Vec{X: 0.5, Y: 1.5, Z: 0.75}) {
		t.Errorf("got %+v,%v", g, err)
	}
	if _, err := d.GridPoint(5, 0); !errors.Is(err, occt.ErrIndexOutOfRange) {
		t.Errorf("got %v. want %v", err, occt.ErrIndexOutOfRange)
	}
	d.SetGridDeflection(0.01)
	if d.GridDeflection() != 0.01 {
		t.Errorf("got deflection %g", d.GridDeflection())
	}

	d.SetFrame(0.3, 0.6, 0.5, 1.0)
	if d.NbUPointsInFrame() != 3 || d.NbVPointsInFrame() != 2 {
		t.Fatalf("got frame %dx%d. want 3x2", d.NbUPointsInFrame(), d.NbVPointsInFrame())
	}
	for _, tc := range []struct {
		i    int
		want float64
	}{{0, 0.25}, {1, 0.5}, {2, 0.75}} {
		if u, err := d.UParamInFrame(tc.i); err != nil || u != tc.want {
			t.Errorf("U %d: got %g,%v. want %g", tc.i, u, err, tc.want)
		}
	}
	if v, _ := d.VParamInFrame(1); v != 1 {
		t.Errorf("got V %g. want 1", v)
	}
	p, err := d.PointInFrame(0, 0)
	if err != nil || p != (r3.Vec{X: 0.25, Y: 0.5, Z: 0.125}) {
		t.Errorf("got %v,%v", p, err)
	}
	if _, err := d.PointInFrame(3, 0); !errors.Is(err, occt.ErrIndexOutOfRange) {
		t.Errorf("got %v. want %v", err, occt.ErrIndexOutOfRange)
	}

	d.SetFrame(2, 3, 0, 2)
	if d.NbUPointsInFrame() != 0 {
		t.Errorf("frame past the grid has %d points", d.NbUPointsInFrame())
	}
	d.ClearGrid()
	if d.NbGridPointsU() != 0 || d.NbVPointsInFrame() != 0 || d.GridDeflection() != 0 {
		t.Error("ClearGrid kept data")
	}
}

func TestLocalizeGridValidation(t *testing.T) {
	d := NewLocalizeData(LocalizeConfig{})
	ragged := gridFixture()
	ragged[2] = ragged[2][:3]
	skewed := gridFixture()
	skewed[1][2].V += 0.1
	reversed := gridFixture()
	reversed[0], reversed[1] = reversed[1], reversed[0]
	for _, tc := range []struct {
		grid [][]GridPoint
		want error
	}{
		{grid: nil, want: occt.ErrInvalidInput},
		{grid: ragged, want: occt.ErrInvalidInput},
		{grid: skewed, want: occt.ErrInvalidInput},
		{grid: reversed, want: ErrNonMonotonic},
	} {
		if err := d.SetGrid(tc.grid); !errors.Is(err, tc.want) {
			t.Errorf("got %v. want %v", err, tc.want)
		}
	}
}

func TestNearestGridPoint(t *testing.T) {
	d := NewLocalizeData(LocalizeConfig{})
	if _, _, ok := d.NearestGridPoint(r3.Vec{}); ok {
		t.Fatal("nearest point of empty grid")
	}
	grid := gridFixture()
	d.SetGrid(grid)
	for _, q := range []r3.Vec{{X: 0.26, Y: 1.4, Z: 0.4}, {X: -3, Y: -3}, {X: 0.9, Y: 2.2, Z: 1}} {
		i, j, ok := d.NearestGridPoint(q)
		if !ok {
			t.Fatal("no nearest point")
		}
		best := math.Inf(1)
		for _, row := range grid {
			for _, g := range row {
				best = math.Min(best, r3.Norm2(r3.Sub(g.Point, q)))
			}
		}
		if got := r3.Norm2(r3.Sub(grid[i][j].Point, q)); got != best {
			t.Errorf("%v: got node (%d,%d) at %g. want %g", q, i, j, got, best)
		}
	}
}
