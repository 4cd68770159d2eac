package d2

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestWindingAndDistance(t *testing.T) {
	square := Set{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	for _, test := range []struct {
		p       r2.Vec
		winding int
		dist    float64
	}{
		{p: r2.Vec{X: 1, Y: 1}, winding: 1, dist: 1},
		{p: r2.Vec{X: 0.5, Y: 1}, winding: 1, dist: 0.5},
		{p: r2.Vec{X: 3, Y: 1}, winding: 0, dist: 1},
		{p: r2.Vec{X: -1, Y: -1}, winding: 0, dist: math.Sqrt2},
	} {
		if got := Winding(square, test.p); got != test.winding {
			t.Errorf("winding %v: got %v. want %v", test.p, got, test.winding)
		}
		if got := DistToPolyline(square, test.p); math.Abs(got-test.dist) > 1e-12 {
			t.Errorf("distance %v: got %v. want %v", test.p, got, test.dist)
		}
	}
}

func TestBoxOf(t *testing.T) {
	tri := Set{{X: 1, Y: -1}, {X: 3, Y: 2}, {X: -2, Y: 0.5}}
	b := BoxOf(tri)
	if b.Min != (r2.Vec{X: -2, Y: -1}) || b.Max != (r2.Vec{X: 3, Y: 2}) {
		t.Errorf("got %v. want [-2,-1]-[3,2]", b)
	}
	if b.Contains(r2.Vec{X: 3.05, Y: 0}) {
		t.Error("point outside box reported inside")
	}
	if !b.Enlarge(0.1).Contains(r2.Vec{X: 3.05, Y: 0}) {
		t.Error("enlarged box should contain point")
	}
}
