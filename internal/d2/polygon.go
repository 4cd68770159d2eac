package d2

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Winding returns the winding number of the closed polygon poly around p.
// The closing edge from the last to the first vertex is implicit.
func Winding(poly Set, p r2.Vec) int {
	w := 0
	n := len(poly)
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		side := Cross(r2.Sub(b, a), r2.Sub(p, a))
		if a.Y <= p.Y {
			if b.Y > p.Y && side > 0 {
				w++
			}
		} else if b.Y <= p.Y && side < 0 {
			w--
		}
	}
	return w
}

// DistToPolyline returns the distance from p to the closed polygon boundary.
func DistToPolyline(poly Set, p r2.Vec) float64 {
	best := math.Inf(1)
	n := len(poly)
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		ab := r2.Sub(b, a)
		l2 := r2.Norm2(ab)
		t := 0.0
		if l2 > 0 {
			ap := r2.Sub(p, a)
			t = clamp((ap.X*ab.X+ap.Y*ab.Y)/l2, 0, 1)
		}
		q := r2.Add(a, r2.Scale(t, ab))
		best = math.Min(best, r2.Norm(r2.Sub(p, q)))
	}
	return best
}
