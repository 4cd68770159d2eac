package d2

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Box is a 2d bounding box in parameter space.
type Box r2.Box

// BoxOf returns the bounding box of a non empty set of points.
func BoxOf(s Set) Box {
	return Box{Min: s.Min(), Max: s.Max()}
}

// Enlarge returns a new 2d box grown by tol on every side.
func (a Box) Enlarge(tol float64) Box {
	v := r2.Vec{X: tol, Y: tol}
	return Box{r2.Sub(a.Min, v), r2.Add(a.Max, v)}
}

// Contains checks if the 2d box contains the given vector (considering bounds as inside).
func (a Box) Contains(v r2.Vec) bool {
	return a.Min.X <= v.X && a.Min.Y <= v.Y &&
		v.X <= a.Max.X && v.Y <= a.Max.Y
}
