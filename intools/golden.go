package intools

import "math"

var invPhi = (math.Sqrt(5) - 1) / 2

// goldenMin returns the abscissa and value of the smallest f found on
// [a, b] by golden section search down to an interval of width tol. The
// ends are compared against the interior minimum.
func goldenMin(f func(float64) float64, a, b, tol float64) (float64, float64) {
	a0, b0 := a, b
	fa, fb := f(a), f(b)
	x1 := b - invPhi*(b-a)
	x2 := a + invPhi*(b-a)
	f1, f2 := f(x1), f(x2)
	for i := 0; i < 100 && b-a > tol; i++ {
		if f1 <= f2 {
			b, x2, f2 = x2, x1, f1
			x1 = b - invPhi*(b-a)
			f1 = f(x1)
		} else {
			a, x1, f1 = x1, x2, f2
			x2 = a + invPhi*(b-a)
			f2 = f(x2)
		}
	}
	t, ft := x1, f1
	if f2 < ft {
		t, ft = x2, f2
	}
	if fa < ft {
		t, ft = a0, fa
	}
	if fb < ft {
		t, ft = b0, fb
	}
	return t, ft
}
