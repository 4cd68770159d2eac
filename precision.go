package occt

import "math"

const (
	// Confusion is the 3D distance below which two points are considered coincident.
	Confusion = 1e-7
	// SquareConfusion is Confusion squared.
	SquareConfusion = Confusion * Confusion
	// PConfusion is the parametric counterpart of Confusion.
	PConfusion = Confusion * 0.01
	// Angular is the angle below which two directions are considered parallel.
	Angular = 1e-12
	// Infinite is the magnitude from which a bound is considered unbounded.
	Infinite = 2e100
)

const (
	pi  = math.Pi
	tau = 2 * pi
)

// IsInfinite reports whether x is beyond the unbounded sentinel.
func IsInfinite(x float64) bool {
	return math.Abs(x) >= Infinite
}

// Clamp x between a and b, assume a <= b
func Clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}

// InPeriod maps x into [first, first+period).
func InPeriod(x, first, period float64) float64 {
	if period <= 0 {
		return x
	}
	y := math.Mod(x-first, period)
	if y < 0 {
		y += period
	}
	return first + y
}
