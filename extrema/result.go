package extrema

import (
	"fmt"
	"math"

	occt "github.com/Open-Cascade-SAS/OCCT-sub040"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// SearchMode selects which kind of extrema a query reports.
type SearchMode int

const (
	// Min reports minima only.
	Min SearchMode = iota
	// Max reports maxima only.
	Max
	// MinMax reports both.
	MinMax
)

// Accept reports whether an extremum of the given kind passes the mode.
func (m SearchMode) Accept(isMinimum bool) bool {
	switch m {
	case Min:
		return isMinimum
	case Max:
		return !isMinimum
	}
	return true
}

func (m SearchMode) String() string {
	switch m {
	case Min:
		return "min"
	case Max:
		return "max"
	case MinMax:
		return "minmax"
	}
	return fmt.Sprintf("SearchMode(%d)", int(m))
}

// Status is the outcome of an extrema query.
type Status int

const (
	StatusNotDone Status = iota
	StatusOK
	// StatusInfiniteSolutions is reported when every point of a continuum
	// is at the same distance, e.g. a point on a revolution axis.
	StatusInfiniteSolutions
	StatusNumericalError
	StatusInvalidInput
)

func (s Status) String() string {
	switch s {
	case StatusNotDone:
		return "not done"
	case StatusOK:
		return "ok"
	case StatusInfiniteSolutions:
		return "infinite solutions"
	case StatusNumericalError:
		return "numerical error"
	case StatusInvalidInput:
		return "invalid input"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Extremum1D is a point-curve extremum.
type Extremum1D struct {
	Parameter      float64
	Point          r3.Vec
	SquareDistance float64
	IsMinimum      bool
}

// Extremum2D is a point-surface extremum.
type Extremum2D struct {
	UV             r2.Vec
	Point          r3.Vec
	SquareDistance float64
	IsMinimum      bool
}

// Result1D holds the extrema found by a point-curve query.
// A zero extrema result with StatusOK means no extremum lies in the domain.
type Result1D struct {
	Status  Status
	Extrema []Extremum1D
	// InfiniteSquareDistance is set with StatusInfiniteSolutions.
	InfiniteSquareDistance float64
}

// IsDone reports whether the query completed.
func (r *Result1D) IsDone() bool {
	return r.Status == StatusOK || r.Status == StatusInfiniteSolutions
}

// NbExt returns the number of isolated extrema.
func (r *Result1D) NbExt() int { return len(r.Extrema) }

// Ext returns the i'th extremum, 0 based.
func (r *Result1D) Ext(i int) (Extremum1D, error) {
	if i < 0 || i >= len(r.Extrema) {
		return Extremum1D{}, occt.IndexError(i, len(r.Extrema))
	}
	return r.Extrema[i], nil
}

// MustExt is Ext that panics on a bad index.
func (r *Result1D) MustExt(i int) Extremum1D {
	e, err := r.Ext(i)
	if err != nil {
		panic(err)
	}
	return e
}

// MinIndex returns the index of the smallest square distance or -1.
func (r *Result1D) MinIndex() int {
	imin, dmin := -1, math.Inf(1)
	for i, e := range r.Extrema {
		if e.SquareDistance < dmin {
			imin, dmin = i, e.SquareDistance
		}
	}
	return imin
}

// Min returns the extremum with the smallest square distance.
func (r *Result1D) Min() (Extremum1D, bool) {
	i := r.MinIndex()
	if i < 0 {
		return Extremum1D{}, false
	}
	return r.Extrema[i], true
}

// Add appends e unless an extremum with a parameter within ptol is
// already stored. It reports whether e was appended.
func (r *Result1D) Add(e Extremum1D, ptol float64) bool {
	for _, x := range r.Extrema {
		if math.Abs(x.Parameter-e.Parameter) <= ptol {
			return false
		}
	}
	r.Extrema = append(r.Extrema, e)
	return true
}

// Result2D holds the extrema found by a point-surface query.
type Result2D struct {
	Status                 Status
	Extrema                []Extremum2D
	InfiniteSquareDistance float64
}

func (r *Result2D) IsDone() bool {
	return r.Status == StatusOK || r.Status == StatusInfiniteSolutions
}

func (r *Result2D) NbExt() int { return len(r.Extrema) }

// Ext returns the i'th extremum, 0 based.
func (r *Result2D) Ext(i int) (Extremum2D, error) {
	if i < 0 || i >= len(r.Extrema) {
		return Extremum2D{}, occt.IndexError(i, len(r.Extrema))
	}
	return r.Extrema[i], nil
}

// MustExt is Ext that panics on a bad index.
func (r *Result2D) MustExt(i int) Extremum2D {
	e, err := r.Ext(i)
	if err != nil {
		panic(err)
	}
	return e
}

func (r *Result2D) MinIndex() int {
	imin, dmin := -1, math.Inf(1)
	for i, e := range r.Extrema {
		if e.SquareDistance < dmin {
			imin, dmin = i, e.SquareDistance
		}
	}
	return imin
}

func (r *Result2D) Min() (Extremum2D, bool) {
	i := r.MinIndex()
	if i < 0 {
		return Extremum2D{}, false
	}
	return r.Extrema[i], true
}

// Add appends e unless an extremum within (utol, vtol) is already stored.
func (r *Result2D) Add(e Extremum2D, utol, vtol float64) bool {
	for _, x := range r.Extrema {
		if math.Abs(x.UV.X-e.UV.X) <= utol && math.Abs(x.UV.Y-e.UV.Y) <= vtol {
			return false
		}
	}
	r.Extrema = append(r.Extrema, e)
	return true
}
