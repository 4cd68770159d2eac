// Package intools classifies the common parts of an edge and a face and
// holds the range bookkeeping the classification is built on.
package intools

import "fmt"

// Range is the closed parameter interval [First, Last].
// First > Last is a caller error and is not checked.
type Range struct {
	First, Last float64
}

// NewRange returns the range [first, last].
func NewRange(first, last float64) Range { return Range{First: first, Last: last} }

// Length returns Last-First.
func (r Range) Length() float64 { return r.Last - r.First }

// Contains reports whether t lies in the range widened by tol.
func (r Range) Contains(t, tol float64) bool {
	return t >= r.First-tol && t <= r.Last+tol
}

// Mid returns the midpoint of the range.
func (r Range) Mid() float64 { return 0.5 * (r.First + r.Last) }

func (r Range) String() string { return fmt.Sprintf("[%g,%g]", r.First, r.Last) }
