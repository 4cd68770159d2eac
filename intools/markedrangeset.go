package intools

import (
	"errors"
	"fmt"
	"sort"

	occt "github.com/Open-Cascade-SAS/OCCT-sub040"
)

var (
	// ErrRangeOutOfBounds is returned when a range leaves the outer
	// boundaries of a MarkedRangeSet.
	ErrRangeOutOfBounds = errors.New("range outside set boundaries")
	// ErrNonMonotonic is returned for boundaries that do not increase.
	ErrNonMonotonic = errors.New("boundaries not increasing")
)

// MarkedRangeSet partitions an interval into contiguous flagged ranges.
// Range i spans [bounds[i], bounds[i+1]] and carries flags[i].
// The zero value is an empty set.
type MarkedRangeSet struct {
	bounds []float64
	flags  []int
}

// NewMarkedRangeSet returns a set holding the single range [first, last].
func NewMarkedRangeSet(first, last float64, flag int) (*MarkedRangeSet, error) {
	var s MarkedRangeSet
	if err := s.SetBoundaries(first, last, flag); err != nil {
		return nil, err
	}
	return &s, nil
}

// SetBoundaries resets the set to the single range [first, last].
func (s *MarkedRangeSet) SetBoundaries(first, last float64, flag int) error {
	if !(first < last) {
		return fmt.Errorf("%w: [%g,%g]", ErrNonMonotonic, first, last)
	}
	s.bounds = append(s.bounds[:0], first, last)
	s.flags = append(s.flags[:0], flag)
	return nil
}

// SetRanges resets the set to one range per consecutive pair of sorted.
func (s *MarkedRangeSet) SetRanges(sorted []float64, flag int) error {
	if len(sorted) < 2 {
		return fmt.Errorf("%w: need 2 boundaries, got %d", occt.ErrInvalidInput, len(sorted))
	}
	for i := 1; i < len(sorted); i++ {
		if !(sorted[i-1] < sorted[i]) {
			return fmt.Errorf("%w: %g then %g at %d", ErrNonMonotonic, sorted[i-1], sorted[i], i)
		}
	}
	s.bounds = append(s.bounds[:0], sorted...)
	s.flags = s.flags[:0]
	for i := 1; i < len(sorted); i++ {
		s.flags = append(s.flags, flag)
	}
	return nil
}

// Length returns the number of ranges.
func (s *MarkedRangeSet) Length() int { return len(s.flags) }

// Boundaries returns a copy of the sorted range boundaries.
func (s *MarkedRangeSet) Boundaries() []float64 {
	return append([]float64(nil), s.bounds...)
}

// Insert overwrites [first, last] with a single range flagged flag,
// splitting the ranges it partially overlaps. It returns the index of
// the new range.
func (s *MarkedRangeSet) Insert(first, last float64, flag int) (int, error) {
	return s.insert(first, last, flag, -1)
}

// InsertRange is Insert reporting failure as false.
func (s *MarkedRangeSet) InsertRange(first, last float64, flag int) bool {
	_, err := s.insert(first, last, flag, -1)
	return err == nil
}

// InsertRangeAt is InsertRange with index as a hint of the range holding
// first. A wrong hint costs a search, never a wrong result.
func (s *MarkedRangeSet) InsertRangeAt(first, last float64, flag, index int) bool {
	_, err := s.insert(first, last, flag, index)
	return err == nil
}

func (s *MarkedRangeSet) insert(first, last float64, flag, hint int) (int, error) {
	n := len(s.flags)
	if n == 0 {
		return -1, fmt.Errorf("%w: empty set", ErrRangeOutOfBounds)
	}
	if !(first < last) {
		return -1, fmt.Errorf("%w: [%g,%g]", ErrNonMonotonic, first, last)
	}
	if first < s.bounds[0] || last > s.bounds[n] {
		return -1, fmt.Errorf("%w: [%g,%g] not in [%g,%g]", ErrRangeOutOfBounds, first, last, s.bounds[0], s.bounds[n])
	}
	var i1 int
	if hint >= 0 && hint < n && s.bounds[hint] <= first && first < s.bounds[hint+1] {
		i1 = hint
	} else {
		i1 = s.GetIndexLower(first, true)
	}
	i2 := s.GetIndexLower(last, false)

	bounds := make([]float64, 0, len(s.bounds)+2)
	flags := make([]int, 0, n+2)
	bounds = append(bounds, s.bounds[:i1+1]...)
	flags = append(flags, s.flags[:i1]...)
	if s.bounds[i1] < first {
		flags = append(flags, s.flags[i1])
		bounds = append(bounds, first)
	}
	index := len(flags)
	flags = append(flags, flag)
	bounds = append(bounds, last)
	if last < s.bounds[i2+1] {
		flags = append(flags, s.flags[i2])
		bounds = append(bounds, s.bounds[i2+1:]...)
	} else {
		bounds = append(bounds, s.bounds[i2+2:]...)
	}
	flags = append(flags, s.flags[i2+1:]...)
	s.bounds, s.flags = bounds, flags
	return index, nil
}

// GetIndex returns the index of the range containing v or -1. A value on
// a shared boundary resolves to the range it ends.
func (s *MarkedRangeSet) GetIndex(v float64) int { return s.GetIndexLower(v, false) }

// GetIndexLower returns the index of the range containing v or -1. When
// useLower is set a value on a shared boundary resolves to the range it
// starts, otherwise to the range it ends.
func (s *MarkedRangeSet) GetIndexLower(v float64, useLower bool) int {
	n := len(s.flags)
	if n == 0 || v < s.bounds[0] || v > s.bounds[n] {
		return -1
	}
	upper := s.bounds[1:]
	if useLower {
		i := sort.Search(n, func(j int) bool { return upper[j] > v })
		return min(i, n-1)
	}
	return sort.Search(n, func(j int) bool { return upper[j] >= v })
}

// GetIndices returns the indices of all ranges containing v: two when v is
// a shared boundary, one inside a range and none outside the set.
func (s *MarkedRangeSet) GetIndices(v float64) []int {
	lo := s.GetIndexLower(v, false)
	if lo < 0 {
		return nil
	}
	hi := s.GetIndexLower(v, true)
	if hi != lo {
		return []int{lo, hi}
	}
	return []int{lo}
}

// Flag returns the flag of range i.
func (s *MarkedRangeSet) Flag(i int) (int, error) {
	if i < 0 || i >= len(s.flags) {
		return 0, occt.IndexError(i, len(s.flags))
	}
	return s.flags[i], nil
}

// MustFlag is Flag that panics on a bad index.
func (s *MarkedRangeSet) MustFlag(i int) int {
	f, err := s.Flag(i)
	if err != nil {
		panic(err)
	}
	return f
}

// SetFlag sets the flag of range i.
func (s *MarkedRangeSet) SetFlag(i, flag int) error {
	if i < 0 || i >= len(s.flags) {
		return occt.IndexError(i, len(s.flags))
	}
	s.flags[i] = flag
	return nil
}

// Range returns the bounds of range i.
func (s *MarkedRangeSet) Range(i int) (Range, error) {
	if i < 0 || i >= len(s.flags) {
		return Range{}, occt.IndexError(i, len(s.flags))
	}
	return Range{First: s.bounds[i], Last: s.bounds[i+1]}, nil
}

// MustRange is Range that panics on a bad index.
func (s *MarkedRangeSet) MustRange(i int) Range {
	r, err := s.Range(i)
	if err != nil {
		panic(err)
	}
	return r
}

// Ranges returns the ranges flagged flag in increasing order, merging
// neighbours.
func (s *MarkedRangeSet) Ranges(flag int) []Range {
	var out []Range
	for i, f := range s.flags {
		if f != flag {
			continue
		}
		if len(out) > 0 && out[len(out)-1].Last == s.bounds[i] {
			out[len(out)-1].Last = s.bounds[i+1]
			continue
		}
		out = append(out, Range{First: s.bounds[i], Last: s.bounds[i+1]})
	}
	return out
}
