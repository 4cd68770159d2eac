package intools

import "math"

// SurfaceRangeSample addresses one cell of a recursive subdivision of a
// parameter rectangle. At depth d a direction sampled nb times is cut into
// nb^d cells and Index picks one of them. Depth 0 is the whole direction.
type SurfaceRangeSample struct {
	IndexU, DepthU int
	IndexV, DepthV int
}

// RangeU returns the U interval of the cell inside [first, last].
func (s SurfaceRangeSample) RangeU(first, last float64, nbSample int) Range {
	return sampleRange(s.IndexU, s.DepthU, first, last, nbSample)
}

// RangeV returns the V interval of the cell inside [first, last].
func (s SurfaceRangeSample) RangeV(first, last float64, nbSample int) Range {
	return sampleRange(s.IndexV, s.DepthV, first, last, nbSample)
}

// IsEqual reports whether both samples address the same cell.
func (s SurfaceRangeSample) IsEqual(o SurfaceRangeSample) bool { return s == o }

// Children returns the nbU*nbV cells one level deeper that tile s.
func (s SurfaceRangeSample) Children(nbU, nbV int) []SurfaceRangeSample {
	out := make([]SurfaceRangeSample, 0, nbU*nbV)
	for i := 0; i < nbU; i++ {
		for j := 0; j < nbV; j++ {
			out = append(out, SurfaceRangeSample{
				IndexU: s.IndexU*nbU + i, DepthU: s.DepthU + 1,
				IndexV: s.IndexV*nbV + j, DepthV: s.DepthV + 1,
			})
		}
	}
	return out
}

func sampleRange(index, depth int, first, last float64, nb int) Range {
	if depth <= 0 || nb < 1 {
		return Range{First: first, Last: last}
	}
	step := (last - first) / math.Pow(float64(nb), float64(depth))
	a := first + float64(index)*step
	b := a + step
	if b > last {
		b = last
	}
	return Range{First: a, Last: b}
}
