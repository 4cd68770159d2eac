package intools

import (
	"errors"
	"fmt"
	"math"
	"sort"

	occt "github.com/Open-Cascade-SAS/OCCT-sub040"
	"github.com/Open-Cascade-SAS/OCCT-sub040/topo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrProjection is returned by BeanFaceIntersector.Perform when edge points
// could not be projected on the face surface.
var ErrProjection = errors.New("edge point projection failed")

// Range flags of the bean/face bookkeeping.
const (
	flagUnknown = iota
	flagOut
	flagIn
)

const (
	// beanMaxLevel bounds the curve bisection depth.
	beanMaxLevel = 10
	// beanSplitLevel is the curve depth at which surviving surface cells
	// are subdivided once.
	beanSplitLevel = 3
	// beanRefineSamples is the number of distance samples per candidate range.
	beanRefineSamples = 16
)

// BeanFaceIntersector finds the parameter ranges of an edge lying within a
// criteria distance of a face. Parts of the curve whose bounding box misses
// every surface cell are discarded, the remaining ranges are resolved by
// sampling the distance to the face.
type BeanFaceIntersector struct {
	ctx      *Context
	edge     *topo.Edge
	face     *topo.Face
	rng      Range
	criteria float64

	ranges    MarkedRangeSet
	out       *SurfaceRangeLocalizeData
	touches   []float64
	minSqDist float64
	failed    int
	done      bool
}

// NewBeanFaceIntersector returns an intersector of e and f over the whole
// edge with criteria the sum of both tolerances. A nil ctx gets a new one.
func NewBeanFaceIntersector(ctx *Context, e *topo.Edge, f *topo.Face) *BeanFaceIntersector {
	if ctx == nil {
		ctx = NewContext()
	}
	return &BeanFaceIntersector{
		ctx:       ctx,
		edge:      e,
		face:      f,
		rng:       Range{First: e.First, Last: e.Last},
		criteria:  e.Tolerance + f.Tolerance,
		minSqDist: math.Inf(1),
	}
}

// SetRange restricts the search to r of the edge.
func (b *BeanFaceIntersector) SetRange(r Range) {
	b.rng = r
	b.out = nil
}

// SetCriteria sets the distance under which the edge is on the face.
func (b *BeanFaceIntersector) SetCriteria(c float64) {
	b.criteria = c
	b.out = nil
}

// Criteria returns the on-face distance.
func (b *BeanFaceIntersector) Criteria() float64 { return b.criteria }

// IsDone reports whether the last Perform succeeded.
func (b *BeanFaceIntersector) IsDone() bool { return b.done }

// MinimalSquareDistance returns the smallest square distance from a
// sampled edge point to the face, +Inf when no sample reached the face.
func (b *BeanFaceIntersector) MinimalSquareDistance() float64 { return b.minSqDist }

// Perform localizes the edge ranges lying on the face.
func (b *BeanFaceIntersector) Perform() error {
	b.done = false
	b.touches = b.touches[:0]
	b.minSqDist = math.Inf(1)
	b.failed = 0
	if err := b.ranges.SetBoundaries(b.rng.First, b.rng.Last, flagUnknown); err != nil {
		return fmt.Errorf("bean range: %w", err)
	}
	data := b.ctx.SurfaceData(b.face)
	if b.out == nil {
		b.out = NewLocalizeData(data.Config())
	}
	cfg := data.Config()
	cells := SurfaceRangeSample{}.Children(cfg.NbSampleU, cfg.NbSampleV)
	var candidates []Range
	b.localize(b.rng, cells, 0, data, &candidates)
	for _, r := range mergeRanges(candidates) {
		b.refine(r)
	}
	if b.failed > 0 {
		return fmt.Errorf("%w: %d samples", ErrProjection, b.failed)
	}
	b.done = true
	return nil
}

// Result returns the ranges on the face followed by the isolated touch
// parameters as zero length ranges, ordered by First. On a closed edge a
// part ending at the seam is the same contact as one starting there and
// only the starting one is kept.
func (b *BeanFaceIntersector) Result() []Range {
	res := b.ranges.Ranges(flagIn)
	in := len(res)
	for _, t := range b.touches {
		covered := false
		for _, r := range res[:in] {
			if r.Contains(t, 0) {
				covered = true
				break
			}
		}
		if !covered {
			res = append(res, Range{First: t, Last: t})
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].First < res[j].First })
	if n := len(res); n > 1 && b.closed() {
		ptol := b.ptol()
		if res[0].First-b.rng.First <= ptol && b.rng.Last-res[n-1].Last <= ptol {
			res = res[:n-1]
		}
	}
	return res
}

// closed reports whether the searched range is the whole edge and the edge
// ends meet within criteria.
func (b *BeanFaceIntersector) closed() bool {
	ptol := b.ptol()
	if math.Abs(b.rng.First-b.edge.First) > ptol || math.Abs(b.rng.Last-b.edge.Last) > ptol {
		return false
	}
	return r3.Norm(r3.Sub(b.edge.Value(b.rng.First), b.edge.Value(b.rng.Last))) <= b.criteria
}

// ptol is the parameter step under which two edge parameters coincide.
func (b *BeanFaceIntersector) ptol() float64 {
	return max(0.01*b.edge.Resolution(b.criteria), occt.PConfusion)
}

func (b *BeanFaceIntersector) localize(r Range, cells []SurfaceRangeSample, level int, data *SurfaceRangeLocalizeData, cand *[]Range) {
	cb := occt.CurveBox(b.edge.Curve, r.First, r.Last, 8)
	cb.Enlarge(cb.Gap() + b.criteria)
	var alive []SurfaceRangeSample
	for _, c := range cells {
		if b.out.IsRangeOut(c) {
			continue
		}
		if b.cellBox(data, c).IsOut(cb) {
			if level == 0 {
				b.out.AddOutRange(c)
			}
			continue
		}
		alive = append(alive, c)
	}
	if len(alive) == 0 {
		b.ranges.InsertRange(r.First, r.Last, flagOut)
		return
	}
	if level >= beanMaxLevel || r.Length() <= b.edge.Resolution(b.criteria) {
		*cand = append(*cand, r)
		return
	}
	if level == beanSplitLevel {
		alive = b.split(alive, data.Config())
	}
	mid := r.Mid()
	b.localize(Range{First: r.First, Last: mid}, alive, level+1, data, cand)
	b.localize(Range{First: mid, Last: r.Last}, alive, level+1, data, cand)
}

// split replaces top level cells wider than the minimum ranges by their
// children.
func (b *BeanFaceIntersector) split(cells []SurfaceRangeSample, cfg LocalizeConfig) []SurfaceRangeSample {
	d := b.face.Domain
	var out []SurfaceRangeSample
	for _, c := range cells {
		ur := c.RangeU(d.UMin, d.UMax, cfg.NbSampleU)
		vr := c.RangeV(d.VMin, d.VMax, cfg.NbSampleV)
		if c.DepthU > 1 || ur.Length() <= cfg.MinRangeU || vr.Length() <= cfg.MinRangeV {
			out = append(out, c)
			continue
		}
		out = append(out, c.Children(cfg.NbSampleU, cfg.NbSampleV)...)
	}
	return out
}

func (b *BeanFaceIntersector) cellBox(data *SurfaceRangeLocalizeData, c SurfaceRangeSample) occt.Box {
	if bx, ok := data.FindBox(c); ok {
		return bx
	}
	cfg := data.Config()
	d := b.face.Domain
	ur := c.RangeU(d.UMin, d.UMax, cfg.NbSampleU)
	vr := c.RangeV(d.VMin, d.VMax, cfg.NbSampleV)
	bx := occt.SurfaceBox(b.face.Surface, ur.First, ur.Last, vr.First, vr.Last, 2, 2)
	bx.Enlarge(bx.Gap() + b.face.Tolerance)
	data.AddBox(c, bx)
	return bx
}

// sample returns the distance from the edge point at t to the face surface
// and whether that point is on the face.
func (b *BeanFaceIntersector) sample(t float64) (float64, bool) {
	pr, st, ok := b.ctx.ProjectPointOnFace(b.face, b.edge.Value(t))
	if !ok {
		b.failed++
		return math.Inf(1), false
	}
	if st != topo.Out {
		b.minSqDist = math.Min(b.minSqDist, pr.Distance*pr.Distance)
	}
	return pr.Distance, st != topo.Out && pr.Distance <= b.criteria
}

func (b *BeanFaceIntersector) refine(r Range) {
	b.ranges.InsertRange(r.First, r.Last, flagOut)
	n := beanRefineSamples
	ts := floats.Span(make([]float64, n+1), r.First, r.Last)
	ts[0], ts[n] = r.First, r.Last
	ds := make([]float64, n+1)
	in := make([]bool, n+1)
	for i, t := range ts {
		ds[i], in[i] = b.sample(t)
	}
	ptol := b.ptol()
	start := ts[0]
	for i := 1; i <= n; i++ {
		switch {
		case in[i] && !in[i-1]:
			start = b.transition(ts[i-1], ts[i], false, ptol)
		case !in[i] && in[i-1]:
			b.addIn(start, b.transition(ts[i-1], ts[i], true, ptol), ptol)
		}
	}
	if in[n] {
		b.addIn(start, ts[n], ptol)
	}

	// Local minima of the distance between off-face samples may still
	// reach the face.
	dist := func(t float64) float64 {
		d, _ := b.sample(t)
		return d
	}
	for i := 0; i <= n; i++ {
		if in[i] || (i > 0 && in[i-1]) || (i < n && in[i+1]) {
			continue
		}
		if (i > 0 && ds[i] > ds[i-1]) || (i < n && ds[i] > ds[i+1]) {
			continue
		}
		t, _ := goldenMin(dist, ts[max(i-1, 0)], ts[min(i+1, n)], ptol)
		if _, ok := b.sample(t); ok {
			b.touches = append(b.touches, t)
		}
	}
}

// transition bisects [a, c] for the parameter where the on-face state
// changes. inA is the state at a.
func (b *BeanFaceIntersector) transition(a, c float64, inA bool, ptol float64) float64 {
	for i := 0; i < 64 && c-a > ptol; i++ {
		m := 0.5 * (a + c)
		if _, in := b.sample(m); in == inA {
			a = m
		} else {
			c = m
		}
	}
	return 0.5 * (a + c)
}

func (b *BeanFaceIntersector) addIn(first, last, ptol float64) {
	if last-first <= ptol {
		b.touches = append(b.touches, 0.5*(first+last))
		return
	}
	b.ranges.InsertRange(first, last, flagIn)
}

// mergeRanges joins consecutive ranges sharing an end.
func mergeRanges(rs []Range) []Range {
	var out []Range
	for _, r := range rs {
		if len(out) > 0 && out[len(out)-1].Last == r.First {
			out[len(out)-1].Last = r.Last
			continue
		}
		out = append(out, r)
	}
	return out
}
