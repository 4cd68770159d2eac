package intools

import (
	"io"
	"log/slog"
	"math"

	occt "github.com/Open-Cascade-SAS/OCCT-sub040"
	"github.com/Open-Cascade-SAS/OCCT-sub040/topo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// EdgeFace error status codes.
const (
	StatusOK          = 0
	StatusNotStarted  = 1
	StatusInvalidEdge = 2
	StatusInvalidFace = 3
	StatusBeanFailed  = 4
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// EdgeFace computes the common parts of an edge and a face. Configure it
// with the setters, call Perform and read CommonParts when IsDone.
type EdgeFace struct {
	edge     *topo.Edge
	face     *topo.Face
	rng      Range
	rangeSet bool
	ctx      *Context
	fuzzy    float64
	quick    bool
	log      *slog.Logger

	criteria  float64
	done      bool
	errStatus int
	parts     []CommonPrt
	minDist   float64
}

// NewEdgeFace returns an intersector of e and f over the whole edge.
func NewEdgeFace(e *topo.Edge, f *topo.Face) *EdgeFace {
	return &EdgeFace{
		edge:      e,
		face:      f,
		fuzzy:     occt.Confusion,
		log:       discardLogger,
		errStatus: StatusNotStarted,
		minDist:   occt.Infinite,
	}
}

// SetEdge sets the edge to intersect.
func (ef *EdgeFace) SetEdge(e *topo.Edge) { ef.edge = e }

// SetFace sets the face to intersect.
func (ef *EdgeFace) SetFace(f *topo.Face) { ef.face = f }

// SetRange restricts the intersection to [first, last] of the edge.
func (ef *EdgeFace) SetRange(first, last float64) {
	ef.rng = Range{First: first, Last: last}
	ef.rangeSet = true
}

// Range returns the edge range intersected.
func (ef *EdgeFace) Range() Range {
	if !ef.rangeSet && ef.edge != nil {
		return Range{First: ef.edge.First, Last: ef.edge.Last}
	}
	return ef.rng
}

// SetContext shares the face caches of ctx.
func (ef *EdgeFace) SetContext(ctx *Context) { ef.ctx = ctx }

// Context returns the context in use, creating one if needed.
func (ef *EdgeFace) Context() *Context {
	if ef.ctx == nil {
		ef.ctx = NewContext()
	}
	return ef.ctx
}

// SetFuzzyValue sets the extra distance under which the shapes touch.
func (ef *EdgeFace) SetFuzzyValue(fuzz float64) { ef.fuzzy = math.Max(fuzz, occt.Confusion) }

// FuzzyValue returns the fuzzy value, never below occt.Confusion.
func (ef *EdgeFace) FuzzyValue() float64 { return ef.fuzzy }

// UseQuickCoincidenceCheck enables checking full coincidence before the
// general algorithm.
func (ef *EdgeFace) UseQuickCoincidenceCheck(use bool) { ef.quick = use }

// IsCoincidenceCheckedQuickly reports the quick coincidence setting.
func (ef *EdgeFace) IsCoincidenceCheckedQuickly() bool { return ef.quick }

// SetLogger directs debug records to l. A nil l discards them.
func (ef *EdgeFace) SetLogger(l *slog.Logger) {
	if l == nil {
		l = discardLogger
	}
	ef.log = l
}

// IsDone reports whether the last Perform succeeded.
func (ef *EdgeFace) IsDone() bool { return ef.done }

// ErrorStatus returns StatusOK after a successful Perform, StatusNotStarted
// before any, and a failure code otherwise.
func (ef *EdgeFace) ErrorStatus() int { return ef.errStatus }

// CommonParts returns the parts found by Perform.
func (ef *EdgeFace) CommonParts() []CommonPrt { return ef.parts }

// MinimalDistance returns the smallest distance found between the edge and
// the face, occt.Infinite when the shapes are far apart.
func (ef *EdgeFace) MinimalDistance() float64 { return ef.minDist }

// Criteria returns the distance under which the edge is on the face.
func (ef *EdgeFace) Criteria() float64 { return ef.criteria }

func (ef *EdgeFace) fail(status int, msg string) {
	ef.errStatus = status
	ef.log.Debug("edge/face failed", slog.Int("status", status), slog.String("reason", msg))
}

// Perform computes the common parts.
func (ef *EdgeFace) Perform() {
	ef.done = false
	ef.parts = nil
	ef.minDist = occt.Infinite
	ef.errStatus = StatusOK
	if ef.edge == nil || ef.edge.Degenerated {
		ef.fail(StatusInvalidEdge, "missing or degenerated edge")
		return
	}
	if ef.face == nil {
		ef.fail(StatusInvalidFace, "missing face")
		return
	}
	rng := ef.Range()
	ptol := ef.edge.Resolution(occt.Confusion)
	if !(rng.First < rng.Last) || rng.First < ef.edge.First-ptol || rng.Last > ef.edge.Last+ptol {
		ef.fail(StatusInvalidFace, "range not inside edge")
		return
	}
	ef.criteria = ef.edge.Tolerance + ef.face.Tolerance + ef.fuzzy

	if ef.quick && ef.IsCoincident() {
		ef.log.Debug("edge/face quick coincidence", slog.Any("range", rng))
		ef.parts = []CommonPrt{{Edge: ef.edge, Type: TypeEdge, Range1: rng, AllNullFlag: true}}
		ef.minDist = 0
		ef.done = true
		return
	}

	bean := NewBeanFaceIntersector(ef.Context(), ef.edge, ef.face)
	bean.SetRange(rng)
	bean.SetCriteria(ef.criteria)
	if err := bean.Perform(); err != nil {
		ef.fail(StatusBeanFailed, err.Error())
		return
	}
	if d := bean.MinimalSquareDistance(); !math.IsInf(d, 1) {
		ef.minDist = math.Sqrt(d)
	}
	res := bean.Result()
	ef.log.Debug("edge/face bean ranges", slog.Int("count", len(res)), slog.Float64("mindist", ef.minDist))
	for _, r := range res {
		cp := CommonPrt{Edge: ef.edge, Range1: r}
		if r.First == r.Last {
			cp.Type = TypeVertex
			cp.VertexParameter1 = r.First
		} else {
			cp.AllNullFlag = ef.allNull(r)
			ef.MakeType(&cp)
		}
		if cp.Type == TypeVertex {
			if t, ok := ef.CheckTouchVertex(cp); ok {
				cp.VertexParameter1 = t
			}
		}
		ef.parts = append(ef.parts, cp)
	}
	ef.done = true
}

// allNull reports whether the distance stays flat and within criteria
// over r. Ranges crossing the face rise to the criteria at their ends.
func (ef *EdgeFace) allNull(r Range) bool {
	shift := 0.01 * r.Length()
	dmin, dmax := math.Inf(1), 0.0
	for _, t := range floats.Span(make([]float64, 5), r.First+shift, r.Last-shift) {
		d, ok := ef.faceDistance(t)
		if !ok {
			return false
		}
		dmin, dmax = math.Min(dmin, d), math.Max(dmax, d)
	}
	return dmax <= ef.criteria && dmax-dmin <= 0.5*ef.criteria
}

// MakeType sets the type of cp. Parts flagged AllNullFlag and parts
// spanning the whole range far enough from a point are edges, the rest are
// vertices at the touch parameter or the range middle.
func (ef *EdgeFace) MakeType(cp *CommonPrt) {
	if cp.AllNullFlag {
		cp.Type = TypeEdge
		return
	}
	c := ef.edge.Curve
	r := cp.Range1
	pf, pl := c.Value(r.First), c.Value(r.Last)
	res := ef.edge.Resolution(ef.criteria)
	rng := ef.Range()
	whole := math.Abs(r.First-rng.First) < res && math.Abs(r.Last-rng.Last) < res
	if whole {
		chord := r3.Norm(r3.Sub(pl, pf))
		if chord > 2*ef.criteria || r3.Norm(r3.Sub(c.Value(r.Mid()), pf)) > 2*ef.criteria {
			cp.Type = TypeEdge
			return
		}
	}
	tm, ok := ef.CheckTouch(*cp)
	if !ok {
		tm = r.Mid()
	}
	cp.Type = TypeVertex
	cp.VertexParameter1 = tm
}

// CheckTouch searches cp's range for the closest approach of the edge to
// the face and reports it when it is within the criteria.
func (ef *EdgeFace) CheckTouch(cp CommonPrt) (float64, bool) {
	r := cp.Range1
	ptol := max(0.01*ef.edge.Resolution(ef.criteria), occt.PConfusion)
	f := func(t float64) float64 {
		d, ok := ef.faceDistance(t)
		if !ok {
			return math.Inf(1)
		}
		return d
	}
	t, d := goldenMin(f, r.First, r.Last, ptol)
	if d > ef.criteria {
		return 0, false
	}
	if t-r.First < ptol {
		t = r.First
	} else if r.Last-t < ptol {
		t = r.Last
	}
	return t, true
}

// CheckTouchVertex reports an end vertex of the edge inside cp's range
// lying on the face within the vertex and face tolerances.
func (ef *EdgeFace) CheckTouchVertex(cp CommonPrt) (float64, bool) {
	e := ef.edge
	ptol := e.Resolution(ef.criteria)
	ends := [2]struct {
		t float64
		v topo.Vertex
	}{{e.First, e.V1}, {e.Last, e.V2}}
	for _, end := range ends {
		if !cp.Range1.Contains(end.t, ptol) {
			continue
		}
		tol := end.v.Tolerance + ef.face.Tolerance + ef.fuzzy
		if ef.Context().IsValidPointForFace(end.v.Point, ef.face, tol) {
			return end.t, true
		}
	}
	return 0, false
}

// IsProjectable reports whether the edge point at t projects on the face.
func (ef *EdgeFace) IsProjectable(t float64) bool {
	_, st, ok := ef.Context().ProjectPointOnFace(ef.face, ef.edge.Value(t))
	return ok && st != topo.Out
}

// DistanceFunction returns the distance from the edge point at t to the
// face surface.
func (ef *EdgeFace) DistanceFunction(t float64) (float64, bool) {
	pr, ok := ef.Context().ProjectPointOnSurface(ef.face, ef.edge.Value(t))
	if !ok {
		return 0, false
	}
	return pr.Distance, true
}

// faceDistance is DistanceFunction restricted to projectable points.
func (ef *EdgeFace) faceDistance(t float64) (float64, bool) {
	pr, st, ok := ef.Context().ProjectPointOnFace(ef.face, ef.edge.Value(t))
	if !ok || st == topo.Out {
		return 0, false
	}
	return pr.Distance, true
}

// IsCoincident reports whether the edge lies on the face over its range.
// A cheap check of the range ends and quarter points comes first, then
// samples inside the range are counted.
func (ef *EdgeFace) IsCoincident() bool {
	if ef.edge == nil || ef.face == nil {
		return false
	}
	ef.criteria = ef.edge.Tolerance + ef.face.Tolerance + ef.fuzzy
	r := ef.Range()
	for _, t := range []float64{r.First, r.Last} {
		if d, ok := ef.faceDistance(t); !ok || d > ef.criteria {
			return false
		}
	}
	for _, k := range []float64{0.25, 0.5, 0.75} {
		if !ef.IsProjectable(r.First + k*r.Length()) {
			return false
		}
	}

	nbSeg := 23
	if _, isLine := ef.edge.Curve.(*occt.Line); isLine {
		if _, isPlane := ef.face.Surface.(*occt.Plane); isPlane {
			nbSeg = 2
		}
	}
	shift := 0.01 * r.Length()
	cnt := 0
	for _, t := range floats.Span(make([]float64, nbSeg+1), r.First+shift, r.Last-shift) {
		d, ok := ef.faceDistance(t)
		if !ok {
			continue
		}
		if d > 100*ef.criteria {
			return false
		}
		if d <= ef.criteria {
			cnt++
		}
	}
	return float64(cnt)/float64(nbSeg+1) > 0.5
}
