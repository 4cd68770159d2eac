package intools

import (
	"math"

	occt "github.com/Open-Cascade-SAS/OCCT-sub040"
	"github.com/Open-Cascade-SAS/OCCT-sub040/extrema"
	"github.com/Open-Cascade-SAS/OCCT-sub040/extrema/ps"
	"github.com/Open-Cascade-SAS/OCCT-sub040/topo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Context caches per face data reused by successive edge/face
// intersections: the point projector, the sampled grid and the cell boxes.
// It is not safe for concurrent use.
type Context struct {
	cfg   LocalizeConfig
	faces map[*topo.Face]*faceData
}

type faceData struct {
	proj     ps.Evaluator
	localize *SurfaceRangeLocalizeData
}

// Projection is the closest point of a surface to a query point.
type Projection struct {
	UV       r2.Vec
	Point    r3.Vec
	Distance float64
}

// NewContext returns a context sampling faces with the default
// localize configuration.
func NewContext() *Context { return NewContextConfig(LocalizeConfig{}) }

// NewContextConfig returns a context sampling faces with cfg.
func NewContextConfig(cfg LocalizeConfig) *Context {
	return &Context{cfg: cfg.withDefaults(), faces: make(map[*topo.Face]*faceData)}
}

func (c *Context) data(f *topo.Face) *faceData {
	fd, ok := c.faces[f]
	if ok {
		return fd
	}
	fd = &faceData{
		proj:     ps.New(f.Surface, f.Domain, ps.Config{}),
		localize: NewLocalizeData(c.cfg),
	}
	d := f.Domain
	us := floats.Span(make([]float64, 4*c.cfg.NbSampleU+1), d.UMin, d.UMax)
	vs := floats.Span(make([]float64, 4*c.cfg.NbSampleV+1), d.VMin, d.VMax)
	if err := fd.localize.SetGrid(SampleGrid(f.Surface, us, vs)); err != nil {
		// Face domains are validated non empty, the grid is well formed.
		panic(err)
	}
	c.faces[f] = fd
	return fd
}

// SurfaceData returns the localize data of f, holding its sample grid and
// the cache of cell boxes.
func (c *Context) SurfaceData(f *topo.Face) *SurfaceRangeLocalizeData {
	return c.data(f).localize
}

// ProjectPointOnSurface returns the point of the face rectangle closest to
// p. When the closest point is not isolated the nearest grid sample is
// returned at the common distance. ok is false when the extrema search
// fails.
func (c *Context) ProjectPointOnSurface(f *topo.Face, p r3.Vec) (Projection, bool) {
	fd := c.data(f)
	res := fd.proj.PerformWithBoundary(p, occt.Confusion, extrema.Min)
	switch res.Status {
	case extrema.StatusOK:
		m, ok := res.Min()
		if !ok {
			return Projection{}, false
		}
		return Projection{UV: m.UV, Point: m.Point, Distance: math.Sqrt(m.SquareDistance)}, true
	case extrema.StatusInfiniteSolutions:
		i, j, ok := fd.localize.NearestGridPoint(p)
		if !ok {
			return Projection{}, false
		}
		g := fd.localize.grid[i][j]
		return Projection{UV: r2.Vec{X: g.U, Y: g.V}, Point: g.Point, Distance: math.Sqrt(res.InfiniteSquareDistance)}, true
	}
	return Projection{}, false
}

// ProjectPointOnFace projects p on f and classifies the projection.
func (c *Context) ProjectPointOnFace(f *topo.Face, p r3.Vec) (Projection, topo.State, bool) {
	pr, ok := c.ProjectPointOnSurface(f, p)
	if !ok {
		return pr, topo.Out, false
	}
	return pr, c.Classify(f, pr.UV), true
}

// Classify returns the state of uv on f using the face tolerance.
func (c *Context) Classify(f *topo.Face, uv r2.Vec) topo.State {
	utol, vtol := f.UVTolerances(f.Tolerance)
	return f.Classify(uv, utol, vtol)
}

// IsValidPointForFace reports whether p lies within tol of f and projects
// inside or on its boundary.
func (c *Context) IsValidPointForFace(p r3.Vec, f *topo.Face, tol float64) bool {
	pr, st, ok := c.ProjectPointOnFace(f, p)
	return ok && st != topo.Out && pr.Distance <= tol
}
