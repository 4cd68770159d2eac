package intools

import (
	"fmt"
	"math"
	"sort"

	occt "github.com/Open-Cascade-SAS/OCCT-sub040"
	"github.com/Open-Cascade-SAS/OCCT-sub040/internal/d3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// LocalizeConfig fixes the subdivision used when localizing a curve
// against a surface. Zero fields take defaults.
type LocalizeConfig struct {
	// Cells per direction at each subdivision level.
	NbSampleU, NbSampleV int
	// Cells narrower than these are not split further.
	MinRangeU, MinRangeV float64
}

const defaultNbSample = 10

func (c LocalizeConfig) withDefaults() LocalizeConfig {
	if c.NbSampleU < 1 {
		c.NbSampleU = defaultNbSample
	}
	if c.NbSampleV < 1 {
		c.NbSampleV = defaultNbSample
	}
	return c
}

// GridPoint is a surface sample bundled with its parameters.
type GridPoint struct {
	U, V  float64
	Point r3.Vec
}

// SurfaceRangeLocalizeData memoizes surface cells known to be far from the
// curve being localized, the bounding boxes of cells and a grid of surface
// samples. It is not safe for concurrent use.
type SurfaceRangeLocalizeData struct {
	cfg        LocalizeConfig
	out        map[SurfaceRangeSample]struct{}
	boxes      map[SurfaceRangeSample]occt.Box
	grid       [][]GridPoint // grid[i][j] at (U_i, V_j)
	deflection float64
	tree       *kdtree.Tree

	// frame node indices, inclusive. Empty when lo > hi.
	uLo, uHi, vLo, vHi int
}

// NewSurfaceRangeLocalizeData returns empty localize data with the given
// sampling.
func NewSurfaceRangeLocalizeData(nbSampleU, nbSampleV int, minRangeU, minRangeV float64) *SurfaceRangeLocalizeData {
	return NewLocalizeData(LocalizeConfig{
		NbSampleU: nbSampleU,
		NbSampleV: nbSampleV,
		MinRangeU: minRangeU,
		MinRangeV: minRangeV,
	})
}

// NewLocalizeData returns empty localize data configured by cfg.
func NewLocalizeData(cfg LocalizeConfig) *SurfaceRangeLocalizeData {
	return &SurfaceRangeLocalizeData{
		cfg:   cfg.withDefaults(),
		out:   make(map[SurfaceRangeSample]struct{}),
		boxes: make(map[SurfaceRangeSample]occt.Box),
		uHi:   -1,
		vHi:   -1,
	}
}

func (d *SurfaceRangeLocalizeData) Config() LocalizeConfig { return d.cfg }
func (d *SurfaceRangeLocalizeData) NbSampleU() int         { return d.cfg.NbSampleU }
func (d *SurfaceRangeLocalizeData) NbSampleV() int         { return d.cfg.NbSampleV }
func (d *SurfaceRangeLocalizeData) MinRangeU() float64     { return d.cfg.MinRangeU }
func (d *SurfaceRangeLocalizeData) MinRangeV() float64     { return d.cfg.MinRangeV }

// AddOutRange marks the cell r as holding no intersection. Adding a cell
// twice is a no-op.
func (d *SurfaceRangeLocalizeData) AddOutRange(r SurfaceRangeSample) { d.out[r] = struct{}{} }

// IsRangeOut reports whether r was marked with AddOutRange.
func (d *SurfaceRangeLocalizeData) IsRangeOut(r SurfaceRangeSample) bool {
	_, ok := d.out[r]
	return ok
}

// ListRangeOut returns the marked cells ordered by depth then index.
func (d *SurfaceRangeLocalizeData) ListRangeOut() []SurfaceRangeSample {
	list := make([]SurfaceRangeSample, 0, len(d.out))
	for r := range d.out {
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch {
		case a.DepthU != b.DepthU:
			return a.DepthU < b.DepthU
		case a.DepthV != b.DepthV:
			return a.DepthV < b.DepthV
		case a.IndexU != b.IndexU:
			return a.IndexU < b.IndexU
		}
		return a.IndexV < b.IndexV
	})
	return list
}

// RemoveRangeOutAll forgets every marked cell.
func (d *SurfaceRangeLocalizeData) RemoveRangeOutAll() { clear(d.out) }

// AddBox stores the bounding box of cell r.
func (d *SurfaceRangeLocalizeData) AddBox(r SurfaceRangeSample, b occt.Box) { d.boxes[r] = b }

// FindBox returns the box stored for r by AddBox.
func (d *SurfaceRangeLocalizeData) FindBox(r SurfaceRangeSample) (occt.Box, bool) {
	b, ok := d.boxes[r]
	return b, ok
}

// ClearBoxes forgets every stored box.
func (d *SurfaceRangeLocalizeData) ClearBoxes() { clear(d.boxes) }

// SetGrid stores the surface samples grid[i][j]. Every row must have the
// same length, every node of row i the same U and every node of column j
// the same V, with U and V strictly increasing. The frame is reset to the
// whole grid.
func (d *SurfaceRangeLocalizeData) SetGrid(grid [][]GridPoint) error {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return fmt.Errorf("%w: empty grid", occt.ErrInvalidInput)
	}
	nv := len(grid[0])
	for i, row := range grid {
		if len(row) != nv {
			return fmt.Errorf("%w: grid row %d has %d nodes, want %d", occt.ErrInvalidInput, i, len(row), nv)
		}
		for j, g := range row {
			if g.U != row[0].U || g.V != grid[0][j].V {
				return fmt.Errorf("%w: grid node (%d,%d) parameters (%g,%g) off its row or column", occt.ErrInvalidInput, i, j, g.U, g.V)
			}
		}
		if i > 0 && !(grid[i-1][0].U < row[0].U) {
			return fmt.Errorf("%w: grid U at row %d", ErrNonMonotonic, i)
		}
	}
	for j := 1; j < nv; j++ {
		if !(grid[0][j-1].V < grid[0][j].V) {
			return fmt.Errorf("%w: grid V at column %d", ErrNonMonotonic, j)
		}
	}
	d.grid = make([][]GridPoint, len(grid))
	for i := range grid {
		d.grid[i] = append([]GridPoint(nil), grid[i]...)
	}
	d.uLo, d.uHi = 0, len(grid)-1
	d.vLo, d.vHi = 0, nv-1
	d.tree = nil
	return nil
}

// SampleGrid evaluates s at every pair of us and vs.
func SampleGrid(s occt.Surface, us, vs []float64) [][]GridPoint {
	grid := make([][]GridPoint, len(us))
	for i, u := range us {
		grid[i] = make([]GridPoint, len(vs))
		for j, v := range vs {
			grid[i][j] = GridPoint{U: u, V: v, Point: s.Value(u, v)}
		}
	}
	return grid
}

// ClearGrid drops the grid, its frame and deflection.
func (d *SurfaceRangeLocalizeData) ClearGrid() {
	d.grid = nil
	d.deflection = 0
	d.uLo, d.uHi, d.vLo, d.vHi = 0, -1, 0, -1
	d.tree = nil
}

// NbGridPointsU returns the number of grid nodes along U.
func (d *SurfaceRangeLocalizeData) NbGridPointsU() int { return len(d.grid) }

// NbGridPointsV returns the number of grid nodes along V.
func (d *SurfaceRangeLocalizeData) NbGridPointsV() int {
	if len(d.grid) == 0 {
		return 0
	}
	return len(d.grid[0])
}

// GridPoint returns grid node (i, j).
func (d *SurfaceRangeLocalizeData) GridPoint(i, j int) (GridPoint, error) {
	if i < 0 || i >= len(d.grid) {
		return GridPoint{}, occt.IndexError(i, len(d.grid))
	}
	if j < 0 || j >= len(d.grid[i]) {
		return GridPoint{}, occt.IndexError(j, len(d.grid[i]))
	}
	return d.grid[i][j], nil
}

// SetGridDeflection records the chord deflection the grid was sampled with.
func (d *SurfaceRangeLocalizeData) SetGridDeflection(defl float64) { d.deflection = defl }

// GridDeflection returns the value given to SetGridDeflection.
func (d *SurfaceRangeLocalizeData) GridDeflection() float64 { return d.deflection }

// SetFrame restricts frame accessors to the grid nodes covering
// [umin,umax]x[vmin,vmax], including one node beyond each side when the
// grid has it.
func (d *SurfaceRangeLocalizeData) SetFrame(umin, umax, vmin, vmax float64) {
	nu, nv := d.NbGridPointsU(), d.NbGridPointsV()
	d.uLo, d.uHi = frameIndices(nu, func(i int) float64 { return d.grid[i][0].U }, umin, umax)
	d.vLo, d.vHi = frameIndices(nv, func(j int) float64 { return d.grid[0][j].V }, vmin, vmax)
}

func frameIndices(n int, param func(int) float64, lo, hi float64) (int, int) {
	first := sort.Search(n, func(i int) bool { return param(i) > lo })
	last := sort.Search(n, func(i int) bool { return param(i) >= hi }) - 1
	if first >= n || last < 0 {
		return 0, -1
	}
	return max(first-1, 0), min(last+1, n-1)
}

// NbUPointsInFrame returns the number of frame nodes along U.
func (d *SurfaceRangeLocalizeData) NbUPointsInFrame() int { return max(d.uHi-d.uLo+1, 0) }

// NbVPointsInFrame returns the number of frame nodes along V.
func (d *SurfaceRangeLocalizeData) NbVPointsInFrame() int { return max(d.vHi-d.vLo+1, 0) }

// PointInFrame returns the point of frame node (i, j).
func (d *SurfaceRangeLocalizeData) PointInFrame(i, j int) (r3.Vec, error) {
	g, err := d.inFrame(i, j)
	return g.Point, err
}

// UParamInFrame returns the U of frame column i.
func (d *SurfaceRangeLocalizeData) UParamInFrame(i int) (float64, error) {
	g, err := d.inFrame(i, 0)
	return g.U, err
}

// VParamInFrame returns the V of frame row j.
func (d *SurfaceRangeLocalizeData) VParamInFrame(j int) (float64, error) {
	g, err := d.inFrame(0, j)
	return g.V, err
}

func (d *SurfaceRangeLocalizeData) inFrame(i, j int) (GridPoint, error) {
	if nu := d.NbUPointsInFrame(); i < 0 || i >= nu {
		return GridPoint{}, occt.IndexError(i, nu)
	}
	if nv := d.NbVPointsInFrame(); j < 0 || j >= nv {
		return GridPoint{}, occt.IndexError(j, nv)
	}
	return d.grid[d.uLo+i][d.vLo+j], nil
}

// NearestGridPoint returns the indices of the grid node closest to p.
func (d *SurfaceRangeLocalizeData) NearestGridPoint(p r3.Vec) (i, j int, ok bool) {
	if len(d.grid) == 0 {
		return -1, -1, false
	}
	if d.tree == nil {
		nodes := make(gridNodes, 0, d.NbGridPointsU()*d.NbGridPointsV())
		for i, row := range d.grid {
			for j, g := range row {
				nodes = append(nodes, gridNode{p: g.Point, i: i, j: j})
			}
		}
		d.tree = kdtree.New(nodes, true)
	}
	got, _ := d.tree.Nearest(&gridNode{p: p})
	if got == nil {
		return -1, -1, false
	}
	n := got.(*gridNode)
	return n.i, n.j, true
}

// gridNode is a grid sample indexed by a k-d tree.
type gridNode struct {
	p    r3.Vec
	i, j int
}

func (n *gridNode) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(*gridNode)
	switch d {
	case 0:
		return n.p.X - q.p.X
	case 1:
		return n.p.Y - q.p.Y
	case 2:
		return n.p.Z - q.p.Z
	}
	panic("unreachable")
}

func (n *gridNode) Dims() int { return 3 }

func (n *gridNode) Distance(c kdtree.Comparable) float64 {
	return d3.Dist2(n.p, c.(*gridNode).p)
}

type gridNodes []gridNode

func (g gridNodes) Index(i int) kdtree.Comparable { return &g[i] }
func (g gridNodes) Len() int                      { return len(g) }
func (g gridNodes) Slice(start, end int) kdtree.Interface {
	return g[start:end]
}

func (g gridNodes) Pivot(d kdtree.Dim) int {
	p := gridPlane{dim: d, nodes: g}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Bounds implements kdtree.Bounder.
func (g gridNodes) Bounds() *kdtree.Bounding {
	lo := gridNode{p: r3.Vec{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64}}
	hi := gridNode{p: r3.Vec{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64}}
	for _, n := range g {
		lo.p = d3.MinElem(lo.p, n.p)
		hi.p = d3.MaxElem(hi.p, n.p)
	}
	return &kdtree.Bounding{Min: &lo, Max: &hi}
}

type gridPlane struct {
	dim   kdtree.Dim
	nodes gridNodes
}

func (p gridPlane) Less(i, j int) bool {
	return p.nodes[i].Compare(&p.nodes[j], p.dim) < 0
}
func (p gridPlane) Swap(i, j int) { p.nodes[i], p.nodes[j] = p.nodes[j], p.nodes[i] }
func (p gridPlane) Len() int      { return len(p.nodes) }
func (p gridPlane) Slice(start, end int) kdtree.SortSlicer {
	p.nodes = p.nodes[start:end]
	return p
}
