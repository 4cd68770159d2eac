package topo

import (
	"fmt"

	occt "github.com/Open-Cascade-SAS/OCCT-sub040"
	"github.com/Open-Cascade-SAS/OCCT-sub040/extrema"
	"github.com/Open-Cascade-SAS/OCCT-sub040/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// Face is the part of a surface inside a parameter rectangle, optionally
// trimmed further by an outer loop and holes given as closed UV polygons.
type Face struct {
	Surface   occt.Surface
	Domain    extrema.Domain2D
	Tolerance float64

	outer     d2.Set
	outerBox  d2.Box
	holes     []d2.Set
	holeBoxes []d2.Box
}

// NewFace returns the face of s over the finite rectangle dom.
func NewFace(s occt.Surface, dom extrema.Domain2D, tol float64) (*Face, error) {
	if s == nil {
		return nil, occt.ErrMsg("nil surface")
	}
	if !dom.IsFinite() {
		return nil, fmt.Errorf("%w: face domain must be finite", occt.ErrInvalidInput)
	}
	if dom.UMin >= dom.UMax || dom.VMin >= dom.VMax {
		return nil, fmt.Errorf("%w: empty face domain %+v", occt.ErrInvalidInput, dom)
	}
	if tol < occt.Confusion {
		tol = occt.Confusion
	}
	return &Face{Surface: s, Domain: dom, Tolerance: tol}, nil
}

// SetOuter trims the face to the inside of the closed UV polygon loop.
func (f *Face) SetOuter(loop []r2.Vec) error {
	if len(loop) < 3 {
		return fmt.Errorf("%w: loop needs 3 points, got %d", occt.ErrInvalidInput, len(loop))
	}
	f.outer = append(d2.Set(nil), loop...)
	f.outerBox = d2.BoxOf(f.outer)
	return nil
}

// AddHole removes the inside of the closed UV polygon loop from the face.
func (f *Face) AddHole(loop []r2.Vec) error {
	if len(loop) < 3 {
		return fmt.Errorf("%w: loop needs 3 points, got %d", occt.ErrInvalidInput, len(loop))
	}
	h := append(d2.Set(nil), loop...)
	f.holes = append(f.holes, h)
	f.holeBoxes = append(f.holeBoxes, d2.BoxOf(h))
	return nil
}

// IsTrimmed reports whether the face carries loops besides its rectangle.
func (f *Face) IsTrimmed() bool { return f.outer != nil || len(f.holes) > 0 }

// UVTolerances converts a 3d tolerance into parameter tolerances.
func (f *Face) UVTolerances(tol float64) (utol, vtol float64) {
	return f.Surface.UResolution(tol), f.Surface.VResolution(tol)
}

// Classify returns the state of uv relative to the face. Points within
// (utol, vtol) of a boundary are On. Rectangle sides that are periodic seams
// of a full period are not boundaries.
func (f *Face) Classify(uv r2.Vec, utol, vtol float64) State {
	s := f.Surface
	d := f.Domain
	uSeam := s.IsUPeriodic() && d.U().Length() >= s.UPeriod()-utol
	vSeam := s.IsVPeriodic() && d.V().Length() >= s.VPeriod()-vtol
	if s.IsUPeriodic() {
		uv.X = occt.InPeriod(uv.X, d.UMin, s.UPeriod())
		if !uSeam && uv.X > d.UMax+utol && d.UMin+s.UPeriod()-uv.X <= utol {
			uv.X = d.UMin
		}
	}
	if s.IsVPeriodic() {
		uv.Y = occt.InPeriod(uv.Y, d.VMin, s.VPeriod())
		if !vSeam && uv.Y > d.VMax+vtol && d.VMin+s.VPeriod()-uv.Y <= vtol {
			uv.Y = d.VMin
		}
	}
	if !uSeam && !d.U().Contains(uv.X, utol) {
		return Out
	}
	if !vSeam && !d.V().Contains(uv.Y, vtol) {
		return Out
	}
	on := false
	if !uSeam && (uv.X-d.UMin <= utol || d.UMax-uv.X <= utol) {
		on = true
	}
	if !vSeam && (uv.Y-d.VMin <= vtol || d.VMax-uv.Y <= vtol) {
		on = true
	}
	// loops are polygons in UV; their tolerance is the larger parametric one.
	ptol := max(utol, vtol)
	if f.outer != nil {
		if !f.outerBox.Enlarge(ptol).Contains(uv) {
			return Out
		}
		if d2.DistToPolyline(f.outer, uv) <= ptol {
			return On
		}
		if d2.Winding(f.outer, uv) == 0 {
			return Out
		}
	}
	for i, h := range f.holes {
		if !f.holeBoxes[i].Enlarge(ptol).Contains(uv) {
			continue
		}
		if d2.DistToPolyline(h, uv) <= ptol {
			return On
		}
		if d2.Winding(h, uv) != 0 {
			return Out
		}
	}
	if on {
		return On
	}
	return In
}

// Box returns the bounding box of the untrimmed face rectangle enlarged by
// the face tolerance.
func (f *Face) Box() occt.Box {
	d := f.Domain
	b := occt.SurfaceBox(f.Surface, d.UMin, d.UMax, d.VMin, d.VMax, 16, 16)
	b.Enlarge(b.Gap() + f.Tolerance)
	return b
}
