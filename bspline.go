package occt

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	_ Curve   = (*BSplineCurve)(nil)
	_ Curve   = (*BezierCurve)(nil)
	_ Surface = (*BSplineSurface)(nil)
	_ Surface = (*BezierSurface)(nil)
)

// knotVec is a clamped, nondecreasing knot vector.
type knotVec []float64

// span finds the knot span index of u given n+1 basis functions
// (Piegl & Tiller A2.1).
func (k knotVec) span(n, degree int, u float64) int {
	if u >= k[n+1] {
		return n
	}
	if u <= k[degree] {
		return degree
	}
	low, high := degree, n+1
	mid := (low + high) / 2
	for u < k[mid] || u >= k[mid+1] {
		if u < k[mid] {
			high = mid
		} else {
			low = mid
		}
		mid = (low + high) / 2
	}
	return mid
}

// check validates a clamped knot vector for degree and npoles poles.
func (k knotVec) check(degree, npoles int) error {
	if degree < 1 {
		return ErrMsg("degree must be at least 1")
	}
	if npoles < degree+1 {
		return ErrMsg("not enough poles for degree")
	}
	if len(k) != npoles+degree+1 {
		return ErrMsg("knot count must equal poles+degree+1")
	}
	for i := 1; i < len(k); i++ {
		if k[i] < k[i-1] {
			return ErrMsg("knots must be nondecreasing")
		}
	}
	for i := 1; i <= degree; i++ {
		if k[i] != k[0] || k[len(k)-1-i] != k[len(k)-1] {
			return ErrMsg("knot vector must be clamped")
		}
	}
	if k[len(k)-1]-k[0] <= 0 {
		return ErrMsg("empty knot range")
	}
	return nil
}

// maxInteriorMultiplicity returns the largest multiplicity of an interior knot.
func (k knotVec) maxInteriorMultiplicity(degree int) int {
	m := 0
	first, last := k[0], k[len(k)-1]
	for i := degree + 1; i < len(k)-degree-1; {
		j := i
		for j < len(k) && k[j] == k[i] {
			j++
		}
		if k[i] != first && k[i] != last && j-i > m {
			m = j - i
		}
		i = j
	}
	return m
}

// nbSpans returns the number of non empty knot spans.
func (k knotVec) nbSpans() int {
	n := 0
	for i := 1; i < len(k); i++ {
		if k[i] > k[i-1] {
			n++
		}
	}
	return n
}

func (k knotVec) continuity(degree int) Continuity {
	m := k.maxInteriorMultiplicity(degree)
	if m == 0 {
		return CN
	}
	switch degree - m {
	case 0:
		return C0
	case 1:
		return C1
	case 2:
		return C2
	case 3:
		return C3
	}
	if degree-m < 0 {
		return C0
	}
	return CN
}

// basisDerivs computes the non vanishing basis functions and their
// derivatives up to order nd at u (Piegl & Tiller A2.3).
// ders[k][j] is the k-th derivative of N_{span-degree+j}.
func (k knotVec) basisDerivs(span int, u float64, degree, nd int) [][]float64 {
	p := degree
	ndu := make([][]float64, p+1)
	for i := range ndu {
		ndu[i] = make([]float64, p+1)
	}
	left := make([]float64, p+1)
	right := make([]float64, p+1)
	ndu[0][0] = 1
	for j := 1; j <= p; j++ {
		left[j] = u - k[span+1-j]
		right[j] = k[span+j] - u
		saved := 0.0
		for r := 0; r < j; r++ {
			ndu[j][r] = right[r+1] + left[j-r]
			temp := ndu[r][j-1] / ndu[j][r]
			ndu[r][j] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		ndu[j][j] = saved
	}
	ders := make([][]float64, nd+1)
	for i := range ders {
		ders[i] = make([]float64, p+1)
	}
	for j := 0; j <= p; j++ {
		ders[0][j] = ndu[j][p]
	}
	if nd > p {
		nd = p // higher derivatives vanish.
	}
	a := [2][]float64{make([]float64, p+1), make([]float64, p+1)}
	for r := 0; r <= p; r++ {
		s1, s2 := 0, 1
		a[0][0] = 1
		for kk := 1; kk <= nd; kk++ {
			d := 0.0
			rk := r - kk
			pk := p - kk
			if r >= kk {
				a[s2][0] = a[s1][0] / ndu[pk+1][rk]
				d = a[s2][0] * ndu[rk][pk]
			}
			j1 := 1
			if rk < -1 {
				j1 = -rk
			}
			j2 := p - r
			if r-1 <= pk {
				j2 = kk - 1
			}
			for j := j1; j <= j2; j++ {
				a[s2][j] = (a[s1][j] - a[s1][j-1]) / ndu[pk+1][rk+j]
				d += a[s2][j] * ndu[rk+j][pk]
			}
			if r <= pk {
				a[s2][kk] = -a[s1][kk-1] / ndu[pk+1][r]
				d += a[s2][kk] * ndu[r][pk]
			}
			ders[kk][r] = d
			s1, s2 = s2, s1
		}
	}
	r := float64(p)
	for kk := 1; kk <= nd; kk++ {
		for j := 0; j <= p; j++ {
			ders[kk][j] *= r
		}
		r *= float64(p - kk)
	}
	return ders
}

// BSplineCurve is a non rational B-spline curve with a clamped knot vector.
type BSplineCurve struct {
	degree int
	poles  []r3.Vec
	knots  knotVec
	speed  float64 // upper bound of |C'| from the control polygon.
}

// NewBSplineCurve validates and returns a B-spline curve. knots is the full
// (flat) knot vector, its length must be len(poles)+degree+1.
func NewBSplineCurve(degree int, poles []r3.Vec, knots []float64) (*BSplineCurve, error) {
	k := knotVec(append([]float64(nil), knots...))
	if err := k.check(degree, len(poles)); err != nil {
		return nil, err
	}
	c := &BSplineCurve{
		degree: degree,
		poles:  append([]r3.Vec(nil), poles...),
		knots:  k,
	}
	for i := 0; i+1 < len(c.poles); i++ {
		den := k[i+degree+1] - k[i+1]
		if den <= 0 {
			continue
		}
		v := float64(degree) * r3.Norm(r3.Sub(c.poles[i+1], c.poles[i])) / den
		c.speed = math.Max(c.speed, v)
	}
	return c, nil
}

func (c *BSplineCurve) Degree() int      { return c.degree }
func (c *BSplineCurve) Poles() []r3.Vec  { return append([]r3.Vec(nil), c.poles...) }
func (c *BSplineCurve) Knots() []float64 { return append([]float64(nil), c.knots...) }

// NbSpans returns the number of polynomial pieces of the curve.
func (c *BSplineCurve) NbSpans() int { return c.knots.nbSpans() }

func (c *BSplineCurve) derivs(t float64, nd int) []r3.Vec {
	n := len(c.poles) - 1
	t = Clamp(t, c.FirstParameter(), c.LastParameter())
	span := c.knots.span(n, c.degree, t)
	ders := c.knots.basisDerivs(span, t, c.degree, nd)
	out := make([]r3.Vec, nd+1)
	for k := 0; k <= nd; k++ {
		for j := 0; j <= c.degree; j++ {
			out[k] = r3.Add(out[k], r3.Scale(ders[k][j], c.poles[span-c.degree+j]))
		}
	}
	return out
}

func (c *BSplineCurve) Value(t float64) r3.Vec { return c.derivs(t, 0)[0] }

func (c *BSplineCurve) D1(t float64) (p, d1 r3.Vec) {
	d := c.derivs(t, 1)
	return d[0], d[1]
}

func (c *BSplineCurve) D2(t float64) (p, d1, d2 r3.Vec) {
	d := c.derivs(t, 2)
	return d[0], d[1], d[2]
}

func (c *BSplineCurve) FirstParameter() float64 { return c.knots[c.degree] }
func (c *BSplineCurve) LastParameter() float64  { return c.knots[len(c.knots)-c.degree-1] }
func (c *BSplineCurve) Continuity() Continuity  { return c.knots.continuity(c.degree) }
func (c *BSplineCurve) IsPeriodic() bool        { return false }
func (c *BSplineCurve) Period() float64         { return 0 }

func (c *BSplineCurve) Resolution(r3d float64) float64 {
	if c.speed < Confusion {
		return c.LastParameter() - c.FirstParameter()
	}
	return r3d / c.speed
}

// BezierCurve is a polynomial Bezier curve on [0,1].
type BezierCurve struct {
	BSplineCurve
}

// NewBezierCurve returns the Bezier curve with the given poles. At least two
// poles are required.
func NewBezierCurve(poles []r3.Vec) (*BezierCurve, error) {
	if len(poles) < 2 {
		return nil, ErrMsg("bezier curve needs at least 2 poles")
	}
	c, err := NewBSplineCurve(len(poles)-1, poles, bezierKnots(len(poles)-1))
	if err != nil {
		return nil, err
	}
	return &BezierCurve{BSplineCurve: *c}, nil
}

func bezierKnots(degree int) []float64 {
	k := make([]float64, 2*(degree+1))
	for i := degree + 1; i < len(k); i++ {
		k[i] = 1
	}
	return k
}

// BSplineSurface is a non rational tensor product B-spline surface.
// Poles are indexed [u][v].
type BSplineSurface struct {
	degreeU, degreeV int
	poles            [][]r3.Vec
	knotsU, knotsV   knotVec
	speedU, speedV   float64
}

// NewBSplineSurface validates and returns a B-spline surface.
func NewBSplineSurface(degreeU, degreeV int, poles [][]r3.Vec, knotsU, knotsV []float64) (*BSplineSurface, error) {
	if len(poles) == 0 {
		return nil, ErrMsg("no poles")
	}
	nv := len(poles[0])
	cp := make([][]r3.Vec, len(poles))
	for i, row := range poles {
		if len(row) != nv {
			return nil, ErrMsg("ragged pole grid")
		}
		cp[i] = append([]r3.Vec(nil), row...)
	}
	ku := knotVec(append([]float64(nil), knotsU...))
	kv := knotVec(append([]float64(nil), knotsV...))
	if err := ku.check(degreeU, len(poles)); err != nil {
		return nil, err
	}
	if err := kv.check(degreeV, nv); err != nil {
		return nil, err
	}
	s := &BSplineSurface{degreeU: degreeU, degreeV: degreeV, poles: cp, knotsU: ku, knotsV: kv}
	for i := range cp {
		for j := range cp[i] {
			if i+1 < len(cp) {
				if den := ku[i+degreeU+1] - ku[i+1]; den > 0 {
					s.speedU = math.Max(s.speedU, float64(degreeU)*r3.Norm(r3.Sub(cp[i+1][j], cp[i][j]))/den)
				}
			}
			if j+1 < nv {
				if den := kv[j+degreeV+1] - kv[j+1]; den > 0 {
					s.speedV = math.Max(s.speedV, float64(degreeV)*r3.Norm(r3.Sub(cp[i][j+1], cp[i][j]))/den)
				}
			}
		}
	}
	return s, nil
}

func (s *BSplineSurface) DegreeU() int { return s.degreeU }
func (s *BSplineSurface) DegreeV() int { return s.degreeV }

// NbSpans returns the number of polynomial patches in each direction.
func (s *BSplineSurface) NbSpans() (nu, nv int) {
	return s.knotsU.nbSpans(), s.knotsV.nbSpans()
}

// derivs returns S, Su, Sv, Suu, Svv, Suv at (u,v) for up to nd derivatives.
func (s *BSplineSurface) derivs(u, v float64, nd int) (skl [3][3]r3.Vec) {
	umin, umax, vmin, vmax := s.Bounds()
	u = Clamp(u, umin, umax)
	v = Clamp(v, vmin, vmax)
	spanU := s.knotsU.span(len(s.poles)-1, s.degreeU, u)
	spanV := s.knotsV.span(len(s.poles[0])-1, s.degreeV, v)
	nu := s.knotsU.basisDerivs(spanU, u, s.degreeU, nd)
	nv := s.knotsV.basisDerivs(spanV, v, s.degreeV, nd)
	for k := 0; k <= nd; k++ {
		for l := 0; l <= nd-k; l++ {
			var sum r3.Vec
			for i := 0; i <= s.degreeU; i++ {
				var row r3.Vec
				for j := 0; j <= s.degreeV; j++ {
					row = r3.Add(row, r3.Scale(nv[l][j], s.poles[spanU-s.degreeU+i][spanV-s.degreeV+j]))
				}
				sum = r3.Add(sum, r3.Scale(nu[k][i], row))
			}
			skl[k][l] = sum
		}
	}
	return skl
}

func (s *BSplineSurface) Value(u, v float64) r3.Vec { return s.derivs(u, v, 0)[0][0] }

func (s *BSplineSurface) D1(u, v float64) (p, du, dv r3.Vec) {
	d := s.derivs(u, v, 1)
	return d[0][0], d[1][0], d[0][1]
}

func (s *BSplineSurface) D2(u, v float64) (p, du, dv, duu, dvv, duv r3.Vec) {
	d := s.derivs(u, v, 2)
	return d[0][0], d[1][0], d[0][1], d[2][0], d[0][2], d[1][1]
}

func (s *BSplineSurface) Bounds() (umin, umax, vmin, vmax float64) {
	return s.knotsU[s.degreeU], s.knotsU[len(s.knotsU)-s.degreeU-1],
		s.knotsV[s.degreeV], s.knotsV[len(s.knotsV)-s.degreeV-1]
}

func (s *BSplineSurface) Continuity() Continuity {
	return minContinuity(s.knotsU.continuity(s.degreeU), s.knotsV.continuity(s.degreeV))
}

func (s *BSplineSurface) IsUPeriodic() bool { return false }
func (s *BSplineSurface) IsVPeriodic() bool { return false }
func (s *BSplineSurface) UPeriod() float64  { return 0 }
func (s *BSplineSurface) VPeriod() float64  { return 0 }

func (s *BSplineSurface) UResolution(r3d float64) float64 {
	if s.speedU < Confusion {
		umin, umax, _, _ := s.Bounds()
		return umax - umin
	}
	return r3d / s.speedU
}

func (s *BSplineSurface) VResolution(r3d float64) float64 {
	if s.speedV < Confusion {
		_, _, vmin, vmax := s.Bounds()
		return vmax - vmin
	}
	return r3d / s.speedV
}

// BezierSurface is a polynomial tensor product Bezier patch on [0,1]x[0,1].
type BezierSurface struct {
	BSplineSurface
}

// NewBezierSurface returns the Bezier patch with poles indexed [u][v].
func NewBezierSurface(poles [][]r3.Vec) (*BezierSurface, error) {
	if len(poles) < 2 || len(poles[0]) < 2 {
		return nil, ErrMsg("bezier surface needs at least 2x2 poles")
	}
	du, dv := len(poles)-1, len(poles[0])-1
	s, err := NewBSplineSurface(du, dv, poles, bezierKnots(du), bezierKnots(dv))
	if err != nil {
		return nil, err
	}
	return &BezierSurface{BSplineSurface: *s}, nil
}
