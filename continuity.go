package occt

// Continuity is the geometric or parametric smoothness of a curve or surface.
type Continuity int

const (
	C0 Continuity = iota
	G1
	C1
	G2
	C2
	C3
	CN
)

func (c Continuity) String() string {
	switch c {
	case C0:
		return "C0"
	case G1:
		return "G1"
	case C1:
		return "C1"
	case G2:
		return "G2"
	case C2:
		return "C2"
	case C3:
		return "C3"
	case CN:
		return "CN"
	}
	return "Continuity(?)"
}

// AtLeast reports whether c is at least as smooth as o.
func (c Continuity) AtLeast(o Continuity) bool { return c >= o }

func minContinuity(a, b Continuity) Continuity {
	if a < b {
		return a
	}
	return b
}
