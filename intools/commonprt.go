package intools

import (
	"fmt"

	"github.com/Open-Cascade-SAS/OCCT-sub040/topo"
)

// ShapeType is the kind of a common part.
type ShapeType int

const (
	// TypeVertex is a touch of the edge with the face at a single parameter.
	TypeVertex ShapeType = iota + 1
	// TypeEdge is a part of the edge lying on the face.
	TypeEdge
)

func (t ShapeType) String() string {
	switch t {
	case TypeVertex:
		return "vertex"
	case TypeEdge:
		return "edge"
	}
	return fmt.Sprintf("ShapeType(%d)", int(t))
}

// CommonPrt is a part of an edge shared with a face.
type CommonPrt struct {
	Edge *topo.Edge
	Type ShapeType
	// Range1 is the edge parameter range of the part. For a vertex
	// it is the range the touch was searched on.
	Range1 Range
	// VertexParameter1 is the edge parameter of a vertex part.
	VertexParameter1 float64
	// AllNullFlag is set when every sample of the part lies on the face.
	AllNullFlag bool
}

func (c CommonPrt) String() string {
	if c.Type == TypeVertex {
		return fmt.Sprintf("vertex at %g in %v", c.VertexParameter1, c.Range1)
	}
	return fmt.Sprintf("edge %v", c.Range1)
}
