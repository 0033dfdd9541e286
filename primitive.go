package gxm

import "github.com/gogpu/gputypes"

// PrimitiveType is how a draw assembles indices into primitives.
type PrimitiveType uint8

const (
	PrimitiveTriangles PrimitiveType = iota
	PrimitiveLines
	PrimitivePoints
	PrimitiveTriangleStrip
	PrimitiveTriangleFan
	PrimitiveTriangleEdges
)

var primitiveTypeNames = [...]string{
	PrimitiveTriangles:     "Triangles",
	PrimitiveLines:         "Lines",
	PrimitivePoints:        "Points",
	PrimitiveTriangleStrip: "TriangleStrip",
	PrimitiveTriangleFan:   "TriangleFan",
	PrimitiveTriangleEdges: "TriangleEdges",
}

// String returns the primitive type name.
func (p PrimitiveType) String() string {
	if int(p) < len(primitiveTypeNames) {
		return primitiveTypeNames[p]
	}
	return "Unknown"
}

// Topology returns the GPU topology used to draw p.
// Triangle fans have no GPU equivalent and must be expanded to a triangle
// list by the backend; ok is false for them and for unknown types.
func (p PrimitiveType) Topology() (t gputypes.PrimitiveTopology, ok bool) {
	switch p {
	case PrimitiveTriangles:
		return gputypes.PrimitiveTopologyTriangleList, true
	case PrimitiveLines, PrimitiveTriangleEdges:
		return gputypes.PrimitiveTopologyLineList, true
	case PrimitivePoints:
		return gputypes.PrimitiveTopologyPointList, true
	case PrimitiveTriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip, true
	default:
		return gputypes.PrimitiveTopologyTriangleList, false
	}
}

// PrimitiveCount returns how many primitives count indices assemble into.
func (p PrimitiveType) PrimitiveCount(count uint32) uint32 {
	switch p {
	case PrimitiveTriangles:
		return count / 3
	case PrimitiveLines:
		return count / 2
	case PrimitivePoints:
		return count
	case PrimitiveTriangleStrip, PrimitiveTriangleFan:
		if count < 3 {
			return 0
		}
		return count - 2
	case PrimitiveTriangleEdges:
		// three edges per triangle
		return count / 3 * 3
	default:
		return 0
	}
}

// IndexFormat is the encoding of an index buffer.
type IndexFormat uint8

const (
	IndexFormatU16 IndexFormat = iota
	IndexFormatU32
)

// String returns the index format name.
func (f IndexFormat) String() string {
	return f.GPU().String()
}

// GPU returns the equivalent GPU index format.
func (f IndexFormat) GPU() gputypes.IndexFormat {
	switch f {
	case IndexFormatU16:
		return gputypes.IndexFormatUint16
	case IndexFormatU32:
		return gputypes.IndexFormatUint32
	default:
		return gputypes.IndexFormatUndefined
	}
}

// Size returns the size of one index in bytes, or 0 for unknown formats.
func (f IndexFormat) Size() uint32 {
	return f.GPU().Size()
}
