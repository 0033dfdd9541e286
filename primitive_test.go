package gxm

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestPrimitiveType_Topology(t *testing.T) {
	tests := []struct {
		prim   PrimitiveType
		want   gputypes.PrimitiveTopology
		wantOK bool
	}{
		{PrimitiveTriangles, gputypes.PrimitiveTopologyTriangleList, true},
		{PrimitiveLines, gputypes.PrimitiveTopologyLineList, true},
		{PrimitivePoints, gputypes.PrimitiveTopologyPointList, true},
		{PrimitiveTriangleStrip, gputypes.PrimitiveTopologyTriangleStrip, true},
		{PrimitiveTriangleEdges, gputypes.PrimitiveTopologyLineList, true},
		{PrimitiveTriangleFan, gputypes.PrimitiveTopologyTriangleList, false},
	}
	for _, tt := range tests {
		t.Run(tt.prim.String(), func(t *testing.T) {
			got, ok := tt.prim.Topology()
			if ok != tt.wantOK {
				t.Fatalf("Topology() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Topology() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrimitiveType_PrimitiveCount(t *testing.T) {
	tests := []struct {
		prim  PrimitiveType
		count uint32
		want  uint32
	}{
		{PrimitiveTriangles, 7, 2},
		{PrimitiveLines, 5, 2},
		{PrimitivePoints, 5, 5},
		{PrimitiveTriangleStrip, 5, 3},
		{PrimitiveTriangleFan, 2, 0},
		{PrimitiveTriangleFan, 6, 4},
		{PrimitiveTriangleEdges, 6, 6},
		{PrimitiveType(50), 6, 0},
	}
	for _, tt := range tests {
		if got := tt.prim.PrimitiveCount(tt.count); got != tt.want {
			t.Errorf("%s.PrimitiveCount(%d) = %d, want %d", tt.prim, tt.count, got, tt.want)
		}
	}
}

func TestIndexFormat(t *testing.T) {
	if got := IndexFormatU16.Size(); got != 2 {
		t.Errorf("U16 size = %d, want 2", got)
	}
	if got := IndexFormatU32.Size(); got != 4 {
		t.Errorf("U32 size = %d, want 4", got)
	}
	if got := IndexFormat(7).Size(); got != 0 {
		t.Errorf("unknown size = %d, want 0", got)
	}
	if got := IndexFormatU32.GPU(); got != gputypes.IndexFormatUint32 {
		t.Errorf("GPU() = %v, want Uint32", got)
	}
}
