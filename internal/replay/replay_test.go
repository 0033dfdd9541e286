package replay

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/gxm/command"
	"github.com/gogpu/gxm/config"
	"github.com/gogpu/gxm/guest"
	"github.com/gogpu/gxm/renderer"
)

const sceneTrace = `{
  "memory": [{"addr": 256, "u16": [0, 1, 2, 2, 1, 3]}],
  "protect": [{"addr": 65536, "size": 64, "perm": "none"}],
  "targets": [{"name": "fb", "width": 4, "height": 4, "clear": [255, 0, 0, 255]}],
  "commands": [
    {"op": "SetContext", "target": "fb",
     "color": {"width": 4, "height": 4, "data": 65536},
     "depthStencil": {"depth": 131072}},
    {"op": "Draw", "primitive": "Triangles", "indexFormat": "u16",
     "indices": 256, "count": 6, "instances": 1},
    {"op": "SyncSurfaceData"},
    {"op": "Sync", "sync": true, "surface": {"width": 4, "height": 4, "data": 65536}, "readback": true},
    {"op": "Sync", "sync": true},
    {"op": "Nop", "sync": true}
  ]
}`

func rendererConfig() config.Renderer {
	cfg := config.Default().Renderer
	cfg.QueueCapacity = 2
	return cfg
}

func TestRunScene(t *testing.T) {
	trace, err := Decode(strings.NewReader(sceneTrace))
	require.NoError(t, err)

	mem := guest.NewHeap(1 << 20)
	res, err := Run(context.Background(), mem, trace, rendererConfig())
	require.NoError(t, err)

	assert.Equal(t, renderer.KindSoftware, res.Backend)
	assert.Equal(t, []SyncResult{
		{Step: 3, Op: command.OpSyncSurfaceData, Status: command.StatusSuccess},
		{Step: 4, Op: command.OpSyncSurfaceData, Status: command.StatusNotApplicable},
		{Step: 5, Op: command.OpNop, Status: command.StatusSuccess},
	}, res.Syncs)
	assert.Zero(t, res.Failures)
	assert.Empty(t, res.Missing)

	require.Len(t, res.Draws, 1)
	assert.Equal(t, uint32(2), res.Draws[0].Primitives)
	assert.Equal(t, uint32(3), res.Draws[0].MaxIndex)

	pixels, err := mem.Bytes(0x10000, 4*4*4)
	require.NoError(t, err)
	assert.Equal(t, res.Targets["fb"].Data(), pixels)
	assert.Equal(t, []byte{255, 0, 0, 255}, pixels[:4])

	require.Len(t, res.Regions, 1)
	assert.Equal(t, 1, res.Regions[0].Refs)
}

func TestRunWithoutBackend(t *testing.T) {
	trace, err := Decode(strings.NewReader(sceneTrace))
	require.NoError(t, err)

	cfg := rendererConfig()
	cfg.Backend = string(renderer.KindNone)
	res, err := Run(context.Background(), guest.NewHeap(1<<20), trace, cfg)
	require.NoError(t, err)

	assert.Equal(t, renderer.KindNone, res.Backend)
	assert.ElementsMatch(t, []string{"none/bindContext", "none/draw", "none/pullSurfaceData"}, res.Missing)
	assert.Empty(t, res.Targets)
	assert.Len(t, res.Syncs, 3)
}

func TestRunSyncDisabled(t *testing.T) {
	trace, err := Decode(strings.NewReader(sceneTrace))
	require.NoError(t, err)

	cfg := rendererConfig()
	cfg.DisableSurfaceSync = true
	mem := guest.NewHeap(1 << 20)
	res, err := Run(context.Background(), mem, trace, cfg)
	require.NoError(t, err)

	// Null surfaces still short-circuit before the global switch.
	assert.Equal(t, command.StatusSuccess, res.Syncs[0].Status)
	assert.Equal(t, command.StatusNotApplicable, res.Syncs[1].Status)
	pixels, err := mem.Bytes(0x10000, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, pixels)
}

func TestRunDumpsSurfaces(t *testing.T) {
	trace, err := Decode(strings.NewReader(sceneTrace))
	require.NoError(t, err)

	cfg := rendererConfig()
	cfg.ColorSurfaceDebug = true
	cfg.DumpDir = t.TempDir()
	cfg.DumpFormat = "bmp"
	_, err = Run(context.Background(), guest.NewHeap(1<<20), trace, cfg)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(cfg.DumpDir, "color_surface_0x10000.bmp"))
	assert.NoError(t, err)
}

func TestRunCountsFailures(t *testing.T) {
	trace := &Trace{Commands: []Step{
		{Op: "Draw", Primitive: "Points", IndexFormat: "u32", Indices: 0xFFFF0, Count: 64, Instances: 1},
		{Op: "Nop", Sync: true},
	}}
	res, err := Run(context.Background(), guest.NewHeap(1<<20), trace, rendererConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failures)
}

func TestRunRejectsBadSteps(t *testing.T) {
	tests := []struct {
		name string
		step Step
	}{
		{"op", Step{Op: "Clear"}},
		{"target", Step{Op: "SetContext", Target: "missing"}},
		{"format", Step{Op: "SetContext", Color: &Surface{Width: 1, Height: 1, Format: "RGB9"}}},
		{"primitive", Step{Op: "Draw", Primitive: "Quads"}},
		{"index format", Step{Op: "Draw", Primitive: "Points", IndexFormat: "u8"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trace := &Trace{Commands: []Step{tt.step}}
			_, err := Run(context.Background(), guest.NewHeap(1<<20), trace, rendererConfig())
			assert.ErrorContains(t, err, "step 0")
		})
	}
}

func TestRunBadSetup(t *testing.T) {
	ctx := context.Background()

	_, err := Run(ctx, guest.NewHeap(4096), &Trace{Memory: []MemoryInit{{Addr: 4090, Bytes: make([]byte, 16)}}}, rendererConfig())
	assert.ErrorIs(t, err, ErrTrace)
	assert.ErrorIs(t, err, guest.ErrOutOfRange)

	_, err = Run(ctx, guest.NewHeap(4096), &Trace{Protect: []Range{{Addr: 0, Size: 16, Perm: "exec"}}}, rendererConfig())
	assert.ErrorIs(t, err, ErrTrace)

	cfg := rendererConfig()
	cfg.Backend = "vulkan"
	_, err = Run(ctx, guest.NewHeap(4096), &Trace{}, cfg)
	assert.ErrorContains(t, err, "forgotten import")
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"commands": [], "extra": 1}`))
	assert.ErrorIs(t, err, ErrTrace)
}

func TestMemoryInitData(t *testing.T) {
	assert.Equal(t, []byte{1, 0, 2, 0}, MemoryInit{U16: []uint16{1, 2}}.Data())
	assert.Equal(t, []byte{4, 3, 2, 1}, MemoryInit{U32: []uint32{0x01020304}}.Data())
	assert.Equal(t, []byte{9}, MemoryInit{Bytes: []byte{9}}.Data())
}

func TestNewMemory(t *testing.T) {
	ctx := context.Background()
	for _, kind := range []string{config.MemoryHeap, config.MemoryWasm} {
		t.Run(kind, func(t *testing.T) {
			m, err := NewMemory(ctx, config.Memory{Kind: kind, Size: 100_000})
			require.NoError(t, err)
			defer m.Close()
			assert.GreaterOrEqual(t, m.Size(), uint64(100_000))
		})
	}

	_, err := NewMemory(ctx, config.Memory{Kind: "rom", Size: 1})
	assert.Error(t, err)
}
