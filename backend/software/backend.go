package software

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gxm"
	"github.com/gogpu/gxm/guest"
	"github.com/gogpu/gxm/renderer"
)

func init() {
	renderer.Register(renderer.KindSoftware, func(mem guest.Memory) (renderer.Backend, error) {
		return New(mem), nil
	})
}

// DrawRecord describes one draw the backend accepted.
type DrawRecord struct {
	Topology      gputypes.PrimitiveTopology
	IndexFormat   gputypes.IndexFormat
	Count         uint32
	InstanceCount uint32
	Primitives    uint32 // per instance
	MinIndex      uint32
	MaxIndex      uint32
	ColorWrites   bool
	Target        *Target

	// ColorFormat is the GPU format of the bound color surface; packed
	// 16-bit formats report TextureFormatUndefined.
	ColorFormat gputypes.TextureFormat
	// DepthStencilFormat is TextureFormatUndefined when neither depth
	// nor stencil is bound.
	DepthStencilFormat gputypes.TextureFormat
}

// Stats counts backend operations.
type Stats struct {
	Binds  int
	Pulls  int
	Pushes int
	Draws  int
	// SkippedDraws counts draws with zero instances or indices.
	SkippedDraws int
}

// Backend is the reference CPU backend.
type Backend struct {
	mem guest.Memory

	mu      sync.Mutex
	targets map[guest.Address]*Target // color surface address -> target
	draws   []DrawRecord
	stats   Stats
}

// Ensure Backend implements all renderer capabilities.
var (
	_ renderer.Backend       = (*Backend)(nil)
	_ renderer.ContextBinder = (*Backend)(nil)
	_ renderer.SurfacePuller = (*Backend)(nil)
	_ renderer.SurfacePusher = (*Backend)(nil)
	_ renderer.Drawer        = (*Backend)(nil)
	_ renderer.RenderTarget  = (*Target)(nil)
)

// New creates a software backend reading index buffers from mem.
func New(mem guest.Memory) *Backend {
	return &Backend{
		mem:     mem,
		targets: make(map[guest.Address]*Target),
	}
}

// Kind returns renderer.KindSoftware.
func (b *Backend) Kind() renderer.Kind {
	return renderer.KindSoftware
}

// BindContext associates the context's color surface address with its
// render target so later explicit syncs can find it.
func (b *Backend) BindContext(ctx *renderer.Context) error {
	state := ctx.Snapshot()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Binds++

	if state.Target == nil {
		return nil
	}
	t, ok := state.Target.(*Target)
	if !ok {
		return fmt.Errorf("%w: %T", ErrForeignTarget, state.Target)
	}
	if color := state.Record.Color; !color.Data.IsNull() {
		b.targets[color.Data] = t
	}
	return nil
}

// PullSurfaceData writes the rendered pixels of surface into pixels.
// The target is looked up by the surface address first, then the
// context's bound target is used.
func (b *Backend) PullSurfaceData(ctx *renderer.Context, surface gxm.ColorSurface, pixels []byte) error {
	t, err := b.lookup(ctx, surface.Data)
	if err != nil {
		return err
	}

	stride, err := checkPixels(surface, pixels)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.stats.Pulls++
	b.mu.Unlock()

	width := min(surface.Width, t.width)
	height := min(surface.Height, t.height)
	for y := uint64(0); y < uint64(height); y++ {
		if err := storeRow(pixels[y*stride:(y+1)*stride], t.row(uint32(y)), width, surface.Format); err != nil {
			return err
		}
	}
	return nil
}

// PushSurfaceData uploads the guest pixels of surface into its target.
func (b *Backend) PushSurfaceData(ctx *renderer.Context, surface gxm.ColorSurface, pixels []byte) error {
	t, err := b.lookup(ctx, surface.Data)
	if err != nil {
		return err
	}

	stride, err := checkPixels(surface, pixels)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.stats.Pushes++
	b.mu.Unlock()

	width := min(surface.Width, t.width)
	height := min(surface.Height, t.height)
	for y := uint64(0); y < uint64(height); y++ {
		if err := loadRow(t.row(uint32(y)), pixels[y*stride:(y+1)*stride], width, surface.Format); err != nil {
			return err
		}
	}
	return nil
}

// Draw validates the index buffer and records the draw. Draws with zero
// instances or zero indices are skipped.
func (b *Backend) Draw(ctx *renderer.Context, call renderer.DrawCall) error {
	state := ctx.Snapshot()

	size := call.IndexFormat.Size()
	if size == 0 {
		return fmt.Errorf("%w: %d", ErrIndexFormat, call.IndexFormat)
	}

	if call.InstanceCount == 0 || call.Count == 0 {
		b.mu.Lock()
		b.stats.SkippedDraws++
		b.mu.Unlock()
		return nil
	}

	n := uint64(call.Count) * uint64(size)
	if n > b.mem.Size() {
		return fmt.Errorf("%w: %d indices of %d bytes exceed guest memory", ErrIndexBuffer, call.Count, size)
	}
	raw, err := b.mem.Bytes(call.Indices, uint32(n))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIndexBuffer, err)
	}
	lo, hi := indexRange(raw, size)

	topology, _ := call.Primitive.Topology()
	rec := DrawRecord{
		Topology:      topology,
		IndexFormat:   call.IndexFormat.GPU(),
		Count:         call.Count,
		InstanceCount: call.InstanceCount,
		Primitives:    call.Primitive.PrimitiveCount(call.Count),
		MinIndex:      lo,
		MaxIndex:      hi,
		ColorWrites:   !state.Record.Color.Data.IsNull(),
	}
	if rec.ColorWrites {
		rec.ColorFormat = state.Record.Color.Format.TextureFormat()
	}
	if ds := state.Record.DepthStencil; ds.HasDepth() || ds.HasStencil() {
		rec.DepthStencilFormat = ds.Format
	}
	if t, ok := state.Target.(*Target); ok {
		rec.Target = t
	}

	b.mu.Lock()
	b.stats.Draws++
	b.draws = append(b.draws, rec)
	b.mu.Unlock()
	return nil
}

// Draws returns the draws recorded so far.
func (b *Backend) Draws() []DrawRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]DrawRecord(nil), b.draws...)
}

// Stats returns the operation counters.
func (b *Backend) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// TargetFor returns the target bound for a color surface address.
func (b *Backend) TargetFor(addr guest.Address) (*Target, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.targets[addr]
	return t, ok
}

// checkPixels validates surface against the guest buffer handed to a
// pull or push and returns the row stride in bytes.
func checkPixels(surface gxm.ColorSurface, pixels []byte) (uint64, error) {
	if err := surface.Validate(); err != nil {
		return 0, err
	}
	if n := uint64(surface.ByteSize()); uint64(len(pixels)) < n {
		return 0, fmt.Errorf("%w: %d bytes, surface needs %d", ErrShortBuffer, len(pixels), n)
	}
	return surface.Format.StrideInBytes(surface.StrideInPixels), nil
}

func (b *Backend) lookup(ctx *renderer.Context, addr guest.Address) (*Target, error) {
	b.mu.Lock()
	t, ok := b.targets[addr]
	b.mu.Unlock()
	if ok {
		return t, nil
	}
	if t, ok := ctx.Target().(*Target); ok && t != nil {
		return t, nil
	}
	return nil, fmt.Errorf("%w: surface %s", ErrNoTarget, addr)
}

// indexRange returns the smallest and largest index in raw.
func indexRange(raw []byte, size uint32) (lo, hi uint32) {
	lo = ^uint32(0)
	for i := uint32(0); i+size <= uint32(len(raw)); i += size {
		var v uint32
		if size == 2 {
			v = uint32(binary.LittleEndian.Uint16(raw[i:]))
		} else {
			v = binary.LittleEndian.Uint32(raw[i:])
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}
