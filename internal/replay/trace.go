// Package replay drives a renderer.Dispatcher from a recorded command trace.
package replay

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/gxm"
	"github.com/gogpu/gxm/command"
	"github.com/gogpu/gxm/guest"
	"github.com/gogpu/gxm/renderer"
)

// ErrTrace is returned for traces that cannot be replayed.
var ErrTrace = errors.New("replay: invalid trace")

// Trace is a recorded command stream plus the guest state it needs.
type Trace struct {
	Memory   []MemoryInit `json:"memory,omitempty"`
	Segments []Range      `json:"segments,omitempty"`
	Protect  []Range      `json:"protect,omitempty"`
	Targets  []TargetSpec `json:"targets,omitempty"`
	Commands []Step       `json:"commands"`
}

// MemoryInit fills guest memory before replay. Exactly one of Bytes
// (base64 in JSON), U16 or U32 is used; integers are little endian.
type MemoryInit struct {
	Addr  uint32   `json:"addr"`
	Bytes []byte   `json:"bytes,omitempty"`
	U16   []uint16 `json:"u16,omitempty"`
	U32   []uint32 `json:"u32,omitempty"`
}

// Range is a guest range with a permission: "none", "read" or "readwrite".
type Range struct {
	Addr uint32 `json:"addr"`
	Size uint32 `json:"size"`
	Perm string `json:"perm,omitempty"`
}

// TargetSpec declares a render target. Clear is the RGBA fill color.
type TargetSpec struct {
	Name   string   `json:"name"`
	Width  uint32   `json:"width"`
	Height uint32   `json:"height"`
	Clear  *[4]byte `json:"clear,omitempty"`
}

// Surface is a color surface as written in a trace.
type Surface struct {
	Width    uint32 `json:"width"`
	Height   uint32 `json:"height"`
	Stride   uint32 `json:"stride,omitempty"` // pixels, defaults to Width
	Format   string `json:"format,omitempty"` // defaults to U8U8U8U8_ABGR
	Data     uint32 `json:"data"`
	Disabled bool   `json:"disabled,omitempty"`
}

// DepthStencil is a depth/stencil surface as written in a trace.
type DepthStencil struct {
	Depth   uint32 `json:"depth,omitempty"`
	Stencil uint32 `json:"stencil,omitempty"`
}

// Step is one command of a trace. Which fields apply depends on Op.
type Step struct {
	Op   string `json:"op"`
	Sync bool   `json:"sync,omitempty"`

	// SetContext
	Target       string        `json:"target,omitempty"`
	Color        *Surface      `json:"color,omitempty"`
	DepthStencil *DepthStencil `json:"depthStencil,omitempty"`

	// SyncSurfaceData, explicit when Sync is set
	Surface  *Surface `json:"surface,omitempty"`
	Readback bool     `json:"readback,omitempty"`

	// Draw
	Primitive   string `json:"primitive,omitempty"`
	IndexFormat string `json:"indexFormat,omitempty"`
	Indices     uint32 `json:"indices,omitempty"`
	Count       uint32 `json:"count,omitempty"`
	Instances   uint32 `json:"instances,omitempty"`
}

// Decode reads a JSON trace. Unknown fields are rejected.
func Decode(r io.Reader) (*Trace, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var t Trace
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTrace, err)
	}
	return &t, nil
}

// Data returns the little-endian encoding of the init data.
func (m MemoryInit) Data() []byte {
	switch {
	case len(m.U16) > 0:
		out := make([]byte, 2*len(m.U16))
		for i, v := range m.U16 {
			binary.LittleEndian.PutUint16(out[2*i:], v)
		}
		return out
	case len(m.U32) > 0:
		out := make([]byte, 4*len(m.U32))
		for i, v := range m.U32 {
			binary.LittleEndian.PutUint32(out[4*i:], v)
		}
		return out
	default:
		return m.Bytes
	}
}

// ParsePerm parses a permission name. An empty name is PermNone.
func ParsePerm(s string) (guest.Perm, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return guest.PermNone, nil
	case "read", "r":
		return guest.PermRead, nil
	case "readwrite", "read-write", "rw":
		return guest.PermReadWrite, nil
	default:
		return 0, fmt.Errorf("%w: permission %q", ErrTrace, s)
	}
}

// ColorSurface converts s, applying defaults.
func (s *Surface) ColorSurface() (*gxm.ColorSurface, error) {
	if s == nil {
		return nil, nil
	}
	format := gxm.ColorFormatU8U8U8U8ABGR
	if s.Format != "" {
		f, err := gxm.ParseColorFormat(s.Format)
		if err != nil {
			return nil, err
		}
		format = f
	}
	stride := s.Stride
	if stride == 0 {
		stride = s.Width
	}
	return &gxm.ColorSurface{
		Width:          s.Width,
		Height:         s.Height,
		StrideInPixels: stride,
		Format:         format,
		Data:           guest.Address(s.Data),
		Disabled:       s.Disabled,
	}, nil
}

// build converts a step into a command. targets resolves target names.
func (st *Step) build(targets map[string]renderer.RenderTarget) (*command.Command, error) {
	op, ok := command.ParseOpcode(st.Op)
	if !ok {
		switch strings.ToLower(st.Op) {
		case "sync":
			op = command.OpSyncSurfaceData
		default:
			return nil, fmt.Errorf("%w: unknown op %q", ErrTrace, st.Op)
		}
	}

	switch op {
	case command.OpNop:
		return renderer.NopCommand(st.Sync), nil

	case command.OpSetContext:
		var target renderer.RenderTarget
		if st.Target != "" {
			t, ok := targets[st.Target]
			if !ok {
				return nil, fmt.Errorf("%w: unknown target %q", ErrTrace, st.Target)
			}
			target = t
		}
		color, err := st.Color.ColorSurface()
		if err != nil {
			return nil, err
		}
		var ds *gxm.DepthStencilSurface
		if st.DepthStencil != nil {
			ds = &gxm.DepthStencilSurface{
				Depth:   guest.Address(st.DepthStencil.Depth),
				Stencil: guest.Address(st.DepthStencil.Stencil),
			}
		}
		return renderer.SetContextCommand(target, color, ds), nil

	case command.OpSyncSurfaceData:
		if !st.Sync {
			return renderer.ImplicitSyncCommand(), nil
		}
		surface, err := st.Surface.ColorSurface()
		if err != nil {
			return nil, err
		}
		return renderer.SyncSurfaceCommand(surface, st.Readback), nil

	default: // command.OpDraw
		prim, err := gxm.ParsePrimitiveType(st.Primitive)
		if err != nil {
			return nil, err
		}
		indexFormat := gxm.IndexFormatU16
		if st.IndexFormat != "" {
			if indexFormat, err = gxm.ParseIndexFormat(st.IndexFormat); err != nil {
				return nil, err
			}
		}
		return renderer.DrawCommand(renderer.DrawCall{
			Primitive:     prim,
			IndexFormat:   indexFormat,
			Indices:       guest.Address(st.Indices),
			Count:         st.Count,
			InstanceCount: st.Instances,
		}), nil
	}
}
