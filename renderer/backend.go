package renderer

import (
	"github.com/gogpu/gxm"
	"github.com/gogpu/gxm/guest"
)

// Kind identifies a backend implementation.
type Kind string

const (
	// KindNone is reported when no backend is configured.
	KindNone Kind = "none"
	// KindSoftware is the reference CPU backend.
	KindSoftware Kind = "software"
	// KindOpenGL is reserved for an OpenGL backend.
	KindOpenGL Kind = "opengl"
)

// RenderTarget is a backend-specific render target handle.
// The render context references a target but never owns it.
type RenderTarget interface {
	Width() uint32
	Height() uint32
}

// Backend is implemented by every graphics backend.
// Operations are discovered through the capability interfaces below.
type Backend interface {
	Kind() Kind
}

// ContextBinder binds the current render target and surfaces of a context.
type ContextBinder interface {
	BindContext(ctx *Context) error
}

// SurfacePuller copies rendered pixels of surface into pixels, which
// aliases the surface's guest memory.
type SurfacePuller interface {
	PullSurfaceData(ctx *Context, surface gxm.ColorSurface, pixels []byte) error
}

// SurfacePusher uploads guest-modified pixels of surface to the backend.
type SurfacePusher interface {
	PushSurfaceData(ctx *Context, surface gxm.ColorSurface, pixels []byte) error
}

// Drawer draws indexed primitives with the context's bound state.
type Drawer interface {
	Draw(ctx *Context, call DrawCall) error
}

// DrawCall holds the parameters of a draw exactly as the producer sent them.
type DrawCall struct {
	Primitive     gxm.PrimitiveType
	IndexFormat   gxm.IndexFormat
	Indices       guest.Address
	Count         uint32
	InstanceCount uint32
}

// Dumper persists a surface image for diagnostics.
// filename has no directory or extension; the implementation chooses both.
type Dumper interface {
	WriteImage(filename string, width, height, channels int, pixels []byte, stride int) error
}

// Capability names used in missing feature reports.
const (
	capBindContext     = "bindContext"
	capPullSurfaceData = "pullSurfaceData"
	capPushSurfaceData = "pushSurfaceData"
	capDraw            = "draw"
)
