package renderer

import (
	"sync"

	"github.com/gogpu/gxm"
)

// Record holds the surfaces bound to a render context.
type Record struct {
	Color        gxm.ColorSurface
	DepthStencil gxm.DepthStencilSurface
}

// State is a consistent snapshot of a render context.
type State struct {
	Target RenderTarget
	Record Record
}

// Context is the mutable render state of one execution context.
//
// Only the Dispatcher mutates a Context, and only while handling a
// command. Other subsystems may take a Snapshot at any time.
type Context struct {
	mu          sync.RWMutex
	state       State
	backendData any
}

// NewContext creates a context with nothing bound.
func NewContext() *Context {
	return &Context{}
}

// Snapshot returns a copy of the current state.
func (c *Context) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Target returns the current render target, or nil.
func (c *Context) Target() RenderTarget {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Target
}

// ColorSurface returns the bound color surface.
func (c *Context) ColorSurface() gxm.ColorSurface {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Record.Color
}

// DepthStencilSurface returns the bound depth/stencil surface.
func (c *Context) DepthStencilSurface() gxm.DepthStencilSurface {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Record.DepthStencil
}

// BackendData returns per-context data stored by the backend.
func (c *Context) BackendData() any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.backendData
}

// SetBackendData stores per-context backend data.
func (c *Context) SetBackendData(v any) {
	c.mu.Lock()
	c.backendData = v
	c.mu.Unlock()
}

// update applies fn to the state under the write lock.
func (c *Context) update(fn func(*State)) {
	c.mu.Lock()
	fn(&c.state)
	c.mu.Unlock()
}
