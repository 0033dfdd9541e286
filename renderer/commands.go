package renderer

import (
	"github.com/gogpu/gxm"
	"github.com/gogpu/gxm/command"
)

// SetContextCommand builds an asynchronous SetContext command.
// A nil target keeps the current one; a nil surface unbinds it.
func SetContextCommand(target RenderTarget, color *gxm.ColorSurface, depthStencil *gxm.DepthStencilSurface) *command.Command {
	return command.New(command.OpSetContext, target, color, depthStencil)
}

// SyncSurfaceCommand builds an explicit, synchronous surface sync.
// readback selects backend to guest.
func SyncSurfaceCommand(surface *gxm.ColorSurface, readback bool) *command.Command {
	return command.NewSync(command.OpSyncSurfaceData, surface, readback)
}

// ImplicitSyncCommand builds the argument-less sync of the context's
// color surface issued after a scene ends.
func ImplicitSyncCommand() *command.Command {
	return command.New(command.OpSyncSurfaceData)
}

// DrawCommand builds an asynchronous Draw command.
func DrawCommand(call DrawCall) *command.Command {
	return command.New(command.OpDraw,
		call.Primitive, call.IndexFormat, call.Indices, call.Count, call.InstanceCount)
}

// NopCommand builds a Nop; sync makes it usable as a fence.
func NopCommand(sync bool) *command.Command {
	if sync {
		return command.NewSync(command.OpNop)
	}
	return command.New(command.OpNop)
}
