package renderer

import (
	"fmt"

	"github.com/gogpu/gxm"
	"github.com/gogpu/gxm/command"
	"github.com/gogpu/gxm/guest"
)

func (d *Dispatcher) handleNop(cmd *command.Command) error {
	cmd.Complete(command.StatusSuccess)
	return nil
}

// handleSetContext pops (target, color surface, depth/stencil surface).
func (d *Dispatcher) handleSetContext(cmd *command.Command) error {
	target, err := command.Pop[RenderTarget](&cmd.Args)
	if err != nil {
		return fmt.Errorf("%w: set context target: %w", ErrMalformed, err)
	}
	color, err := command.Pop[*gxm.ColorSurface](&cmd.Args)
	if err != nil {
		return fmt.Errorf("%w: set context color surface: %w", ErrMalformed, err)
	}
	depthStencil, err := command.Pop[*gxm.DepthStencilSurface](&cmd.Args)
	if err != nil {
		return fmt.Errorf("%w: set context depth stencil surface: %w", ErrMalformed, err)
	}

	d.ctx.update(func(s *State) {
		if target != nil {
			s.Target = target
		}

		if color != nil && !color.Disabled {
			s.Record.Color = *color
		} else {
			// Color writes are disabled; the pixels stay in the render target.
			s.Record.Color.Data = 0
		}

		if depthStencil != nil {
			s.Record.DepthStencil = *depthStencil
		} else {
			s.Record.DepthStencil.ResetDepth()
			s.Record.DepthStencil.ResetStencil()
		}
	})

	binder, ok := capability[ContextBinder](d, capBindContext)
	if !ok {
		return nil
	}
	if err := binder.BindContext(d.ctx); err != nil {
		return fmt.Errorf("renderer: bind context: %w", err)
	}
	return nil
}

// handleSyncSurfaceData synchronizes a color surface between the backend
// and guest memory.
//
// The implicit form has no arguments and pulls the context's color
// surface. The explicit form pops (surface, readback) and always
// completes: StatusNotApplicable for a null surface, StatusSuccess
// otherwise.
func (d *Dispatcher) handleSyncSurfaceData(cmd *command.Command) error {
	var (
		surface  gxm.ColorSurface
		readback bool
	)
	if cmd.Sync {
		explicit, err := command.Pop[*gxm.ColorSurface](&cmd.Args)
		if err != nil {
			return fmt.Errorf("%w: sync surface: %w", ErrMalformed, err)
		}
		readback, err = command.Pop[bool](&cmd.Args)
		if err != nil {
			return fmt.Errorf("%w: sync direction: %w", ErrMalformed, err)
		}
		if explicit == nil || explicit.Data.IsNull() {
			d.skipped.Add(1)
			cmd.Complete(command.StatusNotApplicable)
			return nil
		}
		surface = *explicit
	} else {
		surface = d.ctx.ColorSurface()
		if surface.Data.IsNull() {
			d.skipped.Add(1)
			return nil
		}
	}

	if d.syncDisabled {
		d.skipped.Add(1)
		cmd.Complete(command.StatusSuccess)
		return nil
	}

	if err := surface.Validate(); err != nil {
		d.skipped.Add(1)
		cmd.Complete(command.StatusNotApplicable)
		return err
	}

	addr := surface.Data
	size := surface.ByteSize()
	pixels, err := d.mem.Bytes(addr, size)
	if err != nil {
		d.skipped.Add(1)
		cmd.Complete(command.StatusNotApplicable)
		return fmt.Errorf("renderer: sync surface %s: %w", addr, err)
	}

	// The range is protected to track syncing; lift it around the copy.
	if err := d.tracker.OpenAccessToParent(addr); err != nil {
		gxm.Logger().Error("renderer: open parent access", "addr", addr.String(), "err", err)
	}
	if err := d.tracker.Unprotect(addr, size); err != nil {
		gxm.Logger().Error("renderer: unprotect surface", "addr", addr.String(), "err", err)
	}

	pull := !cmd.Sync || readback
	backendErr := d.transfer(surface, pixels, pull)

	if d.dumper != nil {
		d.dump(surface, pixels)
	}

	// An explicit readback is followed by a guest write, so the range is
	// left open. Otherwise protect again while some protector still holds it.
	if !(cmd.Sync && readback) && d.tracker.IsProtected(addr) {
		if err := d.tracker.Reprotect(addr, size); err != nil {
			gxm.Logger().Error("renderer: reprotect surface", "addr", addr.String(), "err", err)
		}
	}

	if err := d.tracker.CloseAccessToParent(addr); err != nil {
		gxm.Logger().Error("renderer: close parent access", "addr", addr.String(), "err", err)
	}

	cmd.Complete(command.StatusSuccess)
	return backendErr
}

// transfer moves pixels in the requested direction.
func (d *Dispatcher) transfer(surface gxm.ColorSurface, pixels []byte, pull bool) error {
	if pull {
		puller, ok := capability[SurfacePuller](d, capPullSurfaceData)
		if !ok {
			return nil
		}
		if err := puller.PullSurfaceData(d.ctx, surface, pixels); err != nil {
			return fmt.Errorf("renderer: pull surface %s: %w", surface.Data, err)
		}
		return nil
	}

	pusher, ok := capability[SurfacePusher](d, capPushSurfaceData)
	if !ok {
		return nil
	}
	if err := pusher.PushSurfaceData(d.ctx, surface, pixels); err != nil {
		return fmt.Errorf("renderer: push surface %s: %w", surface.Data, err)
	}
	return nil
}

// dump persists the surface, assuming 4 channel output.
func (d *Dispatcher) dump(surface gxm.ColorSurface, pixels []byte) {
	filename := fmt.Sprintf("color_surface_0x%X", uint32(surface.Data))
	err := d.dumper.WriteImage(filename, int(surface.Width), int(surface.Height), 4,
		pixels, int(surface.StrideInPixels)*4)
	if err != nil {
		gxm.Logger().Debug("renderer: failed to save color surface", "addr", surface.Data.String(), "err", err)
	}
}

// handleDraw pops (primitive, index format, indices, count, instances) and
// forwards them unchanged.
func (d *Dispatcher) handleDraw(cmd *command.Command) error {
	var (
		call DrawCall
		err  error
	)
	if call.Primitive, err = command.Pop[gxm.PrimitiveType](&cmd.Args); err != nil {
		return fmt.Errorf("%w: draw primitive: %w", ErrMalformed, err)
	}
	if call.IndexFormat, err = command.Pop[gxm.IndexFormat](&cmd.Args); err != nil {
		return fmt.Errorf("%w: draw index format: %w", ErrMalformed, err)
	}
	if call.Indices, err = command.Pop[guest.Address](&cmd.Args); err != nil {
		return fmt.Errorf("%w: draw indices: %w", ErrMalformed, err)
	}
	if call.Count, err = command.Pop[uint32](&cmd.Args); err != nil {
		return fmt.Errorf("%w: draw count: %w", ErrMalformed, err)
	}
	if call.InstanceCount, err = command.Pop[uint32](&cmd.Args); err != nil {
		return fmt.Errorf("%w: draw instance count: %w", ErrMalformed, err)
	}

	drawer, ok := capability[Drawer](d, capDraw)
	if !ok {
		return nil
	}
	if err := drawer.Draw(d.ctx, call); err != nil {
		return fmt.Errorf("renderer: draw %s: %w", call.Primitive, err)
	}
	return nil
}
