package replay

import (
	"context"
	"errors"
	"fmt"
	"image/color"

	"github.com/gogpu/gxm"
	"github.com/gogpu/gxm/backend/software"
	"github.com/gogpu/gxm/command"
	"github.com/gogpu/gxm/config"
	"github.com/gogpu/gxm/guest"
	"github.com/gogpu/gxm/internal/dump"
	"github.com/gogpu/gxm/protect"
	"github.com/gogpu/gxm/renderer"
)

// SyncResult is the status a synchronous step completed with.
type SyncResult struct {
	Step   int
	Op     command.Opcode
	Status command.Status
}

// Result summarizes a replay.
type Result struct {
	Syncs    []SyncResult
	Stats    renderer.Stats
	Missing  []string
	Backend  renderer.Kind
	Targets  map[string]*software.Target
	Draws    []software.DrawRecord
	Failures int // commands the dispatcher rejected
	Regions  []protect.Region
}

// Run replays trace against mem using the renderer settings in cfg.
func Run(ctx context.Context, mem guest.Memory, trace *Trace, cfg config.Renderer) (*Result, error) {
	if err := initMemory(mem, trace.Memory); err != nil {
		return nil, err
	}

	pager, _ := mem.(guest.Pager)
	tracker := protect.NewTracker(pager)
	if err := initProtection(tracker, trace); err != nil {
		return nil, err
	}

	var backend renderer.Backend
	if kind := renderer.Kind(cfg.Backend); kind != "" && kind != renderer.KindNone {
		b, err := renderer.NewBackend(kind, mem)
		if err != nil {
			return nil, err
		}
		backend = b
	}

	res := &Result{Targets: make(map[string]*software.Target)}
	targets := make(map[string]renderer.RenderTarget, len(trace.Targets))
	sw, _ := backend.(*software.Backend)
	for _, spec := range trace.Targets {
		if sw == nil {
			gxm.Logger().Warn("replay: backend has no render targets", "target", spec.Name)
			targets[spec.Name] = nil
			continue
		}
		t := software.NewTarget(spec.Width, spec.Height)
		if c := spec.Clear; c != nil {
			t.Clear(color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]})
		}
		targets[spec.Name] = t
		res.Targets[spec.Name] = t
	}

	opts := []renderer.Option{
		renderer.WithBackend(backend),
		renderer.WithTracker(tracker),
		renderer.WithSurfaceSyncDisabled(cfg.DisableSurfaceSync),
	}
	if cfg.ColorSurfaceDebug {
		format, err := dump.ParseFormat(cfg.DumpFormat)
		if err != nil {
			return nil, err
		}
		opts = append(opts, renderer.WithDumper(&dump.Writer{Dir: cfg.DumpDir, Format: format}))
	}
	d := renderer.NewDispatcher(mem, opts...)

	q := command.NewQueue(cfg.QueueCapacity)
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx, q) }()

	submitErr := submit(ctx, q, trace.Commands, targets, res)
	q.Close()
	if err := <-done; err != nil && submitErr == nil {
		submitErr = err
	}
	if submitErr != nil {
		return nil, submitErr
	}

	res.Stats = d.Stats()
	res.Missing = d.Reporter().Reported()
	res.Backend = d.Kind()
	res.Regions = tracker.Regions()
	if sw != nil {
		res.Draws = sw.Draws()
	}
	res.Failures = int(res.Stats.Failed)
	return res, nil
}

func submit(ctx context.Context, q *command.Queue, steps []Step, targets map[string]renderer.RenderTarget, res *Result) error {
	for i := range steps {
		cmd, err := steps[i].build(targets)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if !cmd.Sync {
			if err := q.Submit(ctx, cmd); err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
			continue
		}
		status, err := q.SubmitSync(ctx, cmd)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		res.Syncs = append(res.Syncs, SyncResult{Step: i, Op: cmd.Op, Status: status})
	}
	return nil
}

func initMemory(mem guest.Memory, inits []MemoryInit) error {
	for _, m := range inits {
		data := m.Data()
		buf, err := mem.Bytes(guest.Address(m.Addr), uint32(len(data)))
		if err != nil {
			return fmt.Errorf("%w: memory init at 0x%X: %w", ErrTrace, m.Addr, err)
		}
		copy(buf, data)
	}
	return nil
}

func initProtection(tracker *protect.Tracker, trace *Trace) error {
	var errs []error
	for _, s := range trace.Segments {
		perm, err := ParsePerm(s.Perm)
		if err == nil {
			err = tracker.AddSegment(guest.Address(s.Addr), s.Size, perm)
		}
		errs = append(errs, err)
	}
	for _, p := range trace.Protect {
		perm, err := ParsePerm(p.Perm)
		if err == nil {
			err = tracker.Protect(guest.Address(p.Addr), p.Size, perm)
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
