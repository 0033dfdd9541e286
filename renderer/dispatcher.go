package renderer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/gxm"
	"github.com/gogpu/gxm/command"
	"github.com/gogpu/gxm/guest"
	"github.com/gogpu/gxm/protect"
)

// Errors returned by Dispatcher.Handle.
var (
	// ErrUnknownOpcode is returned for commands with an unknown opcode.
	ErrUnknownOpcode = errors.New("renderer: unknown opcode")

	// ErrMalformed is returned when a command's arguments cannot be decoded.
	ErrMalformed = errors.New("renderer: malformed command")

	// ErrReleased is returned when a command is handled twice.
	ErrReleased = errors.New("renderer: command already handled")
)

type handlerFunc func(d *Dispatcher, cmd *command.Command) error

const numOpcodes = int(command.OpDraw) + 1

var handlers = [numOpcodes]handlerFunc{
	command.OpNop:             (*Dispatcher).handleNop,
	command.OpSetContext:      (*Dispatcher).handleSetContext,
	command.OpSyncSurfaceData: (*Dispatcher).handleSyncSurfaceData,
	command.OpDraw:            (*Dispatcher).handleDraw,
}

// Stats counts dispatcher activity.
type Stats struct {
	Handled         map[command.Opcode]uint64
	MissingFeatures uint64
	SkippedSyncs    uint64
	Failed          uint64
}

// Dispatcher replays commands against a backend.
//
// A Dispatcher is driven by a single goroutine; it has no internal
// concurrency. Commands are executed strictly in the order they are
// handled.
type Dispatcher struct {
	mem          guest.Memory
	backend      Backend
	tracker      *protect.Tracker
	ctx          *Context
	reporter     *Reporter
	dumper       Dumper
	syncDisabled bool

	handled [numOpcodes]atomic.Uint64
	skipped atomic.Uint64
	failed  atomic.Uint64
}

// NewDispatcher creates a dispatcher over guest memory mem.
func NewDispatcher(mem guest.Memory, opts ...Option) *Dispatcher {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.tracker == nil {
		pager, _ := mem.(guest.Pager)
		o.tracker = protect.NewTracker(pager)
	}
	if o.context == nil {
		o.context = NewContext()
	}
	if o.reporter == nil {
		o.reporter = NewReporter()
	}

	d := &Dispatcher{
		mem:          mem,
		backend:      o.backend,
		tracker:      o.tracker,
		ctx:          o.context,
		reporter:     o.reporter,
		dumper:       o.dumper,
		syncDisabled: o.syncDisabled,
	}
	gxm.Logger().Info("renderer: dispatcher created", "backend", string(d.Kind()))
	return d
}

// Kind returns the active backend kind, or KindNone.
func (d *Dispatcher) Kind() Kind {
	if d.backend == nil {
		return KindNone
	}
	return d.backend.Kind()
}

// Context returns the render context mutated by the dispatcher.
func (d *Dispatcher) Context() *Context {
	return d.ctx
}

// Tracker returns the protection tracker.
func (d *Dispatcher) Tracker() *protect.Tracker {
	return d.tracker
}

// Reporter returns the missing feature reporter.
func (d *Dispatcher) Reporter() *Reporter {
	return d.reporter
}

// Stats returns a snapshot of the dispatcher counters.
func (d *Dispatcher) Stats() Stats {
	s := Stats{
		Handled:         make(map[command.Opcode]uint64, numOpcodes),
		MissingFeatures: d.reporter.Count(),
		SkippedSyncs:    d.skipped.Load(),
		Failed:          d.failed.Load(),
	}
	for i := range d.handled {
		if n := d.handled[i].Load(); n > 0 {
			s.Handled[command.Opcode(i)] = n
		}
	}
	return s
}

// Handle executes one command and releases it.
//
// Handle never fails because of a missing backend feature. It returns an
// error for malformed or unknown commands and for backend failures; a
// synchronous command is completed in every case, so a waiting producer
// is never left blocked.
func (d *Dispatcher) Handle(cmd *command.Command) (err error) {
	if cmd.Released() {
		return fmt.Errorf("%w: %s", ErrReleased, cmd.Op)
	}
	defer func() {
		if err != nil {
			d.failed.Add(1)
		}
		if left := cmd.Args.Len(); left > 0 {
			gxm.Logger().Debug("renderer: unused command arguments", "op", cmd.Op.String(), "count", left)
		}
		cmd.Release()
		// Handlers complete explicitly; this only fires on error paths.
		if cmd.Complete(command.StatusNotApplicable) {
			gxm.Logger().Debug("renderer: command completed on error path", "op", cmd.Op.String())
		}
	}()

	if !cmd.Op.Valid() || int(cmd.Op) >= numOpcodes {
		return fmt.Errorf("%w: %d", ErrUnknownOpcode, cmd.Op)
	}
	d.handled[cmd.Op].Add(1)
	gxm.Logger().Debug("renderer: handle", "op", cmd.Op.String(), "sync", cmd.Sync)
	return handlers[cmd.Op](d, cmd)
}

// HandleNext dequeues and executes the next command from q.
func (d *Dispatcher) HandleNext(ctx context.Context, q *command.Queue) error {
	cmd, err := q.Next(ctx)
	if err != nil {
		return err
	}
	return d.Handle(cmd)
}

// Run handles commands from q until the queue is closed and drained, or
// ctx is done. Command errors are logged and do not stop the loop.
func (d *Dispatcher) Run(ctx context.Context, q *command.Queue) error {
	for {
		err := d.HandleNext(ctx, q)
		switch {
		case err == nil:
		case errors.Is(err, command.ErrClosed):
			gxm.Logger().Info("renderer: queue closed")
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			gxm.Logger().Error("renderer: command failed", "err", err)
		}
	}
}

// capability returns the active backend as T, or reports op as a missing
// feature of the active backend kind.
func capability[T any](d *Dispatcher, op string) (T, bool) {
	if c, ok := d.backend.(T); ok {
		return c, true
	}
	d.reporter.Report(d.Kind(), op)
	var zero T
	return zero, false
}
