package renderer

import "github.com/gogpu/gxm/protect"

// Option configures a Dispatcher during creation.
//
// Example:
//
//	d := renderer.NewDispatcher(mem,
//	    renderer.WithBackend(be),
//	    renderer.WithTracker(tracker),
//	)
type Option func(*options)

type options struct {
	backend      Backend
	tracker      *protect.Tracker
	context      *Context
	reporter     *Reporter
	dumper       Dumper
	syncDisabled bool
}

// WithBackend sets the active backend. Without one, every backend
// operation is reported as a missing feature of KindNone.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithTracker sets the protection tracker. By default the dispatcher
// creates one using the guest memory as pager when it implements
// guest.Pager.
func WithTracker(t *protect.Tracker) Option {
	return func(o *options) {
		o.tracker = t
	}
}

// WithContext sets the render context the dispatcher mutates.
func WithContext(c *Context) Option {
	return func(o *options) {
		o.context = c
	}
}

// WithReporter sets the missing feature reporter.
func WithReporter(r *Reporter) Option {
	return func(o *options) {
		o.reporter = r
	}
}

// WithDumper enables color surface dumps after every surface sync.
func WithDumper(d Dumper) Option {
	return func(o *options) {
		o.dumper = d
	}
}

// WithSurfaceSyncDisabled turns surface synchronization into a no-op.
// Explicit syncs still complete, with StatusSuccess.
func WithSurfaceSyncDisabled(disabled bool) Option {
	return func(o *options) {
		o.syncDisabled = disabled
	}
}
