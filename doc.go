// Package gxm replays serialized graphics commands emitted by an emulated
// application against a pluggable graphics backend.
//
// # Overview
//
// An emulated application thread records graphics work (context binding,
// surface synchronization, primitive drawing) into a command queue. A
// single consumer, the renderer.Dispatcher, dequeues each command in FIFO
// order, pops its typed arguments, updates the per-context render state,
// and invokes the active backend. Color surfaces live in guest memory; the
// protect package tracks which guest ranges are page-protected so that
// writes made by a backend into emulated memory can be detected.
//
// # Quick Start
//
//	mem := guest.NewHeap(64 << 20)
//	tracker := protect.NewTracker(mem)
//	be, _ := renderer.NewBackend("software", mem)
//
//	d := renderer.NewDispatcher(mem,
//	    renderer.WithBackend(be),
//	    renderer.WithTracker(tracker),
//	)
//
//	q := command.NewQueue(256)
//	go d.Run(ctx, q)
//
//	q.Submit(ctx, renderer.SetContextCommand(rt, &color, nil))
//	status, _ := q.SubmitSync(ctx, renderer.SyncSurfaceCommand(&color, true))
//
// # Architecture
//
// The module is organized into:
//   - gxm: surface descriptors, formats, primitive types, logging, errors
//   - guest: guest address space (heap, mmap and WebAssembly backed)
//   - protect: reference counted page protection tracker
//   - command: opcodes, argument stacks, queue and completion signal
//   - renderer: render context, backend capability interfaces, dispatcher
//   - backend/software: reference CPU backend
//   - config: TOML settings used by cmd/gxmreplay
//
// # Logging
//
// gxm is silent by default. Call SetLogger to route diagnostics, including
// missing backend feature reports, to a slog.Logger.
package gxm

// Version information
const (
	// Version is the current version of the module
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
