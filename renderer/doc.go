// Package renderer executes graphics commands against a pluggable backend.
//
// The Dispatcher is the single consumer of a command.Queue. For each
// command it pops the typed arguments, updates the render Context, drives
// the protect.Tracker around surface synchronization, and calls the active
// Backend.
//
// # Backends
//
// A Backend only has to report its Kind. Everything else is an optional
// capability discovered by type assertion:
//
//   - ContextBinder: bind render target and surfaces
//   - SurfacePuller: copy rendered pixels into guest memory
//   - SurfacePusher: upload guest-modified pixels to the backend
//   - Drawer: draw indexed primitives
//
// When the active backend lacks a capability the operation is reported
// through the Reporter as a missing feature and skipped. Command
// processing always continues.
//
// Backends register themselves by kind, following the database/sql
// driver pattern:
//
//	func init() {
//	    renderer.Register(renderer.KindSoftware, func(mem guest.Memory) (renderer.Backend, error) {
//	        return New(mem), nil
//	    })
//	}
package renderer
