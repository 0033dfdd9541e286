// Package guest models the emulated application's address space.
//
// Surfaces, index buffers and other graphics payloads are referenced by
// guest Address values. A Memory resolves an address to a host byte slice
// that aliases guest memory, so writes made through the slice are visible
// to the emulated application.
//
// Three Memory implementations are provided:
//   - Heap: a plain Go byte slice with logical page permissions
//   - Mapped: an anonymous mmap region whose permissions are enforced by
//     the operating system (unix only)
//   - wasmmem.Memory: a WebAssembly linear memory instance
//
// Implementations that also implement Pager can back a protect.Tracker.
package guest
