//go:build unix

package guest

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Mapped is guest memory backed by an anonymous private mapping.
//
// Unlike Heap, permissions set through SetPermission are enforced by the
// operating system: touching a PermNone page from host code faults.
// Callers must lift protection (see protect.Tracker.Unprotect) before
// reading or writing a protected range.
type Mapped struct {
	data     []byte
	pageSize uint32
}

var (
	_ Memory = (*Mapped)(nil)
	_ Pager  = (*Mapped)(nil)
)

// NewMapped maps size bytes of zeroed read-write memory.
// size is rounded up to a whole number of pages.
func NewMapped(size uint32) (*Mapped, error) {
	pageSize := uint32(unix.Getpagesize())
	size = (size + pageSize - 1) &^ (pageSize - 1)

	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("guest: mmap %d bytes: %w", size, err)
	}
	return &Mapped{data: data, pageSize: pageSize}, nil
}

// Size returns the number of addressable bytes.
func (m *Mapped) Size() uint64 {
	return uint64(len(m.data))
}

// Bytes returns a slice aliasing n bytes at addr.
func (m *Mapped) Bytes(addr Address, n uint32) ([]byte, error) {
	if err := checkRange(addr, n, m.Size()); err != nil {
		return nil, err
	}
	return m.data[addr : uint32(addr)+n : uint32(addr)+n], nil
}

// PageSize returns the host page size.
func (m *Mapped) PageSize() uint32 {
	return m.pageSize
}

// SetPermission changes the protection of [addr, addr+size) with mprotect.
func (m *Mapped) SetPermission(addr Address, size uint32, perm Perm) error {
	if err := checkPages(addr, size, m.pageSize, m.Size()); err != nil {
		return err
	}
	if size == 0 {
		return nil
	}
	if err := unix.Mprotect(m.data[addr:uint32(addr)+size], protFlags(perm)); err != nil {
		return fmt.Errorf("guest: mprotect %s+%d %s: %w", addr, size, perm, err)
	}
	return nil
}

// Close unmaps the memory. The Mapped must not be used afterwards.
func (m *Mapped) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	return err
}

func protFlags(perm Perm) int {
	switch perm {
	case PermNone:
		return unix.PROT_NONE
	case PermRead:
		return unix.PROT_READ
	default:
		return unix.PROT_READ | unix.PROT_WRITE
	}
}
