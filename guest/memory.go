package guest

import (
	"errors"
	"fmt"
)

// Errors returned by Memory implementations.
var (
	// ErrNullAddress is returned when address zero is dereferenced.
	ErrNullAddress = errors.New("guest: null address")

	// ErrOutOfRange is returned when a range does not fit in guest memory.
	ErrOutOfRange = errors.New("guest: address range out of bounds")

	// ErrUnaligned is returned when a page operation is not page aligned.
	ErrUnaligned = errors.New("guest: range not page aligned")
)

// DefaultPageSize is the protection granularity used by Heap.
const DefaultPageSize = 4096

// Address is a guest virtual address. Zero is the null address.
type Address uint32

// IsNull reports whether a is the null address.
func (a Address) IsNull() bool { return a == 0 }

// Add returns a advanced by n bytes.
func (a Address) Add(n uint32) Address { return a + Address(n) }

// String formats the address the way guest pointers are usually printed.
func (a Address) String() string { return fmt.Sprintf("0x%X", uint32(a)) }

// Perm is a page access permission.
// Permissions are ordered from most to least restrictive.
type Perm uint8

const (
	// PermNone denies all access. Used to trap guest accesses.
	PermNone Perm = iota
	// PermRead allows reads only.
	PermRead
	// PermReadWrite allows reads and writes.
	PermReadWrite
)

// String returns the permission name.
func (p Perm) String() string {
	switch p {
	case PermNone:
		return "none"
	case PermRead:
		return "read"
	case PermReadWrite:
		return "read-write"
	default:
		return "unknown"
	}
}

// Memory resolves guest addresses to host memory.
type Memory interface {
	// Size returns the number of addressable bytes.
	Size() uint64

	// Bytes returns a slice aliasing n bytes of guest memory at addr.
	Bytes(addr Address, n uint32) ([]byte, error)
}

// Pager changes the access permission of whole guest pages.
// addr and size passed to SetPermission are multiples of PageSize.
type Pager interface {
	PageSize() uint32
	SetPermission(addr Address, size uint32, perm Perm) error
}

// checkRange validates an access of n bytes at addr against size.
func checkRange(addr Address, n uint32, size uint64) error {
	if addr.IsNull() {
		return ErrNullAddress
	}
	if uint64(addr)+uint64(n) > size {
		return fmt.Errorf("%w: %s+%d exceeds %d", ErrOutOfRange, addr, n, size)
	}
	return nil
}

// checkPages validates a page operation.
func checkPages(addr Address, n, pageSize uint32, size uint64) error {
	if uint32(addr)%pageSize != 0 || n%pageSize != 0 {
		return fmt.Errorf("%w: %s+%d", ErrUnaligned, addr, n)
	}
	if uint64(addr)+uint64(n) > size {
		return fmt.Errorf("%w: %s+%d exceeds %d", ErrOutOfRange, addr, n, size)
	}
	return nil
}
