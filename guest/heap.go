package guest

import "sync"

// Heap is guest memory backed by a Go byte slice.
//
// Page permissions are recorded but not enforced: host code can always
// read and write through the returned slices. Heap is useful for tests
// and for platforms without mmap.
type Heap struct {
	data []byte

	mu    sync.Mutex
	perms map[uint32]Perm // page index -> permission, absent = PermReadWrite
}

var (
	_ Memory = (*Heap)(nil)
	_ Pager  = (*Heap)(nil)
)

// NewHeap allocates size bytes of zeroed guest memory.
func NewHeap(size uint32) *Heap {
	return &Heap{
		data:  make([]byte, size),
		perms: make(map[uint32]Perm),
	}
}

// Size returns the number of addressable bytes.
func (h *Heap) Size() uint64 {
	return uint64(len(h.data))
}

// Bytes returns a slice aliasing n bytes at addr.
func (h *Heap) Bytes(addr Address, n uint32) ([]byte, error) {
	if err := checkRange(addr, n, h.Size()); err != nil {
		return nil, err
	}
	return h.data[addr : uint32(addr)+n : uint32(addr)+n], nil
}

// PageSize returns DefaultPageSize.
func (h *Heap) PageSize() uint32 {
	return DefaultPageSize
}

// SetPermission records perm for every page in [addr, addr+size).
func (h *Heap) SetPermission(addr Address, size uint32, perm Perm) error {
	if err := checkPages(addr, size, DefaultPageSize, h.Size()); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for page := uint32(addr) / DefaultPageSize; page < (uint32(addr)+size)/DefaultPageSize; page++ {
		if perm == PermReadWrite {
			delete(h.perms, page)
		} else {
			h.perms[page] = perm
		}
	}
	return nil
}

// Permission returns the recorded permission of the page containing addr.
func (h *Heap) Permission(addr Address) Perm {
	h.mu.Lock()
	defer h.mu.Unlock()
	if p, ok := h.perms[uint32(addr)/DefaultPageSize]; ok {
		return p
	}
	return PermReadWrite
}
