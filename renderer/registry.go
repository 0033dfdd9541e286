package renderer

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/gxm/guest"
)

// BackendFactory creates a backend operating on mem.
type BackendFactory func(mem guest.Memory) (Backend, error)

// Registry state - protected by mutex for thread-safe access.
var (
	registryMu sync.RWMutex
	backends   = make(map[Kind]BackendFactory)
)

// Register registers a backend factory for kind.
// This function is typically called from init() in backend packages.
//
// Register panics if factory is nil or kind is already registered, so
// that duplicate registrations are caught during program initialization.
func Register(kind Kind, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("renderer: Register factory is nil")
	}
	if _, dup := backends[kind]; dup {
		panic("renderer: Register called twice for " + string(kind))
	}
	backends[kind] = factory
}

// Unregister removes a backend from the registry.
// This is primarily useful for testing. Unknown kinds are ignored.
func Unregister(kind Kind) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, kind)
}

// NewBackend creates a backend of the given kind.
// The error message includes a hint about forgotten imports.
func NewBackend(kind Kind, mem guest.Memory) (Backend, error) {
	registryMu.RLock()
	factory, ok := backends[kind]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("renderer: unknown backend %q (forgotten import?)", kind)
	}
	return factory(mem)
}

// MustBackend is like NewBackend but panics on error.
func MustBackend(kind Kind, mem guest.Memory) Backend {
	b, err := NewBackend(kind, mem)
	if err != nil {
		panic(err)
	}
	return b
}

// Backends returns the registered kinds sorted alphabetically.
func Backends() []Kind {
	registryMu.RLock()
	defer registryMu.RUnlock()

	kinds := make([]Kind, 0, len(backends))
	for k := range backends {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// IsRegistered reports whether kind is registered.
func IsRegistered(kind Kind) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[kind]
	return ok
}
