package protect

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/gogpu/gxm/guest"
)

// Errors returned by Tracker.
var (
	// ErrUnbalanced is returned when CloseAccessToParent is called more
	// often than OpenAccessToParent for a segment. It indicates a
	// programming defect in the caller.
	ErrUnbalanced = errors.New("protect: unbalanced parent access")

	// ErrNotTracked is returned when releasing a range that has no protector.
	ErrNotTracked = errors.New("protect: range not tracked")

	// ErrSegmentExists is returned when adding a segment twice.
	ErrSegmentExists = errors.New("protect: segment already registered")
)

// Region is a snapshot of a tracked protected range.
type Region struct {
	Addr guest.Address
	Size uint32
	Perm guest.Perm
	Refs int
}

// Contains reports whether addr falls inside the region.
func (r Region) Contains(addr guest.Address) bool {
	return addr >= r.Addr && uint64(addr) < uint64(r.Addr)+uint64(r.Size)
}

type rangeKey struct {
	addr guest.Address
	size uint32
}

type segment struct {
	base  guest.Address
	size  uint32
	perm  guest.Perm
	opens int
}

func (s *segment) contains(addr guest.Address) bool {
	return addr >= s.base && uint64(addr) < uint64(s.base)+uint64(s.size)
}

// Tracker is a reference counted table of protected guest ranges.
//
// Tracker is safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	pager    guest.Pager
	pageSize uint32

	regions  map[rangeKey]*Region
	segments map[guest.Address]*segment
	lifted   map[uint32]struct{}   // pages with protection temporarily lifted
	applied  map[uint32]guest.Perm // permission last applied per page, absent = read-write
}

// NewTracker creates a tracker that applies permissions through pager.
// A nil pager keeps protection purely logical.
func NewTracker(pager guest.Pager) *Tracker {
	pageSize := uint32(guest.DefaultPageSize)
	if pager != nil {
		pageSize = pager.PageSize()
	}
	return &Tracker{
		pager:    pager,
		pageSize: pageSize,
		regions:  make(map[rangeKey]*Region),
		segments: make(map[guest.Address]*segment),
		lifted:   make(map[uint32]struct{}),
		applied:  make(map[uint32]guest.Perm),
	}
}

// PageSize returns the protection granularity.
func (t *Tracker) PageSize() uint32 {
	return t.pageSize
}

// Protect acquires protection of [addr, addr+size) with perm.
// Protecting the same range again increments its reference count and
// keeps the most restrictive permission. Pages whose protection is
// currently lifted by Unprotect stay lifted until Reprotect.
func (t *Tracker) Protect(addr guest.Address, size uint32, perm guest.Perm) error {
	if size == 0 {
		return nil
	}
	if uint64(addr)+uint64(size) > 1<<32 {
		return fmt.Errorf("%w: %s+%d", guest.ErrOutOfRange, addr, size)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	key := rangeKey{addr, size}
	if r, ok := t.regions[key]; ok {
		r.Refs++
		r.Perm = min(r.Perm, perm)
	} else {
		t.regions[key] = &Region{Addr: addr, Size: size, Perm: perm, Refs: 1}
	}
	return t.apply(t.pageSpan(addr, size))
}

// Release drops one protector of [addr, addr+size). When the last
// protector is released the region is removed and its pages return to
// whatever the remaining regions and segments require.
func (t *Tracker) Release(addr guest.Address, size uint32) error {
	if size == 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	key := rangeKey{addr, size}
	r, ok := t.regions[key]
	if !ok {
		return fmt.Errorf("%w: %s+%d", ErrNotTracked, addr, size)
	}
	r.Refs--
	if r.Refs > 0 {
		return nil
	}
	delete(t.regions, key)

	first, last := t.pageSpan(addr, size)
	for p := first; p <= last; p++ {
		if !t.coveredLocked(p) {
			delete(t.lifted, p)
		}
	}
	return t.apply(first, last)
}

// Unprotect lifts protection of [addr, addr+size) so host code can access
// it. Reference counts are unchanged. Unprotecting a lifted or untracked
// range is a no-op.
func (t *Tracker) Unprotect(addr guest.Address, size uint32) error {
	if size == 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	first, last := t.pageSpan(addr, size)
	for p := first; p <= last; p++ {
		if t.coveredLocked(p) {
			t.lifted[p] = struct{}{}
		}
	}
	return t.apply(first, last)
}

// Reprotect reasserts protection lifted by Unprotect on [addr, addr+size).
// Pages no longer held by any protector are left untouched.
func (t *Tracker) Reprotect(addr guest.Address, size uint32) error {
	if size == 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	first, last := t.pageSpan(addr, size)
	for p := first; p <= last; p++ {
		delete(t.lifted, p)
	}
	return t.apply(first, last)
}

// IsProtected reports whether any protector holds a range containing addr.
func (t *Tracker) IsProtected(addr guest.Address) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.regions {
		if r.Contains(addr) {
			return true
		}
	}
	return false
}

// IsLifted reports whether protection of the page containing addr is
// currently lifted.
func (t *Tracker) IsLifted(addr guest.Address) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.lifted[uint32(addr)/t.pageSize]
	return ok
}

// Effective returns the permission currently applied to the page
// containing addr.
func (t *Tracker) Effective(addr guest.Address) guest.Perm {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.applied[uint32(addr)/t.pageSize]; ok {
		return p
	}
	return guest.PermReadWrite
}

// Refs returns the number of protectors of exactly [addr, addr+size).
func (t *Tracker) Refs(addr guest.Address, size uint32) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.regions[rangeKey{addr, size}]; ok {
		return r.Refs
	}
	return 0
}

// Regions returns a snapshot of all tracked regions ordered by address.
func (t *Tracker) Regions() []Region {
	t.mu.Lock()
	out := make([]Region, 0, len(t.regions))
	for _, r := range t.regions {
		out = append(out, *r)
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Addr != out[j].Addr {
			return out[i].Addr < out[j].Addr
		}
		return out[i].Size < out[j].Size
	})
	return out
}

// pageSpan returns the inclusive page range covering [addr, addr+size).
func (t *Tracker) pageSpan(addr guest.Address, size uint32) (first, last uint32) {
	end := uint64(addr) + uint64(size) - 1
	return uint32(addr) / t.pageSize, uint32(end / uint64(t.pageSize))
}

// coveredLocked reports whether any region touches page p.
func (t *Tracker) coveredLocked(p uint32) bool {
	lo := uint64(p) * uint64(t.pageSize)
	hi := lo + uint64(t.pageSize)
	for _, r := range t.regions {
		start := uint64(r.Addr)
		if start < hi && start+uint64(r.Size) > lo {
			return true
		}
	}
	return false
}

// effectiveLocked computes the permission page p must have.
func (t *Tracker) effectiveLocked(p uint32) guest.Perm {
	addr := guest.Address(p * t.pageSize)
	perm := guest.PermReadWrite

	for _, s := range t.segments {
		if !s.contains(addr) {
			continue
		}
		if s.opens > 0 {
			return guest.PermReadWrite
		}
		perm = min(perm, s.perm)
	}

	if _, ok := t.lifted[p]; ok {
		return perm
	}

	lo := uint64(addr)
	hi := lo + uint64(t.pageSize)
	for _, r := range t.regions {
		start := uint64(r.Addr)
		if start < hi && start+uint64(r.Size) > lo {
			perm = min(perm, r.Perm)
		}
	}
	return perm
}

// apply recomputes pages first..last and pushes changes to the pager,
// coalescing runs of pages that move to the same permission.
func (t *Tracker) apply(first, last uint32) error {
	var (
		runStart uint32
		runPerm  guest.Perm
		inRun    bool
		errs     []error
	)
	// A run may end at the top of the 32-bit guest space, so its byte span
	// is computed in uint64 and handed to the pager in chunks that fit.
	chunk := uint64(math.MaxUint32) / uint64(t.pageSize) * uint64(t.pageSize)
	flush := func(end uint64) {
		if !inRun {
			return
		}
		inRun = false
		if t.pager == nil {
			return
		}
		lo := uint64(runStart) * uint64(t.pageSize)
		hi := end * uint64(t.pageSize)
		for lo < hi {
			n := min(hi-lo, chunk)
			if err := t.pager.SetPermission(guest.Address(lo), uint32(n), runPerm); err != nil {
				errs = append(errs, err)
			}
			lo += n
		}
	}

	for p := first; ; p++ {
		want := t.effectiveLocked(p)
		have, ok := t.applied[p]
		if !ok {
			have = guest.PermReadWrite
		}

		if want == have {
			flush(uint64(p))
		} else {
			if inRun && runPerm != want {
				flush(uint64(p))
			}
			if !inRun {
				runStart, runPerm, inRun = p, want, true
			}
			if want == guest.PermReadWrite {
				delete(t.applied, p)
			} else {
				t.applied[p] = want
			}
		}

		if p == last {
			flush(uint64(p) + 1)
			break
		}
	}
	return errors.Join(errs...)
}
