package protect

import (
	"fmt"

	"github.com/gogpu/gxm/guest"
)

// AddSegment registers a coarse parent range protected with perm while no
// accessor has it open.
func (t *Tracker) AddSegment(base guest.Address, size uint32, perm guest.Perm) error {
	if uint64(base)+uint64(size) > 1<<32 {
		return fmt.Errorf("%w: %s+%d", guest.ErrOutOfRange, base, size)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.segments[base]; ok {
		return fmt.Errorf("%w: %s", ErrSegmentExists, base)
	}
	t.segments[base] = &segment{base: base, size: size, perm: perm}
	if size == 0 {
		return nil
	}
	return t.apply(t.pageSpan(base, size))
}

// RemoveSegment unregisters the segment starting at base.
func (t *Tracker) RemoveSegment(base guest.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.segments[base]
	if !ok {
		return fmt.Errorf("%w: segment %s", ErrNotTracked, base)
	}
	delete(t.segments, base)
	if s.size == 0 {
		return nil
	}
	return t.apply(t.pageSpan(s.base, s.size))
}

// OpenAccessToParent opens access to the segment containing addr. While a
// segment is open every page in it is accessible. Addresses outside any
// segment are ignored.
func (t *Tracker) OpenAccessToParent(addr guest.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.segmentLocked(addr)
	if s == nil {
		return nil
	}
	s.opens++
	if s.opens > 1 || s.size == 0 {
		return nil
	}
	return t.apply(t.pageSpan(s.base, s.size))
}

// CloseAccessToParent closes one access opened by OpenAccessToParent.
// When the last accessor closes, the segment and the regions inside it
// are protected again.
func (t *Tracker) CloseAccessToParent(addr guest.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.segmentLocked(addr)
	if s == nil {
		return nil
	}
	if s.opens == 0 {
		return fmt.Errorf("%w: segment %s", ErrUnbalanced, s.base)
	}
	s.opens--
	if s.opens > 0 || s.size == 0 {
		return nil
	}
	return t.apply(t.pageSpan(s.base, s.size))
}

// OpenCount returns how many accessors have the segment containing addr open.
func (t *Tracker) OpenCount(addr guest.Address) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s := t.segmentLocked(addr); s != nil {
		return s.opens
	}
	return 0
}

// segmentLocked returns the innermost segment containing addr.
func (t *Tracker) segmentLocked(addr guest.Address) *segment {
	var best *segment
	for _, s := range t.segments {
		if s.contains(addr) && (best == nil || s.size < best.size) {
			best = s
		}
	}
	return best
}
