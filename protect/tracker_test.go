package protect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/gxm/guest"
)

const page = guest.DefaultPageSize

type pagerCall struct {
	addr guest.Address
	size uint32
	perm guest.Perm
}

// recordingPager records every permission change.
type recordingPager struct {
	calls []pagerCall
	fail  error
}

func (p *recordingPager) PageSize() uint32 { return page }

func (p *recordingPager) SetPermission(addr guest.Address, size uint32, perm guest.Perm) error {
	if p.fail != nil {
		return p.fail
	}
	p.calls = append(p.calls, pagerCall{addr, size, perm})
	return nil
}

func TestProtectAppliesPageAlignedPermission(t *testing.T) {
	pager := &recordingPager{}
	tr := NewTracker(pager)

	require.NoError(t, tr.Protect(0x10010, 3*page, guest.PermNone))

	// 0x10010+3 pages touches four pages starting at 0x10000.
	require.Len(t, pager.calls, 1)
	assert.Equal(t, pagerCall{0x10000, 4 * page, guest.PermNone}, pager.calls[0])
	assert.True(t, tr.IsProtected(0x10010))
	assert.False(t, tr.IsProtected(0x10000))
	assert.Equal(t, guest.PermNone, tr.Effective(0x10000))
}

func TestProtectIsReferenceCounted(t *testing.T) {
	pager := &recordingPager{}
	tr := NewTracker(pager)

	require.NoError(t, tr.Protect(0x20000, page, guest.PermNone))
	require.NoError(t, tr.Protect(0x20000, page, guest.PermNone))
	assert.Equal(t, 2, tr.Refs(0x20000, page))
	assert.Len(t, pager.calls, 1, "second protect must not touch the pager")

	require.NoError(t, tr.Release(0x20000, page))
	assert.True(t, tr.IsProtected(0x20000))
	assert.Equal(t, guest.PermNone, tr.Effective(0x20000))

	require.NoError(t, tr.Release(0x20000, page))
	assert.False(t, tr.IsProtected(0x20000))
	assert.Equal(t, guest.PermReadWrite, tr.Effective(0x20000))
	assert.Empty(t, tr.Regions())

	require.Len(t, pager.calls, 2)
	assert.Equal(t, pagerCall{0x20000, page, guest.PermReadWrite}, pager.calls[1])
}

func TestReleaseUntracked(t *testing.T) {
	tr := NewTracker(nil)
	err := tr.Release(0x1000, page)
	assert.True(t, errors.Is(err, ErrNotTracked))
}

func TestUnprotectKeepsProtectors(t *testing.T) {
	pager := &recordingPager{}
	tr := NewTracker(pager)

	require.NoError(t, tr.Protect(0x30000, 2*page, guest.PermNone))
	require.NoError(t, tr.Unprotect(0x30000, 2*page))

	assert.True(t, tr.IsProtected(0x30000), "unprotect must not drop protectors")
	assert.True(t, tr.IsLifted(0x30000))
	assert.Equal(t, guest.PermReadWrite, tr.Effective(0x30000))

	// Lifting twice is idempotent.
	calls := len(pager.calls)
	require.NoError(t, tr.Unprotect(0x30000, 2*page))
	assert.Len(t, pager.calls, calls)

	require.NoError(t, tr.Reprotect(0x30000, 2*page))
	assert.False(t, tr.IsLifted(0x30000))
	assert.Equal(t, guest.PermNone, tr.Effective(0x30000))
	assert.Equal(t, pagerCall{0x30000, 2 * page, guest.PermNone}, pager.calls[len(pager.calls)-1])
}

func TestUnprotectUntrackedIsNoop(t *testing.T) {
	pager := &recordingPager{}
	tr := NewTracker(pager)

	require.NoError(t, tr.Unprotect(0x40000, page))
	require.NoError(t, tr.Reprotect(0x40000, page))
	assert.Empty(t, pager.calls)
	assert.False(t, tr.IsLifted(0x40000))
}

func TestReprotectAfterReleaseLeavesPagesOpen(t *testing.T) {
	pager := &recordingPager{}
	tr := NewTracker(pager)

	require.NoError(t, tr.Protect(0x50000, page, guest.PermNone))
	require.NoError(t, tr.Unprotect(0x50000, page))
	require.NoError(t, tr.Release(0x50000, page))
	calls := len(pager.calls)

	require.NoError(t, tr.Reprotect(0x50000, page))
	assert.Len(t, pager.calls, calls)
	assert.Equal(t, guest.PermReadWrite, tr.Effective(0x50000))
}

func TestOverlappingRegionsShareProtection(t *testing.T) {
	tr := NewTracker(&recordingPager{})

	require.NoError(t, tr.Protect(0x60000, 2*page, guest.PermNone))
	require.NoError(t, tr.Protect(0x61000, 2*page, guest.PermRead))

	assert.Equal(t, guest.PermNone, tr.Effective(0x61000), "most restrictive wins")
	assert.Equal(t, guest.PermRead, tr.Effective(0x62000))

	require.NoError(t, tr.Release(0x60000, 2*page))
	assert.Equal(t, guest.PermReadWrite, tr.Effective(0x60000))
	assert.Equal(t, guest.PermRead, tr.Effective(0x61000), "shared page stays protected")
	assert.True(t, tr.IsProtected(0x61000))
}

func TestSegmentAccessIsPaired(t *testing.T) {
	pager := &recordingPager{}
	tr := NewTracker(pager)

	require.NoError(t, tr.AddSegment(0x100000, 16*page, guest.PermRead))
	require.NoError(t, tr.Protect(0x102000, page, guest.PermNone))
	assert.Equal(t, guest.PermRead, tr.Effective(0x100000))
	assert.Equal(t, guest.PermNone, tr.Effective(0x102000))

	require.NoError(t, tr.OpenAccessToParent(0x102000))
	require.NoError(t, tr.OpenAccessToParent(0x103000))
	assert.Equal(t, 2, tr.OpenCount(0x100000))
	assert.Equal(t, guest.PermReadWrite, tr.Effective(0x102000))

	require.NoError(t, tr.CloseAccessToParent(0x102000))
	assert.Equal(t, guest.PermReadWrite, tr.Effective(0x102000), "still open by one accessor")

	require.NoError(t, tr.CloseAccessToParent(0x102000))
	assert.Equal(t, 0, tr.OpenCount(0x100000))
	assert.Equal(t, guest.PermRead, tr.Effective(0x100000))
	assert.Equal(t, guest.PermNone, tr.Effective(0x102000))

	err := tr.CloseAccessToParent(0x102000)
	assert.True(t, errors.Is(err, ErrUnbalanced))
}

func TestSegmentOutsideAddressIsIgnored(t *testing.T) {
	tr := NewTracker(nil)
	require.NoError(t, tr.OpenAccessToParent(0x9000))
	require.NoError(t, tr.CloseAccessToParent(0x9000))
	require.NoError(t, tr.CloseAccessToParent(0x9000))
	assert.Equal(t, 0, tr.OpenCount(0x9000))
}

func TestAddSegmentTwice(t *testing.T) {
	tr := NewTracker(nil)
	require.NoError(t, tr.AddSegment(0x100000, page, guest.PermNone))
	assert.True(t, errors.Is(tr.AddSegment(0x100000, page, guest.PermNone), ErrSegmentExists))

	require.NoError(t, tr.RemoveSegment(0x100000))
	assert.Equal(t, guest.PermReadWrite, tr.Effective(0x100000))
	assert.True(t, errors.Is(tr.RemoveSegment(0x100000), ErrNotTracked))
}

func TestPagerErrorIsReturned(t *testing.T) {
	boom := errors.New("boom")
	tr := NewTracker(&recordingPager{fail: boom})
	assert.ErrorIs(t, tr.Protect(0x1000, page, guest.PermNone), boom)
}

func TestRegionsSnapshotOrdered(t *testing.T) {
	tr := NewTracker(nil)
	require.NoError(t, tr.Protect(0x3000, page, guest.PermNone))
	require.NoError(t, tr.Protect(0x1000, page, guest.PermRead))

	regions := tr.Regions()
	require.Len(t, regions, 2)
	assert.Equal(t, guest.Address(0x1000), regions[0].Addr)
	assert.Equal(t, guest.Address(0x3000), regions[1].Addr)
	assert.True(t, regions[1].Contains(0x3FFF))
	assert.False(t, regions[1].Contains(0x4000))
}

func TestTrackerWithHeapPager(t *testing.T) {
	heap := guest.NewHeap(1 << 20)
	tr := NewTracker(heap)

	require.NoError(t, tr.Protect(0x8000, 100, guest.PermNone))
	assert.Equal(t, guest.PermNone, heap.Permission(0x8000))

	require.NoError(t, tr.Unprotect(0x8000, 100))
	assert.Equal(t, guest.PermReadWrite, heap.Permission(0x8000))

	require.NoError(t, tr.Reprotect(0x8000, 100))
	require.NoError(t, tr.Release(0x8000, 100))
	assert.Equal(t, guest.PermReadWrite, heap.Permission(0x8000))
}

func TestProtectTopOfAddressSpace(t *testing.T) {
	pager := &recordingPager{}
	tr := NewTracker(pager)

	const top = guest.Address(1<<32 - page)
	require.NoError(t, tr.Protect(top, page, guest.PermNone))
	require.NoError(t, tr.Release(top, page))
	assert.Equal(t, []pagerCall{
		{top, page, guest.PermNone},
		{top, page, guest.PermReadWrite},
	}, pager.calls)
}

func TestProtectWholeAddressSpaceSplitsRun(t *testing.T) {
	pager := &recordingPager{}
	tr := NewTracker(pager)

	require.NoError(t, tr.Protect(0, 1<<32-1, guest.PermRead))
	// 4 GiB does not fit one pager call; the run is split at the last page.
	assert.Equal(t, []pagerCall{
		{0, 1<<32 - page, guest.PermRead},
		{1<<32 - page, page, guest.PermRead},
	}, pager.calls)
	assert.Equal(t, guest.PermRead, tr.Effective(1<<32-1))
}

func TestProtectPastAddressSpace(t *testing.T) {
	tr := NewTracker(&recordingPager{})
	err := tr.Protect(1<<32-page, 2*page, guest.PermNone)
	assert.ErrorIs(t, err, guest.ErrOutOfRange)
	assert.Empty(t, tr.Regions())
	assert.ErrorIs(t, tr.AddSegment(1<<32-page, 2*page, guest.PermNone), guest.ErrOutOfRange)
}
