// Package protect tracks page protection of guest memory ranges.
//
// Guest color surfaces are protected so that an emulated application's
// access to pixels a backend has not yet written back can be trapped and
// synchronized. The Tracker is the single source of truth for which
// ranges are protected and by how many protectors:
//
//   - Protect and Release are balanced acquire/release operations. A range
//     stays protected while at least one protector holds it.
//   - Unprotect temporarily lifts protection on a range without dropping
//     any protector; Reprotect reasserts it.
//   - Segments are coarse parent ranges (for example a whole guest
//     allocation). OpenAccessToParent and CloseAccessToParent bracket an
//     access to anything inside a segment and must always be paired.
//
// Page permissions are applied through a guest.Pager. Changes are
// coalesced so the pager is only called for pages whose effective
// permission actually changes.
package protect
