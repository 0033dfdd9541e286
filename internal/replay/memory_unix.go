//go:build unix

package replay

import "github.com/gogpu/gxm/guest"

func newMapped(size uint32) (Memory, error) {
	return guest.NewMapped(size)
}
