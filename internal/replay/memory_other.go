//go:build !unix

package replay

import (
	"errors"

	"github.com/gogpu/gxm/config"
)

func newMapped(uint32) (Memory, error) {
	return nil, errors.New("replay: " + config.MemoryMapped + " memory needs a unix host")
}
