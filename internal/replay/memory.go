package replay

import (
	"context"
	"fmt"

	"github.com/gogpu/gxm/config"
	"github.com/gogpu/gxm/guest"
	"github.com/gogpu/gxm/guest/wasmmem"
)

// Memory is guest memory that may hold OS or runtime resources.
type Memory interface {
	guest.Memory
	Close() error
}

type heapMemory struct{ *guest.Heap }

func (heapMemory) Close() error { return nil }

type wasmMemory struct {
	*wasmmem.Memory
	ctx context.Context
}

func (m wasmMemory) Close() error { return m.Memory.Close(m.ctx) }

// NewMemory creates guest memory as configured.
func NewMemory(ctx context.Context, cfg config.Memory) (Memory, error) {
	switch cfg.Kind {
	case config.MemoryHeap, "":
		return heapMemory{guest.NewHeap(cfg.Size)}, nil
	case config.MemoryMapped:
		return newMapped(cfg.Size)
	case config.MemoryWasm:
		pages := (uint64(cfg.Size) + wasmmem.PageSize - 1) / wasmmem.PageSize
		m, err := wasmmem.New(ctx, uint32(pages))
		if err != nil {
			return nil, err
		}
		return wasmMemory{Memory: m, ctx: context.WithoutCancel(ctx)}, nil
	default:
		return nil, fmt.Errorf("replay: unknown memory kind %q", cfg.Kind)
	}
}
