// Package wasmmem provides guest memory backed by a WebAssembly linear
// memory, for emulated applications hosted inside a wazero runtime.
package wasmmem

import (
	"context"
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/gogpu/gxm/guest"
)

// PageSize is the WebAssembly page size.
const PageSize = 65536

// ErrNoMemory is returned when a module does not export a memory.
var ErrNoMemory = errors.New("wasmmem: module exports no memory")

// Memory adapts an api.Memory to guest.Memory.
//
// WebAssembly memory has no page protection, so Memory does not implement
// guest.Pager. Pair it with a logical pager when protection tracking is
// needed.
type Memory struct {
	mem     api.Memory
	runtime wazero.Runtime // owned runtime, nil when wrapping an external memory
}

var _ guest.Memory = (*Memory)(nil)

// Wrap adapts an existing exported memory. The caller keeps ownership of
// the module instance that exports it.
func Wrap(mem api.Memory) *Memory {
	return &Memory{mem: mem}
}

// New creates a private runtime holding a single module that exports a
// memory of the given number of 64KiB pages. Minimum and maximum are equal
// so host views returned by Bytes stay valid for the life of the Memory.
func New(ctx context.Context, pages uint32) (*Memory, error) {
	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithMemoryLimitPages(pages))

	mod, err := r.Instantiate(ctx, memoryModule(pages))
	if err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("wasmmem: instantiate: %w", err)
	}
	mem := mod.ExportedMemory("memory")
	if mem == nil {
		_ = r.Close(ctx)
		return nil, ErrNoMemory
	}
	return &Memory{mem: mem, runtime: r}, nil
}

// Size returns the current size of the linear memory in bytes.
func (m *Memory) Size() uint64 {
	return uint64(m.mem.Size())
}

// Bytes returns a write-through view of n bytes at addr.
func (m *Memory) Bytes(addr guest.Address, n uint32) ([]byte, error) {
	if addr.IsNull() {
		return nil, guest.ErrNullAddress
	}
	buf, ok := m.mem.Read(uint32(addr), n)
	if !ok {
		return nil, fmt.Errorf("%w: %s+%d exceeds %d", guest.ErrOutOfRange, addr, n, m.Size())
	}
	return buf, nil
}

// Close releases the runtime created by New. It is a no-op for wrapped memories.
func (m *Memory) Close(ctx context.Context) error {
	if m.runtime == nil {
		return nil
	}
	return m.runtime.Close(ctx)
}

// memoryModule encodes a minimal module: one memory of fixed size exported
// as "memory".
func memoryModule(pages uint32) []byte {
	limits := []byte{0x01} // has maximum
	limits = appendULEB128(limits, pages)
	limits = appendULEB128(limits, pages)

	memSection := append([]byte{0x01}, limits...) // one memory
	exportSection := []byte{
		0x01,                               // one export
		0x06, 'm', 'e', 'm', 'o', 'r', 'y', // name
		0x02, 0x00, // memory index 0
	}

	out := []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}
	out = appendSection(out, 0x05, memSection)
	out = appendSection(out, 0x07, exportSection)
	return out
}

func appendSection(out []byte, id byte, payload []byte) []byte {
	out = append(out, id)
	out = appendULEB128(out, uint32(len(payload)))
	return append(out, payload...)
}

func appendULEB128(out []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}
