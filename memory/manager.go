package memory

import (
	"fmt"
	"math"

	zomeengine "github.com/wippyai/zome-engine"
	"github.com/wippyai/zome-engine/errors"
	"github.com/wippyai/zome-engine/wire"
)

// PageManager is a bump allocator over one guest linear-memory region.
// Each call owns a fresh manager and never frees: the page is torn down
// with the module instance at call end, so there is no reuse to track.
//
// Not safe for concurrent use; a manager belongs to exactly one call.
type PageManager struct {
	mem       zomeengine.Memory
	allocated uint32
}

// NewPageManager builds a manager over mem. A nil mem is legal for guests
// that export no memory; any actual write or read then fails.
func NewPageManager(mem zomeengine.Memory) *PageManager {
	return &PageManager{mem: mem}
}

// Write places data at the current bump offset and advances it.
//
// An empty data is not a failure: it returns the zero-length marker
// (errors.IsZeroLength) so callers can map "nothing to allocate" to the
// Success word. The page is never grown here; growth, if any, happened at
// instantiation.
func (m *PageManager) Write(data []byte) (wire.Allocation, error) {
	if len(data) == 0 {
		return wire.Allocation{}, errors.ZeroLength()
	}
	if m.mem == nil {
		return wire.Allocation{}, errors.OutOfMemory("guest exports no memory")
	}
	if uint64(len(data)) > math.MaxUint32 {
		return wire.Allocation{}, errors.OutOfMemory(
			fmt.Sprintf("write of %d bytes exceeds the addressable page", len(data)))
	}

	offset := m.allocated
	end := uint64(offset) + uint64(len(data))
	if end > uint64(m.mem.Size()) {
		return wire.Allocation{}, errors.OutOfMemory(
			fmt.Sprintf("write of %d bytes at offset %d exceeds page size %d",
				len(data), offset, m.mem.Size()))
	}

	if err := m.mem.Write(offset, data); err != nil {
		return wire.Allocation{}, errors.Wrap(
			errors.PhaseMemory, errors.KindOutOfMemory, err, "write guest memory")
	}

	alloc, err := wire.NewAllocation(offset, uint32(len(data)))
	if err != nil {
		return wire.Allocation{}, err
	}

	m.allocated = uint32(end)
	return alloc, nil
}

// Read copies the allocation's bytes out of guest memory into host-owned
// storage. Reads are bounds-checked against the current page size; an
// out-of-range descriptor fails instead of reading adjacent memory.
func (m *PageManager) Read(a wire.Allocation) ([]byte, error) {
	if m.mem == nil {
		return nil, errors.OutOfBounds("guest exports no memory")
	}
	if a.End() > uint64(m.mem.Size()) {
		return nil, errors.OutOfBounds(
			fmt.Sprintf("allocation offset %d length %d exceeds page size %d",
				a.Offset, a.Length, m.mem.Size()))
	}

	data, err := m.mem.Read(a.Offset, a.Length)
	if err != nil {
		return nil, errors.Wrap(
			errors.PhaseDecode, errors.KindOutOfBounds, err, "read guest memory")
	}
	return data, nil
}

// Allocated returns the total bytes handed out so far.
func (m *PageManager) Allocated() uint32 {
	return m.allocated
}
