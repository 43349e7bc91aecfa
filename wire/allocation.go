package wire

import (
	"fmt"
	"math"

	"github.com/wippyai/zome-engine/errors"
)

// Allocation locates a payload inside the guest's linear-memory page.
// A zero length is not a valid allocation: "nothing was allocated" is
// expressed as the Success word, never as a zero-byte allocation.
type Allocation struct {
	Offset uint32
	Length uint32
}

// NewAllocation validates and builds an allocation descriptor.
// The page bound is supplied by the memory manager at read time, not here;
// this only rejects states no page size could make valid.
func NewAllocation(offset, length uint32) (Allocation, error) {
	if length == 0 {
		return Allocation{}, errors.InvalidEncoding("zero-sized allocation")
	}
	if uint64(offset)+uint64(length) > math.MaxUint32 {
		return Allocation{}, errors.OutOfBounds(
			fmt.Sprintf("allocation offset %d + length %d overflows 32 bits", offset, length))
	}
	return Allocation{Offset: offset, Length: length}, nil
}

// End returns the first byte offset past the allocation.
func (a Allocation) End() uint64 {
	return uint64(a.Offset) + uint64(a.Length)
}

// Word packs the allocation into the wire word: offset in the high
// 32 bits, length in the low 32.
func (a Allocation) Word() Word {
	return Word(a.Offset)<<32 | Word(a.Length)
}

// AllocationOf extracts a validated allocation from a decoded value.
// It fails when the value's tag is not TagData or when the descriptor's
// bounds cannot be valid for any page.
func AllocationOf(v Value) (Allocation, error) {
	if v.Tag() != TagData {
		return Allocation{}, errors.InvalidEncoding(
			fmt.Sprintf("word is %s, not an allocation", v.Tag()))
	}
	return NewAllocation(v.alloc.Offset, v.alloc.Length)
}
