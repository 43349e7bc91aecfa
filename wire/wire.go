package wire

import (
	"fmt"
)

// Word is the single 64-bit integer exchanged per call across the
// host/guest boundary, both as the call argument and as the return value.
// The embedding interpreter's function-call interface passes exactly one
// integer each way, so tag and payload must share this one word.
type Word uint64

// Tag identifies which variant of a Value is active.
type Tag uint8

const (
	// TagSuccess marks a call that completed with no payload. The same
	// word doubles as the "empty argument" signal when staging input.
	TagSuccess Tag = iota

	// TagFailure marks a guest-signaled failure carrying a numeric code.
	TagFailure

	// TagData marks a result whose payload lives in guest memory at the
	// carried allocation.
	TagData
)

func (t Tag) String() string {
	switch t {
	case TagSuccess:
		return "success"
	case TagFailure:
		return "failure"
	case TagData:
		return "data"
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// Code is a guest failure code. Codes pass through the engine opaquely;
// a handful of well-known values have names for log readability only.
type Code uint32

const (
	CodeUnspecified Code = iota + 1
	CodeArgumentDeserialization
	CodeOutOfMemory
	CodeCallbackFailed
	CodeNotAnAllocation
	CodeZeroSizedAllocation
	CodeEntryNotFound
)

func (c Code) String() string {
	switch c {
	case CodeUnspecified:
		return "unspecified"
	case CodeArgumentDeserialization:
		return "argument deserialization failed"
	case CodeOutOfMemory:
		return "out of memory"
	case CodeCallbackFailed:
		return "callback failed"
	case CodeNotAnAllocation:
		return "not an allocation"
	case CodeZeroSizedAllocation:
		return "zero-sized allocation"
	case CodeEntryNotFound:
		return "entry not found"
	}
	return fmt.Sprintf("code %d", uint32(c))
}

// Value is the tagged result exchanged as a Word. Exactly one variant is
// active: Success, Failure(code) or Data(allocation).
type Value struct {
	tag   Tag
	code  Code
	alloc Allocation
}

// Success returns the no-payload value. Its word is zero.
func Success() Value {
	return Value{tag: TagSuccess}
}

// Failure returns a guest failure value. A zero code is normalized to
// CodeUnspecified; the wire format cannot distinguish Failure(0) from
// Success.
func Failure(code Code) Value {
	if code == 0 {
		code = CodeUnspecified
	}
	return Value{tag: TagFailure, code: code}
}

// Data returns a value whose payload lives at a in guest memory.
// a must come from NewAllocation or Decode, so its length is nonzero.
func Data(a Allocation) Value {
	return Value{tag: TagData, alloc: a}
}

func (v Value) Tag() Tag { return v.tag }

// Code returns the failure code. Meaningful only when Tag is TagFailure.
func (v Value) Code() Code { return v.code }

// Allocation returns the payload location. Meaningful only when Tag is
// TagData.
func (v Value) Allocation() Allocation { return v.alloc }

func (v Value) String() string {
	switch v.tag {
	case TagFailure:
		return fmt.Sprintf("failure: %s", v.code)
	case TagData:
		return fmt.Sprintf("data at offset %d length %d", v.alloc.Offset, v.alloc.Length)
	}
	return "success"
}

// Word encodes v into the wire word.
//
// Layout: the high 32 bits are the allocation offset, the low 32 bits the
// allocation length. Valid allocations always have a nonzero length, so
// words with a zero length field are free to carry a code in the offset
// field instead: zero for Success, the failure code otherwise.
func (v Value) Word() Word {
	switch v.tag {
	case TagFailure:
		return Word(v.code) << 32
	case TagData:
		return v.alloc.Word()
	}
	return 0
}

// Decode interprets a wire word. It is total: every word decodes to
// exactly one Value, and Decode(v.Word()) == v for every constructible v.
// Bounds of a decoded allocation are validated against the live page only
// when the payload is read, since the page size is not part of the word.
func Decode(w Word) Value {
	length := uint32(w)
	high := uint32(w >> 32)

	if length == 0 {
		if high == 0 {
			return Success()
		}
		return Failure(Code(high))
	}
	return Data(Allocation{Offset: high, Length: length})
}
