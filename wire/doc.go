// Package wire implements the tagged 64-bit word format used across the
// host/guest boundary.
//
// One Word travels each way per call: the argument word tells the guest
// where its input lives, the return word tells the host what happened.
// Three variants share the word:
//
//	Success            word == 0
//	Failure(code)      high 32 bits = code, low 32 bits = 0
//	Data(allocation)   high 32 bits = offset, low 32 bits = length (nonzero)
//
// The scheme is unambiguous because zero-length allocations are excluded
// by construction: a write of no bytes maps to the Success word instead.
// Decode is total and Decode(v.Word()) == v for every constructible Value.
package wire
