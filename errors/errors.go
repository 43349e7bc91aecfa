package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in the call sequence the error occurred
type Phase string

const (
	PhaseLoad        Phase = "load"        // bytecode parsing
	PhaseInstantiate Phase = "instantiate" // import binding and start routine
	PhaseMemory      Phase = "memory"      // guest memory allocation
	PhaseInvoke      Phase = "invoke"      // exported function call
	PhaseDecode      Phase = "decode"      // returned word and payload decoding
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidModule     Kind = "invalid_module"
	KindInstantiation     Kind = "instantiation"
	KindUnknownImport     Kind = "unknown_import"
	KindSignatureMismatch Kind = "signature_mismatch"
	KindTrap              Kind = "trap"
	KindNotFound          Kind = "not_found"
	KindOutOfMemory       Kind = "out_of_memory"
	KindZeroLength        Kind = "zero_length"
	KindOutOfBounds       Kind = "out_of_bounds"
	KindInvalidEncoding   Kind = "invalid_encoding"
	KindInvalidUTF8       Kind = "invalid_utf8"
	KindInvalidData       Kind = "invalid_data"
	KindCapabilityFailure Kind = "capability_failure"
)

// Error is the structured error type used throughout the engine.
// Every failure of a zome call is classified by Phase and Kind; none of
// them may escalate to a process abort, since the bytecode that provoked
// them is untrusted input.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Code   uint32 // guest failure code, set for KindCapabilityFailure
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by Phase and Kind
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether err (or any error it wraps) is an engine error
// with the given phase and kind.
func IsKind(err error, phase Phase, kind Kind) bool {
	var e *Error
	if !stderrors.As(err, &e) {
		return false
	}
	return e.Phase == phase && e.Kind == kind
}

// Convenience constructors, one per branch of the call error taxonomy

// Load creates a module loading error for structurally invalid bytecode
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidModule,
		Detail: detail,
		Cause:  cause,
	}
}

// Instantiation creates an instantiation error (unresolved import or a trap
// in the guest's start routine)
func Instantiation(cause error) *Error {
	return &Error{
		Phase: PhaseInstantiate,
		Kind:  KindInstantiation,
		Cause: cause,
	}
}

// UnknownImport creates an error for an import name outside the capability table
func UnknownImport(namespace, name string) *Error {
	return &Error{
		Phase:  PhaseInstantiate,
		Kind:   KindUnknownImport,
		Detail: fmt.Sprintf("host module doesn't export function %s.%s", namespace, name),
	}
}

// SignatureMismatch creates an error for a function whose declared signature
// disagrees with the expected one
func SignatureMismatch(phase Phase, name, expected string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindSignatureMismatch,
		Detail: fmt.Sprintf("function %q must have signature %s", name, expected),
	}
}

// Trap creates an error for abnormal guest termination
func Trap(phase Phase, what string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTrap,
		Detail: what,
		Cause:  cause,
	}
}

// NotFound creates a not-found error for a missing export
func NotFound(what, name string) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// OutOfMemory creates a guest page allocation error
func OutOfMemory(detail string) *Error {
	return &Error{
		Phase:  PhaseMemory,
		Kind:   KindOutOfMemory,
		Detail: detail,
	}
}

// ZeroLength marks a write with no bytes. It is a recognized no-op, not a
// call failure: callers map it to the Success word rather than reporting it.
func ZeroLength() *Error {
	return &Error{
		Phase:  PhaseMemory,
		Kind:   KindZeroLength,
		Detail: "zero-length write",
	}
}

// IsZeroLength reports whether err is the zero-length write marker
func IsZeroLength(err error) bool {
	return IsKind(err, PhaseMemory, KindZeroLength)
}

// OutOfBounds creates an error for an allocation descriptor that exceeds
// the guest page
func OutOfBounds(detail string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindOutOfBounds,
		Detail: detail,
	}
}

// InvalidEncoding creates an error for a returned word whose tag does not
// carry the expected payload
func InvalidEncoding(detail string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidEncoding,
		Detail: detail,
	}
}

// InvalidUTF8 creates an error for a returned payload that is not UTF-8 text
func InvalidUTF8(data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidUTF8,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// InvalidData creates an error for a payload that is not parseable as the
// structured result format
func InvalidData(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// CapabilityFailure creates an error for a failure code signaled explicitly
// by the guest. The code is opaque to the engine and passed through.
func CapabilityFailure(code uint32, detail string) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindCapabilityFailure,
		Detail: detail,
		Code:   code,
	}
}

// Wrap wraps an existing error with phase and kind classification
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
