// Package errors provides structured error types for the zome engine.
//
// Errors are categorized by Phase (where in the call sequence the error
// occurred) and Kind (error category). Matching works through errors.Is/As
// by Phase and Kind:
//
//	if errors.IsKind(err, errors.PhaseInstantiate, errors.KindUnknownImport) {
//	    // guest declared an import outside the capability table
//	}
//
// The zero-length write marker is deliberately part of this package even
// though it is not a failure: it travels the error return path but callers
// recognize it with IsZeroLength and treat it as "nothing to allocate".
package errors
