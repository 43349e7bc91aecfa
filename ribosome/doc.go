// Package ribosome executes one zome function call end to end.
//
// A call is a strictly ordered, synchronous sequence: load the bytecode,
// bind the capability table as the guest's only import source, instantiate,
// stage the input into the fresh guest page, invoke the export with one
// encoded word, decode the returned word, and report. Each step depends on
// the previous one's success; every failure is classified (package errors)
// and returned, never retried and never allowed to crash the host, since
// the bytecode is untrusted input.
//
// Isolation is the design: a call owns its wazero runtime, instance, page
// and memory manager, all discarded at call end. The only state shared
// between concurrent calls is the immutable capability table and the
// configured Invoker.
package ribosome
