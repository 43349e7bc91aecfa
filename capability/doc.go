// Package capability defines the fixed table of host functions a guest
// module may import.
//
// The table is a process-wide constant: a closed enumeration of names,
// indices and signatures under the single "env" namespace. Bodies live
// elsewhere (the ribosome dispatches them through its Invoker); this
// package only answers "is this import legal, and with what shape".
package capability
