// Package zomeengine executes untrusted zome bytecode in a WebAssembly
// sandbox.
//
// A zome is one unit of application logic compiled to a core wasm module.
// The engine instantiates the module over wazero, exposes a fixed table of
// host capability functions under the "env" namespace, invokes one exported
// function with a single tagged 64-bit word, and decodes the returned word
// into a structured outcome.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	zome-engine/         Root package with the guest Memory interface
//	├── ribosome/        Execution driver: one synchronous zome call
//	├── capability/      Closed table of importable host functions
//	├── memory/          Single-page bump allocator over guest memory
//	├── wire/            Tagged 64-bit word codec and allocation descriptors
//	├── errors/          Structured error types for debugging
//	└── internal/        Test-support wasm binary assembly
//
// # Quick Start
//
// Execute one zome function:
//
//	r := ribosome.New()
//
//	outcome, err := r.Execute(ctx, "app", handle, wasmBytes,
//	    ribosome.Call{Zome: "blog", Function: "create_post"}, input)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(outcome.Value)
//
// Every call is fully isolated: it owns its wazero runtime, module instance
// and memory page, all discarded when the call returns. Concurrent calls
// never share mutable state.
package zomeengine
