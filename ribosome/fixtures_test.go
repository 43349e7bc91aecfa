package ribosome

import (
	"github.com/wippyai/zome-engine/internal/wasmbuild"
	"github.com/wippyai/zome-engine/wire"
)

// Guest fixtures assembled directly as wasm binaries. Every callable
// export uses the (i64) -> i64 convention unless a test needs it broken.

type wasmValType = wasmbuild.ValType

const (
	i64ValType = wasmbuild.I64
	i32ValType = wasmbuild.I32
)

// echoModule exports "echo" returning its argument word unchanged, so the
// staged input descriptor round-trips through the guest.
func echoModule() []byte {
	b := wasmbuild.New()
	ft := b.Type([]wasmbuild.ValType{wasmbuild.I64}, []wasmbuild.ValType{wasmbuild.I64})
	f := b.Func(ft, wasmbuild.Body(wasmbuild.LocalGet(0)))
	b.ExportFunc("echo", f)
	b.Memory(1, 1)
	b.ExportMemory("memory")
	return b.Bytes()
}

// constModule exports "main" returning a fixed word.
func constModule(word wire.Word) []byte {
	b := wasmbuild.New()
	ft := b.Type([]wasmbuild.ValType{wasmbuild.I64}, []wasmbuild.ValType{wasmbuild.I64})
	f := b.Func(ft, wasmbuild.Body(wasmbuild.I64Const(int64(word))))
	b.ExportFunc("main", f)
	b.Memory(1, 1)
	b.ExportMemory("memory")
	return b.Bytes()
}

// payloadModule places data at offset 1024 via a data segment and exports
// "main" returning a fixed word, typically a descriptor pointing at it.
func payloadModule(data []byte, word wire.Word) []byte {
	b := wasmbuild.New()
	ft := b.Type([]wasmbuild.ValType{wasmbuild.I64}, []wasmbuild.ValType{wasmbuild.I64})
	f := b.Func(ft, wasmbuild.Body(wasmbuild.I64Const(int64(word))))
	b.ExportFunc("main", f)
	b.Memory(1, 1)
	b.ExportMemory("memory")
	b.Data(1024, data)
	return b.Bytes()
}

// capabilityModule imports one standard capability and exports "main"
// forwarding its argument to it, returning whatever the host returned.
func capabilityModule(name string) []byte {
	b := wasmbuild.New()
	ft := b.Type([]wasmbuild.ValType{wasmbuild.I64}, []wasmbuild.ValType{wasmbuild.I64})
	imp := b.ImportFunc("env", name, ft)
	f := b.Func(ft, wasmbuild.Body(wasmbuild.LocalGet(0), wasmbuild.Call(imp)))
	b.ExportFunc("main", f)
	b.Memory(1, 1)
	b.ExportMemory("memory")
	return b.Bytes()
}

// importModule declares a single import with an arbitrary namespace, name
// and shape, plus a well-formed exported function.
func importModule(namespace, name string, params, results []wasmbuild.ValType) []byte {
	b := wasmbuild.New()
	impType := b.Type(params, results)
	ft := b.Type([]wasmbuild.ValType{wasmbuild.I64}, []wasmbuild.ValType{wasmbuild.I64})
	b.ImportFunc(namespace, name, impType)
	f := b.Func(ft, wasmbuild.Body(wasmbuild.LocalGet(0)))
	b.ExportFunc("main", f)
	return b.Bytes()
}

// trapModule exports "main" that hits unreachable immediately.
func trapModule() []byte {
	b := wasmbuild.New()
	ft := b.Type([]wasmbuild.ValType{wasmbuild.I64}, []wasmbuild.ValType{wasmbuild.I64})
	f := b.Func(ft, wasmbuild.Body(wasmbuild.Unreachable()))
	b.ExportFunc("main", f)
	return b.Bytes()
}

// startTrapModule declares a start routine that traps before any export
// can be called.
func startTrapModule() []byte {
	b := wasmbuild.New()
	startType := b.Type(nil, nil)
	ft := b.Type([]wasmbuild.ValType{wasmbuild.I64}, []wasmbuild.ValType{wasmbuild.I64})
	start := b.Func(startType, wasmbuild.Body(wasmbuild.Unreachable()))
	f := b.Func(ft, wasmbuild.Body(wasmbuild.LocalGet(0)))
	b.ExportFunc("main", f)
	b.Start(start)
	return b.Bytes()
}

// abortModule exports "main" that immediately calls the diagnostic abort
// capability with zeroed location words.
func abortModule() []byte {
	b := wasmbuild.New()
	abortType := b.Type([]wasmbuild.ValType{wasmbuild.I64, wasmbuild.I64, wasmbuild.I64, wasmbuild.I64}, nil)
	ft := b.Type([]wasmbuild.ValType{wasmbuild.I64}, []wasmbuild.ValType{wasmbuild.I64})
	imp := b.ImportFunc("env", "abort", abortType)
	f := b.Func(ft, wasmbuild.Body(
		wasmbuild.I64Const(0),
		wasmbuild.I64Const(0),
		wasmbuild.I64Const(0),
		wasmbuild.I64Const(0),
		wasmbuild.Call(imp),
		wasmbuild.I64Const(0),
	))
	b.ExportFunc("main", f)
	return b.Bytes()
}

// wrongSignatureModule exports "main" with an (i32) -> i32 shape that
// violates the calling convention.
func wrongSignatureModule() []byte {
	b := wasmbuild.New()
	ft := b.Type([]wasmbuild.ValType{wasmbuild.I32}, []wasmbuild.ValType{wasmbuild.I32})
	f := b.Func(ft, wasmbuild.Body(wasmbuild.LocalGet(0)))
	b.ExportFunc("main", f)
	return b.Bytes()
}

// loopModule exports "main" that never returns.
func loopModule() []byte {
	b := wasmbuild.New()
	ft := b.Type([]wasmbuild.ValType{wasmbuild.I64}, []wasmbuild.ValType{wasmbuild.I64})
	f := b.Func(ft, wasmbuild.Body(wasmbuild.LoopForever(), wasmbuild.I64Const(0)))
	b.ExportFunc("main", f)
	return b.Bytes()
}
