package ribosome

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	zomeengine "github.com/wippyai/zome-engine"
	"github.com/wippyai/zome-engine/errors"
	"github.com/wippyai/zome-engine/memory"
	"github.com/wippyai/zome-engine/wire"
)

// Ribosome executes zome functions. It is immutable after construction
// and safe for concurrent use: every call builds its own runtime, module
// instance and memory page, so calls never share mutable state.
type Ribosome struct {
	invoker          Invoker
	memoryLimitPages uint32
	callTimeout      time.Duration
}

type Option func(*Ribosome)

// WithInvoker supplies the bodies of the standard capability functions.
// Without one, every capability call returns the unspecified failure word.
func WithInvoker(inv Invoker) Option {
	return func(r *Ribosome) { r.invoker = inv }
}

// WithMemoryLimitPages caps each instance's memory in 64KiB pages.
func WithMemoryLimitPages(pages uint32) Option {
	return func(r *Ribosome) { r.memoryLimitPages = pages }
}

// WithCallTimeout bounds guest execution per call. Guest code is untrusted
// and may loop forever; with a timeout the runtime is armed to terminate
// in-flight execution when the deadline passes, surfacing as a trap.
func WithCallTimeout(d time.Duration) Option {
	return func(r *Ribosome) { r.callTimeout = d }
}

func New(opts ...Option) *Ribosome {
	r := &Ribosome{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Outcome is the terminal result of a successful zome call: the payload
// parsed as JSON plus its raw bytes. A call that returned the bare
// Success word carries a nil Value and nil Raw.
type Outcome struct {
	Value any
	Raw   []byte
}

// Execute runs one exported zome function to completion.
//
// bytecode is consumed for this call only and never retained. input may be
// empty. The sequence is strictly ordered: load, bind imports,
// instantiate, stage input, invoke, decode, report. Every failure
// classifies into the error taxonomy in package errors and terminates the
// call; nothing is retried and no guest behavior can abort the process.
//
// Exactly one diagnostic line is emitted to handle per completed call,
// success or failure.
func (r *Ribosome) Execute(ctx context.Context, zomeName string, handle Handle, bytecode []byte, call Call, input []byte) (*Outcome, error) {
	outcome, summary, err := r.run(ctx, zomeName, handle, bytecode, call, input)
	if err != nil {
		summary = err.Error()
	}

	if handle != nil {
		handle.Log(fmt.Sprintf("zome: function '%s' returned: %s", call.Function, summary))
	}
	Logger().Debug("zome call completed",
		zap.String("zome", zomeName),
		zap.String("function", call.Function),
		zap.String("outcome", summary))

	return outcome, err
}

func (r *Ribosome) run(ctx context.Context, zomeName string, handle Handle, bytecode []byte, call Call, input []byte) (*Outcome, string, error) {
	if r.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.callTimeout)
		defer cancel()
	}

	cfg := wazero.NewRuntimeConfig()
	if r.memoryLimitPages > 0 {
		cfg = cfg.WithMemoryLimitPages(r.memoryLimitPages)
	}
	if r.callTimeout > 0 {
		cfg = cfg.WithCloseOnContextDone(true)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, cfg)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, bytecode)
	if err != nil {
		return nil, "", errors.Load("compile module", err)
	}

	if err := checkImports(compiled); err != nil {
		return nil, "", err
	}

	state := &CallState{Handle: handle, ZomeName: zomeName, Call: call}

	if err := r.bindCapabilities(ctx, rt, state); err != nil {
		return nil, "", errors.Instantiation(err)
	}

	// Runs the module's start routine, if it declares one.
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithStartFunctions())
	if err != nil {
		return nil, "", errors.Instantiation(err)
	}

	var guest zomeengine.Memory
	if m := mod.Memory(); m != nil {
		guest = wazeroMemory{mem: m}
	}
	state.Memory = memory.NewPageManager(guest)

	argWord, err := stageInput(state.Memory, input)
	if err != nil {
		return nil, "", err
	}

	fn := mod.ExportedFunction(call.Function)
	if fn == nil {
		return nil, "", errors.NotFound("exported function", call.Function)
	}
	if err := checkExportSignature(fn.Definition(), call.Function); err != nil {
		return nil, "", err
	}

	results, err := fn.Call(ctx, uint64(argWord))
	if err != nil {
		return nil, "", errors.Trap(errors.PhaseInvoke, fmt.Sprintf("call %q", call.Function), err)
	}

	return decodeReturn(state, wire.Decode(wire.Word(results[0])))
}

// stageInput writes the call input into the guest page and returns the
// argument word. An empty input is deliberately staged as the Success
// word: "no allocation" shares the tag of a trivially successful result,
// and guest-side decoding depends on that overload.
func stageInput(mm *memory.PageManager, input []byte) (wire.Word, error) {
	alloc, err := mm.Write(input)
	switch {
	case errors.IsZeroLength(err):
		return wire.Success().Word(), nil
	case err != nil:
		return 0, err
	}
	return alloc.Word(), nil
}

// decodeReturn interprets the guest's return word and produces the final
// outcome plus a short textual summary for the call's log line.
func decodeReturn(state *CallState, ret wire.Value) (*Outcome, string, error) {
	switch ret.Tag() {
	case wire.TagFailure:
		code := ret.Code()
		return nil, "", errors.CapabilityFailure(uint32(code), code.String())

	case wire.TagData:
		alloc, err := wire.AllocationOf(ret)
		if err != nil {
			return nil, "", err
		}
		raw, err := state.Memory.Read(alloc)
		if err != nil {
			return nil, "", err
		}
		if !utf8.Valid(raw) {
			return nil, "", errors.InvalidUTF8(raw)
		}
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, "", errors.InvalidData("parse structured result", err)
		}
		return &Outcome{Value: value, Raw: raw}, string(raw), nil
	}

	return &Outcome{}, ret.String(), nil
}
