package ribosome

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/zome-engine/capability"
	"github.com/wippyai/zome-engine/errors"
	"github.com/wippyai/zome-engine/wire"
)

var (
	stdParams   = []api.ValueType{api.ValueTypeI64}
	stdResults  = []api.ValueType{api.ValueTypeI64}
	abortParams = []api.ValueType{api.ValueTypeI64, api.ValueTypeI64, api.ValueTypeI64, api.ValueTypeI64}
)

// checkImports validates every import the guest declares against the
// capability table before instantiation, so unknown names and mismatched
// signatures fail with a precise classification instead of a generic
// linking error.
func checkImports(compiled wazero.CompiledModule) error {
	for _, def := range compiled.ImportedFunctions() {
		moduleName, name, _ := def.Import()
		if moduleName != capability.Namespace {
			return errors.UnknownImport(moduleName, name)
		}

		fn, err := capability.Resolve(name)
		if err != nil {
			return err
		}

		sig := fn.Signature()
		if !allI64(def.ParamTypes(), sig.Params) || !allI64(def.ResultTypes(), sig.Results) {
			return errors.SignatureMismatch(errors.PhaseInstantiate, name, sig.String())
		}
	}
	return nil
}

func allI64(types []api.ValueType, count int) bool {
	if len(types) != count {
		return false
	}
	for _, t := range types {
		if t != api.ValueTypeI64 {
			return false
		}
	}
	return true
}

// checkExportSignature enforces the calling convention on the invoked
// export: one encoded word in, one encoded word out.
func checkExportSignature(def api.FunctionDefinition, name string) error {
	if !allI64(def.ParamTypes(), 1) || !allI64(def.ResultTypes(), 1) {
		return errors.SignatureMismatch(errors.PhaseInvoke, name, "(1 x i64) -> i64")
	}
	return nil
}

// bindCapabilities instantiates the "env" host module into this call's
// runtime. Handlers close over the per-call state; the table itself is
// the immutable process-wide constant in package capability.
func (r *Ribosome) bindCapabilities(ctx context.Context, rt wazero.Runtime, state *CallState) error {
	builder := rt.NewHostModuleBuilder(capability.Namespace)

	for _, fn := range capability.All() {
		fn := fn

		if fn == capability.Abort {
			builder.NewFunctionBuilder().
				WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
					r.abort(state, stack)
				}), abortParams, nil).
				Export(fn.Name())
			continue
		}

		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, _ api.Module, stack []uint64) {
				stack[0] = uint64(r.dispatch(ctx, state, fn, wire.Word(stack[0])))
			}), stdParams, stdResults).
			Export(fn.Name())
	}

	_, err := builder.Instantiate(ctx)
	return err
}

// dispatch routes a standard capability call to the configured invoker.
// Invoker errors never propagate as host failures; the guest sees a
// failure word and decides what to do with it.
func (r *Ribosome) dispatch(ctx context.Context, state *CallState, fn capability.Func, arg wire.Word) wire.Word {
	if r.invoker == nil {
		return wire.Failure(wire.CodeUnspecified).Word()
	}

	out, err := r.invoker.Invoke(ctx, state, fn, arg)
	if err != nil {
		Logger().Debug("capability invocation failed",
			zap.Stringer("capability", fn),
			zap.String("function", state.Call.Function),
			zap.Error(err))
		return wire.Failure(wire.CodeCallbackFailed).Word()
	}
	return out
}

// abort receives fatal guest-side allocator errors. The four words carry
// message, file, line and column as the guest encoded them. Execution
// cannot continue past it, so the pending call is trapped.
func (r *Ribosome) abort(state *CallState, stack []uint64) {
	detail := fmt.Sprintf("guest abort: msg=%#x file=%#x line=%d column=%d",
		stack[0], stack[1], stack[2], stack[3])
	Logger().Debug("guest abort",
		zap.String("zome", state.ZomeName),
		zap.String("function", state.Call.Function),
		zap.String("detail", detail))
	panic(detail)
}

// wazeroMemory adapts a wazero linear memory to the engine Memory
// interface. Reads copy out of the instance's view so the result stays
// valid after the instance is gone.
type wazeroMemory struct {
	mem api.Memory
}

func (m wazeroMemory) Read(offset, length uint32) ([]byte, error) {
	view, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("read [%d, %d) outside guest memory", offset, uint64(offset)+uint64(length))
	}
	out := make([]byte, len(view))
	copy(out, view)
	return out, nil
}

func (m wazeroMemory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return fmt.Errorf("write [%d, %d) outside guest memory", offset, uint64(offset)+uint64(len(data)))
	}
	return nil
}

func (m wazeroMemory) Size() uint32 {
	return m.mem.Size()
}
