package ribosome

import (
	"context"

	"github.com/wippyai/zome-engine/capability"
	"github.com/wippyai/zome-engine/memory"
	"github.com/wippyai/zome-engine/wire"
)

// Handle is the opaque execution context supplied by the caller. The
// engine's only direct use of it is the one diagnostic line per call;
// capability implementations receive it through CallState.
type Handle interface {
	// Log emits one diagnostic line. Fire-and-forget: it never fails
	// the call.
	Log(message string)
}

// Call names the function a zome call targets.
type Call struct {
	Zome     string
	Function string
}

// CallState is the per-call mutable state threaded through the guest
// invocation without being exposed to the guest: the memory manager over
// the instance's page plus the call metadata. It is created fresh for
// every call and dropped when the call ends; nothing is pooled or shared.
type CallState struct {
	Memory   *memory.PageManager
	Handle   Handle
	ZomeName string
	Call     Call
}

// Invoker supplies the bodies of the standard capability functions, which
// are external collaborators of this core. The guest's single argument
// word arrives as-is; the returned word travels back to the guest as-is.
//
// Invokers must be safe for concurrent use: one Invoker serves every call.
type Invoker interface {
	Invoke(ctx context.Context, state *CallState, fn capability.Func, arg wire.Word) (wire.Word, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, state *CallState, fn capability.Func, arg wire.Word) (wire.Word, error)

func (f InvokerFunc) Invoke(ctx context.Context, state *CallState, fn capability.Func, arg wire.Word) (wire.Word, error) {
	return f(ctx, state, fn, arg)
}
