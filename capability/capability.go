package capability

import (
	"fmt"

	"github.com/wippyai/zome-engine/errors"
)

// Namespace is the only import namespace resolved for guest modules.
// Imports declared under any other module name fail instantiation.
const Namespace = "env"

// Func enumerates the host capability functions a guest may import.
// The set is closed and known at compile time; resolution is an exhaustive
// name lookup so an unknown name is an ordinary error, never a crash.
type Func int

const (
	// Abort receives fatal internal errors from guest-side allocators:
	// four wide integers carrying message, file, line and column info.
	// It is the one capability with a non-standard signature.
	Abort Func = iota

	Debug
	CommitEntry
	GetEntry
	EntryAddress
	InitGlobals
	Call
	Sign
	VerifySignature
	UpdateEntry
	RemoveEntry
	LinkEntries
	GetLinks
	Query
	Send
	Sleep

	funcCount
)

var names = [funcCount]string{
	Abort:           "abort",
	Debug:           "debug",
	CommitEntry:     "commit_entry",
	GetEntry:        "get_entry",
	EntryAddress:    "entry_address",
	InitGlobals:     "init_globals",
	Call:            "call",
	Sign:            "sign",
	VerifySignature: "verify_signature",
	UpdateEntry:     "update_entry",
	RemoveEntry:     "remove_entry",
	LinkEntries:     "link_entries",
	GetLinks:        "get_links",
	Query:           "query",
	Send:            "send",
	Sleep:           "sleep",
}

var byName = func() map[string]Func {
	m := make(map[string]Func, funcCount)
	for f, name := range names {
		m[name] = Func(f)
	}
	return m
}()

// Resolve maps an imported name to its capability. Untrusted bytecode may
// request arbitrary names; an unknown one is an instantiation failure.
func Resolve(name string) (Func, error) {
	f, ok := byName[name]
	if !ok {
		return 0, errors.UnknownImport(Namespace, name)
	}
	return f, nil
}

// All returns every capability in index order.
func All() []Func {
	out := make([]Func, funcCount)
	for i := range out {
		out[i] = Func(i)
	}
	return out
}

// Name returns the import name the guest declares for f.
func (f Func) Name() string {
	if f < 0 || f >= funcCount {
		return fmt.Sprintf("capability(%d)", int(f))
	}
	return names[f]
}

func (f Func) String() string {
	return f.Name()
}

// Signature describes a capability's calling convention. Every value is a
// 64-bit integer; only the counts vary.
type Signature struct {
	Params  int
	Results int
}

// Signature returns f's calling convention: Abort takes four words and
// returns nothing, every other capability takes one encoded word and
// returns one.
func (f Func) Signature() Signature {
	if f == Abort {
		return Signature{Params: 4, Results: 0}
	}
	return Signature{Params: 1, Results: 1}
}

func (s Signature) String() string {
	switch s.Results {
	case 0:
		return fmt.Sprintf("(%d x i64) -> ()", s.Params)
	default:
		return fmt.Sprintf("(%d x i64) -> i64", s.Params)
	}
}
