// Package engine concretizes spec.md §4.4's black-box WebAssembly engine
// wrapper as a pair of narrow interfaces (InstanceProducer,
// FunctionInvoker) any real engine adapter (wasmtime-go, wazero, etc.)
// can implement, plus the RAII store lifecycle, resource limiter, and
// component loader that sit in front of it — grounded on the teacher's
// memsys store/slab lifecycle idiom (explicit acquire, deferred release,
// accounted high-water marks) generalized to per-invocation WASM stores.
package engine

import "context"

// Val is one engine-level argument or result value. The concrete shape is
// intentionally left to the engine adapter (component-model basic kinds
// are typically bool/u8..u64/s8..s64/f32/f64/char/string/list/record/etc.);
// callers marshal to/from multicodec-prefixed bytes at the Execute
// boundary (see execute.go).
type Val = any

// ComponentHandle is an opaque, precompiled component reference returned
// by InstanceProducer.Load and consumed by FunctionInvoker.Invoke.
type ComponentHandle interface {
	// ID is used only for logging/metrics; it does not participate in
	// equality or lookup (wasmhost/registry keys by wasmhost.ComponentId
	// separately).
	ID() string
}

// ComponentMetadata is the subset of install-time metadata the engine
// needs to configure a store (resource limits) independent of the wider
// wasmhost.ComponentMetadata type, to keep this package free of a
// dependency on the parent wasmhost package.
type ComponentMetadata struct {
	MaxMemoryBytes      uint64
	MaxFuelPerExecution uint64
	MaxExecutionMs      int64
}

// InstanceProducer loads component bytes into a precompiled,
// ready-to-instantiate handle.
type InstanceProducer interface {
	Load(ctx context.Context, bytes []byte, meta ComponentMetadata) (ComponentHandle, error)
}

// FunctionInvoker invokes a named export on a loaded component.
type FunctionInvoker interface {
	Invoke(ctx context.Context, handle ComponentHandle, function string, args []Val) ([]Val, error)
}

// Engine composes InstanceProducer and FunctionInvoker; fakeengine's
// Engine and any real adapter implement both.
type Engine interface {
	InstanceProducer
	FunctionInvoker
}
