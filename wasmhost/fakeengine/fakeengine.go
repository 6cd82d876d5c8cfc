// Package fakeengine is a deterministic, test-only implementation of
// wasmhost/engine's InstanceProducer/FunctionInvoker, backing the
// engine-integration-style tests that in the original Rust implementation
// exercised a real wasmtime engine (tests/engine-integration-tests.rs) and
// the fuel-exhaustion scenario (spec.md §8 scenario 10). Rather than embed
// a real WASM runtime — explicitly out of scope, see SPEC_FULL.md's Open
// Questions — each "component" here is a registered Go func simulating
// instruction steps, memory growth, and trap injection.
package fakeengine

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/airsstack/airssys/wasmhost/engine"
)

// Fuel meters a handle's simulated instruction budget, set from
// ComponentMetadata.MaxFuelPerExecution at Load time. A Behavior calls
// Consume once per simulated instruction step; once the budget is spent,
// every subsequent call reports exhaustion, matching a real engine's
// automatic fuel trap.
type Fuel struct {
	remaining uint64
}

// Consume deducts n units, returning false once the budget is exhausted.
func (f *Fuel) Consume(n uint64) bool {
	if n > f.remaining {
		f.remaining = 0
		return false
	}
	f.remaining -= n
	return true
}

// Behavior is a component's simulated export: given args and the handle's
// fuel meter, it produces a result, a trap, or an ordinary error.
type Behavior func(ctx context.Context, fuel *Fuel, args []engine.Val) ([]engine.Val, error)

// Echo is a Behavior that returns its single []byte argument unchanged —
// the fake-engine equivalent of the original's echo.wasm fixture.
func Echo() Behavior {
	return func(ctx context.Context, fuel *Fuel, args []engine.Val) ([]engine.Val, error) {
		if len(args) != 1 {
			return nil, &engine.ExecutionFailedError{Cause: fmt.Errorf("echo: expected 1 arg, got %d", len(args))}
		}
		return args, nil
	}
}

// InfiniteLoop is a Behavior that consumes one fuel unit per iteration
// forever, used to drive the fuel-exhaustion scenario: the loop never
// terminates on its own, so only the fuel meter running out stops it.
func InfiniteLoop() Behavior {
	return func(ctx context.Context, fuel *Fuel, args []engine.Val) ([]engine.Val, error) {
		for fuel.Consume(1) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
		return nil, &engine.TrapError{Kind: engine.FuelExhausted, Message: "fuel exhausted"}
	}
}

// Trapping is a Behavior that immediately returns the given trap.
func Trapping(kind engine.TrapKind, message string) Behavior {
	return func(ctx context.Context, fuel *Fuel, args []engine.Val) ([]engine.Val, error) {
		return nil, &engine.TrapError{Kind: kind, Message: message}
	}
}

// GrowMemory is a Behavior that requests a memory grow of n bytes against
// limiter before producing result, simulating a component that allocates
// linear memory; it traps MemoryLimitExceeded if the grow is rejected.
func GrowMemory(limiter *engine.ResourceLimiter, n uint64, result Behavior) Behavior {
	return func(ctx context.Context, fuel *Fuel, args []engine.Val) ([]engine.Val, error) {
		if err := limiter.MemoryGrowing(0, n, n); err != nil {
			return nil, &engine.TrapError{Kind: engine.MemoryLimitExceeded, Message: err.Error()}
		}
		return result(ctx, fuel, args)
	}
}

// handle is fakeengine's ComponentHandle: an id, the registered Behaviors
// for its exports, and the fuel budget installed at Load time.
type handle struct {
	id        string
	functions map[string]Behavior
	fuel      *Fuel
}

func (h *handle) ID() string { return h.id }

// Engine is the fake InstanceProducer/FunctionInvoker. Components are
// registered by name ahead of Load via Register, so tests can build a
// deterministic fixture set without any actual WASM bytes.
type Engine struct {
	nextHandle uint64
	registered map[string]map[string]Behavior
}

func New() *Engine {
	return &Engine{registered: make(map[string]map[string]Behavior)}
}

// Register installs function as name's export for any component whose
// bytes equal []byte(componentName) — fakeengine identifies "components"
// by their raw byte content rather than parsing an actual binary, since
// there is nothing to parse.
func (e *Engine) Register(componentName, function string, behavior Behavior) {
	fns, ok := e.registered[componentName]
	if !ok {
		fns = make(map[string]Behavior)
		e.registered[componentName] = fns
	}
	fns[function] = behavior
}

func (e *Engine) Load(ctx context.Context, bytes []byte, meta engine.ComponentMetadata) (engine.ComponentHandle, error) {
	name := string(bytes)
	fns, ok := e.registered[name]
	if !ok {
		return nil, &engine.ExecutionFailedError{Cause: fmt.Errorf("fakeengine: no component registered as %q", name)}
	}
	id := atomic.AddUint64(&e.nextHandle, 1)
	budget := meta.MaxFuelPerExecution
	if budget == 0 {
		budget = 1 << 30
	}
	return &handle{id: fmt.Sprintf("%s#%d", name, id), functions: fns, fuel: &Fuel{remaining: budget}}, nil
}

func (e *Engine) Invoke(ctx context.Context, h engine.ComponentHandle, function string, args []engine.Val) ([]engine.Val, error) {
	fh, ok := h.(*handle)
	if !ok {
		return nil, &engine.ExecutionFailedError{Cause: fmt.Errorf("fakeengine: foreign handle %T", h)}
	}
	fn, ok := fh.functions[function]
	if !ok {
		return nil, &engine.FunctionNotFoundError{Function: function}
	}
	return fn(ctx, fh.fuel, args)
}
