package executor

import (
	"context"

	"github.com/airsstack/airssys/codec"
	"github.com/airsstack/airssys/osl"
	"github.com/airsstack/airssys/osl/operation"
	"github.com/airsstack/airssys/wasmhost/engine"
)

// ComponentExecutor routes TypeComponent operations into a single
// component's loaded handle, so a WASM invoke/inter-component call runs
// through the same pipeline (logging, security, audit) as any other
// OSL-proxied effect, per spec.md §4.6. One instance is bound to one
// component; wasmhost/actor.ComponentActor builds its own.
type ComponentExecutor struct {
	invoker engine.FunctionInvoker
	handle  func() (engine.ComponentHandle, bool)
	limiter *engine.ResourceLimiter
	meta    engine.ComponentMetadata
}

// NewComponentExecutor binds invoker/limiter/meta and a handle accessor
// (called fresh on every Execute, since a component's handle can change
// across Start/Stop cycles while this executor's Framework stays alive).
func NewComponentExecutor(invoker engine.FunctionInvoker, handle func() (engine.ComponentHandle, bool), limiter *engine.ResourceLimiter, meta engine.ComponentMetadata) *ComponentExecutor {
	return &ComponentExecutor{invoker: invoker, handle: handle, limiter: limiter, meta: meta}
}

func (*ComponentExecutor) Name() string { return "component" }

func (*ComponentExecutor) SupportedOperationTypes() []operation.Type {
	return []operation.Type{operation.TypeComponent}
}

func (e *ComponentExecutor) ValidateOperation(_ context.Context, op operation.Operation, _ *operation.ExecutionContext) error {
	if op.Kind() != operation.TypeComponent {
		return osl.NewExecutionFailed("component executor received non-component operation")
	}
	if op.Component.Function == "" {
		return osl.NewExecutionFailed("component: empty function name")
	}
	if _, ok := e.handle(); !ok {
		return osl.NewExecutionFailed("component: not started")
	}
	return nil
}

func (e *ComponentExecutor) Execute(ctx context.Context, op operation.Operation, _ *operation.ExecutionContext) (operation.ExecutionResult, error) {
	started := nowUTC()
	handle, ok := e.handle()
	if !ok {
		return operation.ExecutionResult{}, osl.NewExecutionFailed("component: not started")
	}

	out, err := engine.Execute(ctx, e.invoker, handle, op.Component.Function, op.Component.Payload, codec.Raw, codec.Raw, e.meta, e.limiter)
	res := operation.NewExecutionResult(started, nowUTC())
	if err != nil {
		res.Success = false
		return res, err
	}
	res.Stdout = out.Data
	return res, nil
}
