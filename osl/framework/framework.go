// Package framework wires executors, the middleware pipeline, and the
// security policy engine into the single entry point spec.md §4.1 and §9
// call for: the Rust source's OSLFramework::execute was a Phase-1
// placeholder that bypassed its own pipeline; Framework.Execute below is
// the Phase-2 implementation the Open Questions section asks for.
package framework

import (
	"context"

	"github.com/airsstack/airssys/osl/audit"
	"github.com/airsstack/airssys/osl/executor"
	"github.com/airsstack/airssys/osl/middleware"
	"github.com/airsstack/airssys/osl/operation"
	"github.com/airsstack/airssys/osl/policy"
)

// Framework is the façade callers (RT actors, WASM components via
// wasmhost/capability) submit Operations to.
type Framework struct {
	pipeline *middleware.Pipeline
}

// New builds a Framework from a pre-populated executor registry and an
// ordered middleware set. Callers typically include middleware.
// NewSecurityMiddleware first so SecurityPriority (100) puts it ahead of
// everything else regardless of slice order.
func New(execs *executor.Registry, mws ...middleware.Middleware) *Framework {
	return &Framework{pipeline: middleware.NewPipeline(execs, mws...)}
}

// defaultRingCapacity bounds the audit.RingSink NewDefault falls back to;
// sized for a few minutes of per-operation events at component-invoke
// rates rather than long-term retention.
const defaultRingCapacity = 512

// NewDefault builds a Framework with a SecurityMiddleware in front of execs,
// auditing to sink. A nil sink falls back to a bounded audit.RingSink —
// this is the "default sink wired by osl/framework when no persistent sink
// is configured" that audit.RingSink's doc comment describes.
func NewDefault(execs *executor.Registry, sink audit.Sink, allowRequireAdditionalAuth bool, policies ...policy.Policy) *Framework {
	if sink == nil {
		sink = audit.NewRingSink(defaultRingCapacity)
	}
	return New(execs,
		middleware.NewSecurityMiddleware(sink, allowRequireAdditionalAuth, policies...),
		middleware.NewLoggingMiddleware(),
	)
}

// Execute builds an ExecutionContext from sec and runs op through the full
// pipeline: executor selection, ordered before_execution, the executor
// itself, reverse-order after_execution, and error-handler consultation.
func (f *Framework) Execute(ctx context.Context, op operation.Operation, sec operation.SecurityContext) (operation.ExecutionResult, error) {
	ec := operation.NewExecutionContext(sec)
	return f.pipeline.Run(ctx, op, ec)
}

// ExecuteWithContext is like Execute but accepts a pre-built
// ExecutionContext, letting a caller carry per-request metadata set by an
// upstream layer (e.g. the WASM host stamping the calling ComponentId).
func (f *Framework) ExecuteWithContext(ctx context.Context, op operation.Operation, ec *operation.ExecutionContext) (operation.ExecutionResult, error) {
	return f.pipeline.Run(ctx, op, ec)
}
