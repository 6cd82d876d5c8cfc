// Package executor provides the Executor contract and the four reference
// executors (filesystem, process, network, utility) described in
// spec.md §4.1.
package executor

import (
	"context"

	"github.com/airsstack/airssys/osl/operation"
)

// Executor performs the effect for operations of the types it declares via
// SupportedOperationTypes. Execution is asynchronous (context-bound).
type Executor interface {
	Name() string
	SupportedOperationTypes() []operation.Type
	ValidateOperation(ctx context.Context, op operation.Operation, ec *operation.ExecutionContext) error
	Execute(ctx context.Context, op operation.Operation, ec *operation.ExecutionContext) (operation.ExecutionResult, error)
}

// Registry resolves the Executor that supports a given operation.Type.
type Registry struct {
	byType map[operation.Type]Executor
}

// NewRegistry builds a Registry from a list of executors. Later executors
// win ties for a given Type (the caller controls precedence by ordering).
func NewRegistry(execs ...Executor) *Registry {
	r := &Registry{byType: make(map[operation.Type]Executor)}
	for _, e := range execs {
		for _, t := range e.SupportedOperationTypes() {
			r.byType[t] = e
		}
	}
	return r
}

// Resolve returns the executor registered for t, or ok=false.
func (r *Registry) Resolve(t operation.Type) (Executor, bool) {
	e, ok := r.byType[t]
	return e, ok
}
