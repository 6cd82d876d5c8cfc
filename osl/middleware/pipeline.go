package middleware

import (
	"context"
	"sort"

	"github.com/airsstack/airssys/cmn/log"
	"github.com/airsstack/airssys/osl/executor"
	"github.com/airsstack/airssys/osl/operation"
)

// Pipeline runs an Operation through ordered middleware and an executor,
// per the six-step execution order in spec.md §4.1.
type Pipeline struct {
	executors   *executor.Registry
	middlewares []Middleware // sorted descending by Priority at construction
}

// NewPipeline sorts mws by descending priority once, at construction, so
// before/after traversal never re-sorts per call.
func NewPipeline(execs *executor.Registry, mws ...Middleware) *Pipeline {
	sorted := make([]Middleware, len(mws))
	copy(sorted, mws)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority() > sorted[j].Priority() })
	return &Pipeline{executors: execs, middlewares: sorted}
}

// Run executes op under ctx's ec, implementing steps 2-6 of spec.md §4.1
// (step 1, building the ExecutionContext from a framework-level
// SecurityContext, is the caller's / osl/framework's responsibility).
func (p *Pipeline) Run(ctx context.Context, op operation.Operation, ec *operation.ExecutionContext) (operation.ExecutionResult, error) {
	exec, ok := p.executors.Resolve(op.Kind())
	if !ok {
		return operation.ExecutionResult{}, ErrExecutorNotFound(op.Kind())
	}

	cur := op
	var applicable []Middleware
	for _, mw := range p.middlewares {
		if !mw.IsEnabled() || !mw.CanProcess(cur, ec) {
			continue
		}
		applicable = append(applicable, mw)
		next, shortCircuit, err := mw.BeforeExecution(ctx, cur, ec)
		if err != nil {
			return operation.ExecutionResult{}, err
		}
		if shortCircuit {
			return emptySuccess(), nil
		}
		if next != nil {
			cur = *next
		}
	}

	if err := exec.ValidateOperation(ctx, cur, ec); err != nil {
		return operation.ExecutionResult{}, err
	}

	res, execErr := exec.Execute(ctx, cur, ec)

	for i := len(applicable) - 1; i >= 0; i-- {
		mw := applicable[i]
		if afterErr := mw.AfterExecution(ctx, ec, &res, execErr); afterErr != nil {
			log.Warningf("middleware %s: after_execution error (ignored): %v", mw.Name(), afterErr)
		}
	}

	if execErr != nil {
		action := Continue
		for _, mw := range applicable {
			a := mw.HandleError(ctx, execErr, ec)
			if a != Continue {
				action = a
				break
			}
		}
		_ = action // every current handler preserves the original error, per spec.md §4.1 step 6.
		return res, execErr
	}

	return res, nil
}

func emptySuccess() operation.ExecutionResult {
	now := nowUTC()
	return operation.NewExecutionResult(now, now)
}
