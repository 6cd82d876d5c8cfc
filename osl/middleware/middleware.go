// Package middleware implements the OSL pipeline: ordered hook-bearing
// components that run before and after an executor (spec.md §4.1).
package middleware

import (
	"context"

	"github.com/airsstack/airssys/osl/operation"
)

// ErrorAction governs how a pipeline propagates an executor failure after
// a middleware's HandleError hook runs.
type ErrorAction int

const (
	Stop ErrorAction = iota
	Continue
	Retry
	Escalate
)

// Middleware is a hook-bearing pipeline component. Priority governs run
// order: before_execution runs in descending Priority, after_execution in
// the reverse (ascending) order, producing an onion-unwind model.
type Middleware interface {
	Name() string
	Priority() uint32
	IsEnabled() bool
	CanProcess(op operation.Operation, ec *operation.ExecutionContext) bool

	// BeforeExecution may transform op, or short-circuit the call by
	// returning (nil, true, nil) meaning "handled, do not run the
	// executor" — the pipeline then returns a synthetic empty success.
	BeforeExecution(ctx context.Context, op operation.Operation, ec *operation.ExecutionContext) (next *operation.Operation, shortCircuit bool, err error)

	// AfterExecution observes (never rewrites) the executor's result.
	// Errors here are logged but never change the result the caller sees.
	AfterExecution(ctx context.Context, ec *operation.ExecutionContext, res *operation.ExecutionResult, execErr error) error

	HandleError(ctx context.Context, err error, ec *operation.ExecutionContext) ErrorAction
}

// SecurityPriority is the fixed priority every SecurityMiddleware runs at,
// per spec.md §4.1 ("security = 100").
const SecurityPriority uint32 = 100
