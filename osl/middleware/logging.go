package middleware

import (
	"context"

	"github.com/airsstack/airssys/cmn/log"
	"github.com/airsstack/airssys/osl/operation"
)

// LoggingMiddleware logs operation start/end at module ModuleOSL verbosity
// 1, grounded on the teacher's glog.Infoln-per-xaction-step idiom. It runs
// at a lower priority than security so it always observes the already-
// authorized operation.
type LoggingMiddleware struct{}

func NewLoggingMiddleware() *LoggingMiddleware { return &LoggingMiddleware{} }

func (*LoggingMiddleware) Name() string    { return "logging" }
func (*LoggingMiddleware) Priority() uint32 { return 10 }
func (*LoggingMiddleware) IsEnabled() bool  { return true }
func (*LoggingMiddleware) CanProcess(operation.Operation, *operation.ExecutionContext) bool {
	return true
}

func (*LoggingMiddleware) BeforeExecution(_ context.Context, op operation.Operation, ec *operation.ExecutionContext) (*operation.Operation, bool, error) {
	log.V(log.ModuleOSL, 1, "executing %s operation for principal=%s", op.Kind(), ec.Security.Principal)
	return &op, false, nil
}

func (*LoggingMiddleware) AfterExecution(_ context.Context, ec *operation.ExecutionContext, res *operation.ExecutionResult, execErr error) error {
	if execErr != nil {
		log.V(log.ModuleOSL, 1, "operation for principal=%s failed: %v", ec.Security.Principal, execErr)
		return nil
	}
	log.V(log.ModuleOSL, 1, "operation for principal=%s completed in %s", ec.Security.Principal, res.Duration())
	return nil
}

func (*LoggingMiddleware) HandleError(context.Context, error, *operation.ExecutionContext) ErrorAction {
	return Continue
}
