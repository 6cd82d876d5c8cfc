package executor

import (
	"context"
	"os/exec"

	"github.com/airsstack/airssys/osl"
	"github.com/airsstack/airssys/osl/operation"
)

// UtilityExecutor invokes an external CLI after a capability check on the
// utility's name (the permission is checked by the security middleware
// before the executor ever runs; the executor itself only refuses an empty
// name).
type UtilityExecutor struct{}

func NewUtilityExecutor() *UtilityExecutor { return &UtilityExecutor{} }

func (*UtilityExecutor) Name() string { return "utility" }

func (*UtilityExecutor) SupportedOperationTypes() []operation.Type {
	return []operation.Type{operation.TypeUtility}
}

func (*UtilityExecutor) ValidateOperation(_ context.Context, op operation.Operation, _ *operation.ExecutionContext) error {
	if op.Kind() != operation.TypeUtility {
		return osl.NewExecutionFailed("utility executor received non-utility operation")
	}
	if op.Utility.Name == "" {
		return osl.NewExecutionFailed("utility: empty name")
	}
	return nil
}

func (e *UtilityExecutor) Execute(ctx context.Context, op operation.Operation, _ *operation.ExecutionContext) (operation.ExecutionResult, error) {
	started := nowUTC()
	u := op.Utility
	cmd := exec.CommandContext(ctx, u.Name, u.Args...)
	out, err := cmd.CombinedOutput()
	res := operation.NewExecutionResult(started, nowUTC())
	res.Stdout = out
	if cmd.ProcessState != nil {
		code := cmd.ProcessState.ExitCode()
		res.ExitCode = &code
	}
	if err != nil {
		res.Success = false
		return res, osl.NewExecutionFailed("utility " + u.Name + ": " + err.Error())
	}
	return res, nil
}
