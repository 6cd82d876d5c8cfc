package framework_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsstack/airssys/osl/audit"
	"github.com/airsstack/airssys/osl/executor"
	"github.com/airsstack/airssys/osl/framework"
	"github.com/airsstack/airssys/osl/operation"
	"github.com/airsstack/airssys/osl/policy"
)

// stubExecutor supports TypeUtility without touching the OS, so these
// tests exercise pipeline wiring rather than process execution.
type stubExecutor struct{ calls int }

func (*stubExecutor) Name() string { return "stub" }
func (*stubExecutor) SupportedOperationTypes() []operation.Type {
	return []operation.Type{operation.TypeUtility}
}
func (*stubExecutor) ValidateOperation(context.Context, operation.Operation, *operation.ExecutionContext) error {
	return nil
}
func (s *stubExecutor) Execute(_ context.Context, op operation.Operation, _ *operation.ExecutionContext) (operation.ExecutionResult, error) {
	s.calls++
	res := operation.NewExecutionResult(op.CreatedAt(), op.CreatedAt())
	res.Stdout = []byte(op.Utility.Name)
	return res, nil
}

func TestFrameworkExecuteRunsThroughExecutor(t *testing.T) {
	stub := &stubExecutor{}
	f := framework.New(executor.NewRegistry(stub))

	perms := operation.PermissionSet{operation.UtilityExecute("echo")}
	op := operation.NewUtilityOperation(operation.UtilityFields{Name: "echo"}, perms)
	sec := operation.NewSecurityContext("alice", perms)

	res, err := f.Execute(context.Background(), op, sec)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "echo", string(res.Stdout))
	assert.Equal(t, 1, stub.calls)
}

func TestFrameworkExecuteUnknownOperationType(t *testing.T) {
	f := framework.New(executor.NewRegistry())
	perms := operation.PermissionSet{operation.UtilityExecute("echo")}
	op := operation.NewUtilityOperation(operation.UtilityFields{Name: "echo"}, perms)
	sec := operation.NewSecurityContext("alice", perms)

	_, err := f.Execute(context.Background(), op, sec)
	assert.Error(t, err)
}

func TestNewDefaultDeniesByDefaultWithoutPolicies(t *testing.T) {
	stub := &stubExecutor{}
	f := framework.NewDefault(executor.NewRegistry(stub), nil, false)

	perms := operation.PermissionSet{operation.UtilityExecute("echo")}
	op := operation.NewUtilityOperation(operation.UtilityFields{Name: "echo"}, perms)
	sec := operation.NewSecurityContext("alice", perms)

	_, err := f.Execute(context.Background(), op, sec)
	assert.Error(t, err)
	assert.Equal(t, 0, stub.calls)
}

func TestNewDefaultAllowsThroughConfiguredPolicy(t *testing.T) {
	stub := &stubExecutor{}
	sink := audit.NewRingSink(8)
	allow := policy.NewACLPolicy("allow-echo", policy.ACLEntry{
		Subject: "*", Resource: "*", Action: operation.PermUtilityExecute.String(), Allow: true,
	})
	f := framework.NewDefault(executor.NewRegistry(stub), sink, false, allow)

	perms := operation.PermissionSet{operation.UtilityExecute("echo")}
	op := operation.NewUtilityOperation(operation.UtilityFields{Name: "echo"}, perms)
	sec := operation.NewSecurityContext("alice", perms)

	res, err := f.Execute(context.Background(), op, sec)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, stub.calls)

	counts := sink.Counts()
	assert.Positive(t, counts[audit.AccessGranted]+counts[audit.PolicyEvaluated])
}
