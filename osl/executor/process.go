package executor

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/airsstack/airssys/osl"
	"github.com/airsstack/airssys/osl/operation"
)

// ProcessExecutor spawns subprocesses and delivers signals to them. Signal
// delivery is platform-specific: POSIX signals on Unix (process_unix.go),
// taskkill-mapped codes on Windows (process_windows.go), per spec.md §4.1.
type ProcessExecutor struct{}

func NewProcessExecutor() *ProcessExecutor { return &ProcessExecutor{} }

func (*ProcessExecutor) Name() string { return "process" }

func (*ProcessExecutor) SupportedOperationTypes() []operation.Type {
	return []operation.Type{operation.TypeProcess}
}

func (*ProcessExecutor) ValidateOperation(_ context.Context, op operation.Operation, _ *operation.ExecutionContext) error {
	if op.Kind() != operation.TypeProcess {
		return osl.NewExecutionFailed("process executor received non-process operation")
	}
	p := op.Process
	if p.Action == operation.ProcSpawn && p.Command == "" {
		return osl.NewProcessError("validate", "empty command")
	}
	if p.Action == operation.ProcSignal && p.PID <= 0 {
		return osl.NewProcessError("validate", "invalid pid")
	}
	return nil
}

func (e *ProcessExecutor) Execute(ctx context.Context, op operation.Operation, _ *operation.ExecutionContext) (operation.ExecutionResult, error) {
	started := nowUTC()
	p := op.Process
	switch p.Action {
	case operation.ProcSpawn:
		cmd := exec.CommandContext(ctx, p.Command, p.Args...)
		cmd.Dir = p.Cwd
		if len(p.Env) > 0 {
			env := make([]string, 0, len(p.Env))
			for k, v := range p.Env {
				env = append(env, k+"="+v)
			}
			cmd.Env = env
		}
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		runErr := cmd.Run()
		res := operation.NewExecutionResult(started, nowUTC())
		res.Stdout = stdout.Bytes()
		res.Stderr = stderr.Bytes()
		if cmd.ProcessState != nil {
			code := cmd.ProcessState.ExitCode()
			res.ExitCode = &code
		}
		if runErr != nil {
			res.Success = false
			return res, osl.NewProcessError("spawn", runErr.Error())
		}
		return res, nil

	case operation.ProcSignal:
		if err := deliverSignal(p.PID, p.Sig); err != nil {
			return operation.ExecutionResult{}, osl.NewProcessError("signal", err.Error())
		}
		return operation.NewExecutionResult(started, nowUTC()), nil

	default:
		return operation.ExecutionResult{}, osl.NewProcessError("execute", "unknown action")
	}
}
