//go:build windows

package executor

import (
	"fmt"
	"os/exec"
	"strconv"

	"github.com/airsstack/airssys/osl/operation"
)

// deliverSignal maps {2,9,15} onto taskkill invocations, per spec.md §4.1:
// "taskkill on Windows with signals {2,9,15} mapped".
func deliverSignal(pid int, sig operation.Signal) error {
	switch sig {
	case operation.SignalInterrupt, operation.SignalKill, operation.SignalTerminate:
		args := []string{"/PID", strconv.Itoa(pid)}
		if sig == operation.SignalKill {
			args = append(args, "/F")
		}
		return exec.Command("taskkill", args...).Run()
	default:
		return fmt.Errorf("unsupported signal %d", sig)
	}
}
