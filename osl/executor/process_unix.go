//go:build !windows

package executor

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/airsstack/airssys/osl/operation"
)

// deliverSignal maps a portable Signal to the POSIX signal of the same
// number (spec.md §4.1: "POSIX signals on Unix") and delivers it via kill(2).
func deliverSignal(pid int, sig operation.Signal) error {
	var native unix.Signal
	switch sig {
	case operation.SignalInterrupt:
		native = unix.SIGINT
	case operation.SignalKill:
		native = unix.SIGKILL
	case operation.SignalTerminate:
		native = unix.SIGTERM
	default:
		return fmt.Errorf("unsupported signal %d", sig)
	}
	return unix.Kill(pid, native)
}
