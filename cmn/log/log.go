// Package log provides leveled, module-scoped logging for airssys.
//
// It wraps github.com/golang/glog the same way the teacher's vendored
// 3rdparty/glog was used: Infof/Warningf/Errorf for the common case, plus
// per-module verbosity selectable at process start via the AIRSSYS_DEBUG
// environment variable (e.g. AIRSSYS_DEBUG=rt=2,osl=1), mirroring the
// teacher's cmn/debug.loadLogLevel parsing of AIS_DEBUG.
package log

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/golang/glog"
)

// Module scopes verbosity independently per subsystem.
type Module string

const (
	ModuleOSL      Module = "osl"
	ModuleRT       Module = "rt"
	ModuleWasmHost Module = "wasmhost"
)

var (
	mu        sync.RWMutex
	verbosity = map[Module]int{}
)

func init() {
	loadFromEnv()
}

func loadFromEnv() {
	val := os.Getenv("AIRSSYS_DEBUG")
	if val == "" {
		return
	}
	for _, pair := range strings.Split(val, ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			continue
		}
		lvl, err := strconv.Atoi(kv[1])
		if err != nil {
			continue
		}
		SetVerbosity(Module(kv[0]), lvl)
	}
}

// SetVerbosity sets the verbosity threshold for a module. V(module, n) logs
// are emitted only when n <= threshold.
func SetVerbosity(m Module, level int) {
	mu.Lock()
	defer mu.Unlock()
	verbosity[m] = level
}

func thresholdFor(m Module) int {
	mu.RLock()
	defer mu.RUnlock()
	return verbosity[m]
}

// Enabled reports whether module m logs at the given verbosity level.
func Enabled(m Module, level int) bool {
	return level <= thresholdFor(m)
}

func Infof(f string, a ...interface{})    { glog.InfoDepth(1, fmt.Sprintf(f, a...)) }
func Warningf(f string, a ...interface{}) { glog.WarningDepth(1, fmt.Sprintf(f, a...)) }
func Errorf(f string, a ...interface{})   { glog.ErrorDepth(1, fmt.Sprintf(f, a...)) }

// V logs at Infof level only when the module's verbosity threshold allows it.
func V(m Module, level int, f string, a ...interface{}) {
	if Enabled(m, level) {
		glog.InfoDepth(1, fmt.Sprintf("["+string(m)+"] "+f, a...))
	}
}

// Flush flushes buffered log entries; call before process exit.
func Flush() { glog.Flush() }
