// Package debug provides invariant assertions. They are always compiled in;
// no build tag turns them off.
//
// Assertions here guard internal invariants that must never be false if the
// rest of the package is implemented correctly — they are not a substitute
// for returning an error at a system boundary (user input, OS call, wire
// payload). Those cases always return a typed error instead.
package debug

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

func panicf(a ...interface{}) {
	msg := "DEBUG PANIC: "
	if len(a) > 0 {
		msg += fmt.Sprint(a...)
	}
	buf := bytes.NewBuffer(make([]byte, 0, 1024))
	fmt.Fprint(buf, msg)
	for i := 2; i < 9; i++ {
		_, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		if !strings.Contains(file, "airssys") {
			break
		}
		f := filepath.Base(file)
		if buf.Len() > len(msg) {
			buf.WriteString(" <- ")
		}
		fmt.Fprintf(buf, "%s:%d", f, line)
	}
	fmt.Fprintln(os.Stderr, buf.String())
	panic(msg)
}

// Assert panics with a caller-chain trace if cond is false.
func Assert(cond bool, a ...interface{}) {
	if !cond {
		panicf(a...)
	}
}

// Assertf is Assert with a format string.
func Assertf(cond bool, f string, a ...interface{}) {
	if !cond {
		panicf(fmt.Sprintf(f, a...))
	}
}

// AssertNoErr panics if err is non-nil. Only for errors that represent a
// broken invariant, never for errors that originate outside the process.
func AssertNoErr(err error) {
	if err != nil {
		panicf(err)
	}
}

// Func runs f (useful for grouping expensive invariant checks). It always
// runs f, since assertions in this package are always compiled in.
func Func(f func()) { f() }
