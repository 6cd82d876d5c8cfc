package middleware

import (
	"fmt"
	"time"

	"github.com/airsstack/airssys/osl"
	"github.com/airsstack/airssys/osl/operation"
)

func nowUTC() time.Time { return time.Now().UTC() }

// ErrExecutorNotFound wraps osl.ErrExecutorNotFound with the operation type
// that had no registered executor.
func ErrExecutorNotFound(t operation.Type) error {
	return fmt.Errorf("%w: %s", osl.ErrExecutorNotFound, t)
}
