package operation

import (
	"time"

	"github.com/google/uuid"
)

// SecurityContext identifies the principal on whose behalf an Operation
// executes. A SecurityContext is immutable once constructed.
type SecurityContext struct {
	Principal  string
	SessionID  string
	Permissions PermissionSet
	CreatedAt  time.Time
}

// NewSecurityContext builds a SecurityContext with a fresh session id.
func NewSecurityContext(principal string, perms PermissionSet) SecurityContext {
	return SecurityContext{
		Principal:   principal,
		SessionID:   uuid.New().String(),
		Permissions: perms,
		CreatedAt:   time.Now().UTC(),
	}
}

// ExecutionContext is the SecurityContext plus per-request metadata; it is
// passed by reference into every executor and middleware hook.
type ExecutionContext struct {
	Security SecurityContext
	Metadata map[string]string
}

// NewExecutionContext wraps sec with an empty metadata map.
func NewExecutionContext(sec SecurityContext) *ExecutionContext {
	return &ExecutionContext{Security: sec, Metadata: map[string]string{}}
}

// WithMetadata returns a shallow copy of ctx with key=value merged in.
func (c *ExecutionContext) WithMetadata(key, value string) *ExecutionContext {
	md := make(map[string]string, len(c.Metadata)+1)
	for k, v := range c.Metadata {
		md[k] = v
	}
	md[key] = value
	return &ExecutionContext{Security: c.Security, Metadata: md}
}
