// Package osl is a policy-gated façade over privileged OS operations
// (filesystem, process, network, external utilities). Every operation
// flows through a middleware pipeline with explicit security policy
// evaluation and audit logging (spec.md §4.1).
package osl

import (
	"fmt"

	"github.com/pkg/errors"
)

// SecurityViolationError reports a denied or misconfigured security check.
// Security errors are never retried and never swallowed by middleware.
type SecurityViolationError struct {
	Reason string
	cause  error
}

func NewSecurityViolation(reason string) error {
	return errors.WithStack(&SecurityViolationError{Reason: reason})
}

func (e *SecurityViolationError) Error() string { return "security violation: " + e.Reason }
func (e *SecurityViolationError) Unwrap() error { return e.cause }

// ExecutionFailedError reports a generic executor-level failure not covered
// by a more specific kind below.
type ExecutionFailedError struct{ Reason string }

func NewExecutionFailed(reason string) error {
	return errors.WithStack(&ExecutionFailedError{Reason: reason})
}
func (e *ExecutionFailedError) Error() string { return "execution failed: " + e.Reason }

// FilesystemError reports a filesystem executor failure.
type FilesystemError struct {
	Operation string
	Path      string
	Reason    string
}

func NewFilesystemError(op, path, reason string) error {
	return errors.WithStack(&FilesystemError{Operation: op, Path: path, Reason: reason})
}
func (e *FilesystemError) Error() string {
	return fmt.Sprintf("filesystem %s %q: %s", e.Operation, e.Path, e.Reason)
}

// ProcessError reports a process executor failure.
type ProcessError struct {
	Operation string
	Reason    string
}

func NewProcessError(op, reason string) error {
	return errors.WithStack(&ProcessError{Operation: op, Reason: reason})
}
func (e *ProcessError) Error() string { return fmt.Sprintf("process %s: %s", e.Operation, e.Reason) }

// NetworkError reports a network executor failure.
type NetworkError struct {
	Operation string
	Reason    string
}

func NewNetworkError(op, reason string) error {
	return errors.WithStack(&NetworkError{Operation: op, Reason: reason})
}
func (e *NetworkError) Error() string { return fmt.Sprintf("network %s: %s", e.Operation, e.Reason) }

// ErrExecutorNotFound is returned by the pipeline when no registered
// executor declares support for an operation's Type.
var ErrExecutorNotFound = errors.New("osl: no executor supports this operation type")
