// Package policy implements the pluggable security-decision procedures
// evaluated by osl/middleware's SecurityMiddleware (spec.md §4.1).
package policy

import "github.com/airsstack/airssys/osl/operation"

// DecisionKind enumerates the three possible policy outcomes.
type DecisionKind int

const (
	Allow DecisionKind = iota
	Deny
	RequireAdditionalAuth
)

// Decision is the result of evaluating one Policy against a SecurityContext.
type Decision struct {
	Kind   DecisionKind
	Reason string // populated for Deny
	Auth   string // populated for RequireAdditionalAuth: the auth kind needed
}

func AllowDecision() Decision { return Decision{Kind: Allow} }
func DenyDecision(reason string) Decision { return Decision{Kind: Deny, Reason: reason} }
func RequireAuth(kind string) Decision {
	return Decision{Kind: RequireAdditionalAuth, Auth: kind}
}

// Policy is a pluggable decision procedure over a security context.
type Policy interface {
	Evaluate(sc operation.SecurityContext) Decision
	Description() string
}
