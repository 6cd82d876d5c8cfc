package middleware

import (
	"context"
	"fmt"

	"github.com/airsstack/airssys/osl"
	"github.com/airsstack/airssys/osl/audit"
	"github.com/airsstack/airssys/osl/operation"
	"github.com/airsstack/airssys/osl/policy"
)

// SecurityMiddleware runs first (Priority SecurityPriority). It is
// deny-by-default: with zero policies configured, every operation fails
// with SecurityViolation. Otherwise each configured policy is evaluated in
// registration order; any Deny aborts immediately. RequireAdditionalAuth
// decisions are accumulated and, unless Config.AllowRequireAdditionalAuth
// is set, treated as Deny (spec.md §9 Open Questions: made configurable,
// default deny).
type SecurityMiddleware struct {
	policies                   []policy.Policy
	sink                       audit.Sink
	allowRequireAdditionalAuth bool
}

func NewSecurityMiddleware(sink audit.Sink, allowRequireAdditionalAuth bool, policies ...policy.Policy) *SecurityMiddleware {
	return &SecurityMiddleware{policies: policies, sink: sink, allowRequireAdditionalAuth: allowRequireAdditionalAuth}
}

func (m *SecurityMiddleware) Name() string     { return "security" }
func (m *SecurityMiddleware) Priority() uint32  { return SecurityPriority }
func (m *SecurityMiddleware) IsEnabled() bool   { return true }
func (m *SecurityMiddleware) CanProcess(operation.Operation, *operation.ExecutionContext) bool {
	return true
}

func (m *SecurityMiddleware) audit(kind audit.EventKind, opID, decision, policyName string, ec *operation.ExecutionContext) {
	if m.sink == nil {
		return
	}
	_ = m.sink.Record(audit.Record{
		Timestamp:   nowUTC(),
		Kind:        kind,
		OperationID: opID,
		Principal:   ec.Security.Principal,
		SessionID:   ec.Security.SessionID,
		Decision:    decision,
		PolicyName:  policyName,
		Metadata:    ec.Metadata,
	})
}

func (m *SecurityMiddleware) BeforeExecution(_ context.Context, op operation.Operation, ec *operation.ExecutionContext) (*operation.Operation, bool, error) {
	opID := fmt.Sprintf("%p", &op)

	if len(m.policies) == 0 {
		const reason = "No security policies configured - deny by default"
		m.audit(audit.AccessDenied, opID, "deny", "deny-by-default", ec)
		return nil, false, osl.NewSecurityViolation(reason)
	}

	var requireAuthKinds []string
	for _, p := range m.policies {
		d := p.Evaluate(ec.Security)
		switch d.Kind {
		case policy.Deny:
			m.audit(audit.AccessDenied, opID, "deny", p.Description(), ec)
			return nil, false, osl.NewSecurityViolation(fmt.Sprintf("%s: %s", p.Description(), d.Reason))
		case policy.RequireAdditionalAuth:
			m.audit(audit.AuthenticationRequired, opID, "require_additional_auth", p.Description(), ec)
			requireAuthKinds = append(requireAuthKinds, d.Auth)
		default:
			m.audit(audit.AccessGranted, opID, "allow", p.Description(), ec)
		}
	}

	if len(requireAuthKinds) > 0 && !m.allowRequireAdditionalAuth {
		return nil, false, osl.NewSecurityViolation(fmt.Sprintf("additional authentication required: %v", requireAuthKinds))
	}

	m.audit(audit.PolicyEvaluated, opID, "allow", "aggregate", ec)
	return &op, false, nil
}

func (m *SecurityMiddleware) AfterExecution(context.Context, *operation.ExecutionContext, *operation.ExecutionResult, error) error {
	return nil
}

func (m *SecurityMiddleware) HandleError(context.Context, error, *operation.ExecutionContext) ErrorAction {
	return Continue
}
