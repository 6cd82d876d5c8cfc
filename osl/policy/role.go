package policy

import (
	"fmt"

	"github.com/airsstack/airssys/osl/operation"
)

// RolePolicy allows principals belonging to one of a fixed set of roles,
// denying everyone else. Role membership is supplied by a lookup function
// so the policy stays decoupled from wherever roles are actually stored.
type RolePolicy struct {
	name         string
	allowedRoles map[string]bool
	roleOf       func(principal string) (string, bool)
}

func NewRolePolicy(name string, roleOf func(principal string) (string, bool), allowedRoles ...string) *RolePolicy {
	m := make(map[string]bool, len(allowedRoles))
	for _, r := range allowedRoles {
		m[r] = true
	}
	return &RolePolicy{name: name, allowedRoles: m, roleOf: roleOf}
}

func (p *RolePolicy) Description() string { return fmt.Sprintf("role:%s", p.name) }

func (p *RolePolicy) Evaluate(sc operation.SecurityContext) Decision {
	role, ok := p.roleOf(sc.Principal)
	if !ok {
		return DenyDecision(fmt.Sprintf("role %s: unknown principal %s", p.name, sc.Principal))
	}
	if !p.allowedRoles[role] {
		return DenyDecision(fmt.Sprintf("role %s: role %s not permitted", p.name, role))
	}
	return AllowDecision()
}
