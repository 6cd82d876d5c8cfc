package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/airsstack/airssys/osl/operation"
	"github.com/airsstack/airssys/osl/policy"
)

func TestRolePolicyAllowsKnownRole(t *testing.T) {
	roleOf := func(principal string) (string, bool) {
		if principal == "alice" {
			return "operator", true
		}
		return "", false
	}
	p := policy.NewRolePolicy("ops", roleOf, "operator", "admin")

	d := p.Evaluate(operation.SecurityContext{Principal: "alice"})
	assert.Equal(t, policy.Allow, d.Kind)
}

func TestRolePolicyDeniesUnknownPrincipal(t *testing.T) {
	roleOf := func(string) (string, bool) { return "", false }
	p := policy.NewRolePolicy("ops", roleOf, "operator")

	d := p.Evaluate(operation.SecurityContext{Principal: "mallory"})
	assert.Equal(t, policy.Deny, d.Kind)
}

func TestRolePolicyDeniesDisallowedRole(t *testing.T) {
	roleOf := func(string) (string, bool) { return "guest", true }
	p := policy.NewRolePolicy("ops", roleOf, "operator")

	d := p.Evaluate(operation.SecurityContext{Principal: "bob"})
	assert.Equal(t, policy.Deny, d.Kind)
}
