package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/airsstack/airssys/osl/operation"
	"github.com/airsstack/airssys/osl/policy"
)

func TestACLPolicyFirstMatchWins(t *testing.T) {
	p := policy.NewACLPolicy("fs",
		policy.ACLEntry{Subject: "alice", Resource: "/data/*", Action: "filesystem:read", Allow: true},
		policy.ACLEntry{Subject: "*", Resource: "*", Action: "filesystem:read", Allow: false},
	)

	allowed := p.EvaluateFor(operation.SecurityContext{Principal: "alice"}, "filesystem:read", "/data/x.txt")
	assert.Equal(t, policy.Allow, allowed.Kind)

	denied := p.EvaluateFor(operation.SecurityContext{Principal: "bob"}, "filesystem:read", "/data/x.txt")
	assert.Equal(t, policy.Deny, denied.Kind)
}

func TestACLPolicyNoMatchDeniesByDefault(t *testing.T) {
	p := policy.NewACLPolicy("fs")
	d := p.EvaluateFor(operation.SecurityContext{Principal: "alice"}, "filesystem:read", "/data/x.txt")
	assert.Equal(t, policy.Deny, d.Kind)
}

func TestACLPolicyEvaluateUsesContextPermissions(t *testing.T) {
	p := policy.NewACLPolicy("fs",
		policy.ACLEntry{Subject: "*", Resource: "*", Action: operation.PermFilesystemRead.String(), Allow: true},
	)
	sc := operation.SecurityContext{
		Principal:   "alice",
		Permissions: operation.PermissionSet{operation.FilesystemRead("/data/x.txt")},
	}
	assert.Equal(t, policy.Allow, p.Evaluate(sc).Kind)
}
