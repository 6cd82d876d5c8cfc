package policy

import (
	"fmt"

	"github.com/airsstack/airssys/osl/operation"
)

// ACLEntry is a subject+resource+action triple with an allow/deny verdict.
type ACLEntry struct {
	Subject  string // principal name, or "*" for any
	Resource string // exact, prefix ("foo*"), or "*"
	Action   string // matches operation.PermissionKind.String()
	Allow    bool
}

func (e ACLEntry) matchesSubject(principal string) bool {
	return e.Subject == "*" || e.Subject == principal
}

func (e ACLEntry) matchesResource(resource string) bool {
	p := operation.Permission{Resource: e.Resource}
	return p.GrantsAccessTo(resource)
}

// ACLPolicy evaluates an ordered list of ACLEntry values: the first entry
// whose subject+resource+action all match governs the decision. When no
// entry matches, the decision is Deny, matching the "deny by default"
// posture used elsewhere in the pipeline.
type ACLPolicy struct {
	name    string
	entries []ACLEntry
}

func NewACLPolicy(name string, entries ...ACLEntry) *ACLPolicy {
	return &ACLPolicy{name: name, entries: entries}
}

func (p *ACLPolicy) Description() string { return fmt.Sprintf("acl:%s", p.name) }

// EvaluateFor checks whether action on resource is permitted for the
// context's principal. Name kept distinct from Evaluate because ACL
// decisions are inherently resource-scoped, unlike the single-context
// RolePolicy. SecurityMiddleware does not call EvaluateFor: it calls
// Evaluate(sc), which runs EvaluateFor once per permission in the context.
func (p *ACLPolicy) EvaluateFor(sc operation.SecurityContext, action, resource string) Decision {
	for _, e := range p.entries {
		if !e.matchesSubject(sc.Principal) {
			continue
		}
		if e.Action != "" && e.Action != action {
			continue
		}
		if !e.matchesResource(resource) {
			continue
		}
		if e.Allow {
			return AllowDecision()
		}
		return DenyDecision(fmt.Sprintf("acl %s: %s denied %s on %s", p.name, sc.Principal, action, resource))
	}
	return DenyDecision(fmt.Sprintf("acl %s: no matching entry for %s on %s", p.name, sc.Principal, resource))
}

// Evaluate implements Policy using the context's permission set as the
// resource/action universe: it allows iff every granted permission also
// clears an ACL entry.
func (p *ACLPolicy) Evaluate(sc operation.SecurityContext) Decision {
	for _, perm := range sc.Permissions {
		d := p.EvaluateFor(sc, perm.Kind.String(), perm.Resource)
		if d.Kind == Deny {
			return d
		}
	}
	return AllowDecision()
}
