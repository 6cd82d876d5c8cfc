package operation

import "strings"

// PermissionKind enumerates the grantable OSL permission classes.
type PermissionKind int

const (
	PermFilesystemRead PermissionKind = iota
	PermFilesystemWrite
	PermFilesystemExecute
	PermProcessSpawn
	PermProcessManage
	PermNetworkSocket
	PermNetworkConnect
	PermUtilityExecute
	// PermComponentInvoke is a [GO] addition (SPEC_FULL.md §4.6): the
	// permission an invoke/inter-component Operation declares once its
	// caller has already cleared wasmhost/capability's pre-pipeline check.
	PermComponentInvoke
)

func (k PermissionKind) String() string {
	switch k {
	case PermFilesystemRead:
		return "filesystem:read"
	case PermFilesystemWrite:
		return "filesystem:write"
	case PermFilesystemExecute:
		return "filesystem:execute"
	case PermProcessSpawn:
		return "process:spawn"
	case PermProcessManage:
		return "process:manage"
	case PermNetworkSocket:
		return "network:socket"
	case PermNetworkConnect:
		return "network:connect"
	case PermUtilityExecute:
		return "utility:execute"
	case PermComponentInvoke:
		return "component:invoke"
	default:
		return "unknown"
	}
}

// Permission is a tagged grant. Resource carries the path/endpoint/name the
// grant applies to; it is ignored for kinds that carry no resource
// (ProcessSpawn, ProcessManage, NetworkSocket).
type Permission struct {
	Kind     PermissionKind
	Resource string
}

func FilesystemRead(path string) Permission    { return Permission{PermFilesystemRead, path} }
func FilesystemWrite(path string) Permission   { return Permission{PermFilesystemWrite, path} }
func FilesystemExecute(path string) Permission { return Permission{PermFilesystemExecute, path} }
func ProcessSpawn() Permission                 { return Permission{Kind: PermProcessSpawn} }
func ProcessManage() Permission                { return Permission{Kind: PermProcessManage} }
func NetworkSocket() Permission                { return Permission{Kind: PermNetworkSocket} }
func NetworkConnect(endpoint string) Permission {
	return Permission{PermNetworkConnect, endpoint}
}
func UtilityExecute(name string) Permission { return Permission{PermUtilityExecute, name} }
func ComponentInvoke(function string) Permission {
	return Permission{PermComponentInvoke, function}
}

// Elevated reports whether the permission grants process control, socket
// creation, or file execution — the classes spec.md §3.2 calls "elevated".
func (p Permission) Elevated() bool {
	switch p.Kind {
	case PermProcessSpawn, PermProcessManage, PermNetworkSocket, PermFilesystemExecute:
		return true
	default:
		return false
	}
}

// GrantsAccessTo applies prefix/exact/wildcard ("*") matching of p against
// resource. A permission carrying no resource (e.g. ProcessSpawn) grants
// access to any resource string for its own kind.
func (p Permission) GrantsAccessTo(resource string) bool {
	if p.Resource == "" {
		return true
	}
	if p.Resource == "*" {
		return true
	}
	if p.Resource == resource {
		return true
	}
	if strings.HasSuffix(p.Resource, "*") {
		prefix := strings.TrimSuffix(p.Resource, "*")
		return strings.HasPrefix(resource, prefix)
	}
	return false
}

// PermissionSet is an immutable-by-convention collection of grants; callers
// must treat a PermissionSet as read-only once constructed.
type PermissionSet []Permission

// Has reports whether the set contains a permission of kind that grants
// access to resource.
func (s PermissionSet) Has(kind PermissionKind, resource string) bool {
	for _, p := range s {
		if p.Kind == kind && p.GrantsAccessTo(resource) {
			return true
		}
	}
	return false
}
