// Package capability implements PermissionManifest parsing, capability
// pattern matching, and the memoized PermissionChecker every OSL-proxied
// operation from a component consults before it reaches the pipeline,
// grounded on the teacher's fs/glob-based trash/mirror path matching
// idioms and its memoized ACL evaluation in cluster access checks.
package capability

// PermissionManifest declares one component's permission rules, parsed
// from its install-time metadata (wasmhost/manifest's TOML front-end
// populates this struct).
type PermissionManifest struct {
	Filesystem FilesystemRules
	Network    NetworkRules
	Storage    StorageRules
	Functions  FunctionRules
}

// FunctionRules holds glob patterns over exported function names a
// component may invoke (on itself, via Invoke, or on a peer, via
// InterComponent) — the capability consulted by spec.md §4.6's
// pre-pipeline invocation check.
type FunctionRules struct {
	Invoke []string
}

// FilesystemRules holds glob patterns per filesystem action.
type FilesystemRules struct {
	Read   []string
	Write  []string
	Delete []string
	List   []string
}

// NetworkRule is one allowed (host-pattern, port) outbound destination; a
// zero Port allows any port. Inbound ports are listed in
// NetworkRules.Inbound instead.
type NetworkRule struct {
	Host string
	Port int
}

// NetworkRules holds a component's allowed outbound destinations and
// inbound listening ports.
type NetworkRules struct {
	Outbound []NetworkRule
	Inbound  []int
}

// StorageRules holds a component's allowed storage namespaces and its
// aggregate quota.
type StorageRules struct {
	Namespaces []string
	MaxSizeMB  int
}
