package capability

import (
	"fmt"
	"sync"

	"github.com/airsstack/airssys/wasmhost"
)

// Checker answers every permission question an OSL-proxied operation must
// consult before reaching the pipeline (spec.md §4.6's invocation check).
// Results are memoized per (component, operation, resource); a manifest
// Reload invalidates the whole cache at once.
type Checker struct {
	mu        sync.RWMutex
	manifests map[wasmhost.ComponentId]compiledFS
	functions map[wasmhost.ComponentId]compiledFunctions
	raw       map[wasmhost.ComponentId]PermissionManifest

	cache sync.Map // map[cacheKey]bool
}

type cacheKey struct {
	component wasmhost.ComponentId
	operation string
	resource  string
}

func NewChecker() *Checker {
	return &Checker{
		manifests: make(map[wasmhost.ComponentId]compiledFS),
		functions: make(map[wasmhost.ComponentId]compiledFunctions),
		raw:       make(map[wasmhost.ComponentId]PermissionManifest),
	}
}

// Register installs (or replaces) id's manifest and invalidates the whole
// memoization cache, since entries for other components' unrelated checks
// are harmless to drop but cheap to recompute.
func (c *Checker) Register(id wasmhost.ComponentId, m PermissionManifest) {
	c.mu.Lock()
	c.manifests[id] = compileFS(m.Filesystem)
	c.functions[id] = compileFunctions(m.Functions)
	c.raw[id] = m
	c.mu.Unlock()
	c.cache = sync.Map{}
}

// Reload re-registers id's manifest (e.g. after a package upgrade),
// invalidating the cache exactly as Register does. Distinguished from
// Register only for call-site clarity.
func (c *Checker) Reload(id wasmhost.ComponentId, m PermissionManifest) {
	c.Register(id, m)
}

func (c *Checker) memo(key cacheKey, compute func() bool) bool {
	if v, ok := c.cache.Load(key); ok {
		return v.(bool)
	}
	result := compute()
	c.cache.Store(key, result)
	return result
}

func (c *Checker) fs(id wasmhost.ComponentId) (compiledFS, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cf, ok := c.manifests[id]
	return cf, ok
}

func (c *Checker) manifest(id wasmhost.ComponentId) (PermissionManifest, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.raw[id]
	return m, ok
}

func (c *Checker) funcs(id wasmhost.ComponentId) (compiledFunctions, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cf, ok := c.functions[id]
	return cf, ok
}

func (c *Checker) CanReadFile(id wasmhost.ComponentId, path string) bool {
	return c.memo(cacheKey{id, "read", path}, func() bool {
		cf, ok := c.fs(id)
		return ok && matchAny(cf.read, path)
	})
}

func (c *Checker) CanWriteFile(id wasmhost.ComponentId, path string) bool {
	return c.memo(cacheKey{id, "write", path}, func() bool {
		cf, ok := c.fs(id)
		return ok && matchAny(cf.write, path)
	})
}

func (c *Checker) CanDeleteFile(id wasmhost.ComponentId, path string) bool {
	return c.memo(cacheKey{id, "delete", path}, func() bool {
		cf, ok := c.fs(id)
		return ok && matchAny(cf.delete, path)
	})
}

func (c *Checker) CanListDirectory(id wasmhost.ComponentId, path string) bool {
	return c.memo(cacheKey{id, "list", path}, func() bool {
		cf, ok := c.fs(id)
		return ok && matchAny(cf.list, path)
	})
}

func (c *Checker) CanConnectOutbound(id wasmhost.ComponentId, host string, port int) bool {
	resource := fmt.Sprintf("%s:%d", host, port)
	return c.memo(cacheKey{id, "connect_outbound", resource}, func() bool {
		m, ok := c.manifest(id)
		return ok && matchOutbound(m.Network.Outbound, host, port)
	})
}

func (c *Checker) CanAcceptInbound(id wasmhost.ComponentId, port int) bool {
	resource := fmt.Sprintf("%d", port)
	return c.memo(cacheKey{id, "accept_inbound", resource}, func() bool {
		m, ok := c.manifest(id)
		return ok && matchInbound(m.Network.Inbound, port)
	})
}

func (c *Checker) CanAccessStorage(id wasmhost.ComponentId, namespace string) bool {
	return c.memo(cacheKey{id, "access_storage", namespace}, func() bool {
		m, ok := c.manifest(id)
		return ok && matchNamespace(m.Storage.Namespaces, namespace)
	})
}

// CanInvokeFunction answers spec.md §4.6's pre-pipeline invocation check:
// whether id may invoke the named export, on itself or a peer component.
func (c *Checker) CanInvokeFunction(id wasmhost.ComponentId, function string) bool {
	return c.memo(cacheKey{id, "invoke", function}, func() bool {
		cf, ok := c.funcs(id)
		return ok && matchAny(cf.invoke, function)
	})
}
