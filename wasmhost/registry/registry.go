// Package registry maps ComponentId to the ActorAddress hosting it,
// grounded on the teacher's cluster node-map idiom (a concurrent,
// read-heavy map guarding O(1) lookups) simplified to sync.Map since
// registry entries are written once at component install time and read on
// every routed message thereafter.
package registry

import (
	"errors"
	"sync"

	"github.com/airsstack/airssys/rt/actor"
	"github.com/airsstack/airssys/wasmhost"
)

// ErrAlreadyRegistered is returned by Register when id is already mapped.
var ErrAlreadyRegistered = errors.New("registry: component already registered")

// ErrNotFound is returned by Lookup when id has no registered address.
var ErrNotFound = errors.New("registry: component not found")

// Registry is the concurrent ComponentId -> ActorAddress map.
type Registry struct {
	m sync.Map // wasmhost.ComponentId -> actor.Address
}

func New() *Registry { return &Registry{} }

// Register maps id to addr, failing if id is already present.
func (r *Registry) Register(id wasmhost.ComponentId, addr actor.Address) error {
	if _, loaded := r.m.LoadOrStore(id, addr); loaded {
		return ErrAlreadyRegistered
	}
	return nil
}

// Unregister removes id's mapping, if present.
func (r *Registry) Unregister(id wasmhost.ComponentId) {
	r.m.Delete(id)
}

// Lookup returns the ActorAddress hosting id.
func (r *Registry) Lookup(id wasmhost.ComponentId) (actor.Address, error) {
	v, ok := r.m.Load(id)
	if !ok {
		return actor.Address{}, ErrNotFound
	}
	return v.(actor.Address), nil
}

// Len returns the number of registered components. Approximate under
// concurrent mutation, adequate for metrics/diagnostics only.
func (r *Registry) Len() int {
	n := 0
	r.m.Range(func(_, _ any) bool { n++; return true })
	return n
}
