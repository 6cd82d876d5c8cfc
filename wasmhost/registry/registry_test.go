package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsstack/airssys/cmn/ids"
	"github.com/airsstack/airssys/rt/actor"
	"github.com/airsstack/airssys/wasmhost"
	"github.com/airsstack/airssys/wasmhost/registry"
)

func TestRegisterAndLookup(t *testing.T) {
	r := registry.New()
	id := wasmhost.NewComponentId("acme", "widget", "0")
	addr := actor.Named(ids.ActorId("widget-actor"), "widget")

	require.NoError(t, r.Register(id, addr))

	got, err := r.Lookup(id)
	require.NoError(t, err)
	assert.Equal(t, addr, got)
	assert.Equal(t, 1, r.Len())
}

func TestRegisterDuplicateFails(t *testing.T) {
	r := registry.New()
	id := wasmhost.NewComponentId("acme", "widget", "0")
	addr := actor.Named(ids.ActorId("widget-actor"), "widget")

	require.NoError(t, r.Register(id, addr))
	err := r.Register(id, addr)
	assert.ErrorIs(t, err, registry.ErrAlreadyRegistered)
}

func TestLookupNotFound(t *testing.T) {
	r := registry.New()
	id := wasmhost.NewComponentId("acme", "missing", "0")
	_, err := r.Lookup(id)
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestUnregister(t *testing.T) {
	r := registry.New()
	id := wasmhost.NewComponentId("acme", "widget", "0")
	addr := actor.Named(ids.ActorId("widget-actor"), "widget")
	require.NoError(t, r.Register(id, addr))

	r.Unregister(id)
	assert.Equal(t, 0, r.Len())

	_, err := r.Lookup(id)
	assert.ErrorIs(t, err, registry.ErrNotFound)
}
