package router_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/airsstack/airssys/wasmhost"
	"github.com/airsstack/airssys/wasmhost/router"
)

func TestSubscriberExactMatch(t *testing.T) {
	sm := router.NewSubscriberManager()
	a := wasmhost.NewComponentId("acme", "a", "0")
	sm.Subscribe(a, "orders.created")

	assert.ElementsMatch(t, []wasmhost.ComponentId{a}, sm.Matching("orders.created"))
	assert.Empty(t, sm.Matching("orders.updated"))
}

func TestSubscriberSingleWildcard(t *testing.T) {
	sm := router.NewSubscriberManager()
	a := wasmhost.NewComponentId("acme", "a", "0")
	sm.Subscribe(a, "orders.*")

	assert.ElementsMatch(t, []wasmhost.ComponentId{a}, sm.Matching("orders.created"))
	assert.Empty(t, sm.Matching("orders.created.extra"))
}

func TestSubscriberHashWildcard(t *testing.T) {
	sm := router.NewSubscriberManager()
	a := wasmhost.NewComponentId("acme", "a", "0")
	sm.Subscribe(a, "orders.#")

	assert.ElementsMatch(t, []wasmhost.ComponentId{a}, sm.Matching("orders.created"))
	assert.ElementsMatch(t, []wasmhost.ComponentId{a}, sm.Matching("orders.created.extra.more"))
	assert.Empty(t, sm.Matching("shipments.created"))
}

func TestSubscriberUnsubscribe(t *testing.T) {
	sm := router.NewSubscriberManager()
	a := wasmhost.NewComponentId("acme", "a", "0")
	sm.Subscribe(a, "orders.created")
	sm.Unsubscribe(a, "orders.created")

	assert.Empty(t, sm.Matching("orders.created"))
}

func TestSubscriberUnsubscribeAll(t *testing.T) {
	sm := router.NewSubscriberManager()
	a := wasmhost.NewComponentId("acme", "a", "0")
	sm.Subscribe(a, "orders.created")
	sm.Subscribe(a, "shipments.*")

	sm.UnsubscribeAll(a)

	assert.Empty(t, sm.Matching("orders.created"))
	assert.Empty(t, sm.Matching("shipments.dispatched"))
}

func TestSubscriberMultipleComponentsDeduped(t *testing.T) {
	sm := router.NewSubscriberManager()
	a := wasmhost.NewComponentId("acme", "a", "0")
	b := wasmhost.NewComponentId("acme", "b", "0")
	sm.Subscribe(a, "orders.#")
	sm.Subscribe(b, "orders.created")

	got := sm.Matching("orders.created")
	assert.ElementsMatch(t, []wasmhost.ComponentId{a, b}, got)
}
