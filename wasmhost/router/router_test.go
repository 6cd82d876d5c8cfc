package router_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsstack/airssys/cmn/ids"
	"github.com/airsstack/airssys/rt/actor"
	"github.com/airsstack/airssys/wasmhost"
	"github.com/airsstack/airssys/wasmhost/registry"
	"github.com/airsstack/airssys/wasmhost/router"
)

type fakeSender struct {
	sent     []actor.Envelope[wasmhost.ComponentMessage]
	failAddr actor.Address
}

func (f *fakeSender) Send(_ context.Context, addr actor.Address, env actor.Envelope[wasmhost.ComponentMessage]) error {
	if addr == f.failAddr {
		return errors.New("delivery refused")
	}
	f.sent = append(f.sent, env)
	return nil
}

func TestRouterSendResolvesAndDelivers(t *testing.T) {
	reg := registry.New()
	id := wasmhost.NewComponentId("acme", "widget", "0")
	addr := actor.Named(ids.ActorId("widget-actor"), "widget")
	require.NoError(t, reg.Register(id, addr))

	sender := &fakeSender{}
	r := router.New(reg, sender)

	msg := wasmhost.ComponentMessage{Kind: wasmhost.Invoke, Function: "handle"}
	require.NoError(t, r.Send(context.Background(), id, msg, nil))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, msg, sender.sent[0].Payload)
	assert.Nil(t, sender.sent[0].ReplyTo)
}

func TestRouterSendUnknownTarget(t *testing.T) {
	reg := registry.New()
	sender := &fakeSender{}
	r := router.New(reg, sender)

	id := wasmhost.NewComponentId("acme", "missing", "0")
	err := r.Send(context.Background(), id, wasmhost.ComponentMessage{}, nil)
	assert.Error(t, err)
}

func TestRouterBroadcastStrictAbortsOnFirstFailure(t *testing.T) {
	reg := registry.New()
	good := wasmhost.NewComponentId("acme", "good", "0")
	bad := wasmhost.NewComponentId("acme", "bad", "0")
	goodAddr := actor.Named(ids.ActorId("good-actor"), "good")
	badAddr := actor.Named(ids.ActorId("bad-actor"), "bad")
	require.NoError(t, reg.Register(good, goodAddr))
	require.NoError(t, reg.Register(bad, badAddr))

	sender := &fakeSender{failAddr: badAddr}
	r := router.New(reg, sender)

	err := r.BroadcastStrict(context.Background(), []wasmhost.ComponentId{bad, good}, wasmhost.ComponentMessage{}, nil)
	assert.Error(t, err)
	assert.Empty(t, sender.sent) // aborted before reaching "good"
}

func TestRouterBroadcastBestEffortCollectsOutcomes(t *testing.T) {
	reg := registry.New()
	good := wasmhost.NewComponentId("acme", "good", "0")
	bad := wasmhost.NewComponentId("acme", "bad", "0")
	goodAddr := actor.Named(ids.ActorId("good-actor"), "good")
	badAddr := actor.Named(ids.ActorId("bad-actor"), "bad")
	require.NoError(t, reg.Register(good, goodAddr))
	require.NoError(t, reg.Register(bad, badAddr))

	sender := &fakeSender{failAddr: badAddr}
	r := router.New(reg, sender)

	results := r.BroadcastBestEffort(context.Background(), []wasmhost.ComponentId{good, bad}, wasmhost.ComponentMessage{}, nil)
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Len(t, sender.sent, 1)
}
