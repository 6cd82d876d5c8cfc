package actor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rtactor "github.com/airsstack/airssys/rt/actor"
	"github.com/airsstack/airssys/rt/broker"
	"github.com/airsstack/airssys/rt/supervisor"
	"github.com/airsstack/airssys/wasmhost"
	wasmactor "github.com/airsstack/airssys/wasmhost/actor"
	"github.com/airsstack/airssys/wasmhost/capability"
	"github.com/airsstack/airssys/wasmhost/engine"
	"github.com/airsstack/airssys/wasmhost/fakeengine"
	"github.com/airsstack/airssys/wasmhost/messaging"
)

func newTestActor(t *testing.T, behavior fakeengine.Behavior) (*wasmactor.ComponentActor, *broker.InMemoryBroker[wasmhost.ComponentMessage]) {
	t.Helper()
	eng := fakeengine.New()
	eng.Register("comp", "handle-message", behavior)

	id := wasmhost.NewComponentId("test", "comp", "0")
	loader := engine.NewLoader(eng)
	limiter := engine.NewResourceLimiter(1<<20, 1024, 8)
	br := broker.NewInMemoryBroker[wasmhost.ComponentMessage]()
	pub := messaging.NewPublisher(id, br)

	checker := capability.NewChecker()
	checker.Register(id, capability.PermissionManifest{
		Functions: capability.FunctionRules{Invoke: []string{"*"}},
	})

	a := wasmactor.New(wasmactor.Config{
		ID:      id,
		Source:  []byte("comp"),
		Loader:  loader,
		Invoker: eng,
		Limiter: limiter,
		Checker: checker,
		Publisher: pub,
		ErrorThreshold: 2,
		ErrorWindow:    time.Minute,
	})
	require.NoError(t, a.Start(context.Background()))
	return a, br
}

func TestComponentActorInvoke(t *testing.T) {
	a, br := newTestActor(t, fakeengine.Echo())
	sub := br.Subscribe()
	defer br.Unsubscribe(sub)

	actx := &rtactor.Context[wasmhost.ComponentMessage]{Broker: br}
	msg := wasmhost.ComponentMessage{Kind: wasmhost.Invoke, Function: "handle-message", Args: []byte{0x55, 1, 2, 3}, CorrelationID: "c1"}

	require.NoError(t, a.HandleMessage(context.Background(), msg, actx))

	select {
	case env := <-sub:
		assert.Equal(t, wasmhost.InvokeResult, env.Payload.Kind)
		assert.Equal(t, "c1", env.Payload.CorrelationID)
		assert.Empty(t, env.Payload.Err)
	case <-time.After(time.Second):
		t.Fatal("no reply received")
	}
}

func TestComponentActorInvokeTrap(t *testing.T) {
	a, br := newTestActor(t, fakeengine.Trapping(engine.DivisionByZero, "boom"))
	sub := br.Subscribe()
	defer br.Unsubscribe(sub)

	actx := &rtactor.Context[wasmhost.ComponentMessage]{Broker: br}
	msg := wasmhost.ComponentMessage{Kind: wasmhost.Invoke, Function: "handle-message", Args: []byte{0x55}, CorrelationID: "c2"}

	require.NoError(t, a.HandleMessage(context.Background(), msg, actx))

	select {
	case env := <-sub:
		assert.NotEmpty(t, env.Payload.Err)
	case <-time.After(time.Second):
		t.Fatal("no reply received")
	}

	health, err := a.HealthCheck(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, supervisor.HealthHealthy, health) // one error, threshold is 2
}

func TestComponentActorShutdownStopsViaOnError(t *testing.T) {
	a, _ := newTestActor(t, fakeengine.Echo())
	err := a.HandleMessage(context.Background(), wasmhost.ComponentMessage{Kind: wasmhost.Shutdown}, nil)
	require.Error(t, err)
	assert.Equal(t, rtactor.Stop, a.OnError(err))
}
