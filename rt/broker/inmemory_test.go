package broker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/airsstack/airssys/rt/actor"
)

type testMsg struct{ topic string }

func (testMsg) MessageType() string { return "test" }
func (testMsg) Priority() int       { return 0 }

func TestPublishBroadcastsToAllSubscribers(t *testing.T) {
	b := NewInMemoryBroker[testMsg]()
	sub1 := b.Subscribe()
	sub2 := b.Subscribe()

	require.NoError(t, b.Publish(context.Background(), actor.NewEnvelope(testMsg{topic: "a"})))

	select {
	case env := <-sub1:
		require.Equal(t, "a", env.Payload.topic)
	case <-time.After(time.Second):
		t.Fatal("sub1 did not receive")
	}
	select {
	case env := <-sub2:
		require.Equal(t, "a", env.Payload.topic)
	case <-time.After(time.Second):
		t.Fatal("sub2 did not receive")
	}
}

func TestPublishRequestReceivesReply(t *testing.T) {
	b := NewInMemoryBroker[testMsg]()
	sub := b.Subscribe()

	go func() {
		env := <-sub
		reply := env
		reply.Payload = testMsg{topic: "reply"}
		_ = b.Publish(context.Background(), reply)
	}()

	reply, err := b.PublishRequest(context.Background(), actor.NewEnvelope(testMsg{topic: "request"}), time.Second)
	require.NoError(t, err)
	require.Equal(t, "reply", reply.Payload.topic)
}

func TestPublishRequestTimesOut(t *testing.T) {
	b := NewInMemoryBroker[testMsg]()
	_, err := b.PublishRequest(context.Background(), actor.NewEnvelope(testMsg{topic: "no-reply"}), 20*time.Millisecond)
	require.Error(t, err)
	var timeoutErr *ErrRequestTimeout
	require.ErrorAs(t, err, &timeoutErr)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewInMemoryBroker[testMsg]()
	sub := b.Subscribe()
	b.Unsubscribe(sub)

	require.NoError(t, b.Publish(context.Background(), actor.NewEnvelope(testMsg{topic: "a"})))

	_, ok := <-sub
	require.False(t, ok, "channel should be closed after Unsubscribe")
}
