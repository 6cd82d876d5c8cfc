package messaging_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsstack/airssys/wasmhost"
	"github.com/airsstack/airssys/wasmhost/messaging"
)

func TestCorrelationTrackerDeliver(t *testing.T) {
	tr := messaging.NewCorrelationTracker()
	ch, cancel := tr.Await(context.Background(), "corr-1", map[string]string{"k": "v"})
	defer cancel()

	meta, ok := tr.Metadata("corr-1")
	require.True(t, ok)
	assert.Equal(t, "v", meta["k"])

	ok = tr.Deliver("corr-1", wasmhost.ComponentMessage{Kind: wasmhost.InvokeResult, Result: []byte("ok")})
	assert.True(t, ok)

	select {
	case msg := <-ch:
		assert.Equal(t, []byte("ok"), msg.Result)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivered reply")
	}
}

func TestCorrelationTrackerDeliverUnknownReturnsFalse(t *testing.T) {
	tr := messaging.NewCorrelationTracker()
	assert.False(t, tr.Deliver("nope", wasmhost.ComponentMessage{}))
}

func TestCorrelationTrackerCancel(t *testing.T) {
	tr := messaging.NewCorrelationTracker()
	_, cancel := tr.Await(context.Background(), "corr-2", nil)
	defer cancel()

	ch, ok := tr.Cancel("corr-2")
	require.True(t, ok)
	assert.NotNil(t, ch)

	// already cancelled: a second Cancel or Deliver finds nothing pending.
	assert.False(t, tr.Deliver("corr-2", wasmhost.ComponentMessage{}))
}

func TestTimeoutHandlerDeliversTimeoutSentinel(t *testing.T) {
	tr := messaging.NewCorrelationTracker()
	ch, cancel := tr.Await(context.Background(), "corr-3", nil)
	defer cancel()

	h := messaging.NewTimeoutHandler(tr)
	h.Watch(context.Background(), "corr-3", 10*time.Millisecond)

	select {
	case msg := <-ch:
		assert.Equal(t, messaging.ErrTimeout.Error(), msg.Err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for timeout sentinel")
	}
}

func TestTimeoutHandlerStoppedByEarlyDeliver(t *testing.T) {
	tr := messaging.NewCorrelationTracker()
	replyCtx, cancel := context.WithCancel(context.Background())
	ch, awaitCancel := tr.Await(replyCtx, "corr-4", nil)
	_ = awaitCancel

	h := messaging.NewTimeoutHandler(tr)
	h.Watch(replyCtx, "corr-4", time.Hour)

	tr.Deliver("corr-4", wasmhost.ComponentMessage{Result: []byte("fast")})
	cancel()

	select {
	case msg := <-ch:
		assert.Equal(t, []byte("fast"), msg.Result)
	case <-time.After(time.Second):
		t.Fatal("expected immediate delivery")
	}
}
