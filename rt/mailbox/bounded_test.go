package mailbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/airsstack/airssys/rt/actor"
)

type testMsg struct{ v int }

func (testMsg) MessageType() string { return "test" }
func (testMsg) Priority() int       { return 0 }

func TestBoundedNeverExceedsCapacity(t *testing.T) {
	mb := NewBounded[testMsg](2, BackpressureDrop)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, mb.Send(ctx, actor.NewEnvelope(testMsg{v: i})))
	}
	require.Equal(t, int64(2), mb.Metrics().Sent())
	require.Equal(t, int64(3), mb.Metrics().Dropped())
}

func TestBoundedErrorStrategy(t *testing.T) {
	mb := NewBounded[testMsg](1, BackpressureError)
	ctx := context.Background()
	require.NoError(t, mb.Send(ctx, actor.NewEnvelope(testMsg{v: 1})))
	require.ErrorIs(t, mb.Send(ctx, actor.NewEnvelope(testMsg{v: 2})), ErrFull)
}

func TestBoundedDropOldestKeepsNewest(t *testing.T) {
	mb := NewBounded[testMsg](1, BackpressureDropOldest)
	ctx := context.Background()
	require.NoError(t, mb.Send(ctx, actor.NewEnvelope(testMsg{v: 1})))
	require.NoError(t, mb.Send(ctx, actor.NewEnvelope(testMsg{v: 2})))

	env, err := mb.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, env.Payload.v)
}

func TestBoundedExpiredEnvelopeIsDroppedAtReceive(t *testing.T) {
	mb := NewBounded[testMsg](4, BackpressureError)
	ctx := context.Background()

	stale := actor.NewEnvelope(testMsg{v: 1}).WithTTL(time.Millisecond)
	stale.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, mb.Send(ctx, stale))
	require.NoError(t, mb.Send(ctx, actor.NewEnvelope(testMsg{v: 2})))

	env, err := mb.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, env.Payload.v)
	require.Equal(t, int64(1), mb.Metrics().Dropped())
}

func TestBoundedCloseUnblocksRecv(t *testing.T) {
	mb := NewBounded[testMsg](1, BackpressureError)
	done := make(chan error, 1)
	go func() {
		_, err := mb.Recv(context.Background())
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	mb.Close()
	require.ErrorIs(t, <-done, ErrClosed)
}
