package mailbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/airsstack/airssys/rt/actor"
)

func TestUnboundedSendNeverBlocks(t *testing.T) {
	mb := NewUnbounded[testMsg]()
	ctx := context.Background()
	for i := 0; i < 10_000; i++ {
		require.NoError(t, mb.Send(ctx, actor.NewEnvelope(testMsg{v: i})))
	}
	require.Equal(t, int64(10_000), mb.Metrics().Sent())
}

func TestUnboundedFIFO(t *testing.T) {
	mb := NewUnbounded[testMsg]()
	ctx := context.Background()
	require.NoError(t, mb.Send(ctx, actor.NewEnvelope(testMsg{v: 1})))
	require.NoError(t, mb.Send(ctx, actor.NewEnvelope(testMsg{v: 2})))

	first, err := mb.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, first.Payload.v)

	second, err := mb.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, second.Payload.v)
}

func TestUnboundedCloseUnblocksRecv(t *testing.T) {
	mb := NewUnbounded[testMsg]()
	done := make(chan error, 1)
	go func() {
		_, err := mb.Recv(context.Background())
		done <- err
	}()
	mb.Close()
	require.ErrorIs(t, <-done, ErrClosed)
}
