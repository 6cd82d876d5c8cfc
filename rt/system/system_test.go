package system

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/airsstack/airssys/rt/actor"
	"github.com/airsstack/airssys/rt/broker"
	"github.com/airsstack/airssys/rt/stats"
)

type echoMsg struct{ v int }

func (echoMsg) MessageType() string { return "echo" }
func (echoMsg) Priority() int       { return 0 }

type collectingActor struct {
	mu       sync.Mutex
	received []int
}

func (a *collectingActor) HandleMessage(_ context.Context, msg echoMsg, _ *actor.Context[echoMsg]) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.received = append(a.received, msg.v)
	return nil
}

func (a *collectingActor) OnError(error) actor.ErrorAction { return actor.Resume }

func (a *collectingActor) snapshot() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]int, len(a.received))
	copy(out, a.received)
	return out
}

func TestSpawnAndSend(t *testing.T) {
	br := broker.NewInMemoryBroker[echoMsg]()
	sys := New[echoMsg](br, 0)
	act := &collectingActor{}

	addr, err := sys.Spawn(context.Background(), act, SpawnOptions{Name: "echo-1"})
	require.NoError(t, err)

	require.NoError(t, sys.Send(context.Background(), addr, actor.NewEnvelope(echoMsg{v: 42})))

	require.Eventually(t, func() bool {
		got := act.snapshot()
		return len(got) == 1 && got[0] == 42
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, sys.Stop(addr, time.Second))
}

func TestMaxActorsExceeded(t *testing.T) {
	br := broker.NewInMemoryBroker[echoMsg]()
	sys := New[echoMsg](br, 1)

	_, err := sys.Spawn(context.Background(), &collectingActor{}, SpawnOptions{})
	require.NoError(t, err)

	_, err = sys.Spawn(context.Background(), &collectingActor{}, SpawnOptions{})
	require.ErrorIs(t, err, ErrMaxActorsExceeded)
}

func TestShutdownPreventsFurtherSpawn(t *testing.T) {
	br := broker.NewInMemoryBroker[echoMsg]()
	sys := New[echoMsg](br, 0)
	sys.Shutdown(time.Second)

	_, err := sys.Spawn(context.Background(), &collectingActor{}, SpawnOptions{})
	require.ErrorIs(t, err, ErrShuttingDown)
}

func TestNewWithStatsSamplesMailboxCounters(t *testing.T) {
	br := broker.NewInMemoryBroker[echoMsg]()
	reg := stats.NewRegistry(prometheus.NewRegistry())
	sys := NewWithStats[echoMsg](br, 0, reg, 5*time.Millisecond)
	act := &collectingActor{}

	addr, err := sys.Spawn(context.Background(), act, SpawnOptions{Name: "echo-stats"})
	require.NoError(t, err)
	require.NoError(t, sys.Send(context.Background(), addr, actor.NewEnvelope(echoMsg{v: 1})))

	require.Eventually(t, func() bool {
		metric := &dto.Metric{}
		if err := reg.MailboxReceived.WithLabelValues(addr.String()).Write(metric); err != nil {
			return false
		}
		return metric.GetCounter().GetValue() >= 1
	}, time.Second, 5*time.Millisecond)

	sys.Shutdown(time.Second)
}
